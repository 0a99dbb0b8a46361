package recognize

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sw33tLie/cardscope/pkg/card"
)

const (
	// Card titles are conventionally printed in the top 35% of the frame;
	// a fragment counts as in the name band when its lower edge sits above
	// this line (Y grows upward).
	nameBandFloor = 0.65
	// Set codes like 25/102 live in the bottom strip of the card.
	setBandCeiling = 0.2

	maxNameLength = 40

	confidenceNameFound = 0.8
	confidenceNoText    = 0.3
)

// Words that appear on card faces but are never part of the card name.
var nameStopwords = []string{
	"basic", "stage", "hp", "trainer", "supporter", "item", "pokemon",
	"energy", "weakness", "resistance", "retreat", "illustrator",
	"©", "®", "™",
}

var (
	numericOnlyRe = regexp.MustCompile(`^[\d/\s]*$`)
	setCodeRe     = regexp.MustCompile(`\d+/\d+`)
)

// GuessName picks the most probable card name and set code from the
// detected text fragments. Either return value may be "" when nothing
// plausible was found.
func GuessName(detected []card.DetectedText) (name, setInfo string) {
	band := make([]card.DetectedText, 0, len(detected))
	for _, d := range detected {
		if d.Box.MinY > nameBandFloor {
			band = append(band, d)
		}
	}

	// Topmost first, as a proxy for printed size and placement.
	sort.SliceStable(band, func(i, j int) bool {
		return band[i].Box.MinY > band[j].Box.MinY
	})

	for _, d := range band {
		text := strings.TrimSpace(d.Text)
		if isExcludedName(text) {
			continue
		}
		if l := utf8.RuneCountInString(text); l >= 2 && l <= maxNameLength {
			name = text
			break
		}
	}

	for _, d := range detected {
		if d.Box.MaxY >= setBandCeiling {
			continue
		}
		if m := setCodeRe.FindString(d.Text); m != "" {
			setInfo = m
			break
		}
	}

	return name, setInfo
}

func isExcludedName(text string) bool {
	if utf8.RuneCountInString(text) < 2 {
		return true
	}
	if numericOnlyRe.MatchString(text) {
		return true
	}
	low := strings.ToLower(text)
	for _, stop := range nameStopwords {
		if strings.Contains(low, stop) {
			return true
		}
	}
	return false
}

// Recognize combines the name heuristic with an already-guessed category
// into a RecognitionResult. Confidence is fixed rather than derived from
// the OCR scores: 0.8 when a name was found, 0.3 otherwise.
func Recognize(detected []card.DetectedText, category string) card.RecognitionResult {
	name, setInfo := GuessName(detected)

	confidence := confidenceNoText
	if name != "" {
		confidence = confidenceNameFound
	}

	return card.RecognitionResult{
		Name:       name,
		SetInfo:    setInfo,
		Category:   category,
		Detected:   detected,
		Confidence: confidence,
	}
}
