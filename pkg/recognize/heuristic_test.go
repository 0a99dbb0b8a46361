package recognize

import (
	"testing"

	"github.com/sw33tLie/cardscope/pkg/card"
)

func frag(text string, minY, maxY float64) card.DetectedText {
	return card.DetectedText{
		Text:       text,
		Confidence: 0.9,
		Box:        card.Rect{MinX: 0.1, MinY: minY, MaxX: 0.9, MaxY: maxY},
	}
}

func TestGuessName_NoText(t *testing.T) {
	name, setInfo := GuessName(nil)
	if name != "" || setInfo != "" {
		t.Fatalf("expected empty results, got %q / %q", name, setInfo)
	}

	rec := Recognize(nil, card.CategoryGeneric)
	if rec.Name != "" {
		t.Fatalf("expected no name, got %q", rec.Name)
	}
	if rec.Confidence != 0.3 {
		t.Fatalf("expected confidence 0.3, got %f", rec.Confidence)
	}
}

func TestGuessName_PicksTopmostBandFragment(t *testing.T) {
	name, _ := GuessName([]card.DetectedText{
		frag("Flame Burst", 0.7, 0.75),
		frag("Charizard VMAX", 0.85, 0.92),
	})
	if name != "Charizard VMAX" {
		t.Fatalf("expected topmost fragment, got %q", name)
	}
}

func TestGuessName_IgnoresFragmentsBelowBand(t *testing.T) {
	// Even a perfect-looking name is ignored when its lower edge is at or
	// below the band floor.
	name, _ := GuessName([]card.DetectedText{
		frag("Charizard VMAX", 0.65, 0.92),
		frag("Pikachu", 0.3, 0.4),
	})
	if name != "" {
		t.Fatalf("expected no name outside the band, got %q", name)
	}
}

func TestGuessName_ExcludesNumericFragments(t *testing.T) {
	name, _ := GuessName([]card.DetectedText{
		frag("123/456", 0.9, 0.95),
		frag("42 / 7", 0.85, 0.9),
		frag("  1/1 ", 0.8, 0.85),
	})
	if name != "" {
		t.Fatalf("expected numeric fragments excluded, got %q", name)
	}
}

func TestGuessName_ExcludesStopwords(t *testing.T) {
	cases := []string{
		"Basic",
		"Stage 2",
		"HP 120",
		"Trainer",
		"Supporter",
		"POKEMON",
		"Energy Card",
		"Weakness x2",
		"Illustrator Ken Sugimori",
		"© 2023 Nintendo",
	}
	for _, c := range cases {
		name, _ := GuessName([]card.DetectedText{frag(c, 0.9, 0.95)})
		if name != "" {
			t.Fatalf("expected %q excluded, got name %q", c, name)
		}
	}
}

func TestGuessName_ExcludesTooShortAndTooLong(t *testing.T) {
	long := "this is a very long line of flavor text that cannot be a name"
	name, _ := GuessName([]card.DetectedText{
		frag("A", 0.95, 0.98),
		frag(long, 0.9, 0.94),
		frag("Blastoise", 0.8, 0.85),
	})
	if name != "Blastoise" {
		t.Fatalf("expected Blastoise, got %q", name)
	}
}

func TestGuessName_SetCodeFromBottomStrip(t *testing.T) {
	_, setInfo := GuessName([]card.DetectedText{
		frag("Charizard VMAX", 0.85, 0.92),
		frag("020/189", 0.05, 0.1),
	})
	if setInfo != "020/189" {
		t.Fatalf("expected set code, got %q", setInfo)
	}
}

func TestGuessName_SetCodeIgnoredOutsideBottomStrip(t *testing.T) {
	_, setInfo := GuessName([]card.DetectedText{
		frag("020/189", 0.4, 0.5),
	})
	if setInfo != "" {
		t.Fatalf("expected no set code outside the bottom strip, got %q", setInfo)
	}
}

func TestRecognize_ConfidenceWithName(t *testing.T) {
	rec := Recognize([]card.DetectedText{
		frag("Charizard VMAX", 0.85, 0.92),
	}, card.CategoryPokemon)
	if rec.Name != "Charizard VMAX" {
		t.Fatalf("expected name, got %q", rec.Name)
	}
	if rec.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8, got %f", rec.Confidence)
	}
	if rec.Category != card.CategoryPokemon {
		t.Fatalf("unexpected category %q", rec.Category)
	}
}
