package card

import (
	"fmt"
	"strings"
	"time"
)

// Category labels used across the scanner. The guesser only ever emits one of
// these three; the marketplace parser may additionally report whatever game
// family it infers from a product URL.
const (
	CategoryPokemon = "Pokemon"
	CategoryMagic   = "Magic: The Gathering"
	CategoryGeneric = "Trading Card"
)

// Rect is a normalized bounding box in a 0..1 coordinate space with the
// origin at the bottom-left corner, matching what the OCR layer emits.
type Rect struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// DetectedText is one located text fragment from the OCR pass.
type DetectedText struct {
	Text       string
	Confidence float64
	Box        Rect
}

// RecognitionResult is the outcome of the name/category heuristics over one
// image. Empty Name or SetInfo means "not detected".
type RecognitionResult struct {
	Name       string
	SetInfo    string
	Category   string
	Detected   []DetectedText
	Confidence float64
}

// MarketplaceCard is one product row scraped from the marketplace search
// page or its price API. Price pointers are nil when the page didn't show
// that figure.
type MarketplaceCard struct {
	ID          string
	Name        string
	SetName     string
	Category    string
	ImageURL    string
	ProductURL  string
	MarketPrice *float64
	LowPrice    *float64
	MidPrice    *float64
	HighPrice   *float64
}

// ScannedCard is one completed, persisted scan. Price fields are a snapshot
// taken at scan time and are never refreshed in place.
type ScannedCard struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SetName      string    `json:"set_name"`
	Category     string    `json:"category"`
	MarketPrice  *float64  `json:"market_price,omitempty"`
	LowPrice     *float64  `json:"low_price,omitempty"`
	MidPrice     *float64  `json:"mid_price,omitempty"`
	HighPrice    *float64  `json:"high_price,omitempty"`
	ProductURL   string    `json:"product_url,omitempty"`
	ImageData    []byte    `json:"image_data,omitempty"`
	Confidence   float64   `json:"confidence"`
	ScannedAt    time.Time `json:"scanned_at"`
	DetectedText []string  `json:"detected_text,omitempty"`
}

// filterMap is the source of truth for mapping a guessed or user-supplied
// category onto the marketplace product-line slug used in search URLs.
var filterMap = map[string][]string{
	"pokemon":             {"pokemon", "pokémon"},
	"magic":               {"magic: the gathering", "magic the gathering", "magic", "mtg"},
	"yugioh":              {"yugioh", "yu-gi-oh", "yu-gi-oh!"},
	"one-piece-card-game": {"one piece", "one-piece"},
	"disney-lorcana":      {"lorcana", "disney lorcana"},
	"sports-cards":        {"sports", "sports cards"},
}

var slugMap map[string]string

func init() {
	slugMap = make(map[string]string)
	for slug, raws := range filterMap {
		for _, raw := range raws {
			slugMap[raw] = slug
		}
	}
}

// SearchFilter returns the marketplace product-line slug for a category
// label, or "" when the category has no corresponding filter (the search
// then runs unfiltered).
func SearchFilter(category string) string {
	return slugMap[strings.ToLower(strings.TrimSpace(category))]
}

// FormatPrice renders an optional dollar figure for CLI output.
func FormatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *p)
}

// Summary is the one-line rendering used by the scan command.
func (c ScannedCard) Summary() string {
	parts := []string{c.Name}
	if c.SetName != "" && c.SetName != "Unknown" {
		parts = append(parts, c.SetName)
	}
	parts = append(parts, c.Category, FormatPrice(c.MarketPrice))
	return strings.Join(parts, " | ")
}
