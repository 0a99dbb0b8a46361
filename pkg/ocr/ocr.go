package ocr

import (
	"fmt"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/sw33tLie/cardscope/internal/utils"
	"github.com/sw33tLie/cardscope/pkg/card"
)

// Extractor produces located text fragments from a card photograph.
// The scan pipeline only depends on this interface, so tests (and any future
// cloud OCR backend) can swap in their own implementation.
type Extractor interface {
	RecognizeText(path string) ([]card.DetectedText, error)
}

// TesseractExtractor runs a local Tesseract pass over the image.
type TesseractExtractor struct {
	// Languages passed to Tesseract, e.g. "eng". Empty means "eng".
	Languages string
}

// NewTesseractExtractor returns an extractor using the given Tesseract
// language string ("" defaults to English).
func NewTesseractExtractor(languages string) *TesseractExtractor {
	if languages == "" {
		languages = "eng"
	}
	return &TesseractExtractor{Languages: languages}
}

// RecognizeText OCRs the image at path and returns one DetectedText per
// recognized text line, with bounding boxes normalized to a 0..1 space with
// the origin at the bottom-left.
func (t *TesseractExtractor) RecognizeText(path string) ([]card.DetectedText, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	prepared := prepareForOCR(img)
	w := prepared.Bounds().Dx()
	h := prepared.Bounds().Dy()

	tmpFile, err := os.CreateTemp("", "cardscope-ocr-*.png")
	if err != nil {
		return nil, fmt.Errorf("ocr temp file: %w", err)
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmp)

	if err := imaging.Save(prepared, tmp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage(t.Languages)
	if err := client.SetImage(tmp); err != nil {
		return nil, fmt.Errorf("ocr set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	var out []card.DetectedText
	for _, b := range boxes {
		text := trimLine(b.Word)
		if text == "" {
			continue
		}
		// Tesseract reports pixel boxes with a top-left origin; flip the Y
		// axis while normalizing.
		out = append(out, card.DetectedText{
			Text:       text,
			Confidence: b.Confidence / 100,
			Box: card.Rect{
				MinX: float64(b.Box.Min.X) / float64(w),
				MinY: 1 - float64(b.Box.Max.Y)/float64(h),
				MaxX: float64(b.Box.Max.X) / float64(w),
				MaxY: 1 - float64(b.Box.Min.Y)/float64(h),
			},
		})
	}

	utils.Log.Debug("OCR detected ", len(out), " text lines in ", path)
	return out, nil
}

func trimLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
