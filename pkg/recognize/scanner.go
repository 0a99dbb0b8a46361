package recognize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sw33tLie/cardscope/internal/utils"
	"github.com/sw33tLie/cardscope/pkg/card"
	"github.com/sw33tLie/cardscope/pkg/ocr"
)

const broaderSearchPenalty = 0.8

// ErrScanInFlight is returned when Scan is called while another scan is
// still running. Scans are strictly one at a time.
var ErrScanInFlight = errors.New("a scan is already in progress")

// NoNameError means OCR ran but no fragment survived the name heuristic.
// It carries the raw fragments so the caller can offer a manual fallback.
type NoNameError struct {
	Detected []card.DetectedText
}

func (e *NoNameError) Error() string {
	return "no card name detected in the image"
}

// NoMatchError means a name was detected but the marketplace returned no
// results for it, even after the broader unfiltered retry.
type NoMatchError struct {
	Name string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no marketplace match for %q", e.Name)
}

// Searcher is the marketplace lookup the scanner depends on.
type Searcher interface {
	SearchCards(ctx context.Context, query, category string) ([]card.MarketplaceCard, error)
}

// Scanner runs the full camera-to-price pipeline for one image at a time:
// crop, OCR plus category guess in parallel, name heuristic, marketplace
// search with one broader retry.
type Scanner struct {
	extractor ocr.Extractor
	market    Searcher
	inFlight  atomic.Bool
}

func NewScanner(extractor ocr.Extractor, market Searcher) *Scanner {
	return &Scanner{
		extractor: extractor,
		market:    market,
	}
}

// Scan processes the image at path and returns the assembled scan record.
// The category hint, when non-empty, overrides the border-color guess.
func (s *Scanner) Scan(ctx context.Context, path, categoryHint string) (*card.ScannedCard, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrScanInFlight
	}
	defer s.inFlight.Store(false)

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ocr.ErrInvalidImage, err)
	}
	cropped := ocr.CropCardFrame(img)

	cropPath, cleanup, err := saveTemp(cropped)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// Text extraction and the category guess are independent, run them
	// concurrently and join before the heuristic.
	var (
		wg       sync.WaitGroup
		detected []card.DetectedText
		ocrErr   error
		category string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		detected, ocrErr = s.extractor.RecognizeText(cropPath)
	}()
	go func() {
		defer wg.Done()
		category = GuessCategory(cropped)
	}()
	wg.Wait()

	if ocrErr != nil {
		return nil, ocrErr
	}
	if categoryHint != "" {
		category = categoryHint
	}

	rec := Recognize(detected, category)
	if rec.Name == "" {
		return nil, &NoNameError{Detected: detected}
	}
	utils.Log.Debug("recognized name=", rec.Name, " set=", rec.SetInfo, " category=", category)

	results, err := s.market.SearchCards(ctx, rec.Name, card.SearchFilter(category))
	if err != nil {
		return nil, err
	}

	confidence := rec.Confidence
	if len(results) == 0 {
		// Broader retry without the category filter; a hit here is less
		// certain than a filtered one.
		results, err = s.market.SearchCards(ctx, rec.Name, "")
		if err != nil {
			return nil, err
		}
		confidence *= broaderSearchPenalty
	}
	if len(results) == 0 {
		return nil, &NoMatchError{Name: rec.Name}
	}

	top := results[0]
	if top.Category != "" && top.Category != "Unknown" {
		category = top.Category
	}

	snapshot, err := ocr.EncodeSnapshot(cropped)
	if err != nil {
		utils.Log.Warn("could not encode scan snapshot: ", err)
		snapshot = nil
	}

	texts := make([]string, 0, len(detected))
	for _, d := range detected {
		texts = append(texts, d.Text)
	}

	return &card.ScannedCard{
		ID:           uuid.NewString(),
		Name:         top.Name,
		SetName:      top.SetName,
		Category:     category,
		MarketPrice:  top.MarketPrice,
		LowPrice:     top.LowPrice,
		MidPrice:     top.MidPrice,
		HighPrice:    top.HighPrice,
		ProductURL:   top.ProductURL,
		ImageData:    snapshot,
		Confidence:   confidence,
		ScannedAt:    time.Now().UTC(),
		DetectedText: texts,
	}, nil
}

func saveTemp(img image.Image) (string, func(), error) {
	tmpFile, err := os.CreateTemp("", "cardscope-scan-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("scan temp file: %w", err)
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()

	if err := imaging.Save(img, tmp); err != nil {
		_ = os.Remove(tmp)
		return "", nil, fmt.Errorf("%w: %v", ocr.ErrEncoding, err)
	}
	return tmp, func() { _ = os.Remove(tmp) }, nil
}
