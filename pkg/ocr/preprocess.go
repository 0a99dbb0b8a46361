package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// Physical trading cards are 2.5 x 3.5 inches.
	cardAspect = 2.5 / 3.5
	// Fraction of each edge dropped before fitting the card frame. The
	// capture guide overlay keeps the card inside this region.
	cropInset = 0.15

	snapshotWidth   = 300
	snapshotQuality = 70
)

// CropCardFrame crops the captured image to the card frame: the source
// bounds are inset by 15% per side, then the largest centered rectangle
// with the 2.5:3.5 card aspect ratio is taken. The output ratio holds for
// any input size or orientation.
func CropCardFrame(img image.Image) *image.NRGBA {
	b := img.Bounds()
	w := float64(b.Dx()) * (1 - 2*cropInset)
	h := float64(b.Dy()) * (1 - 2*cropInset)

	if w/h > cardAspect {
		w = h * cardAspect
	} else {
		h = w / cardAspect
	}

	cw := int(w + 0.5)
	ch := int(h + 0.5)
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	return imaging.CropCenter(img, cw, ch)
}

// prepareForOCR converts to grayscale and upscales small captures so that
// Tesseract has enough pixels per glyph to work with.
func prepareForOCR(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < 800 {
		gray = imaging.Resize(gray, 0, 1200, imaging.Lanczos)
	}
	return gray
}

// EncodeSnapshot produces the small JPEG stored alongside a scan record.
func EncodeSnapshot(img image.Image) ([]byte, error) {
	thumb := imaging.Resize(img, snapshotWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(snapshotQuality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return buf.Bytes(), nil
}
