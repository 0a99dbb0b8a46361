package recognize

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/sw33tLie/cardscope/pkg/card"
)

const (
	sampleSize   = 50
	borderOffset = 5
)

// GuessCategory guesses the trading-card game family from the border color
// of the card frame. Pokemon cards have a yellow border, most Magic cards a
// black one. This is a fixed four-point heuristic, not a classifier.
func GuessCategory(img image.Image) string {
	small := imaging.Fit(img, sampleSize, sampleSize, imaging.Box)
	b := small.Bounds()
	w, h := b.Dx(), b.Dy()

	points := []image.Point{
		{X: borderOffset, Y: h / 2},
		{X: w - borderOffset - 1, Y: h / 2},
		{X: w / 2, Y: borderOffset},
		{X: w / 2, Y: h - borderOffset - 1},
	}

	yellowish := false
	blackish := false
	distinct := make(map[[3]uint8]struct{})

	for _, p := range points {
		x, y := clamp(p.X, w-1), clamp(p.Y, h-1)
		r16, g16, b16, _ := small.At(b.Min.X+x, b.Min.Y+y).RGBA()
		r := float64(r16) / 65535
		g := float64(g16) / 65535
		bl := float64(b16) / 65535

		distinct[[3]uint8{uint8(r16 >> 8), uint8(g16 >> 8), uint8(b16 >> 8)}] = struct{}{}

		if r > 0.7 && g > 0.6 && bl < 0.4 {
			yellowish = true
		}
		if r < 0.2 && g < 0.2 && bl < 0.2 {
			blackish = true
		}
	}

	switch {
	case yellowish:
		return card.CategoryPokemon
	case blackish && len(distinct) >= 3:
		return card.CategoryMagic
	default:
		return card.CategoryGeneric
	}
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
