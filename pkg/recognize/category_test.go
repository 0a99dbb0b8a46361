package recognize

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/sw33tLie/cardscope/pkg/card"
)

func solidImage(c color.NRGBA, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestGuessCategory_YellowBorderIsPokemon(t *testing.T) {
	img := solidImage(color.NRGBA{R: 250, G: 210, B: 60, A: 255}, 50, 50)

	if got := GuessCategory(img); got != card.CategoryPokemon {
		t.Fatalf("expected Pokemon, got %q", got)
	}
}

func TestGuessCategory_BlackBorderWithVariedSamplesIsMagic(t *testing.T) {
	// Left edge black, the other samples distinct dark shades: blackish
	// plus at least three distinct colors routes to Magic.
	img := solidImage(color.NRGBA{R: 30, G: 30, B: 30, A: 255}, 50, 50)
	for y := 0; y < 50; y++ {
		for x := 0; x < 15; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 5, G: 5, B: 5, A: 255})
		}
	}
	for x := 0; x < 50; x++ {
		for y := 0; y < 15; y++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 18, G: 18, B: 18, A: 255})
		}
	}

	if got := GuessCategory(img); got != card.CategoryMagic {
		t.Fatalf("expected Magic, got %q", got)
	}
}

func TestGuessCategory_UniformBlackIsGeneric(t *testing.T) {
	// All four samples are blackish but identical, so the distinct-color
	// requirement fails and the guess stays generic.
	img := solidImage(color.NRGBA{R: 5, G: 5, B: 5, A: 255}, 50, 50)

	if got := GuessCategory(img); got != card.CategoryGeneric {
		t.Fatalf("expected Trading Card, got %q", got)
	}
}

func TestGuessCategory_WhiteBorderIsGeneric(t *testing.T) {
	img := solidImage(color.NRGBA{R: 240, G: 240, B: 240, A: 255}, 50, 50)

	if got := GuessCategory(img); got != card.CategoryGeneric {
		t.Fatalf("expected Trading Card, got %q", got)
	}
}

func TestGuessCategory_LargeImageIsDownsampled(t *testing.T) {
	img := solidImage(color.NRGBA{R: 250, G: 210, B: 60, A: 255}, 1080, 1512)

	if got := GuessCategory(img); got != card.CategoryPokemon {
		t.Fatalf("expected Pokemon after downsampling, got %q", got)
	}
}
