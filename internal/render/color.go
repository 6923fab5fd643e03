package render

import (
	"image"
	"image/color"
	"math"

	"github.com/opd-ai/romanclock/internal/settings"
)

// ClampUnit clamps v to [0, 1]. NaN maps to 0.
func ClampUnit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Blend linearly interpolates between two colors channel by channel,
// alpha included. ratio is clamped to [0, 1].
func Blend(c1, c2 color.NRGBA, ratio float64) color.NRGBA {
	ratio = ClampUnit(ratio)
	return color.NRGBA{
		R: blendChannel(c1.R, c2.R, ratio),
		G: blendChannel(c1.G, c2.G, ratio),
		B: blendChannel(c1.B, c2.B, ratio),
		A: blendChannel(c1.A, c2.A, ratio),
	}
}

func blendChannel(a, b uint8, ratio float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*ratio))
}

// diagonalGradient is an image.Image shading a w x h canvas from its
// top-left corner (from) to its bottom-right corner (to). Points beyond the
// ends are clamped.
type diagonalGradient struct {
	from, to color.NRGBA
	w, h     float64
}

func newDiagonalGradient(from, to settings.ARGB, w, h int) *diagonalGradient {
	return &diagonalGradient{from: from.NRGBA(), to: to.NRGBA(), w: float64(w), h: float64(h)}
}

func (g *diagonalGradient) ColorModel() color.Model { return color.NRGBAModel }

func (g *diagonalGradient) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (g *diagonalGradient) At(x, y int) color.Color {
	return Blend(g.from, g.to, g.position(float64(x)+0.5, float64(y)+0.5))
}

// position projects (x, y) onto the diagonal, 0 at the top-left corner and
// 1 at the bottom-right.
func (g *diagonalGradient) position(x, y float64) float64 {
	den := g.w*g.w + g.h*g.h
	if den == 0 {
		return 0
	}
	return (x*g.w + y*g.h) / den
}
