// Package collage arranges collage images on the canvas. All positions and
// sizes are fractions of the canvas dimensions; every function returns a new
// slice and leaves its input untouched.
package collage

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/opd-ai/romanclock/internal/settings"
)

// MinImageSize is the smallest width or height a generated layout assigns.
// SPIRAL shrinks images by 0.01 per index and would otherwise reach zero.
const MinImageSize = 0.02

type tile struct {
	x, y, w, h float64
}

// masonryTiles are the hand-placed MASONRY cells, cycled by index mod 5.
var masonryTiles = [5]tile{
	{0.05, 0.05, 0.45, 0.25},
	{0.55, 0.05, 0.40, 0.35},
	{0.05, 0.35, 0.35, 0.30},
	{0.45, 0.45, 0.50, 0.25},
	{0.05, 0.70, 0.40, 0.25},
}

// ApplyLayout places images according to kind. URI, ZIndex and ScaleType
// are preserved; only geometric fields change, except RANDOM which also
// samples opacity. rng is used by RANDOM only; nil means a time-seeded source.
func ApplyLayout(images []settings.CollageImage, kind settings.CollageLayout, rng *rand.Rand) []settings.CollageImage {
	out := make([]settings.CollageImage, len(images))
	copy(out, images)
	if len(out) == 0 {
		return out
	}
	if kind == settings.LayoutRandom && rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>32|1))
	}

	n := len(out)
	for i := range out {
		img := &out[i]
		switch kind {
		case settings.LayoutGrid:
			row, col := i/3, i%3
			img.X = 0.05 + float64(col)*0.30
			img.Y = 0.05 + float64(row)*0.30
			img.Width, img.Height = 0.25, 0.25
			img.Rotation = 0

		case settings.LayoutMasonry:
			t := masonryTiles[i%len(masonryTiles)]
			img.X, img.Y, img.Width, img.Height = t.x, t.y, t.w, t.h
			img.Rotation = float64((i * 5) % 15)

		case settings.LayoutCenterFocus:
			if i == 0 {
				img.X, img.Y = 0.25, 0.25
				img.Width, img.Height = 0.5, 0.5
				img.Rotation = 0
				continue
			}
			// n >= 2 here; a single image never reaches the ring.
			deg := float64(i-1) * 360 / float64(n-1)
			placeOnCircle(img, deg*math.Pi/180, 0.35, 0.2)
			img.Rotation = deg

		case settings.LayoutSpiral:
			angle := float64(i) * 0.5
			size := max(0.2-float64(i)*0.01, MinImageSize)
			placeOnCircle(img, angle, 0.1+float64(i)*0.03, size)
			img.Width, img.Height = size, size
			img.Rotation = angle * 180 / math.Pi * 2

		case settings.LayoutRandom:
			img.X = float64(rng.IntN(71)) / 100
			img.Y = float64(rng.IntN(71)) / 100
			img.Width = 0.15 + float64(rng.IntN(16))/100
			img.Height = 0.15 + float64(rng.IntN(16))/100
			img.Rotation = float64(rng.IntN(360))
			img.Opacity = 0.6 + float64(rng.IntN(41))/100
		}
	}
	return out
}

// placeOnCircle positions img on a circle about the canvas center. The
// top-left corner is offset by a fixed 0.1 so that 0.2-sized tiles are
// centered on the circle.
func placeOnCircle(img *settings.CollageImage, angle, radius, size float64) {
	img.X = 0.5 + radius*math.Cos(angle) - 0.1
	img.Y = 0.5 + radius*math.Sin(angle) - 0.1
	img.Width, img.Height = size, size
}
