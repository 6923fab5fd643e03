package collage

import (
	"math"
	"slices"

	"github.com/opd-ai/romanclock/internal/settings"
)

// NewImages creates placed images for newly imported refs. Placement cycles
// through a 3x3 grid with small size, tilt and opacity variations. startIndex
// is the number of images already in the collage; zIndex continues from it.
func NewImages(uris []string, startIndex int) []settings.CollageImage {
	out := make([]settings.CollageImage, 0, len(uris))
	for k, uri := range uris {
		i := startIndex + k
		pos := i % 9
		row, col := pos/3, pos%3
		size := 0.25 + float64(i%3)*0.05

		img := settings.NewCollageImage(uri)
		img.X = 0.05 + float64(col)*0.3
		img.Y = 0.05 + float64(row)*0.3
		img.Width, img.Height = size, size
		img.Rotation = float64((i * 5) % 360)
		img.ZIndex = i
		img.Opacity = 0.8 + float64(i%3)*0.05
		out = append(out, img)
	}
	return out
}

// Append adds images for uris after the existing ones.
func Append(images []settings.CollageImage, uris ...string) []settings.CollageImage {
	return append(slices.Clone(images), NewImages(uris, len(images))...)
}

// Replace swaps the image whose URI matches updated.URI. If none matches the
// list is returned unchanged.
func Replace(images []settings.CollageImage, updated settings.CollageImage) []settings.CollageImage {
	out := slices.Clone(images)
	for i := range out {
		if out[i].URI == updated.URI {
			out[i] = updated
		}
	}
	return out
}

// Remove drops every image with the given URI.
func Remove(images []settings.CollageImage, uri string) []settings.CollageImage {
	return slices.DeleteFunc(slices.Clone(images), func(img settings.CollageImage) bool {
		return img.URI == uri
	})
}

// BringToFront raises the image with the given URI above all others.
func BringToFront(images []settings.CollageImage, uri string) []settings.CollageImage {
	top := math.MinInt
	for _, img := range images {
		top = max(top, img.ZIndex)
	}
	out := slices.Clone(images)
	for i := range out {
		if out[i].URI == uri {
			out[i].ZIndex = top + 1
		}
	}
	return out
}

// SetOpacityAll sets every image's opacity, clamped to [0, 1].
func SetOpacityAll(images []settings.CollageImage, opacity float64) []settings.CollageImage {
	opacity = max(0, min(1, opacity))
	out := slices.Clone(images)
	for i := range out {
		out[i].Opacity = opacity
	}
	return out
}

// RotateBy adds deg to every image's rotation, normalized to [0, 360).
func RotateBy(images []settings.CollageImage, deg float64) []settings.CollageImage {
	out := slices.Clone(images)
	for i := range out {
		r := math.Mod(out[i].Rotation+deg, 360)
		if r < 0 {
			r += 360
		}
		out[i].Rotation = r
	}
	return out
}

// SortedByZ returns the images in paint order: ascending zIndex, with ties
// kept in list order.
func SortedByZ(images []settings.CollageImage) []settings.CollageImage {
	out := slices.Clone(images)
	slices.SortStableFunc(out, func(a, b settings.CollageImage) int {
		return a.ZIndex - b.ZIndex
	})
	return out
}
