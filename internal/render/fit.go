package render

import (
	"math"

	"github.com/opd-ai/romanclock/internal/settings"
)

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether the rectangle has no area or is not finite.
func (r Rect) Empty() bool {
	return !(r.W > 0 && r.H > 0) || math.IsInf(r.W, 0) || math.IsInf(r.H, 0)
}

// ComputeFitRect maps an image of the given aspect ratio (width/height) into
// a box of boxW x boxH. The result is in box-local coordinates with the
// origin at the box's top-left corner and may extend past the box for
// CENTER_CROP. ORIGINAL needs native dimensions and is treated as
// CENTER_INSIDE here; use FitRectForImage for it.
//
// The second result is false when the aspect ratio is not a positive finite
// number or the box is empty; the image must then be skipped.
func ComputeFitRect(aspect, boxW, boxH float64, policy settings.ScaleType) (Rect, bool) {
	if !(aspect > 0) || math.IsInf(aspect, 0) || (Rect{W: boxW, H: boxH}).Empty() {
		return Rect{}, false
	}
	boxAspect := boxW / boxH

	switch policy {
	case settings.ScaleCenterCrop:
		if aspect > boxAspect {
			w := boxH * aspect
			return Rect{X: (boxW - w) / 2, Y: 0, W: w, H: boxH}, true
		}
		h := boxW / aspect
		return Rect{X: 0, Y: (boxH - h) / 2, W: boxW, H: h}, true

	default: // CENTER_INSIDE, FIT_CENTER, ORIGINAL without native size
		if aspect > boxAspect {
			h := boxW / aspect
			return Rect{X: 0, Y: (boxH - h) / 2, W: boxW, H: h}, true
		}
		w := boxH * aspect
		return Rect{X: (boxW - w) / 2, Y: 0, W: w, H: boxH}, true
	}
}

// FitRectForImage is ComputeFitRect for an image of imgW x imgH pixels.
// ORIGINAL keeps the native size, clamped on each axis to the box, centered.
func FitRectForImage(imgW, imgH int, boxW, boxH float64, policy settings.ScaleType) (Rect, bool) {
	if imgW <= 0 || imgH <= 0 {
		return Rect{}, false
	}
	if policy != settings.ScaleOriginal {
		return ComputeFitRect(float64(imgW)/float64(imgH), boxW, boxH, policy)
	}
	if (Rect{W: boxW, H: boxH}).Empty() {
		return Rect{}, false
	}
	w := math.Min(boxW, float64(imgW))
	h := math.Min(boxH, float64(imgH))
	return Rect{X: (boxW - w) / 2, Y: (boxH - h) / 2, W: w, H: h}, true
}
