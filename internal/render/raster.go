package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/opd-ai/romanclock/internal/clock"
	"github.com/opd-ai/romanclock/internal/settings"
)

// RasterSurface is a software Surface backed by an *image.RGBA. Shapes are
// anti-aliased with x/image/vector.
type RasterSurface struct {
	img   *image.RGBA
	fonts *FontSet
	z     *vector.Rasterizer
}

// NewRasterSurface returns a transparent width x height surface. A nil
// fonts uses DefaultFontSet.
func NewRasterSurface(width, height int, fonts *FontSet) *RasterSurface {
	if fonts == nil {
		fonts = DefaultFontSet()
	}
	width, height = max(width, 1), max(height, 1)
	return &RasterSurface{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		fonts: fonts,
		z:     vector.NewRasterizer(width, height),
	}
}

// Image returns the backing image. It is overwritten by later draws.
func (r *RasterSurface) Image() *image.RGBA {
	return r.img
}

// Resize reallocates the backing image when the size changes.
func (r *RasterSurface) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if b := r.img.Bounds(); b.Dx() == width && b.Dy() == height {
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	r.z.Reset(width, height)
}

// Size implements Surface.
func (r *RasterSurface) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Fill implements Surface.
func (r *RasterSurface) Fill(c settings.ARGB) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
}

// FillGradient implements Surface.
func (r *RasterSurface) FillGradient(from, to settings.ARGB) {
	w, h := r.Size()
	draw.Draw(r.img, r.img.Bounds(), newDiagonalGradient(from, to, w, h), image.Point{}, draw.Src)
}

// DrawImage implements Surface.
func (r *RasterSurface) DrawImage(d *Decoded, box, dst Rect, rotation, alpha float64) {
	if d == nil || d.Image == nil || box.Empty() || dst.Empty() || d.Width <= 0 || d.Height <= 0 {
		return
	}
	alpha = ClampUnit(alpha)
	if alpha == 0 {
		return
	}

	rad := rotation * math.Pi / 180
	sin, cos := math.Sincos(rad)
	cx, cy := box.X+box.W/2, box.Y+box.H/2

	// The mask is the rotated box at the image alpha, so it both clips
	// cropped images and fades them.
	w, h := r.Size()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.z.Reset(w, h)
	r.z.DrawOp = draw.Src
	corners := [4][2]float64{
		{-box.W / 2, -box.H / 2},
		{box.W / 2, -box.H / 2},
		{box.W / 2, box.H / 2},
		{-box.W / 2, box.H / 2},
	}
	for i, p := range corners {
		x := cx + cos*p[0] - sin*p[1]
		y := cy + sin*p[0] + cos*p[1]
		if i == 0 {
			r.z.MoveTo(float32(x), float32(y))
		} else {
			r.z.LineTo(float32(x), float32(y))
		}
	}
	r.z.ClosePath()
	r.z.Draw(mask, mask.Bounds(), image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))}), image.Point{})

	sx := dst.W / float64(d.Width)
	sy := dst.H / float64(d.Height)
	ox := dst.X - box.W/2
	oy := dst.Y - box.H/2
	s2d := f64.Aff3{
		cos * sx, -sin * sy, cx + cos*ox - sin*oy,
		sin * sx, cos * sy, cy + sin*ox + cos*oy,
	}
	draw.BiLinear.Transform(r.img, s2d, d.Image, d.Image.Bounds(), draw.Over, &draw.Options{DstMask: mask})
}

// StrokeCircle implements Surface.
func (r *RasterSurface) StrokeCircle(center clock.Point, radius, width float64, c settings.ARGB) {
	if !(width > 0) || !(radius > 0) {
		return
	}
	outer := radius + width/2
	inner := radius - width/2
	r.begin()
	r.circle(center, outer, false)
	if inner > 0 {
		r.circle(center, inner, true)
	}
	r.paint(c)
}

// FillCircle implements Surface.
func (r *RasterSurface) FillCircle(center clock.Point, radius float64, c settings.ARGB) {
	if !(radius > 0) {
		return
	}
	r.begin()
	r.circle(center, radius, false)
	r.paint(c)
}

// DrawLine implements Surface.
func (r *RasterSurface) DrawLine(from, to clock.Point, width float64, c settings.ARGB) {
	if !(width > 0) {
		return
	}
	half := width / 2
	r.begin()
	dx, dy := to.X-from.X, to.Y-from.Y
	if l := math.Hypot(dx, dy); l > 0 {
		nx, ny := -dy/l*half, dx/l*half
		r.z.MoveTo(float32(from.X-nx), float32(from.Y-ny))
		r.z.LineTo(float32(to.X-nx), float32(to.Y-ny))
		r.z.LineTo(float32(to.X+nx), float32(to.Y+ny))
		r.z.LineTo(float32(from.X+nx), float32(from.Y+ny))
		r.z.ClosePath()
	}
	r.circle(from, half, false)
	r.circle(to, half, false)
	r.paint(c)
}

// DrawText implements Surface. Empty text and text with an unusable size
// are not drawn.
func (r *RasterSurface) DrawText(text string, pos clock.Point, size float64, style FontStyle, c settings.ARGB) error {
	if text == "" || !UsableFontSize(size) {
		return nil
	}
	return r.fonts.DrawCentered(r.img, text, style, size, pos.X, pos.Y, c.NRGBA())
}

func (r *RasterSurface) begin() {
	w, h := r.Size()
	r.z.Reset(w, h)
	r.z.DrawOp = draw.Over
}

func (r *RasterSurface) paint(c settings.ARGB) {
	if c.Alpha() == 0 {
		return
	}
	r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(c.NRGBA()), image.Point{})
}

// circle adds a closed polygonal circle to the path. Overlapping paths of
// the same winding merge; reversed paths cut holes.
func (r *RasterSurface) circle(center clock.Point, radius float64, reverse bool) {
	n := segmentsFor(radius)
	for i := 0; i <= n; i++ {
		t := 2 * math.Pi * float64(i) / float64(n)
		if reverse {
			t = -t
		}
		x := float32(center.X + radius*math.Cos(t))
		y := float32(center.Y + radius*math.Sin(t))
		if i == 0 {
			r.z.MoveTo(x, y)
		} else {
			r.z.LineTo(x, y)
		}
	}
	r.z.ClosePath()
}

func segmentsFor(radius float64) int {
	return min(max(int(radius), 24), 256)
}
