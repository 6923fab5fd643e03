package render

import (
	"errors"
	"image"
	"sync"
)

// ErrSurfaceUnavailable is returned by Acquire when there is nothing to draw
// on yet. The frame is skipped.
var ErrSurfaceUnavailable = errors.New("surface unavailable")

// SurfaceHolder hands out a surface for one frame and takes it back when the
// frame is done.
type SurfaceHolder interface {
	Acquire() (Surface, error)
	Present(Surface) error
}

// BufferHolder is a software SurfaceHolder. Frames are drawn into a back
// buffer and copied to the front image on Present.
type BufferHolder struct {
	fonts *FontSet

	mu        sync.Mutex
	width     int
	height    int
	back      *RasterSurface
	front     *image.RGBA
	acquired  bool
	presented int64
}

// NewBufferHolder returns a holder for width x height frames. A zero size
// leaves it unavailable until Resize.
func NewBufferHolder(width, height int, fonts *FontSet) *BufferHolder {
	if fonts == nil {
		fonts = DefaultFontSet()
	}
	return &BufferHolder{fonts: fonts, width: width, height: height}
}

// Resize changes the size of subsequent frames. The last presented frame is
// kept until a new one replaces it.
func (b *BufferHolder) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
}

// Size returns the current frame size.
func (b *BufferHolder) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// Acquire implements SurfaceHolder. Only one surface is out at a time.
func (b *BufferHolder) Acquire() (Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.width <= 0 || b.height <= 0 || b.acquired {
		return nil, ErrSurfaceUnavailable
	}
	if b.back == nil {
		b.back = NewRasterSurface(b.width, b.height, b.fonts)
	} else {
		b.back.Resize(b.width, b.height)
	}
	b.acquired = true
	return b.back, nil
}

// Present implements SurfaceHolder.
func (b *BufferHolder) Present(s Surface) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.acquired || s != Surface(b.back) {
		return errors.New("present of a surface that was not acquired")
	}
	b.acquired = false

	src := b.back.Image()
	if b.front == nil || b.front.Bounds() != src.Bounds() {
		b.front = image.NewRGBA(src.Bounds())
	}
	copy(b.front.Pix, src.Pix)
	b.presented++
	return nil
}

// Frame returns a copy of the last presented frame, or nil before the first.
func (b *BufferHolder) Frame() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.front == nil {
		return nil
	}
	out := image.NewRGBA(b.front.Bounds())
	copy(out.Pix, b.front.Pix)
	return out
}

// Presented returns the number of frames presented.
func (b *BufferHolder) Presented() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presented
}

// withFront calls fn with the front image under the holder lock. fn must not
// retain the image.
func (b *BufferHolder) withFront(fn func(*image.RGBA)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.front)
}
