package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"sync/atomic"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// DefaultDownsampleFactor is the subsampling applied to every decoded image.
const DefaultDownsampleFactor = 2

var (
	// ErrImageUnavailable wraps every open or decode failure.
	ErrImageUnavailable = errors.New("image unavailable")
	// ErrDecodePending means the decode did not finish before the caller's
	// deadline. It keeps running and a later Get may hit.
	ErrDecodePending = errors.New("image decode pending")
	// ErrCacheReleased is returned by Get after ReleaseAll.
	ErrCacheReleased = errors.New("image cache released")
)

// Decoded is a decoded, subsampled image ready for drawing.
type Decoded struct {
	Image *image.RGBA
	// Width and Height are the subsampled pixel dimensions.
	Width, Height int
	// SourceWidth and SourceHeight are the dimensions before subsampling.
	SourceWidth, SourceHeight int
}

// Aspect returns width divided by height.
func (d *Decoded) Aspect() float64 {
	return float64(d.Width) / float64(d.Height)
}

// CacheStats summarizes cache activity.
type CacheStats struct {
	Hits     int64
	Misses   int64
	Failures int64
	Entries  int
}

// CacheOption configures an ImageCache.
type CacheOption func(*ImageCache)

// WithDownsampleFactor sets the subsampling factor; values below 1 mean 1.
func WithDownsampleFactor(n int) CacheOption {
	return func(c *ImageCache) {
		c.factor = max(1, n)
	}
}

// ImageCache decodes images on first use and keeps them until released.
// It belongs to exactly one surface session: once ReleaseAll has run the
// cache is spent and a new session must build a new one.
type ImageCache struct {
	source ImageSource
	factor int
	group  singleflight.Group

	mu       sync.Mutex
	entries  map[string]*Decoded
	released bool

	hits, misses, failures atomic.Int64
}

// NewImageCache returns an empty cache reading from source.
func NewImageCache(source ImageSource, opts ...CacheOption) *ImageCache {
	c := &ImageCache{
		source:  source,
		factor:  DefaultDownsampleFactor,
		entries: make(map[string]*Decoded),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the decoded image for ref, decoding it on a miss. Concurrent
// misses for the same ref share one decode. If ctx ends first, Get returns
// ErrDecodePending (deadline) or the context error, while the decode
// continues in the background and stores its result for a later call.
// Failures are never cached.
func (c *ImageCache) Get(ctx context.Context, ref string) (*Decoded, error) {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil, ErrCacheReleased
	}
	if d, ok := c.entries[ref]; ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return d, nil
	}
	c.mu.Unlock()
	c.misses.Add(1)

	ch := c.group.DoChan(ref, func() (any, error) {
		d, err := c.decode(ref)
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}
		c.store(ref, d)
		return d, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Decoded), nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrDecodePending, ref)
		}
		return nil, ctx.Err()
	}
}

func (c *ImageCache) store(ref string, d *Decoded) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.entries[ref] = d
}

func (c *ImageCache) decode(ref string) (*Decoded, error) {
	rc, err := c.source.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageUnavailable, ref, err)
	}
	defer rc.Close()

	src, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageUnavailable, ref, err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: %s: empty image", ErrImageUnavailable, ref)
	}

	w, h := max(1, b.Dx()/c.factor), max(1, b.Dy()/c.factor)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if c.factor == 1 {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	return &Decoded{Image: dst, Width: w, Height: h, SourceWidth: b.Dx(), SourceHeight: b.Dy()}, nil
}

// Remove evicts one entry.
func (c *ImageCache) Remove(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ref)
}

// ReleaseAll drops every entry and marks the cache released. Decodes still
// in flight are discarded when they finish. Calling it again is a no-op.
func (c *ImageCache) ReleaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = true
	clear(c.entries)
}

// Released reports whether ReleaseAll has been called.
func (c *ImageCache) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *ImageCache) Stats() CacheStats {
	return CacheStats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Failures: c.failures.Load(),
		Entries:  c.Len(),
	}
}
