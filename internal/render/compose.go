package render

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/opd-ai/romanclock/internal/clock"
	"github.com/opd-ai/romanclock/internal/collage"
	"github.com/opd-ai/romanclock/internal/settings"
)

// DefaultDecodeBudget bounds how long one frame waits for image decodes.
const DefaultDecodeBudget = 50 * time.Millisecond

// ImageLookup resolves a reference to a decoded image. A false result
// skips the image for this frame.
type ImageLookup func(ref string) (*Decoded, bool)

// Compose returns the draw commands for one frame. It is a pure function of
// its arguments. The order is fixed: background, collage images by
// ascending zIndex, border, numerals, hour, minute and second hands, center
// ring, center knob, date and day.
func Compose(s settings.WallpaperSettings, now time.Time, width, height int, lookup ImageLookup) []Command {
	w, h := float64(width), float64(height)
	cmds := make([]Command, 0, 24+len(s.CollageImages))

	switch s.BackgroundType {
	case settings.BackgroundGradient:
		cmds = append(cmds, FillGradient{From: s.GradientStartColor, To: s.GradientEndColor})
	case settings.BackgroundCollage:
		cmds = append(cmds, FillColor{Color: s.BackgroundColor})
		cmds = appendCollage(cmds, s, w, h, lookup)
	default:
		cmds = append(cmds, FillColor{Color: s.BackgroundColor})
	}

	center := clock.Point{X: w / 2, Y: h / 2}
	face := clock.ComputeFace(now, center, math.Min(center.X, center.Y), s)

	if s.ShowBorder {
		cmds = append(cmds, StrokeCircle{Center: center, Radius: face.ClockRadius, Width: s.BorderWidth, Color: s.BorderColor})
	}
	if s.ShowNumerals {
		for _, n := range face.Numerals {
			cmds = append(cmds, DrawText{
				Text:  n.Text,
				Pos:   clock.Point{X: n.Pos.X, Y: n.Pos.Y + n.Baseline},
				Size:  s.NumeralSize,
				Style: StyleNumeral,
				Color: s.NumeralColor,
			})
		}
	}

	cmds = append(cmds,
		DrawLine{From: center, To: face.Hour.End, Width: s.HourHandWidth, Color: s.HourHandColor},
		DrawLine{From: center, To: face.Minute.End, Width: s.MinuteHandWidth, Color: s.MinuteHandColor},
	)
	if s.ShowSecondHand {
		cmds = append(cmds, DrawLine{From: center, To: face.Second.End, Width: s.SecondHandWidth, Color: s.SecondHandColor})
	}

	cmds = append(cmds,
		StrokeCircle{Center: center, Radius: s.CenterKnobRadius + s.CenterRingWidth, Width: s.CenterRingWidth, Color: s.CenterRingColor},
		StrokeCircle{Center: center, Radius: s.CenterKnobRadius - s.CenterRingWidth, Width: s.CenterRingWidth / 2, Color: s.CenterRingColor},
		FillCircle{Center: center, Radius: s.CenterKnobRadius, Color: s.CenterKnobColor},
	)

	if face.Date.Visible {
		cmds = append(cmds, DrawText{Text: face.Date.Text, Pos: face.Date.Pos, Size: s.DateSize, Style: StyleLabel, Color: s.DateColor})
	}
	if face.Day.Visible {
		cmds = append(cmds, DrawText{Text: face.Day.Text, Pos: face.Day.Pos, Size: s.DaySize, Style: StyleLabel, Color: s.DayColor})
	}
	return cmds
}

func appendCollage(cmds []Command, s settings.WallpaperSettings, w, h float64, lookup ImageLookup) []Command {
	if lookup == nil {
		return cmds
	}
	for _, img := range collage.SortedByZ(s.CollageImages) {
		box := Rect{X: img.X * w, Y: img.Y * h, W: img.Width * w, H: img.Height * h}
		if box.Empty() {
			continue
		}
		alpha := ClampUnit(img.Opacity * s.CollageOpacity)
		if alpha == 0 {
			continue
		}
		d, ok := lookup(img.URI)
		if !ok || d == nil {
			continue
		}
		dst, ok := FitRectForImage(d.Width, d.Height, box.W, box.H, img.ScaleType)
		if !ok {
			continue
		}
		cmds = append(cmds, DrawImage{
			Ref:      img.URI,
			Image:    d,
			Box:      box,
			Dst:      dst,
			Rotation: math.Mod(img.Rotation, 360),
			Alpha:    alpha,
		})
	}
	return cmds
}

// SkippedImage records a collage image left out of a frame.
type SkippedImage struct {
	Ref string
	Err error
}

// FrameReport describes one composed frame.
type FrameReport struct {
	Commands int
	Images   int
	Skipped  []SkippedImage
	Duration time.Duration
}

// Compositor renders frames for one surface session, resolving collage
// images through the session's cache.
type Compositor struct {
	cache   *ImageCache
	budget  time.Duration
	metrics *FrameMetrics
}

// NewCompositor returns a compositor reading images from cache. A
// non-positive budget means DefaultDecodeBudget.
func NewCompositor(cache *ImageCache, budget time.Duration, metrics *FrameMetrics) *Compositor {
	if budget <= 0 {
		budget = DefaultDecodeBudget
	}
	return &Compositor{cache: cache, budget: budget, metrics: metrics}
}

// Cache returns the session cache.
func (c *Compositor) Cache() *ImageCache {
	return c.cache
}

// Frame composes and draws one frame onto surface. Images that are not
// decoded within the frame's budget, or fail to decode, are skipped and
// listed in the report; they never fail the frame.
func (c *Compositor) Frame(ctx context.Context, surface Surface, s settings.WallpaperSettings, now time.Time) (FrameReport, error) {
	start := time.Now()
	var report FrameReport

	resolved := c.resolve(ctx, s, &report)
	lookup := func(ref string) (*Decoded, bool) {
		d, ok := resolved[ref]
		return d, ok
	}

	w, h := surface.Size()
	cmds := Compose(s, now, w, h, lookup)
	report.Commands = len(cmds)
	for _, cmd := range cmds {
		if _, ok := cmd.(DrawImage); ok {
			report.Images++
		}
	}

	err := Execute(surface, cmds)
	report.Duration = time.Since(start)
	if c.metrics != nil {
		c.metrics.RecordFrame(report.Duration)
	}
	return report, err
}

func (c *Compositor) resolve(ctx context.Context, s settings.WallpaperSettings, report *FrameReport) map[string]*Decoded {
	if s.BackgroundType != settings.BackgroundCollage || len(s.CollageImages) == 0 || c.cache == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	resolved := make(map[string]*Decoded, len(s.CollageImages))
	tried := make(map[string]bool, len(s.CollageImages))
	for _, img := range s.CollageImages {
		if tried[img.URI] {
			continue
		}
		tried[img.URI] = true
		d, err := c.cache.Get(ctx, img.URI)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedImage{Ref: img.URI, Err: err})
			if errors.Is(err, ErrCacheReleased) {
				break
			}
			continue
		}
		resolved[img.URI] = d
	}
	return resolved
}
