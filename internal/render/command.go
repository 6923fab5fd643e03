package render

import (
	"errors"
	"fmt"

	"github.com/opd-ai/romanclock/internal/clock"
	"github.com/opd-ai/romanclock/internal/settings"
)

// Command is one draw operation of a composed frame. The set of commands is
// closed; Execute dispatches over all of them.
type Command interface {
	command()
}

// FillColor fills the whole canvas.
type FillColor struct {
	Color settings.ARGB
}

// FillGradient fills the canvas with a linear gradient from the top-left
// corner (From) to the bottom-right corner (To).
type FillGradient struct {
	From, To settings.ARGB
}

// DrawImage draws a collage image. Box is the unrotated canvas box; Dst is
// the fit rectangle in box-local coordinates. The image is rotated by
// Rotation degrees about the box center, clipped to the rotated box and
// blended at Alpha.
type DrawImage struct {
	Ref      string
	Image    *Decoded
	Box      Rect
	Dst      Rect
	Rotation float64
	Alpha    float64
}

// StrokeCircle outlines a circle. The stroke is centered on Radius.
type StrokeCircle struct {
	Center clock.Point
	Radius float64
	Width  float64
	Color  settings.ARGB
}

// FillCircle fills a disc.
type FillCircle struct {
	Center clock.Point
	Radius float64
	Color  settings.ARGB
}

// DrawLine draws a segment with round caps.
type DrawLine struct {
	From, To clock.Point
	Width    float64
	Color    settings.ARGB
}

// DrawText draws a line of text horizontally centered on Pos.X with its
// baseline at Pos.Y.
type DrawText struct {
	Text  string
	Pos   clock.Point
	Size  float64
	Style FontStyle
	Color settings.ARGB
}

func (FillColor) command()    {}
func (FillGradient) command() {}
func (DrawImage) command()    {}
func (StrokeCircle) command() {}
func (FillCircle) command()   {}
func (DrawLine) command()     {}
func (DrawText) command()     {}

// Surface is the drawing target of a frame.
type Surface interface {
	Size() (width, height int)
	Fill(c settings.ARGB)
	FillGradient(from, to settings.ARGB)
	DrawImage(d *Decoded, box, dst Rect, rotation, alpha float64)
	StrokeCircle(center clock.Point, radius, width float64, c settings.ARGB)
	FillCircle(center clock.Point, radius float64, c settings.ARGB)
	DrawLine(from, to clock.Point, width float64, c settings.ARGB)
	DrawText(text string, pos clock.Point, size float64, style FontStyle, c settings.ARGB) error
}

// Execute runs cmds on s in order. A failed text draw does not stop the
// frame; its error is returned with the others once every command has run.
func Execute(s Surface, cmds []Command) error {
	var errs []error
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case FillColor:
			s.Fill(c.Color)
		case FillGradient:
			s.FillGradient(c.From, c.To)
		case DrawImage:
			s.DrawImage(c.Image, c.Box, c.Dst, c.Rotation, c.Alpha)
		case StrokeCircle:
			s.StrokeCircle(c.Center, c.Radius, c.Width, c.Color)
		case FillCircle:
			s.FillCircle(c.Center, c.Radius, c.Color)
		case DrawLine:
			s.DrawLine(c.From, c.To, c.Width, c.Color)
		case DrawText:
			if err := s.DrawText(c.Text, c.Pos, c.Size, c.Style, c.Color); err != nil {
				errs = append(errs, fmt.Errorf("draw text %q: %w", c.Text, err))
			}
		default:
			return fmt.Errorf("unknown draw command %T", cmd)
		}
	}
	return errors.Join(errs...)
}
