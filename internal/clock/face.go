// Package clock computes the geometry of the Roman numeral clock face:
// hand angles and endpoints, numeral positions, and the date/day anchors.
//
// Angles are in degrees, measured clockwise from the positive X axis in
// screen coordinates (Y grows downward). Every angle carries a -90 offset so
// that 0 on the dial (12 o'clock) is -90.
package clock

import (
	"math"
	"time"

	"github.com/opd-ai/romanclock/internal/settings"
)

// Numerals lists the dial labels clockwise from 12 o'clock.
var Numerals = [12]string{"XII", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI"}

// Text formats for the date and day lines.
const (
	DateLayout = "Jan 02, 2006"
	DayLayout  = "Monday"
)

// Offsets of the date/day block below the clock radius, in pixels.
const (
	dateOffset = 60
	dayGap     = 25
)

// Point is a position in canvas pixels.
type Point struct {
	X, Y float64
}

// Polar returns the point at distance r and angle deg from p.
func (p Point) Polar(deg, r float64) Point {
	rad := deg * math.Pi / 180
	return Point{X: p.X + math.Cos(rad)*r, Y: p.Y + math.Sin(rad)*r}
}

// Hand is one clock hand, drawn from the center to End.
type Hand struct {
	Angle  float64
	Length float64
	End    Point
}

// Numeral is one dial label. Pos is the horizontal center of the text on the
// numeral circle; the text baseline sits Baseline pixels below Pos.
type Numeral struct {
	Text     string
	Angle    float64
	Pos      Point
	Baseline float64
}

// TextAnchor is a horizontally centered text line. Pos is the baseline origin.
type TextAnchor struct {
	Text    string
	Pos     Point
	Visible bool
}

// Face is the computed geometry for one frame.
type Face struct {
	Center      Point
	ClockRadius float64
	// InnerRadius governs numeral placement and every hand length.
	InnerRadius float64

	Hour   Hand
	Minute Hand
	Second Hand

	Numerals [12]Numeral
	Date     TextAnchor
	Day      TextAnchor
}

// HourAngle returns the hour hand angle for now, in [-90, 270).
// The hand advances once per minute.
func HourAngle(now time.Time) float64 {
	return (float64(now.Hour()%12)+float64(now.Minute())/60)*30 - 90
}

// MinuteAngle returns the minute hand angle for now. The hand moves in
// whole-minute steps.
func MinuteAngle(now time.Time) float64 {
	return float64(now.Minute())*6 - 90
}

// SecondAngle returns the second hand angle for now with millisecond
// resolution.
func SecondAngle(now time.Time) float64 {
	ms := now.Nanosecond() / int(time.Millisecond)
	return (float64(now.Second())+float64(ms)/1000)*6 - 90
}

// Radius returns the clock radius for a canvas whose half smaller dimension
// is baseRadius.
func Radius(baseRadius float64, s settings.WallpaperSettings) float64 {
	return baseRadius * s.ClockSize * 0.6
}

// InnerRadius returns the radius that numerals and hands are laid out on.
func InnerRadius(clockRadius float64, s settings.WallpaperSettings) float64 {
	r := clockRadius - s.NumeralSize/3
	if s.ShowBorder {
		r -= s.BorderWidth / 2
	}
	return r
}

// ComputeFace returns the face geometry for now. The result is a pure
// function of its arguments.
func ComputeFace(now time.Time, center Point, baseRadius float64, s settings.WallpaperSettings) Face {
	radius := Radius(baseRadius, s)
	inner := InnerRadius(radius, s)

	f := Face{
		Center:      center,
		ClockRadius: radius,
		InnerRadius: inner,
		Hour:        hand(center, HourAngle(now), inner*0.5),
		Minute:      hand(center, MinuteAngle(now), inner*0.7),
		Second:      hand(center, SecondAngle(now), inner*0.85),
	}

	for i, text := range Numerals {
		angle := float64(i*30 - 90)
		f.Numerals[i] = Numeral{
			Text:     text,
			Angle:    angle,
			Pos:      center.Polar(angle, inner*0.9),
			Baseline: s.NumeralSize / 3,
		}
	}

	anchor := Point{X: center.X, Y: center.Y + radius + dateOffset}
	if s.ShowDate {
		f.Date = TextAnchor{Text: now.Format(DateLayout), Pos: anchor, Visible: true}
		anchor.Y += s.DateSize + dayGap
	}
	if s.ShowDay {
		f.Day = TextAnchor{Text: now.Format(DayLayout), Pos: anchor, Visible: true}
	}
	return f
}

func hand(center Point, angle, length float64) Hand {
	return Hand{Angle: angle, Length: length, End: center.Polar(angle, length)}
}
