package clock

import (
	"math"
	"testing"
	"time"

	"github.com/opd-ai/romanclock/internal/settings"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func at(h, m, s, ms int) time.Time {
	return time.Date(2024, time.March, 5, h, m, s, ms*int(time.Millisecond), time.UTC)
}

func TestAnglesAtMidnight(t *testing.T) {
	now := at(0, 0, 0, 0)
	for name, got := range map[string]float64{
		"hour":   HourAngle(now),
		"minute": MinuteAngle(now),
		"second": SecondAngle(now),
	} {
		if got != -90 {
			t.Errorf("%s angle at 00:00:00 = %v, want -90", name, got)
		}
	}
	if HourAngle(at(12, 0, 0, 0)) != -90 {
		t.Error("noon should point to 12")
	}
}

func TestAngles(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		hour float64
		min  float64
		sec  float64
	}{
		{"quarter past three", at(3, 15, 0, 0), 3.25*30 - 90, 0, -90},
		{"half past nine pm", at(21, 30, 45, 500), 9.5*30 - 90, 90, 45.5*6 - 90},
		{"just before midnight", at(23, 59, 59, 999), (11+59.0/60)*30 - 90, 59*6 - 90, 59.999*6 - 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HourAngle(tt.now); !near(got, tt.hour) {
				t.Errorf("HourAngle = %v, want %v", got, tt.hour)
			}
			if got := MinuteAngle(tt.now); !near(got, tt.min) {
				t.Errorf("MinuteAngle = %v, want %v", got, tt.min)
			}
			if got := SecondAngle(tt.now); !near(got, tt.sec) {
				t.Errorf("SecondAngle = %v, want %v", got, tt.sec)
			}
		})
	}
}

func TestHourAngleRangeAndMonotonic(t *testing.T) {
	start := at(0, 0, 0, 0)
	prev := HourAngle(start)
	for m := 1; m < 12*60; m++ {
		got := HourAngle(start.Add(time.Duration(m) * time.Minute))
		if got < -90 || got >= 270 {
			t.Fatalf("minute %d: angle %v out of [-90, 270)", m, got)
		}
		if got <= prev {
			t.Fatalf("minute %d: angle %v did not advance past %v", m, got, prev)
		}
		prev = got
	}
}

func TestComputeFaceRadii(t *testing.T) {
	s := settings.Default()
	f := ComputeFace(at(10, 10, 30, 0), Point{X: 540, Y: 960}, 540, s)

	wantRadius := 540 * 0.8 * 0.6
	if !near(f.ClockRadius, wantRadius) {
		t.Errorf("ClockRadius = %v, want %v", f.ClockRadius, wantRadius)
	}
	wantInner := wantRadius - 10.0/2 - 42.0/3
	if !near(f.InnerRadius, wantInner) {
		t.Errorf("InnerRadius = %v, want %v", f.InnerRadius, wantInner)
	}
	if !near(f.Hour.Length, wantInner*0.5) || !near(f.Minute.Length, wantInner*0.7) || !near(f.Second.Length, wantInner*0.85) {
		t.Errorf("hand lengths %v/%v/%v", f.Hour.Length, f.Minute.Length, f.Second.Length)
	}

	noBorder := s.With(func(s *settings.WallpaperSettings) { s.ShowBorder = false })
	g := ComputeFace(at(10, 10, 30, 0), Point{X: 540, Y: 960}, 540, noBorder)
	if !near(g.InnerRadius, wantRadius-42.0/3) {
		t.Errorf("InnerRadius without border = %v", g.InnerRadius)
	}
}

func TestHandEndpoints(t *testing.T) {
	c := Point{X: 100, Y: 100}
	f := ComputeFace(at(3, 0, 30, 0), c, 200, settings.Default())
	// 3:00 points right, minute at 12 points up, 30s points down.
	if !near(f.Hour.End.Y, c.Y) || f.Hour.End.X <= c.X {
		t.Errorf("hour end %+v should be right of center", f.Hour.End)
	}
	if !near(f.Minute.End.X, c.X) || f.Minute.End.Y >= c.Y {
		t.Errorf("minute end %+v should be above center", f.Minute.End)
	}
	if !near(f.Second.End.X, c.X) || f.Second.End.Y <= c.Y {
		t.Errorf("second end %+v should be below center", f.Second.End)
	}
}

func TestNumerals(t *testing.T) {
	c := Point{X: 300, Y: 400}
	for _, s := range []settings.WallpaperSettings{
		settings.Default(),
		settings.Default().With(func(s *settings.WallpaperSettings) { s.NumeralSize = 90; s.BorderWidth = 30 }),
		settings.Default().With(func(s *settings.WallpaperSettings) { s.ShowBorder = false }),
	} {
		f := ComputeFace(at(1, 2, 3, 0), c, 300, s)
		xii := f.Numerals[0]
		if xii.Text != "XII" || xii.Angle != -90 {
			t.Errorf("first numeral %q at %v", xii.Text, xii.Angle)
		}
		if !near(xii.Pos.X, c.X) || !near(xii.Pos.Y, c.Y-f.InnerRadius*0.9) {
			t.Errorf("XII at %+v, want directly above center", xii.Pos)
		}
		if !near(xii.Baseline, s.NumeralSize/3) {
			t.Errorf("baseline %v", xii.Baseline)
		}
		if f.Numerals[3].Text != "III" || f.Numerals[3].Angle != 0 {
			t.Errorf("numeral 3 = %q at %v", f.Numerals[3].Text, f.Numerals[3].Angle)
		}
	}
}

func TestDateAndDayAnchors(t *testing.T) {
	c := Point{X: 200, Y: 300}
	now := at(8, 0, 0, 0)
	base := settings.Default()
	radius := Radius(200, base)

	tests := []struct {
		name       string
		date, day  bool
		wantDateY  float64
		wantDayY   float64
		dateHidden bool
		dayHidden  bool
	}{
		{"both", true, true, c.Y + radius + 60, c.Y + radius + 60 + 36 + 25, false, false},
		{"day only", false, true, 0, c.Y + radius + 60, true, false},
		{"date only", true, false, c.Y + radius + 60, 0, false, true},
		{"neither", false, false, 0, 0, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base.With(func(s *settings.WallpaperSettings) { s.ShowDate, s.ShowDay = tt.date, tt.day })
			f := ComputeFace(now, c, 200, s)
			if f.Date.Visible == tt.dateHidden || f.Day.Visible == tt.dayHidden {
				t.Fatalf("visibility date=%v day=%v", f.Date.Visible, f.Day.Visible)
			}
			if f.Date.Visible && !near(f.Date.Pos.Y, tt.wantDateY) {
				t.Errorf("date y = %v, want %v", f.Date.Pos.Y, tt.wantDateY)
			}
			if f.Day.Visible && !near(f.Day.Pos.Y, tt.wantDayY) {
				t.Errorf("day y = %v, want %v", f.Day.Pos.Y, tt.wantDayY)
			}
		})
	}

	f := ComputeFace(now, c, 200, base)
	if f.Date.Text != "Mar 05, 2024" || f.Day.Text != "Tuesday" {
		t.Errorf("date %q day %q", f.Date.Text, f.Day.Text)
	}
	if f.Date.Pos.X != c.X {
		t.Errorf("date not centered: %v", f.Date.Pos.X)
	}
}
