package settings

import (
	"reflect"
	"slices"
)

// WallpaperSettings is the immutable snapshot of every visual parameter.
// It is the sole input to rendering. A snapshot is never mutated in place;
// edits produce a new value through With.
type WallpaperSettings struct {
	// Background
	BackgroundType     BackgroundType `json:"backgroundType"`
	BackgroundColor    ARGB           `json:"backgroundColor"`
	GradientStartColor ARGB           `json:"gradientStartColor"`
	GradientEndColor   ARGB           `json:"gradientEndColor"`

	// Collage
	CollageImages  []CollageImage `json:"collageImages"`
	CollageLayout  CollageLayout  `json:"collageLayout"`
	ImageSpacing   float64        `json:"imageSpacing"`
	CollageOpacity float64        `json:"collageOpacity"`

	// Clock face. ClockSize is a fraction of half the smaller canvas dimension.
	ClockSize    float64 `json:"clockSize"`
	ShowBorder   bool    `json:"showBorder"`
	BorderColor  ARGB    `json:"borderColor"`
	BorderWidth  float64 `json:"borderWidth"`
	ShowNumerals bool    `json:"showNumerals"`
	NumeralColor ARGB    `json:"numeralColor"`
	NumeralSize  float64 `json:"numeralSize"`

	// Hands. SmoothSecondHand controls tick cadence only.
	HourHandColor    ARGB    `json:"hourHandColor"`
	HourHandWidth    float64 `json:"hourHandWidth"`
	MinuteHandColor  ARGB    `json:"minuteHandColor"`
	MinuteHandWidth  float64 `json:"minuteHandWidth"`
	SecondHandColor  ARGB    `json:"secondHandColor"`
	SecondHandWidth  float64 `json:"secondHandWidth"`
	ShowSecondHand   bool    `json:"showSecondHand"`
	SmoothSecondHand bool    `json:"smoothSecondHand"`

	// Center knob
	CenterKnobColor  ARGB    `json:"centerKnobColor"`
	CenterKnobRadius float64 `json:"centerKnobRadius"`
	CenterRingColor  ARGB    `json:"centerRingColor"`
	CenterRingWidth  float64 `json:"centerRingWidth"`

	// Date and day
	ShowDate  bool    `json:"showDate"`
	DateColor ARGB    `json:"dateColor"`
	DateSize  float64 `json:"dateSize"`
	ShowDay   bool    `json:"showDay"`
	DayColor  ARGB    `json:"dayColor"`
	DaySize   float64 `json:"daySize"`
}

// CollageImage is one placed picture of a collage background.
// X, Y, Width and Height are fractions of the canvas size describing the
// unrotated, top-left anchored bounding box. Rotation is in degrees about
// the box center.
type CollageImage struct {
	URI       string    `json:"uri"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Rotation  float64   `json:"rotation"`
	Opacity   float64   `json:"opacity"`
	ZIndex    int       `json:"zIndex"`
	ScaleType ScaleType `json:"scaleType"`
}

// NewCollageImage returns an image placed at the origin with default size.
func NewCollageImage(uri string) CollageImage {
	return CollageImage{
		URI:       uri,
		Width:     0.3,
		Height:    0.3,
		Opacity:   1.0,
		ScaleType: ScaleCenterCrop,
	}
}

// Default returns the settings used when nothing has been persisted.
func Default() WallpaperSettings {
	return WallpaperSettings{
		BackgroundType:     BackgroundSolid,
		BackgroundColor:    Black,
		GradientStartColor: Black,
		GradientEndColor:   DarkGray,
		CollageImages:      nil,
		CollageLayout:      LayoutGrid,
		ImageSpacing:       20,
		CollageOpacity:     1.0,
		ClockSize:          0.8,
		ShowBorder:         true,
		BorderColor:        DarkGray,
		BorderWidth:        10,
		ShowNumerals:       true,
		NumeralColor:       White,
		NumeralSize:        42,
		HourHandColor:      White,
		HourHandWidth:      12,
		MinuteHandColor:    White,
		MinuteHandWidth:    8,
		SecondHandColor:    Red,
		SecondHandWidth:    4,
		ShowSecondHand:     true,
		SmoothSecondHand:   false,
		CenterKnobColor:    White,
		CenterKnobRadius:   15,
		CenterRingColor:    DarkGray,
		CenterRingWidth:    4,
		ShowDate:           true,
		DateColor:          LightGray,
		DateSize:           36,
		ShowDay:            true,
		DayColor:           LightGray,
		DaySize:            32,
	}
}

// With returns a copy of s with override applied. The image list is
// copied first so the result never shares backing storage with s.
func (s WallpaperSettings) With(override func(*WallpaperSettings)) WallpaperSettings {
	out := s
	out.CollageImages = slices.Clone(s.CollageImages)
	if override != nil {
		override(&out)
	}
	return out
}

// WithImages returns a copy of s holding images as its collage list.
func (s WallpaperSettings) WithImages(images []CollageImage) WallpaperSettings {
	return s.With(func(w *WallpaperSettings) {
		w.CollageImages = slices.Clone(images)
	})
}

// Equal reports whether two snapshots are identical in every field.
// A nil image list equals an empty one.
func Equal(a, b WallpaperSettings) bool {
	if !slices.Equal(a.CollageImages, b.CollageImages) {
		return false
	}
	a.CollageImages, b.CollageImages = nil, nil
	return reflect.DeepEqual(a, b)
}
