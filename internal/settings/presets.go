package settings

import (
	"fmt"
	"strings"
)

// ThemePreset is a named, fully populated settings snapshot.
// Applying a preset replaces the whole current snapshot.
type ThemePreset struct {
	Name     string
	Settings WallpaperSettings
}

// whiteFace sets the face elements that most themes draw in white.
func whiteFace(s *WallpaperSettings) {
	s.NumeralColor = White
	s.CenterKnobColor = White
	s.CenterRingColor = White
	s.HourHandColor = White
	s.MinuteHandColor = White
}

func gradientPreset(start, end string) WallpaperSettings {
	return Default().With(func(s *WallpaperSettings) {
		s.BackgroundType = BackgroundGradient
		s.GradientStartColor = MustParseARGB(start)
		s.GradientEndColor = MustParseARGB(end)
		whiteFace(s)
	})
}

// Classic is the default look.
func Classic() WallpaperSettings { return Default() }

// AMOLED is a borderless black face with a smooth second hand.
func AMOLED() WallpaperSettings {
	return Default().With(func(s *WallpaperSettings) {
		s.BackgroundColor = Black
		s.ShowBorder = false
		s.SmoothSecondHand = true
		whiteFace(s)
	})
}

// Sunset is an orange to pink gradient.
func Sunset() WallpaperSettings { return gradientPreset("#FF512F", "#DD2476") }

// Ocean is a light to deep blue gradient.
func Ocean() WallpaperSettings { return gradientPreset("#00B4DB", "#0083B0") }

// Forest is a dark teal gradient.
func Forest() WallpaperSettings { return gradientPreset("#0F2027", "#2C5364") }

// CollageTemplateSettings returns the starting settings for a collage template.
// The image list is left empty; callers add images afterwards.
func CollageTemplateSettings(t CollageTemplate) WallpaperSettings {
	base := Default().With(func(s *WallpaperSettings) {
		s.BackgroundType = BackgroundCollage
		s.NumeralColor = White
		s.HourHandColor = White
		s.MinuteHandColor = White
		s.CenterRingColor = White
		s.DateColor = White
		s.DayColor = White
	})

	switch t {
	case TemplateTravel:
		return base.With(func(s *WallpaperSettings) {
			s.BackgroundColor = MustParseARGB("#0F3460")
			s.CollageOpacity = 0.85
			s.ClockSize = 0.75
			s.ShowBorder = true
			s.BorderColor = White
			s.BorderWidth = 4
			s.SecondHandColor = MustParseARGB("#00FFAB")
			s.CenterKnobColor = MustParseARGB("#00FFAB")
		})
	case TemplateMinimal:
		return base.With(func(s *WallpaperSettings) {
			s.BackgroundColor = Black
			s.CollageOpacity = 0.8
			s.ClockSize = 0.65
			s.ShowBorder = false
			s.SecondHandColor = Red
			s.CenterKnobColor = White
			s.DateColor = LightGray
			s.DayColor = LightGray
		})
	default:
		return base.With(func(s *WallpaperSettings) {
			s.BackgroundColor = MustParseARGB("#1A1A2E")
			s.CollageOpacity = 0.9
			s.ClockSize = 0.7
			s.ShowBorder = false
			s.SecondHandColor = MustParseARGB("#FF6B8B")
			s.CenterKnobColor = MustParseARGB("#FF6B8B")
		})
	}
}

// Presets returns every bundled preset in display order.
func Presets() []ThemePreset {
	return []ThemePreset{
		{Name: "classic", Settings: Classic()},
		{Name: "amoled", Settings: AMOLED()},
		{Name: "sunset", Settings: Sunset()},
		{Name: "ocean", Settings: Ocean()},
		{Name: "forest", Settings: Forest()},
		{Name: "memories", Settings: CollageTemplateSettings(TemplateMemories)},
		{Name: "travel", Settings: CollageTemplateSettings(TemplateTravel)},
		{Name: "minimal", Settings: CollageTemplateSettings(TemplateMinimal)},
	}
}

// Preset looks up a bundled preset by name (case-insensitive).
func Preset(name string) (WallpaperSettings, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, p := range Presets() {
		if p.Name == want {
			return p.Settings, nil
		}
	}
	return WallpaperSettings{}, fmt.Errorf("unknown preset: %q", name)
}
