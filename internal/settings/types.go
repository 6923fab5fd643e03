package settings

import (
	"fmt"
	"strings"
)

// BackgroundType selects how the area behind the clock face is filled.
type BackgroundType int

const (
	// BackgroundSolid fills the canvas with BackgroundColor.
	BackgroundSolid BackgroundType = iota
	// BackgroundGradient fills the canvas with a top-left to bottom-right
	// linear gradient between GradientStartColor and GradientEndColor.
	BackgroundGradient
	// BackgroundCollage fills with BackgroundColor, then composites CollageImages.
	BackgroundCollage
)

var backgroundTypeNames = []string{"SOLID", "GRADIENT", "COLLAGE"}

// String returns the stable upper-case name used in serialized settings.
func (b BackgroundType) String() string {
	return enumName(backgroundTypeNames, int(b))
}

// ParseBackgroundType parses a background type name (case-insensitive).
func ParseBackgroundType(s string) (BackgroundType, error) {
	i, err := parseEnum(backgroundTypeNames, "background type", s)
	return BackgroundType(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (b BackgroundType) MarshalText() ([]byte, error) { return marshalEnum(backgroundTypeNames, int(b)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BackgroundType) UnmarshalText(text []byte) error {
	v, err := ParseBackgroundType(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// CollageLayout names a placement algorithm for collage images.
type CollageLayout int

const (
	// LayoutGrid is a regular 3-column grid.
	LayoutGrid CollageLayout = iota
	// LayoutMasonry cycles through five hand-placed tiles.
	LayoutMasonry
	// LayoutCenterFocus enlarges the first image and rings the rest around it.
	LayoutCenterFocus
	// LayoutSpiral places images along an outward spiral.
	LayoutSpiral
	// LayoutRandom scatters images at random.
	LayoutRandom
)

var collageLayoutNames = []string{"GRID", "MASONRY", "CENTER_FOCUS", "SPIRAL", "RANDOM"}

// CollageLayouts lists every layout kind in declaration order.
func CollageLayouts() []CollageLayout {
	return []CollageLayout{LayoutGrid, LayoutMasonry, LayoutCenterFocus, LayoutSpiral, LayoutRandom}
}

// String returns the stable upper-case name used in serialized settings.
func (l CollageLayout) String() string {
	return enumName(collageLayoutNames, int(l))
}

// ParseCollageLayout parses a collage layout name (case-insensitive).
// Hyphens are accepted in place of underscores ("center-focus").
func ParseCollageLayout(s string) (CollageLayout, error) {
	i, err := parseEnum(collageLayoutNames, "collage layout", s)
	return CollageLayout(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (l CollageLayout) MarshalText() ([]byte, error) { return marshalEnum(collageLayoutNames, int(l)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *CollageLayout) UnmarshalText(text []byte) error {
	v, err := ParseCollageLayout(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ScaleType is the policy used to map an image into its collage box.
type ScaleType int

const (
	// ScaleCenterCrop covers the box, overflowing on one axis.
	ScaleCenterCrop ScaleType = iota
	// ScaleCenterInside fits the image entirely inside the box.
	ScaleCenterInside
	// ScaleFitCenter is geometrically identical to ScaleCenterInside.
	ScaleFitCenter
	// ScaleOriginal keeps native pixel size, clamped to the box.
	ScaleOriginal
)

var scaleTypeNames = []string{"CENTER_CROP", "CENTER_INSIDE", "FIT_CENTER", "ORIGINAL"}

// String returns the stable upper-case name used in serialized settings.
func (t ScaleType) String() string {
	return enumName(scaleTypeNames, int(t))
}

// ParseScaleType parses a scale type name (case-insensitive).
func ParseScaleType(s string) (ScaleType, error) {
	i, err := parseEnum(scaleTypeNames, "scale type", s)
	return ScaleType(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (t ScaleType) MarshalText() ([]byte, error) { return marshalEnum(scaleTypeNames, int(t)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ScaleType) UnmarshalText(text []byte) error {
	v, err := ParseScaleType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// CollageTemplate names one of the bundled collage starting points.
type CollageTemplate int

const (
	// TemplateMemories is a dark navy collage with pink accents.
	TemplateMemories CollageTemplate = iota
	// TemplateTravel is a deep blue collage with a thin white border.
	TemplateTravel
	// TemplateMinimal is a black collage with a red second hand.
	TemplateMinimal
)

var collageTemplateNames = []string{"MEMORIES", "TRAVEL", "MINIMAL"}

// String returns the template name.
func (t CollageTemplate) String() string {
	return enumName(collageTemplateNames, int(t))
}

// ParseCollageTemplate parses a template name (case-insensitive).
func ParseCollageTemplate(s string) (CollageTemplate, error) {
	i, err := parseEnum(collageTemplateNames, "collage template", s)
	return CollageTemplate(i), err
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("UNKNOWN(%d)", i)
	}
	return names[i]
}

func marshalEnum(names []string, i int) ([]byte, error) {
	if i < 0 || i >= len(names) {
		return nil, fmt.Errorf("enum value %d out of range", i)
	}
	return []byte(names[i]), nil
}

func parseEnum(names []string, kind, s string) (int, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for i, name := range names {
		if name == norm {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s: %q", kind, s)
}
