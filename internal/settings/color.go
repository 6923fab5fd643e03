// Package settings provides the wallpaper settings model for romanclock.
// This file implements the opaque 32-bit ARGB color type used by every
// color field, with parsing from named and hex notations.
package settings

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ARGB is an opaque 32-bit color packed as 0xAARRGGBB.
type ARGB uint32

// Common colors with the values used by the default settings.
const (
	Black     ARGB = 0xFF000000
	White     ARGB = 0xFFFFFFFF
	Red       ARGB = 0xFFFF0000
	DarkGray  ARGB = 0xFF444444
	LightGray ARGB = 0xFFCCCCCC
	Gray      ARGB = 0xFF888888
)

// namedColors maps lowercase color names to their ARGB values.
var namedColors = map[string]ARGB{
	"black":     Black,
	"white":     White,
	"red":       Red,
	"green":     0xFF00FF00,
	"blue":      0xFF0000FF,
	"yellow":    0xFFFFFF00,
	"cyan":      0xFF00FFFF,
	"magenta":   0xFFFF00FF,
	"gray":      Gray,
	"grey":      Gray,
	"darkgray":  DarkGray,
	"darkgrey":  DarkGray,
	"lightgray": LightGray,
	"lightgrey": LightGray,
}

// RGB builds an opaque color from its channels.
func RGB(r, g, b uint8) ARGB {
	return ARGBFrom(0xFF, r, g, b)
}

// ARGBFrom builds a color from alpha and color channels.
func ARGBFrom(a, r, g, b uint8) ARGB {
	return ARGB(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Alpha returns the alpha channel.
func (c ARGB) Alpha() uint8 { return uint8(c >> 24) }

// Red returns the red channel.
func (c ARGB) Red() uint8 { return uint8(c >> 16) }

// Green returns the green channel.
func (c ARGB) Green() uint8 { return uint8(c >> 8) }

// Blue returns the blue channel.
func (c ARGB) Blue() uint8 { return uint8(c) }

// RGBA converts the color to a non-premultiplied color.RGBA.
func (c ARGB) RGBA() color.RGBA {
	return color.RGBA{R: c.Red(), G: c.Green(), B: c.Blue(), A: c.Alpha()}
}

// NRGBA converts the color to color.NRGBA, which image/draw treats as
// straight (non-premultiplied) alpha.
func (c ARGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.Red(), G: c.Green(), B: c.Blue(), A: c.Alpha()}
}

// String formats the color as #AARRGGBB.
func (c ARGB) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// ParseARGB parses a color string.
// Supported formats:
//   - Named colors: "black", "white", "red", "darkgray", ...
//   - "#RGB", "#RRGGBB" (opaque) and "#AARRGGBB"
//   - the same hex forms without the leading '#'
func ParseARGB(s string) (ARGB, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty color string")
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		fallthrough
	case 6:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return ARGB(0xFF000000 | uint32(v)), nil
	case 8:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return ARGB(uint32(v)), nil
	default:
		return 0, fmt.Errorf("unrecognized color format: %q", s)
	}
}

// MustParseARGB parses a color string and panics if parsing fails.
// Use this only for known-good literals in preset definitions.
func MustParseARGB(s string) ARGB {
	c, err := ParseARGB(s)
	if err != nil {
		panic(err)
	}
	return c
}
