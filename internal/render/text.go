package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontStyle selects the typeface of a text command.
type FontStyle int

const (
	// StyleLabel is used for the date and day lines.
	StyleLabel FontStyle = iota
	// StyleNumeral is used for the dial numerals.
	StyleNumeral
)

// String returns the style name.
func (fs FontStyle) String() string {
	switch fs {
	case StyleLabel:
		return "label"
	case StyleNumeral:
		return "numeral"
	default:
		return "unknown"
	}
}

type faceKey struct {
	style FontStyle
	size  float64
}

// FontSet holds the embedded Go fonts and caches faces by style and size.
// Faces are not safe for concurrent use, so every use goes through the
// set's lock.
type FontSet struct {
	fonts map[FontStyle]*opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewFontSet parses the embedded fonts.
func NewFontSet() (*FontSet, error) {
	fs := &FontSet{
		fonts: make(map[FontStyle]*opentype.Font, 2),
		faces: make(map[faceKey]font.Face),
	}
	for style, data := range map[FontStyle][]byte{
		StyleLabel:   goregular.TTF,
		StyleNumeral: gobold.TTF,
	} {
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s font: %w", style, err)
		}
		fs.fonts[style] = parsed
	}
	return fs, nil
}

var (
	defaultFontsOnce sync.Once
	defaultFonts     *FontSet
)

// DefaultFontSet returns a shared FontSet. The embedded fonts always parse.
func DefaultFontSet() *FontSet {
	defaultFontsOnce.Do(func() {
		fs, err := NewFontSet()
		if err != nil {
			panic("failed to load embedded fonts: " + err.Error())
		}
		defaultFonts = fs
	})
	return defaultFonts
}

// ErrFontSize is returned for font sizes that are not positive and finite.
var ErrFontSize = errors.New("unusable font size")

// UsableFontSize reports whether text can be drawn at size pixels.
func UsableFontSize(size float64) bool {
	return size > 0 && !math.IsInf(size, 0)
}

// face returns the face for style at size pixels. Sizes are rounded to a
// quarter pixel to bound the cache. fs.mu must be held.
func (fs *FontSet) face(style FontStyle, size float64) (font.Face, error) {
	if !UsableFontSize(size) {
		return nil, fmt.Errorf("%w: %v", ErrFontSize, size)
	}
	key := faceKey{style: style, size: math.Round(size*4) / 4}
	if face, ok := fs.faces[key]; ok {
		return face, nil
	}
	parsed, ok := fs.fonts[style]
	if !ok {
		parsed = fs.fonts[StyleLabel]
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	fs.faces[key] = face
	return face, nil
}

// Measure returns the advance width of text in pixels.
func (fs *FontSet) Measure(text string, style FontStyle, size float64) (float64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	face, err := fs.face(style, size)
	if err != nil {
		return 0, err
	}
	return float64(font.MeasureString(face, text)) / 64, nil
}

// DrawCentered draws text onto dst horizontally centered on x with its
// baseline at y.
func (fs *FontSet) DrawCentered(dst draw.Image, text string, style FontStyle, size, x, y float64, c color.Color) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	face, err := fs.face(style, size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	adv := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.Int26_6(math.Round(x*64)) - adv/2,
		Y: fixed.Int26_6(math.Round(y * 64)),
	}
	d.DrawString(text)
	return nil
}
