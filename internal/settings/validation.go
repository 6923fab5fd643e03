package settings

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError names one field and describes what is wrong with it.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the outcome of Validate.
type ValidationResult struct {
	// Errors are values the renderer cannot draw meaningfully.
	Errors []ValidationError
	// Warnings are values that render, but probably not as intended.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Validate checks a snapshot for suspicious values. Rendering never depends
// on the result: out-of-range values are clamped or skipped at draw time.
func Validate(s WallpaperSettings) *ValidationResult {
	result := &ValidationResult{}

	if s.ClockSize <= 0 || s.ClockSize > 1 || math.IsNaN(s.ClockSize) {
		result.AddWarning("clockSize", fmt.Sprintf("expected a value in (0, 1], got %v", s.ClockSize))
	}
	checkFraction(result, "collageOpacity", s.CollageOpacity)

	for field, v := range map[string]float64{
		"imageSpacing":     s.ImageSpacing,
		"borderWidth":      s.BorderWidth,
		"numeralSize":      s.NumeralSize,
		"hourHandWidth":    s.HourHandWidth,
		"minuteHandWidth":  s.MinuteHandWidth,
		"secondHandWidth":  s.SecondHandWidth,
		"centerKnobRadius": s.CenterKnobRadius,
		"centerRingWidth":  s.CenterRingWidth,
		"dateSize":         s.DateSize,
		"daySize":          s.DaySize,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			result.AddWarning(field, fmt.Sprintf("must be a non-negative finite number, got %v", v))
		}
	}

	seen := make(map[string]int, len(s.CollageImages))
	for i, img := range s.CollageImages {
		field := fmt.Sprintf("collageImages[%d]", i)
		if img.URI == "" {
			result.AddError(field+".uri", "must not be empty")
		} else if prev, dup := seen[img.URI]; dup {
			result.AddWarning(field+".uri", fmt.Sprintf("duplicates collageImages[%d]", prev))
		} else {
			seen[img.URI] = i
		}
		if img.Width <= 0 || img.Height <= 0 {
			result.AddWarning(field, fmt.Sprintf("non-positive size %vx%v is never drawn", img.Width, img.Height))
		}
		checkFraction(result, field+".opacity", img.Opacity)
	}

	return result
}

func checkFraction(result *ValidationResult, field string, v float64) {
	if v < 0 || v > 1 || math.IsNaN(v) {
		result.AddWarning(field, fmt.Sprintf("expected a value in [0, 1], got %v", v))
	}
}
