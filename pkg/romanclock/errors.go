package romanclock

import (
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/romanclock/internal/render"
	"github.com/opd-ai/romanclock/internal/settings"
)

// ErrorCategory classifies runtime errors for handlers and metrics.
type ErrorCategory int

const (
	ErrorCategoryUnknown ErrorCategory = iota
	// ErrorCategorySettings covers loading and saving settings.
	ErrorCategorySettings
	// ErrorCategoryImport covers rejected imports and failed reloads.
	ErrorCategoryImport
	// ErrorCategoryDecode covers collage images that could not be decoded.
	ErrorCategoryDecode
	// ErrorCategoryRender covers failed frames.
	ErrorCategoryRender
	// ErrorCategorySurface covers the window and frame buffer.
	ErrorCategorySurface
	// ErrorCategoryIO covers files other than settings, such as snapshots.
	ErrorCategoryIO
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategorySettings:
		return "settings"
	case ErrorCategoryImport:
		return "import"
	case ErrorCategoryDecode:
		return "decode"
	case ErrorCategoryRender:
		return "render"
	case ErrorCategorySurface:
		return "surface"
	case ErrorCategoryIO:
		return "io"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category.
type CategorizedError struct {
	Err       error
	Category  ErrorCategory
	Timestamp time.Time
	// Context holds extra key-value details, such as the image reference.
	Context map[string]string
}

// NewCategorizedError wraps err in category.
func NewCategorizedError(err error, category ErrorCategory) *CategorizedError {
	return &CategorizedError{Err: err, Category: category, Timestamp: time.Now()}
}

func (e *CategorizedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] (no error)", e.Category)
	}
	return fmt.Sprintf("[%s] %s", e.Category, e.Err)
}

// Unwrap returns the wrapped error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// WithContext records a detail and returns e.
func (e *CategorizedError) WithContext(key, value string) *CategorizedError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// CategoryOf returns the category of err, guessing from well-known
// sentinels when err is not a CategorizedError.
func CategoryOf(err error) ErrorCategory {
	var ce *CategorizedError
	switch {
	case err == nil:
		return ErrorCategoryUnknown
	case errors.As(err, &ce):
		return ce.Category
	case errors.Is(err, settings.ErrInvalidPayload):
		return ErrorCategoryImport
	case errors.Is(err, settings.ErrReadOnly):
		return ErrorCategorySettings
	case errors.Is(err, render.ErrImageUnavailable):
		return ErrorCategoryDecode
	case errors.Is(err, render.ErrSurfaceUnavailable):
		return ErrorCategorySurface
	default:
		return ErrorCategoryUnknown
	}
}
