package settings

// JSON export/import. Field names match the Android app's exports so that
// files move between both implementations unchanged.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// ImportError reports why a serialized settings payload was rejected.
type ImportError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	return "invalid settings payload: " + strings.Join(e.Problems, "; ")
}

// ErrInvalidPayload is matched by every *ImportError through errors.Is.
var ErrInvalidPayload = errors.New("invalid settings payload")

// Is reports whether target is ErrInvalidPayload.
func (e *ImportError) Is(target error) bool {
	return target == ErrInvalidPayload
}

// MarshalJSON writes the color as a signed 32-bit integer.
func (c ARGB) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(int32(uint32(c))), 10), nil
}

// UnmarshalJSON accepts a signed or unsigned 32-bit integer, or any string
// understood by ParseARGB.
func (c *ARGB) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseARGB(s)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("color must be an integer or string, got %s", data)
	}
	if n < -1<<31 || n > 1<<32-1 {
		return fmt.Errorf("color %d out of 32-bit range", n)
	}
	*c = ARGB(uint32(n))
	return nil
}

// UnmarshalJSON decodes an image over the NewCollageImage defaults so that
// optional placement fields keep sensible values when omitted.
func (ci *CollageImage) UnmarshalJSON(data []byte) error {
	type plain CollageImage
	v := plain(NewCollageImage(""))
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*ci = CollageImage(v)
	return nil
}

// Export serializes a snapshot to its JSON form.
func Export(s WallpaperSettings) ([]byte, error) {
	if s.CollageImages == nil {
		s.CollageImages = []CollageImage{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}
	return data, nil
}

// Import parses a full settings object. Partial objects are rejected: every
// top-level field must be present and every collage image needs a uri.
// On error the returned snapshot is the zero value and must not be used.
func Import(data []byte) (WallpaperSettings, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return WallpaperSettings{}, &ImportError{Problems: []string{"malformed JSON object: " + err.Error()}}
	}
	if fields == nil {
		return WallpaperSettings{}, &ImportError{Problems: []string{"payload is not an object"}}
	}

	var problems []string
	for _, name := range requiredFields() {
		if _, ok := fields[name]; !ok {
			problems = append(problems, "missing field "+strconv.Quote(name))
		}
	}
	if raw, ok := fields["collageImages"]; ok {
		problems = append(problems, checkImages(raw)...)
	}
	if len(problems) > 0 {
		return WallpaperSettings{}, &ImportError{Problems: problems}
	}

	var s WallpaperSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return WallpaperSettings{}, &ImportError{Problems: []string{err.Error()}}
	}
	return s, nil
}

// checkImages verifies that every collage entry is an object with a uri.
func checkImages(raw json.RawMessage) []string {
	var images []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &images); err != nil {
		return []string{"collageImages must be an array of objects"}
	}
	var problems []string
	for i, img := range images {
		uri, ok := img["uri"]
		var s string
		if !ok || json.Unmarshal(uri, &s) != nil || s == "" {
			problems = append(problems, fmt.Sprintf("collageImages[%d] has no uri", i))
		}
	}
	return problems
}

var (
	requiredOnce  sync.Once
	requiredNames []string
)

// requiredFields lists the JSON names of every WallpaperSettings field.
func requiredFields() []string {
	requiredOnce.Do(func() {
		t := reflect.TypeOf(WallpaperSettings{})
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
				requiredNames = append(requiredNames, name)
			}
		}
	})
	return requiredNames
}
