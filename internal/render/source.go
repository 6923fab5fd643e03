package render

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
)

// ImageSource opens the byte stream behind an image reference.
type ImageSource interface {
	Open(ref string) (io.ReadCloser, error)
}

// FileSource resolves plain paths and file:// URIs. When FS is set, paths
// are resolved inside it (leading slashes are stripped); otherwise the
// host filesystem is used.
type FileSource struct {
	FS fs.FS
}

// Open implements ImageSource.
func (s FileSource) Open(ref string) (io.ReadCloser, error) {
	path, err := refPath(ref)
	if err != nil {
		return nil, err
	}
	if s.FS != nil {
		return s.FS.Open(strings.TrimPrefix(path, "/"))
	}
	return os.Open(path)
}

// refPath extracts a filesystem path from an image reference.
func refPath(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty image reference")
	}
	if !strings.Contains(ref, "://") {
		return ref, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse image reference %q: %w", ref, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported image scheme %q", u.Scheme)
	}
	return u.Path, nil
}
