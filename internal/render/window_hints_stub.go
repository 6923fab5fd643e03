//go:build !linux

package render

// DesktopHints selects the window manager hints of the host window. They
// only take effect on X11.
type DesktopHints struct {
	Desktop     bool
	Below       bool
	Sticky      bool
	SkipTaskbar bool
	SkipPager   bool
}

// WallpaperHints is the full set used by the window host.
var WallpaperHints = DesktopHints{Desktop: true, Below: true, Sticky: true, SkipTaskbar: true, SkipPager: true}

// None reports whether no hint is requested.
func (h DesktopHints) None() bool {
	return h == DesktopHints{}
}

// ApplyDesktopHints is a no-op off Linux.
func ApplyDesktopHints(DesktopHints) error {
	return nil
}

// CloseDesktopHints is a no-op off Linux.
func CloseDesktopHints() {}
