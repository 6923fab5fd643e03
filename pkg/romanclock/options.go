package romanclock

import (
	"time"

	"github.com/opd-ai/romanclock/internal/render"
	"github.com/opd-ai/romanclock/internal/schedule"
)

// Window defaults.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
	DefaultTitle  = "romanclock"
)

// Options configures a Wallpaper.
type Options struct {
	// Logger receives debug and lifecycle messages. Nil disables logging.
	Logger Logger

	// Metrics collects counters. Nil means a new collector per wallpaper.
	Metrics *Metrics

	// ImageSource opens collage image references. Nil means the host
	// filesystem.
	ImageSource render.ImageSource

	// Clock drives the render loop. Nil means the wall clock.
	Clock schedule.Clock

	// DecodeBudget bounds how long one frame waits for image decodes.
	// Zero means render.DefaultDecodeBudget.
	DecodeBudget time.Duration

	// DownsampleFactor shrinks decoded collage images by this factor on
	// each axis. Zero means render.DefaultDownsampleFactor.
	DownsampleFactor int

	// SnapshotBudget bounds image decodes for Snapshot. Zero means 10s.
	SnapshotBudget time.Duration

	// WatchSettings reloads the settings when SettingsPath changes on disk.
	WatchSettings bool

	// WatchDebounce collapses bursts of file events. Zero means
	// DefaultWatchDebounce.
	WatchDebounce time.Duration

	// SettingsPath is the file behind the store, used for watching and in
	// Status.
	SettingsPath string

	// Headless renders into the frame buffer only. The wallpaper is visible
	// from Start until Stop.
	Headless bool

	// Width, Height and Title size the window, or the frame buffer when
	// headless.
	Width  int
	Height int
	Title  string

	// DesktopHints marks the window as an X11 desktop window that stays
	// below others and out of the taskbar and pager.
	DesktopHints bool
}

// DefaultOptions returns the options used when New gets nil.
func DefaultOptions() Options {
	return Options{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Title:        DefaultTitle,
		DesktopHints: true,
	}
}

// Logger is the slog-style logging interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
