package romanclock

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/opd-ai/romanclock/internal/settings"
)

// ErrAlreadyRunning is returned by Start on a running wallpaper.
var ErrAlreadyRunning = errors.New("wallpaper already running")

// ErrImageNotFound is returned by collage edits naming an image that is not
// in the collage.
var ErrImageNotFound = errors.New("collage image not found")

// Wallpaper is a live clock wallpaper with full lifecycle control. It is
// safe for concurrent use from multiple goroutines.
type Wallpaper interface {
	// Start begins operation. Headless wallpapers start rendering at once;
	// windowed ones wait for Run to show the window.
	Start() error

	// Stop ends rendering and releases decoded images. Safe to call
	// multiple times.
	Stop() error

	// Run starts the wallpaper if needed and blocks until ctx is done or
	// the window is closed, then stops it. With a window it must be called
	// from the main goroutine.
	Run(ctx context.Context) error

	// SetVisible starts or pauses the render loop. Each show begins a new
	// image cache session; each hide releases it.
	SetVisible(visible bool)

	// Resize changes the frame size and draws one extra frame.
	Resize(width, height int)

	// Settings returns the current snapshot.
	Settings() settings.WallpaperSettings

	// UpdateSettings replaces the snapshot, redraws and saves it. The new
	// snapshot stays active when saving fails.
	UpdateSettings(s settings.WallpaperSettings) error

	// ApplyPreset replaces the snapshot with a bundled preset.
	ApplyPreset(name string) error

	// ApplyLayout arranges the collage images with the given algorithm.
	ApplyLayout(kind settings.CollageLayout) error

	// AddImages appends new collage images for refs.
	AddImages(refs ...string) error

	// UpdateImage replaces the collage image with the same URI as img.
	UpdateImage(img settings.CollageImage) error

	// RemoveImages drops the collage images for refs.
	RemoveImages(refs ...string) error

	// BringToFront draws the image for ref above all others.
	BringToFront(ref string) error

	// SetImageOpacity sets the opacity of every collage image.
	SetImageOpacity(opacity float64) error

	// RotateImages turns every collage image by deg degrees clockwise.
	RotateImages(deg float64) error

	// Import replaces the snapshot with an exported JSON object. Partial or
	// malformed payloads are rejected and leave the snapshot unchanged.
	Import(data []byte) error

	// Export serializes the current snapshot.
	Export() ([]byte, error)

	// Reload re-reads the settings store. On failure the current snapshot
	// is kept.
	Reload() error

	// Snapshot renders one frame of the current settings off-screen.
	Snapshot(width, height int) (*image.RGBA, error)

	// SnapshotAt is Snapshot at a fixed time.
	SnapshotAt(width, height int, at time.Time) (*image.RGBA, error)

	// Frame returns a copy of the last frame drawn by the render loop, or
	// nil before the first.
	Frame() *image.RGBA

	// Status returns runtime information.
	Status() Status

	// Health summarizes the state of the render loop and its inputs.
	Health() HealthCheck

	// SetErrorHandler registers a callback for runtime errors. It is called
	// asynchronously and panics in it are recovered.
	SetErrorHandler(handler ErrorHandler)

	// SetEventHandler registers a callback for lifecycle events.
	SetEventHandler(handler EventHandler)

	// Metrics returns the metrics collector.
	Metrics() *Metrics
}

// New loads the settings from store and returns a stopped wallpaper. A nil
// opts uses DefaultOptions.
//
// Example:
//
//	w, err := romanclock.NewFromFile("/home/user/.config/romanclock.json", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
func New(store settings.Store, opts *Options) (Wallpaper, error) {
	if store == nil {
		return nil, errors.New("settings store is nil")
	}
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	return newWallpaper(store, o)
}

// NewFromFile opens the settings file at path. JSON files are read and
// saved; Lua scripts are read-only. A missing file starts from the default
// settings and is created on the first save.
func NewFromFile(path string, opts *Options) (Wallpaper, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.SettingsPath == "" {
		o.SettingsPath = path
	}
	return New(settings.OpenStore(path), &o)
}

// NewInMemory returns a wallpaper whose settings live only in memory.
func NewInMemory(opts *Options) (Wallpaper, error) {
	return New(settings.NewMemoryStore(), opts)
}
