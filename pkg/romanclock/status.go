package romanclock

import "time"

// Status is a point-in-time view of a Wallpaper.
type Status struct {
	Running bool
	Visible bool
	// StartTime is when the wallpaper was last started.
	StartTime time.Time
	// Frames counts frames drawn since the last start.
	Frames int64
	// FPS is the frame rate over the last second.
	FPS float64
	// LastFrameTime is the duration of the latest frame.
	LastFrameTime time.Duration
	// CachedImages is the number of decoded images of the current session.
	CachedImages int
	// Cache counts image lookups of the current session.
	Cache CacheStats
	// HeapAlloc and Goroutines sample the Go runtime.
	HeapAlloc  uint64
	Goroutines int
	// LastError is the most recent runtime error, if any.
	LastError error
	// SettingsSource names where settings come from.
	SettingsSource string
}

// CacheStats counts lookups of a session's image cache.
type CacheStats struct {
	Hits     int64
	Misses   int64
	Failures int64
	Entries  int
}

// ErrorHandler receives runtime errors. It runs on its own goroutine and
// must not block.
type ErrorHandler func(err error)

// EventHandler receives lifecycle events. It must not block.
type EventHandler func(event Event)

// Event is a lifecycle notification.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Message   string
}

// EventType enumerates events.
type EventType int

const (
	EventStarted EventType = iota
	EventStopped
	EventShown
	EventHidden
	// EventSettingsChanged follows an update through the API.
	EventSettingsChanged
	// EventSettingsReloaded follows a reload from disk.
	EventSettingsReloaded
	EventError
)

func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventShown:
		return "shown"
	case EventHidden:
		return "hidden"
	case EventSettingsChanged:
		return "settings_changed"
	case EventSettingsReloaded:
		return "settings_reloaded"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
