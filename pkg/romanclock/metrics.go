package romanclock

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics counts wallpaper activity. It is safe for concurrent use and can
// be published through expvar (/debug/vars).
type Metrics struct {
	starts          atomic.Int64
	stops           atomic.Int64
	framesRendered  atomic.Int64
	framesSkipped   atomic.Int64
	imagesSkipped   atomic.Int64
	decodeFailures  atomic.Int64
	settingsSaves   atomic.Int64
	settingsReloads atomic.Int64
	importsRejected atomic.Int64
	errorsTotal     atomic.Int64
	eventsEmitted   atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	cacheFailures   atomic.Int64

	frameNs       atomic.Int64
	lastFrameNs   atomic.Int64
	running       atomic.Int32
	visible       atomic.Int32
	registeredAny atomic.Bool
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the metrics under name-prefixed expvar keys such
// as "romanclock_frames_rendered_total". Keys that already exist are left
// alone, so calling it again is harmless.
func (m *Metrics) RegisterExpvar(name string) {
	if name == "" {
		name = "romanclock"
	}
	m.registeredAny.Store(true)
	publish := func(key string, f func() any) {
		key = name + "_" + key
		if expvar.Get(key) == nil {
			expvar.Publish(key, expvar.Func(f))
		}
	}
	publish("starts_total", func() any { return m.starts.Load() })
	publish("stops_total", func() any { return m.stops.Load() })
	publish("frames_rendered_total", func() any { return m.framesRendered.Load() })
	publish("frames_skipped_total", func() any { return m.framesSkipped.Load() })
	publish("images_skipped_total", func() any { return m.imagesSkipped.Load() })
	publish("decode_failures_total", func() any { return m.decodeFailures.Load() })
	publish("settings_saves_total", func() any { return m.settingsSaves.Load() })
	publish("settings_reloads_total", func() any { return m.settingsReloads.Load() })
	publish("imports_rejected_total", func() any { return m.importsRejected.Load() })
	publish("errors_total", func() any { return m.errorsTotal.Load() })
	publish("events_emitted_total", func() any { return m.eventsEmitted.Load() })
	publish("image_cache_hits_total", func() any { return m.cacheHits.Load() })
	publish("image_cache_misses_total", func() any { return m.cacheMisses.Load() })
	publish("image_cache_failures_total", func() any { return m.cacheFailures.Load() })
	publish("running", func() any { return m.running.Load() })
	publish("visible", func() any { return m.visible.Load() })
	publish("last_frame_ms", func() any { return float64(m.lastFrameNs.Load()) / 1e6 })
	publish("frame_avg_ms", func() any { return float64(m.Snapshot().FrameAvg) / 1e6 })
}

// MetricsSnapshot is a copy of every metric.
type MetricsSnapshot struct {
	Starts          int64
	Stops           int64
	FramesRendered  int64
	FramesSkipped   int64
	ImagesSkipped   int64
	DecodeFailures  int64
	SettingsSaves   int64
	SettingsReloads int64
	ImportsRejected int64
	ErrorsTotal     int64
	EventsEmitted   int64
	CacheHits       int64
	CacheMisses     int64
	CacheFailures   int64

	Running bool
	Visible bool

	LastFrame time.Duration
	FrameAvg  time.Duration
}

// Snapshot returns the current values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frames := m.framesRendered.Load()
	var avg time.Duration
	if frames > 0 {
		avg = time.Duration(m.frameNs.Load() / frames)
	}
	return MetricsSnapshot{
		Starts:          m.starts.Load(),
		Stops:           m.stops.Load(),
		FramesRendered:  frames,
		FramesSkipped:   m.framesSkipped.Load(),
		ImagesSkipped:   m.imagesSkipped.Load(),
		DecodeFailures:  m.decodeFailures.Load(),
		SettingsSaves:   m.settingsSaves.Load(),
		SettingsReloads: m.settingsReloads.Load(),
		ImportsRejected: m.importsRejected.Load(),
		ErrorsTotal:     m.errorsTotal.Load(),
		EventsEmitted:   m.eventsEmitted.Load(),
		CacheHits:       m.cacheHits.Load(),
		CacheMisses:     m.cacheMisses.Load(),
		CacheFailures:   m.cacheFailures.Load(),
		Running:         m.running.Load() > 0,
		Visible:         m.visible.Load() > 0,
		LastFrame:       time.Duration(m.lastFrameNs.Load()),
		FrameAvg:        avg,
	}
}

// RecordFrame counts a drawn frame and its duration.
func (m *Metrics) RecordFrame(d time.Duration) {
	m.framesRendered.Add(1)
	m.frameNs.Add(d.Nanoseconds())
	m.lastFrameNs.Store(d.Nanoseconds())
}

func (m *Metrics) IncrementStarts()          { m.starts.Add(1) }
func (m *Metrics) IncrementStops()           { m.stops.Add(1) }
func (m *Metrics) IncrementFramesSkipped()   { m.framesSkipped.Add(1) }
func (m *Metrics) AddImagesSkipped(n int)    { m.imagesSkipped.Add(int64(n)) }
func (m *Metrics) IncrementDecodeFailures()  { m.decodeFailures.Add(1) }
func (m *Metrics) IncrementSettingsSaves()   { m.settingsSaves.Add(1) }
func (m *Metrics) IncrementSettingsReloads() { m.settingsReloads.Add(1) }
func (m *Metrics) IncrementImportsRejected() { m.importsRejected.Add(1) }
func (m *Metrics) IncrementErrors()          { m.errorsTotal.Add(1) }
func (m *Metrics) IncrementEventsEmitted()   { m.eventsEmitted.Add(1) }

// AddCacheStats adds image cache lookups to the totals.
func (m *Metrics) AddCacheStats(hits, misses, failures int64) {
	m.cacheHits.Add(hits)
	m.cacheMisses.Add(misses)
	m.cacheFailures.Add(failures)
}

// SetRunning updates the running gauge.
func (m *Metrics) SetRunning(running bool) { m.running.Store(boolGauge(running)) }

// SetVisible updates the visibility gauge.
func (m *Metrics) SetVisible(visible bool) { m.visible.Store(boolGauge(visible)) }

func boolGauge(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
