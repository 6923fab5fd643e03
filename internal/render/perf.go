package render

import (
	"sync/atomic"
	"time"
)

// FrameMetrics tracks frame render durations and frame rate.
// All methods are safe for concurrent use.
type FrameMetrics struct {
	frames        atomic.Int64
	periodFrames  atomic.Int64
	lastFPS       atomic.Int64 // FPS * 1000
	lastFrameTime atomic.Int64 // nanoseconds
	minFrameTime  atomic.Int64
	maxFrameTime  atomic.Int64
	totalTime     atomic.Int64
	lastUpdate    atomic.Int64 // Unix nanoseconds
	updatePeriod  time.Duration
}

// NewFrameMetrics creates a FrameMetrics that recalculates FPS every
// updatePeriod (default: 1 second).
func NewFrameMetrics(updatePeriod time.Duration) *FrameMetrics {
	if updatePeriod <= 0 {
		updatePeriod = time.Second
	}
	fm := &FrameMetrics{updatePeriod: updatePeriod}
	fm.Reset()
	return fm
}

// RecordFrame records one rendered frame.
func (fm *FrameMetrics) RecordFrame(frameTime time.Duration) {
	nanos := frameTime.Nanoseconds()

	fm.frames.Add(1)
	fm.periodFrames.Add(1)
	fm.lastFrameTime.Store(nanos)
	fm.totalTime.Add(nanos)

	for {
		cur := fm.minFrameTime.Load()
		if nanos >= cur || fm.minFrameTime.CompareAndSwap(cur, nanos) {
			break
		}
	}
	for {
		cur := fm.maxFrameTime.Load()
		if nanos <= cur || fm.maxFrameTime.CompareAndSwap(cur, nanos) {
			break
		}
	}

	now := time.Now().UnixNano()
	last := fm.lastUpdate.Load()
	elapsed := time.Duration(now - last)
	if elapsed >= fm.updatePeriod && fm.lastUpdate.CompareAndSwap(last, now) {
		frames := fm.periodFrames.Swap(0)
		fm.lastFPS.Store(int64(float64(frames) / elapsed.Seconds() * 1000))
	}
}

// Frames returns the number of frames recorded since the last Reset.
func (fm *FrameMetrics) Frames() int64 {
	return fm.frames.Load()
}

// FPS returns the frame rate measured over the last full period.
func (fm *FrameMetrics) FPS() float64 {
	return float64(fm.lastFPS.Load()) / 1000.0
}

// LastFrameTime returns the duration of the last frame.
func (fm *FrameMetrics) LastFrameTime() time.Duration {
	return time.Duration(fm.lastFrameTime.Load())
}

// MinFrameTime returns the shortest frame recorded, or 0 before any frame.
func (fm *FrameMetrics) MinFrameTime() time.Duration {
	if fm.frames.Load() == 0 {
		return 0
	}
	return time.Duration(fm.minFrameTime.Load())
}

// MaxFrameTime returns the longest frame recorded.
func (fm *FrameMetrics) MaxFrameTime() time.Duration {
	return time.Duration(fm.maxFrameTime.Load())
}

// AverageFrameTime returns the mean frame duration.
func (fm *FrameMetrics) AverageFrameTime() time.Duration {
	count := fm.frames.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(fm.totalTime.Load() / count)
}

// Reset clears all metrics.
func (fm *FrameMetrics) Reset() {
	fm.frames.Store(0)
	fm.periodFrames.Store(0)
	fm.lastFPS.Store(0)
	fm.lastFrameTime.Store(0)
	fm.minFrameTime.Store(int64(time.Hour))
	fm.maxFrameTime.Store(0)
	fm.totalTime.Store(0)
	fm.lastUpdate.Store(time.Now().UnixNano())
}
