package romanclock

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/romanclock/internal/collage"
	"github.com/opd-ai/romanclock/internal/profiling"
	"github.com/opd-ai/romanclock/internal/render"
	"github.com/opd-ai/romanclock/internal/schedule"
	"github.com/opd-ai/romanclock/internal/settings"
)

// defaultSnapshotBudget bounds image decodes of an off-screen render.
const defaultSnapshotBudget = 10 * time.Second

// wallpaper is the private implementation of Wallpaper.
type wallpaper struct {
	store  settings.Store
	opts   Options
	logger Logger

	metrics *Metrics
	frames  *render.FrameMetrics
	source  render.ImageSource
	clock   schedule.Clock
	fonts   *render.FontSet
	buffer  *render.BufferHolder
	sched   *schedule.Scheduler

	current   atomic.Pointer[settings.WallpaperSettings]
	lastError atomic.Value // error

	rngMu sync.Mutex
	rng   *rand.Rand

	// session is the compositor of the current visible session, begun as
	// scheduler session sessionGen.
	sessionMu    sync.Mutex
	session      *render.Compositor
	sessionGen   uint64
	sessionStats render.CacheStats // already added to metrics

	mu           sync.RWMutex
	running      bool
	visible      bool
	startTime    time.Time
	ctx          context.Context
	cancel       context.CancelFunc
	watcher      *settingsWatcher
	errorHandler ErrorHandler
	eventHandler EventHandler
}

var _ Wallpaper = (*wallpaper)(nil)

func newWallpaper(store settings.Store, opts Options) (*wallpaper, error) {
	if opts.Logger == nil {
		opts.Logger = NopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.ImageSource == nil {
		opts.ImageSource = render.FileSource{}
	}
	if opts.Clock == nil {
		opts.Clock = schedule.RealClock{}
	}
	if opts.SnapshotBudget <= 0 {
		opts.SnapshotBudget = defaultSnapshotBudget
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}

	initial, err := store.Load()
	if err != nil {
		return nil, NewCategorizedError(fmt.Errorf("failed to load settings: %w", err), ErrorCategorySettings)
	}

	fonts := render.DefaultFontSet()
	seed := uint64(time.Now().UnixNano())
	w := &wallpaper{
		store:   store,
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		frames:  render.NewFrameMetrics(time.Second),
		source:  opts.ImageSource,
		clock:   opts.Clock,
		fonts:   fonts,
		buffer:  render.NewBufferHolder(opts.Width, opts.Height, fonts),
		rng:     rand.New(rand.NewPCG(seed, seed>>1|1)),
		ctx:     context.Background(),
	}
	w.current.Store(&initial)
	w.sched = schedule.New(opts.Clock, schedule.Hooks{
		Begin:   w.beginSession,
		Tick:    w.renderFrame,
		End:     w.endSession,
		Delay:   w.frameDelay,
		OnError: w.onFrameError,
	})
	w.logValidation(initial)
	return w, nil
}

// Start implements Wallpaper.
func (w *wallpaper) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	if w.opts.WatchSettings && w.opts.SettingsPath != "" {
		sw, err := newSettingsWatcher(w.opts.SettingsPath, w.opts.WatchDebounce, w.Reload, w.notifyError)
		if err != nil {
			cancel()
			w.mu.Unlock()
			return NewCategorizedError(fmt.Errorf("failed to watch settings: %w", err), ErrorCategoryIO)
		}
		w.watcher = sw
	}
	w.ctx, w.cancel = ctx, cancel
	w.running = true
	w.startTime = time.Now()
	w.frames.Reset()
	w.mu.Unlock()

	w.metrics.IncrementStarts()
	w.metrics.SetRunning(true)
	w.logger.Info("wallpaper started", "headless", w.opts.Headless, "settings", w.settingsSource())
	w.emitEvent(EventStarted, "wallpaper started")

	if w.opts.Headless {
		w.SetVisible(true)
	}
	return nil
}

// Stop implements Wallpaper.
func (w *wallpaper) Stop() error {
	w.SetVisible(false)

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	sw := w.watcher
	w.watcher = nil
	cancel := w.cancel
	w.mu.Unlock()

	if sw != nil {
		sw.Stop()
	}
	if cancel != nil {
		cancel()
	}

	w.metrics.IncrementStops()
	w.metrics.SetRunning(false)
	w.logger.Info("wallpaper stopped", "frames", w.frames.Frames())
	w.emitEvent(EventStopped, "wallpaper stopped")
	return nil
}

// Run implements Wallpaper.
func (w *wallpaper) Run(ctx context.Context) error {
	if !w.isRunning() {
		if err := w.Start(); err != nil {
			return err
		}
	}
	defer w.Stop()

	// Stop from another goroutine ends Run as well.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	release := context.AfterFunc(w.context(), cancel)
	defer release()

	return w.runHost(ctx)
}

// SetVisible implements Wallpaper. It is ignored while stopped.
func (w *wallpaper) SetVisible(visible bool) {
	w.mu.Lock()
	if visible && !w.running || visible == w.visible {
		w.mu.Unlock()
		return
	}
	w.visible = visible
	w.mu.Unlock()

	w.sched.SetVisible(visible)
	w.metrics.SetVisible(visible)
	if visible {
		w.logger.Debug("wallpaper shown")
		w.emitEvent(EventShown, "wallpaper shown")
	} else {
		w.logger.Debug("wallpaper hidden")
		w.emitEvent(EventHidden, "wallpaper hidden")
	}
}

// Resize implements Wallpaper.
func (w *wallpaper) Resize(width, height int) {
	w.buffer.Resize(width, height)
	w.logger.Debug("surface resized", "width", width, "height", height)
	w.sched.Resize()
}

// Settings implements Wallpaper.
func (w *wallpaper) Settings() settings.WallpaperSettings {
	return w.current.Load().With(nil)
}

// UpdateSettings implements Wallpaper.
func (w *wallpaper) UpdateSettings(s settings.WallpaperSettings) error {
	s = s.With(nil)
	w.logValidation(s)
	w.current.Store(&s)
	w.sched.Redraw()
	w.emitEvent(EventSettingsChanged, "settings updated")

	if err := w.store.Save(s); err != nil {
		return NewCategorizedError(fmt.Errorf("failed to save settings: %w", err), ErrorCategorySettings)
	}
	w.metrics.IncrementSettingsSaves()
	return nil
}

// ApplyPreset implements Wallpaper.
func (w *wallpaper) ApplyPreset(name string) error {
	s, err := settings.Preset(name)
	if err != nil {
		return NewCategorizedError(err, ErrorCategorySettings)
	}
	w.logger.Info("applying preset", "preset", name)
	return w.UpdateSettings(s)
}

// ApplyLayout implements Wallpaper.
func (w *wallpaper) ApplyLayout(kind settings.CollageLayout) error {
	s := w.Settings()
	w.rngMu.Lock()
	images := collage.ApplyLayout(s.CollageImages, kind, w.rng)
	w.rngMu.Unlock()
	return w.UpdateSettings(s.With(func(s *settings.WallpaperSettings) {
		s.CollageLayout = kind
		s.CollageImages = images
	}))
}

// AddImages implements Wallpaper.
func (w *wallpaper) AddImages(refs ...string) error {
	if len(refs) == 0 {
		return nil
	}
	s := w.Settings()
	return w.UpdateSettings(s.WithImages(collage.Append(s.CollageImages, refs...)))
}

// UpdateImage implements Wallpaper.
func (w *wallpaper) UpdateImage(img settings.CollageImage) error {
	s := w.Settings()
	if err := requireImages(s, img.URI); err != nil {
		return err
	}
	return w.UpdateSettings(s.WithImages(collage.Replace(s.CollageImages, img)))
}

// RemoveImages implements Wallpaper.
func (w *wallpaper) RemoveImages(refs ...string) error {
	if len(refs) == 0 {
		return nil
	}
	s := w.Settings()
	if err := requireImages(s, refs...); err != nil {
		return err
	}
	images := s.CollageImages
	for _, ref := range refs {
		images = collage.Remove(images, ref)
	}
	err := w.UpdateSettings(s.WithImages(images))
	w.evictImages(refs...)
	return err
}

// BringToFront implements Wallpaper.
func (w *wallpaper) BringToFront(ref string) error {
	s := w.Settings()
	if err := requireImages(s, ref); err != nil {
		return err
	}
	return w.UpdateSettings(s.WithImages(collage.BringToFront(s.CollageImages, ref)))
}

// SetImageOpacity implements Wallpaper. The opacity is clamped to [0, 1].
func (w *wallpaper) SetImageOpacity(opacity float64) error {
	if math.IsNaN(opacity) {
		return NewCategorizedError(errors.New("opacity is not a number"), ErrorCategorySettings)
	}
	s := w.Settings()
	return w.UpdateSettings(s.WithImages(collage.SetOpacityAll(s.CollageImages, opacity)))
}

// RotateImages implements Wallpaper.
func (w *wallpaper) RotateImages(deg float64) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return NewCategorizedError(fmt.Errorf("invalid rotation %v", deg), ErrorCategorySettings)
	}
	s := w.Settings()
	return w.UpdateSettings(s.WithImages(collage.RotateBy(s.CollageImages, deg)))
}

// requireImages fails with ErrImageNotFound unless every ref is in the
// collage.
func requireImages(s settings.WallpaperSettings, refs ...string) error {
	for _, ref := range refs {
		if !slices.ContainsFunc(s.CollageImages, func(img settings.CollageImage) bool { return img.URI == ref }) {
			return NewCategorizedError(fmt.Errorf("%w: %s", ErrImageNotFound, ref), ErrorCategorySettings).
				WithContext("ref", ref)
		}
	}
	return nil
}

// Import implements Wallpaper.
func (w *wallpaper) Import(data []byte) error {
	s, err := settings.Import(data)
	if err != nil {
		w.metrics.IncrementImportsRejected()
		w.logger.Warn("settings import rejected", "error", err)
		return NewCategorizedError(err, ErrorCategoryImport)
	}
	return w.UpdateSettings(s)
}

// Export implements Wallpaper.
func (w *wallpaper) Export() ([]byte, error) {
	return settings.Export(*w.current.Load())
}

// Reload implements Wallpaper.
func (w *wallpaper) Reload() error {
	s, err := w.store.Load()
	if err != nil {
		return NewCategorizedError(fmt.Errorf("failed to reload settings: %w", err), ErrorCategoryImport)
	}
	if settings.Equal(s, *w.current.Load()) {
		w.logger.Debug("settings unchanged on reload")
		return nil
	}
	w.logValidation(s)
	w.current.Store(&s)
	w.sched.Redraw()
	w.metrics.IncrementSettingsReloads()
	w.logger.Info("settings reloaded", "settings", w.settingsSource())
	w.emitEvent(EventSettingsReloaded, "settings reloaded")
	return nil
}

// Snapshot implements Wallpaper.
func (w *wallpaper) Snapshot(width, height int) (*image.RGBA, error) {
	return w.SnapshotAt(width, height, w.clock.Now())
}

// SnapshotAt implements Wallpaper. Images get the full snapshot budget
// rather than the per-frame one, so a snapshot shows every image that can be
// decoded.
func (w *wallpaper) SnapshotAt(width, height int, at time.Time) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, NewCategorizedError(fmt.Errorf("invalid snapshot size %dx%d", width, height), ErrorCategorySurface)
	}
	surface := render.NewRasterSurface(width, height, w.fonts)
	cache := w.newImageCache()
	defer func() {
		w.recordCacheStats(cache.Stats(), render.CacheStats{})
		cache.ReleaseAll()
	}()

	comp := render.NewCompositor(cache, w.opts.SnapshotBudget, nil)
	report, err := comp.Frame(context.Background(), surface, *w.current.Load(), at)
	w.logSkipped(report)
	if err != nil {
		return nil, NewCategorizedError(err, ErrorCategoryRender)
	}
	return surface.Image(), nil
}

// Frame implements Wallpaper.
func (w *wallpaper) Frame() *image.RGBA {
	return w.buffer.Frame()
}

// Status implements Wallpaper.
func (w *wallpaper) Status() Status {
	w.mu.RLock()
	running, visible, start := w.running, w.visible, w.startTime
	w.mu.RUnlock()

	var cache render.CacheStats
	w.sessionMu.Lock()
	if w.session != nil {
		cache = w.session.Cache().Stats()
	}
	w.sessionMu.Unlock()

	sample := profiling.Sample()
	return Status{
		Running:        running,
		Visible:        visible,
		StartTime:      start,
		Frames:         w.frames.Frames(),
		FPS:            w.frames.FPS(),
		LastFrameTime:  w.frames.LastFrameTime(),
		CachedImages:   cache.Entries,
		Cache:          CacheStats(cache),
		HeapAlloc:      sample.HeapAlloc,
		Goroutines:     sample.Goroutines,
		LastError:      w.getError(),
		SettingsSource: w.settingsSource(),
	}
}

// Health implements Wallpaper.
func (w *wallpaper) Health() HealthCheck {
	w.mu.RLock()
	in := healthInput{
		now:       time.Now(),
		running:   w.running,
		visible:   w.visible,
		startTime: w.startTime,
	}
	w.mu.RUnlock()
	in.frames = w.frames.Frames()
	in.imagesSkipped = w.metrics.Snapshot().ImagesSkipped
	in.lastErr = w.getError()
	return buildHealth(in)
}

// SetErrorHandler implements Wallpaper.
func (w *wallpaper) SetErrorHandler(handler ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errorHandler = handler
}

// SetEventHandler implements Wallpaper.
func (w *wallpaper) SetEventHandler(handler EventHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.eventHandler = handler
}

// Metrics implements Wallpaper.
func (w *wallpaper) Metrics() *Metrics {
	return w.metrics
}

// beginSession builds the image cache of a new visible session.
func (w *wallpaper) beginSession() {
	comp := render.NewCompositor(w.newImageCache(), w.opts.DecodeBudget, w.frames)
	gen := w.sched.Session()
	w.sessionMu.Lock()
	w.session, w.sessionGen = comp, gen
	w.sessionStats = render.CacheStats{}
	w.sessionMu.Unlock()
}

func (w *wallpaper) newImageCache() *render.ImageCache {
	var opts []render.CacheOption
	if w.opts.DownsampleFactor > 0 {
		opts = append(opts, render.WithDownsampleFactor(w.opts.DownsampleFactor))
	}
	return render.NewImageCache(w.source, opts...)
}

// recordCacheStats adds the lookups in cur beyond prev to the metrics.
func (w *wallpaper) recordCacheStats(cur, prev render.CacheStats) {
	w.metrics.AddCacheStats(cur.Hits-prev.Hits, cur.Misses-prev.Misses, cur.Failures-prev.Failures)
}

// evictImages drops refs from the current session cache.
func (w *wallpaper) evictImages(refs ...string) {
	w.sessionMu.Lock()
	defer w.sessionMu.Unlock()
	if w.session == nil {
		return
	}
	for _, ref := range refs {
		w.session.Cache().Remove(ref)
	}
}

// endSession releases every image decoded during the ending session. A
// compositor begun by another session is left alone.
func (w *wallpaper) endSession() {
	gen := w.sched.Session()
	w.sessionMu.Lock()
	var comp *render.Compositor
	var reported render.CacheStats
	if w.sessionGen == gen {
		comp, reported = w.session, w.sessionStats
		w.session = nil
	}
	w.sessionMu.Unlock()
	if comp != nil && !comp.Cache().Released() {
		w.recordCacheStats(comp.Cache().Stats(), reported)
		released := comp.Cache().Len()
		comp.Cache().ReleaseAll()
		w.logger.Debug("image cache released", "images", released)
	}
}

func (w *wallpaper) frameDelay() time.Duration {
	return schedule.FrameDelay(w.current.Load().SmoothSecondHand)
}

// renderFrame draws one frame of the current snapshot into the buffer.
func (w *wallpaper) renderFrame(now time.Time) error {
	w.sessionMu.Lock()
	comp := w.session
	w.sessionMu.Unlock()
	if comp == nil {
		return nil
	}

	surface, err := w.buffer.Acquire()
	if errors.Is(err, render.ErrSurfaceUnavailable) {
		w.metrics.IncrementFramesSkipped()
		w.logger.Debug("frame skipped", "reason", err)
		return nil
	}
	if err != nil {
		return NewCategorizedError(err, ErrorCategorySurface)
	}

	report, frameErr := comp.Frame(w.context(), surface, *w.current.Load(), now)
	presentErr := w.buffer.Present(surface)
	w.sessionMu.Lock()
	if w.session == comp {
		stats := comp.Cache().Stats()
		w.recordCacheStats(stats, w.sessionStats)
		w.sessionStats = stats
	}
	w.sessionMu.Unlock()
	w.metrics.RecordFrame(report.Duration)
	w.logSkipped(report)

	if presentErr != nil {
		return NewCategorizedError(presentErr, ErrorCategorySurface)
	}
	if frameErr != nil {
		return NewCategorizedError(frameErr, ErrorCategoryRender)
	}
	return nil
}

func (w *wallpaper) onFrameError(err error) {
	if CategoryOf(err) == ErrorCategoryUnknown {
		err = NewCategorizedError(err, ErrorCategoryRender)
	}
	w.notifyError(err)
}

// logSkipped counts and logs the images a frame left out.
func (w *wallpaper) logSkipped(report render.FrameReport) {
	if len(report.Skipped) == 0 {
		return
	}
	w.metrics.AddImagesSkipped(len(report.Skipped))
	for _, sk := range report.Skipped {
		if errors.Is(sk.Err, render.ErrImageUnavailable) {
			w.metrics.IncrementDecodeFailures()
		}
		w.logger.Debug("image skipped", "ref", sk.Ref, "error", sk.Err)
	}
}

func (w *wallpaper) logValidation(s settings.WallpaperSettings) {
	result := settings.Validate(s)
	for _, e := range result.Errors {
		w.logger.Warn("settings value ignored", "field", e.Field, "problem", e.Message)
	}
	for _, e := range result.Warnings {
		w.logger.Debug("settings value clamped", "field", e.Field, "problem", e.Message)
	}
}

func (w *wallpaper) isRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *wallpaper) context() context.Context {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ctx
}

func (w *wallpaper) settingsSource() string {
	if w.opts.SettingsPath != "" {
		return w.opts.SettingsPath
	}
	return fmt.Sprintf("%T", w.store)
}

func (w *wallpaper) getError() error {
	if err, ok := w.lastError.Load().(error); ok {
		return err
	}
	return nil
}

// notifyError records err and hands it to the error handler.
func (w *wallpaper) notifyError(err error) {
	if err == nil {
		return
	}
	w.lastError.Store(err)
	w.metrics.IncrementErrors()
	w.logger.Error("runtime error", "category", CategoryOf(err).String(), "error", err)

	w.mu.RLock()
	handler := w.errorHandler
	w.mu.RUnlock()

	if handler != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("error handler panicked", "panic", r, "original_error", err)
				}
			}()
			handler(err)
		}()
	}
	w.emitEvent(EventError, err.Error())
}

// emitEvent sends an event to the event handler.
func (w *wallpaper) emitEvent(eventType EventType, message string) {
	w.metrics.IncrementEventsEmitted()

	w.mu.RLock()
	handler := w.eventHandler
	w.mu.RUnlock()
	if handler == nil {
		return
	}

	event := Event{Type: eventType, Timestamp: time.Now(), Message: message}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("event handler panicked", "panic", r, "event", eventType.String())
			}
		}()
		handler(event)
	}()
}
