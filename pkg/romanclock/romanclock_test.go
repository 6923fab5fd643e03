package romanclock

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/opd-ai/romanclock/internal/render"
	"github.com/opd-ai/romanclock/internal/schedule"
	"github.com/opd-ai/romanclock/internal/settings"
)

var testNow = time.Date(2024, time.March, 5, 10, 8, 30, 0, time.UTC)

func pngBytes(t testing.TB, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func testImages(t testing.TB) fstest.MapFS {
	return fstest.MapFS{
		"photos/red.png": {Data: pngBytes(t, 40, 40, color.NRGBA{R: 255, A: 255})},
		"photos/bad.png": {Data: []byte("not an image")},
	}
}

// scriptedStore is a Store with replaceable behavior.
type scriptedStore struct {
	mu      sync.Mutex
	loaded  settings.WallpaperSettings
	loadErr error
	saveErr error
	saves   int
}

func (s *scriptedStore) Load() (settings.WallpaperSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return settings.WallpaperSettings{}, s.loadErr
	}
	return s.loaded.With(nil), nil
}

func (s *scriptedStore) Save(ws settings.WallpaperSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.loaded = ws.With(nil)
	return nil
}

func (s *scriptedStore) set(fn func(s *scriptedStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

type fixture struct {
	w     *wallpaper
	clock *schedule.ManualClock
	store *scriptedStore
}

func newFixture(t *testing.T, initial settings.WallpaperSettings) *fixture {
	t.Helper()
	store := &scriptedStore{loaded: initial}
	clock := schedule.NewManualClock(testNow)
	opts := DefaultOptions()
	opts.Headless = true
	opts.Width, opts.Height = 64, 48
	opts.Clock = clock
	opts.ImageSource = render.FileSource{FS: testImages(t)}
	opts.DecodeBudget = 5 * time.Second
	wp, err := New(store, &opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w := wp.(*wallpaper)
	t.Cleanup(func() { w.Stop() })
	return &fixture{w: w, clock: clock, store: store}
}

// solid returns settings with background c and no text, so that small
// frames have untouched corners.
func solid(c settings.ARGB) settings.WallpaperSettings {
	return settings.Default().With(func(s *settings.WallpaperSettings) {
		s.BackgroundColor = c
		s.ShowNumerals = false
		s.ShowDate = false
		s.ShowDay = false
	})
}

func pixel(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Error("New(nil) error = nil, want error")
	}
}

func TestNewLoadFailure(t *testing.T) {
	store := &scriptedStore{loadErr: errors.New("disk on fire")}
	_, err := New(store, nil)
	if err == nil {
		t.Fatal("New() error = nil, want load error")
	}
	if CategoryOf(err) != ErrorCategorySettings {
		t.Errorf("category = %v, want settings", CategoryOf(err))
	}
}

func TestHeadlessStartDrawsFrame(t *testing.T) {
	f := newFixture(t, solid(settings.RGB(200, 10, 10)))

	if f.w.Frame() != nil {
		t.Fatal("Frame() before Start is not nil")
	}
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.w.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	frame := f.w.Frame()
	if frame == nil {
		t.Fatal("Frame() = nil after Start")
	}
	if b := frame.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("frame size = %v, want 64x48", b.Size())
	}
	if got := pixel(frame, 0, 0); got != (color.RGBA{R: 200, G: 10, B: 10, A: 255}) {
		t.Errorf("corner pixel = %v, want background", got)
	}

	st := f.w.Status()
	if !st.Running || !st.Visible || st.Frames != 1 {
		t.Errorf("Status() = %+v, want running, visible, 1 frame", st)
	}
}

func TestRenderLoopCadence(t *testing.T) {
	f := newFixture(t, settings.Default())
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	f.clock.Advance(time.Second)
	f.clock.Advance(3 * time.Second)
	if got := f.w.Status().Frames; got != 5 {
		t.Errorf("frames after 4s = %d, want 5", got)
	}

	f.w.SetVisible(false)
	if f.clock.Pending() != 0 {
		t.Errorf("pending timers after hide = %d, want 0", f.clock.Pending())
	}
	f.clock.Advance(10 * time.Second)
	if got := f.w.Status().Frames; got != 5 {
		t.Errorf("frames while hidden = %d, want 5", got)
	}

	f.w.SetVisible(true)
	if got := f.w.Status().Frames; got != 6 {
		t.Errorf("frames after show = %d, want 6", got)
	}
}

func TestSetVisibleIgnoredWhileStopped(t *testing.T) {
	f := newFixture(t, settings.Default())
	f.w.SetVisible(true)
	if f.w.Frame() != nil || f.w.Status().Visible {
		t.Error("SetVisible(true) on a stopped wallpaper rendered")
	}
}

func TestStopReleasesSession(t *testing.T) {
	s := solid(settings.Black).With(func(s *settings.WallpaperSettings) {
		s.BackgroundType = settings.BackgroundCollage
		s.CollageImages = []settings.CollageImage{{URI: "photos/red.png", Width: 1, Height: 1, Opacity: 1}}
	})
	f := newFixture(t, s)
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := f.w.Status().CachedImages; got != 1 {
		t.Errorf("CachedImages = %d, want 1", got)
	}
	if got := pixel(f.w.Frame(), 1, 1); got.R != 255 || got.G != 0 || got.B != 0 {
		t.Errorf("collage pixel = %v, want red", got)
	}

	if err := f.w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := f.w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
	st := f.w.Status()
	if st.Running || st.Visible || st.CachedImages != 0 {
		t.Errorf("Status() after Stop = %+v", st)
	}
}

func TestMissingImageIsSkipped(t *testing.T) {
	s := solid(settings.RGB(0, 0, 90)).With(func(s *settings.WallpaperSettings) {
		s.BackgroundType = settings.BackgroundCollage
		s.CollageImages = []settings.CollageImage{
			{URI: "photos/bad.png", Width: 1, Height: 1, Opacity: 1},
			{URI: "photos/missing.png", Width: 1, Height: 1, Opacity: 1},
		}
	})
	f := newFixture(t, s)
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if got := pixel(f.w.Frame(), 0, 0); got != (color.RGBA{B: 90, A: 255}) {
		t.Errorf("corner pixel = %v, want background only", got)
	}
	m := f.w.Metrics().Snapshot()
	if m.ImagesSkipped != 2 || m.DecodeFailures != 2 {
		t.Errorf("skipped = %d, decode failures = %d; want 2 and 2", m.ImagesSkipped, m.DecodeFailures)
	}
	if h := f.w.Health(); !h.IsDegraded() {
		t.Errorf("Health() = %v, want degraded", h.Status)
	}
}

func TestUpdateSettingsRedrawsAndSaves(t *testing.T) {
	f := newFixture(t, solid(settings.Black))
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	next := solid(settings.RGB(0, 128, 0))
	if err := f.w.UpdateSettings(next); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if got := pixel(f.w.Frame(), 0, 0); got != (color.RGBA{G: 128, A: 255}) {
		t.Errorf("pixel after update = %v, want new background", got)
	}
	if !settings.Equal(f.w.Settings(), next) {
		t.Error("Settings() does not match the update")
	}
	if f.store.saves != 1 {
		t.Errorf("saves = %d, want 1", f.store.saves)
	}
	if got := f.w.Metrics().Snapshot().SettingsSaves; got != 1 {
		t.Errorf("SettingsSaves = %d, want 1", got)
	}
}

func TestUpdateSettingsSaveFailureKeepsSnapshot(t *testing.T) {
	f := newFixture(t, settings.Default())
	f.store.set(func(s *scriptedStore) { s.saveErr = settings.ErrReadOnly })

	next := solid(settings.White)
	err := f.w.UpdateSettings(next)
	if !errors.Is(err, settings.ErrReadOnly) {
		t.Fatalf("UpdateSettings() error = %v, want ErrReadOnly", err)
	}
	if CategoryOf(err) != ErrorCategorySettings {
		t.Errorf("category = %v, want settings", CategoryOf(err))
	}
	if !settings.Equal(f.w.Settings(), next) {
		t.Error("snapshot was not applied when saving failed")
	}
}

func TestSettingsReturnsCopy(t *testing.T) {
	s := settings.Default().WithImages([]settings.CollageImage{settings.NewCollageImage("a.png")})
	f := newFixture(t, s)

	got := f.w.Settings()
	got.CollageImages[0].URI = "changed.png"
	if f.w.Settings().CollageImages[0].URI != "a.png" {
		t.Error("mutating the returned settings changed the wallpaper")
	}
}

func TestImport(t *testing.T) {
	f := newFixture(t, settings.Default())
	before := f.w.Settings()

	tests := []struct {
		name    string
		payload string
	}{
		{"malformed", `{"backgroundType":`},
		{"partial", `{"backgroundType":"GRADIENT"}`},
		{"not an object", `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.w.Import([]byte(tt.payload))
			if !errors.Is(err, settings.ErrInvalidPayload) {
				t.Fatalf("Import() error = %v, want ErrInvalidPayload", err)
			}
			if CategoryOf(err) != ErrorCategoryImport {
				t.Errorf("category = %v, want import", CategoryOf(err))
			}
			if !settings.Equal(f.w.Settings(), before) {
				t.Error("rejected import changed the settings")
			}
		})
	}
	if got := f.w.Metrics().Snapshot().ImportsRejected; got != int64(len(tests)) {
		t.Errorf("ImportsRejected = %d, want %d", got, len(tests))
	}

	want := settings.Sunset()
	data, err := settings.Export(want)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if err := f.w.Import(data); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if !settings.Equal(f.w.Settings(), want) {
		t.Error("Import() did not apply the payload")
	}

	exported, err := f.w.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.Equal(exported, data) {
		t.Error("Export() differs from the imported payload")
	}
}

func TestApplyPreset(t *testing.T) {
	f := newFixture(t, settings.Default().WithImages([]settings.CollageImage{settings.NewCollageImage("a.png")}))

	if err := f.w.ApplyPreset("Ocean"); err != nil {
		t.Fatalf("ApplyPreset() error = %v", err)
	}
	if !settings.Equal(f.w.Settings(), settings.Ocean()) {
		t.Error("preset did not replace the settings")
	}

	if err := f.w.ApplyPreset("nope"); err == nil {
		t.Error("ApplyPreset(unknown) error = nil")
	}
	if !settings.Equal(f.w.Settings(), settings.Ocean()) {
		t.Error("unknown preset changed the settings")
	}
}

func TestAddImagesAndLayout(t *testing.T) {
	f := newFixture(t, settings.Default())

	if err := f.w.AddImages(); err != nil {
		t.Errorf("AddImages() with no refs error = %v", err)
	}
	if err := f.w.AddImages("a.png", "b.png"); err != nil {
		t.Fatalf("AddImages() error = %v", err)
	}
	if err := f.w.AddImages("c.png"); err != nil {
		t.Fatalf("AddImages() error = %v", err)
	}
	images := f.w.Settings().CollageImages
	if len(images) != 3 {
		t.Fatalf("images = %d, want 3", len(images))
	}
	for i, img := range images {
		if img.ZIndex != i {
			t.Errorf("image %d zIndex = %d", i, img.ZIndex)
		}
	}

	if err := f.w.ApplyLayout(settings.LayoutGrid); err != nil {
		t.Fatalf("ApplyLayout() error = %v", err)
	}
	s := f.w.Settings()
	if s.CollageLayout != settings.LayoutGrid {
		t.Errorf("CollageLayout = %v, want GRID", s.CollageLayout)
	}
	for i, img := range s.CollageImages {
		if img.URI != images[i].URI || img.ZIndex != images[i].ZIndex {
			t.Errorf("layout changed identity of image %d: %+v", i, img)
		}
		if img.Rotation != 0 {
			t.Errorf("grid image %d rotation = %v, want 0", i, img.Rotation)
		}
	}

	if err := f.w.ApplyLayout(settings.LayoutRandom); err != nil {
		t.Fatalf("ApplyLayout(RANDOM) error = %v", err)
	}
	if got := f.w.Settings().CollageLayout; got != settings.LayoutRandom {
		t.Errorf("CollageLayout = %v, want RANDOM", got)
	}
}

func TestReload(t *testing.T) {
	f := newFixture(t, settings.Default())

	if err := f.w.Reload(); err != nil {
		t.Fatalf("Reload() unchanged error = %v", err)
	}
	if got := f.w.Metrics().Snapshot().SettingsReloads; got != 0 {
		t.Errorf("SettingsReloads after no-op reload = %d, want 0", got)
	}

	f.store.set(func(s *scriptedStore) { s.loaded = settings.Forest() })
	if err := f.w.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if !settings.Equal(f.w.Settings(), settings.Forest()) {
		t.Error("Reload() did not apply the stored settings")
	}

	f.store.set(func(s *scriptedStore) { s.loadErr = settings.ErrInvalidPayload })
	err := f.w.Reload()
	if CategoryOf(err) != ErrorCategoryImport {
		t.Errorf("failed Reload() category = %v, want import", CategoryOf(err))
	}
	if !settings.Equal(f.w.Settings(), settings.Forest()) {
		t.Error("failed reload replaced the settings")
	}
	if got := f.w.Metrics().Snapshot().SettingsReloads; got != 1 {
		t.Errorf("SettingsReloads = %d, want 1", got)
	}
}

func TestSnapshotAt(t *testing.T) {
	f := newFixture(t, solid(settings.RGB(10, 20, 30)))

	img, err := f.w.SnapshotAt(120, 80, testNow)
	if err != nil {
		t.Fatalf("SnapshotAt() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("snapshot size = %v, want 120x80", b.Size())
	}
	if got := pixel(img, 0, 0); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("corner = %v, want background", got)
	}
	if got := pixel(img, 60, 40); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("center = %v, want the white knob", got)
	}
	if f.w.Frame() != nil {
		t.Error("SnapshotAt() touched the live frame buffer")
	}

	again, err := f.w.Snapshot(120, 80)
	if err != nil || again == nil {
		t.Fatalf("Snapshot() = %v, %v", again, err)
	}

	for _, size := range [][2]int{{0, 10}, {10, -1}} {
		if _, err := f.w.SnapshotAt(size[0], size[1], testNow); CategoryOf(err) != ErrorCategorySurface {
			t.Errorf("SnapshotAt(%v) error = %v, want surface error", size, err)
		}
	}
}

func TestResizeRedraws(t *testing.T) {
	f := newFixture(t, settings.Default())
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.w.Resize(32, 20)
	frame := f.w.Frame()
	if b := frame.Bounds(); b.Dx() != 32 || b.Dy() != 20 {
		t.Errorf("frame size after resize = %v, want 32x20", b.Size())
	}
	if got := f.w.Status().Frames; got != 2 {
		t.Errorf("frames = %d, want 2", got)
	}

	f.w.Resize(0, 0)
	f.clock.Advance(time.Second)
	if got := f.w.Metrics().Snapshot().FramesSkipped; got < 1 {
		t.Errorf("FramesSkipped = %d, want at least 1 for an empty surface", got)
	}
}

func TestEventsAndErrorHandler(t *testing.T) {
	f := newFixture(t, settings.Default())

	events := make(chan EventType, 16)
	f.w.SetEventHandler(func(e Event) { events <- e.Type })
	errs := make(chan error, 4)
	f.w.SetErrorHandler(func(err error) { errs <- err })

	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.w.notifyError(NewCategorizedError(errors.New("boom"), ErrorCategoryRender))
	if err := f.w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	want := map[EventType]bool{EventStarted: false, EventShown: false, EventError: false, EventHidden: false, EventStopped: false}
	timeout := time.After(2 * time.Second)
	for seen := 0; seen < len(want); {
		select {
		case et := <-events:
			if done, ok := want[et]; ok && !done {
				want[et] = true
				seen++
			}
		case <-timeout:
			t.Fatalf("events seen = %v", want)
		}
	}

	select {
	case err := <-errs:
		if CategoryOf(err) != ErrorCategoryRender {
			t.Errorf("handler error category = %v, want render", CategoryOf(err))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was not called")
	}
	if st := f.w.Status(); st.LastError == nil {
		t.Error("Status().LastError = nil after an error")
	}
}

func TestPanickingHandlersAreRecovered(t *testing.T) {
	f := newFixture(t, settings.Default())
	called := make(chan struct{}, 2)
	f.w.SetErrorHandler(func(error) {
		called <- struct{}{}
		panic("handler bug")
	})
	f.w.SetEventHandler(func(Event) {
		called <- struct{}{}
		panic("handler bug")
	})

	f.w.notifyError(errors.New("boom"))
	for i := 0; i < 2; i++ {
		select {
		case <-called:
		case <-time.After(2 * time.Second):
			t.Fatal("handler not called")
		}
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, settings.Default())
	if h := f.w.Health(); !h.IsUnhealthy() {
		t.Errorf("Health() before Start = %v, want unhealthy", h.Status)
	}
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	h := f.w.Health()
	if !h.IsHealthy() {
		t.Errorf("Health() = %v (%s), want ok", h.Status, h.Message)
	}
	for _, name := range []string{"renderer", "images", "errors"} {
		if _, ok := h.Components[name]; !ok {
			t.Errorf("missing component %q", name)
		}
	}
}

func TestNewInMemoryDefaults(t *testing.T) {
	w, err := NewInMemory(nil)
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	impl := w.(*wallpaper)
	if impl.opts.Width != DefaultWidth || impl.opts.Height != DefaultHeight || impl.opts.Title != DefaultTitle {
		t.Errorf("options = %+v, want defaults", impl.opts)
	}
	if !settings.Equal(w.Settings(), settings.Default()) {
		t.Error("in-memory wallpaper does not start from the default settings")
	}
	if got := w.Status().SettingsSource; got != "*settings.MemoryStore" {
		t.Errorf("SettingsSource = %q", got)
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventStarted, "started"},
		{EventStopped, "stopped"},
		{EventShown, "shown"},
		{EventHidden, "hidden"},
		{EventSettingsChanged, "settings_changed"},
		{EventSettingsReloaded, "settings_reloaded"},
		{EventError, "error"},
		{EventType(100), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.eventType.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestHideShowKeepsRendering(t *testing.T) {
	s := solid(settings.Black).With(func(s *settings.WallpaperSettings) {
		s.BackgroundType = settings.BackgroundCollage
		s.CollageImages = []settings.CollageImage{{URI: "photos/red.png", Width: 1, Height: 1, Opacity: 1}}
	})
	f := newFixture(t, s)
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		f.w.SetVisible(false)
		f.w.SetVisible(true)
	}
	st := f.w.Status()
	if st.Frames != 4 || st.CachedImages != 1 {
		t.Errorf("after hide/show: frames = %d, cached = %d; want 4 and 1", st.Frames, st.CachedImages)
	}
	f.clock.Advance(time.Second)
	if got := f.w.Status().Frames; got != 5 {
		t.Errorf("frames after tick = %d, want 5", got)
	}
}

func TestStaleSessionEndKeepsCurrentCache(t *testing.T) {
	s := solid(settings.Black).With(func(s *settings.WallpaperSettings) {
		s.BackgroundType = settings.BackgroundCollage
		s.CollageImages = []settings.CollageImage{{URI: "photos/red.png", Width: 1, Height: 1, Opacity: 1}}
	})
	f := newFixture(t, s)
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// An End left over from an earlier session must not release this one.
	f.w.sessionMu.Lock()
	f.w.sessionGen++
	f.w.sessionMu.Unlock()
	f.w.endSession()

	f.w.sessionMu.Lock()
	comp := f.w.session
	f.w.sessionMu.Unlock()
	if comp == nil || comp.Cache().Released() {
		t.Fatal("stale endSession released the current session")
	}
	if got := f.w.Status().CachedImages; got != 1 {
		t.Errorf("CachedImages = %d, want 1", got)
	}
}

func collageOf(uris ...string) settings.WallpaperSettings {
	s := settings.Default()
	for i, uri := range uris {
		img := settings.NewCollageImage(uri)
		img.ZIndex = i
		s.CollageImages = append(s.CollageImages, img)
	}
	return s
}

func TestCollageEdits(t *testing.T) {
	f := newFixture(t, collageOf("a.png", "b.png", "c.png"))

	if err := f.w.BringToFront("a.png"); err != nil {
		t.Fatalf("BringToFront() error = %v", err)
	}
	if got := f.w.Settings().CollageImages[0].ZIndex; got != 3 {
		t.Errorf("a.png zIndex = %d, want 3", got)
	}

	if err := f.w.SetImageOpacity(1.5); err != nil {
		t.Fatalf("SetImageOpacity() error = %v", err)
	}
	for _, img := range f.w.Settings().CollageImages {
		if img.Opacity != 1 {
			t.Errorf("%s opacity = %v, want clamped 1", img.URI, img.Opacity)
		}
	}

	if err := f.w.RotateImages(-90); err != nil {
		t.Fatalf("RotateImages() error = %v", err)
	}
	for _, img := range f.w.Settings().CollageImages {
		if img.Rotation != 270 {
			t.Errorf("%s rotation = %v, want 270", img.URI, img.Rotation)
		}
	}

	updated := f.w.Settings().CollageImages[1]
	updated.X, updated.ScaleType = 0.5, settings.ScaleFitCenter
	if err := f.w.UpdateImage(updated); err != nil {
		t.Fatalf("UpdateImage() error = %v", err)
	}
	if got := f.w.Settings().CollageImages[1]; got.X != 0.5 || got.ScaleType != settings.ScaleFitCenter {
		t.Errorf("updated image = %+v", got)
	}

	if err := f.w.RemoveImages("b.png", "c.png"); err != nil {
		t.Fatalf("RemoveImages() error = %v", err)
	}
	images := f.w.Settings().CollageImages
	if len(images) != 1 || images[0].URI != "a.png" {
		t.Errorf("images after remove = %+v", images)
	}
	if f.store.saves != 5 {
		t.Errorf("saves = %d, want 5", f.store.saves)
	}
}

func TestCollageEditErrors(t *testing.T) {
	f := newFixture(t, collageOf("a.png"))
	before := f.w.Settings()

	tests := []struct {
		name string
		edit func() error
		is   error
	}{
		{"remove unknown", func() error { return f.w.RemoveImages("a.png", "zzz.png") }, ErrImageNotFound},
		{"front unknown", func() error { return f.w.BringToFront("zzz.png") }, ErrImageNotFound},
		{"update unknown", func() error { return f.w.UpdateImage(settings.NewCollageImage("zzz.png")) }, ErrImageNotFound},
		{"opacity NaN", func() error { return f.w.SetImageOpacity(math.NaN()) }, nil},
		{"rotate Inf", func() error { return f.w.RotateImages(math.Inf(1)) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.edit()
			if err == nil {
				t.Fatal("error = nil")
			}
			if CategoryOf(err) != ErrorCategorySettings {
				t.Errorf("category = %v, want settings", CategoryOf(err))
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
		})
	}
	if !settings.Equal(f.w.Settings(), before) {
		t.Error("failed edits changed the settings")
	}
	if err := f.w.RemoveImages(); err != nil {
		t.Errorf("RemoveImages() with no refs error = %v", err)
	}
}

func redCollage() settings.WallpaperSettings {
	return solid(settings.Black).With(func(s *settings.WallpaperSettings) {
		s.BackgroundType = settings.BackgroundCollage
		s.CollageImages = []settings.CollageImage{{URI: "photos/red.png", Width: 1, Height: 1, Opacity: 1}}
	})
}

func TestCacheStatsReported(t *testing.T) {
	f := newFixture(t, redCollage())
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.clock.Advance(2 * time.Second)

	st := f.w.Status().Cache
	if st.Misses != 1 || st.Hits != 2 || st.Entries != 1 {
		t.Errorf("session cache = %+v, want 1 miss, 2 hits, 1 entry", st)
	}
	m := f.w.Metrics().Snapshot()
	if m.CacheMisses != 1 || m.CacheHits != 2 {
		t.Errorf("metrics cache = %d hits, %d misses; want 2 and 1", m.CacheHits, m.CacheMisses)
	}

	if _, err := f.w.SnapshotAt(20, 20, testNow); err != nil {
		t.Fatalf("SnapshotAt() error = %v", err)
	}
	if err := f.w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if m := f.w.Metrics().Snapshot(); m.CacheMisses != 2 || m.CacheHits != 2 {
		t.Errorf("metrics after snapshot and stop = %d hits, %d misses; want 2 and 2", m.CacheHits, m.CacheMisses)
	}
}

func TestRemoveImagesEvictsCache(t *testing.T) {
	f := newFixture(t, redCollage())
	if err := f.w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := f.w.Status().CachedImages; got != 1 {
		t.Fatalf("CachedImages = %d, want 1", got)
	}
	if err := f.w.RemoveImages("photos/red.png"); err != nil {
		t.Fatalf("RemoveImages() error = %v", err)
	}
	if got := f.w.Status().CachedImages; got != 0 {
		t.Errorf("CachedImages after remove = %d, want 0", got)
	}
}

func TestDownsampleFactorOption(t *testing.T) {
	opts := DefaultOptions()
	opts.Headless = true
	opts.Width, opts.Height = 16, 16
	opts.Clock = schedule.NewManualClock(testNow)
	opts.ImageSource = render.FileSource{FS: testImages(t)}
	opts.DecodeBudget = 5 * time.Second
	opts.DownsampleFactor = 4
	wp, err := New(settings.NewMemoryStore(), &opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w := wp.(*wallpaper)

	d, err := w.newImageCache().Get(context.Background(), "photos/red.png")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if d.Width != 10 || d.Height != 10 {
		t.Errorf("decoded size = %dx%d, want 10x10", d.Width, d.Height)
	}
}
