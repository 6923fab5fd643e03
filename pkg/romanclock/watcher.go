package romanclock

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is the quiet period before a changed settings file
// is reloaded.
const DefaultWatchDebounce = 500 * time.Millisecond

// settingsWatcher reloads the settings file after it changes. It watches
// the parent directory so editors that save by rename are seen.
type settingsWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func() error
	onError  func(error)

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newSettingsWatcher(path string, debounce time.Duration, onChange func() error, onError func(error)) (*settingsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	sw := &settingsWatcher{
		watcher:  w,
		path:     path,
		debounce: debounce,
		onChange: onChange,
		onError:  onError,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go sw.loop()
	return sw, nil
}

// Stop ends the watch and waits for the loop to exit.
func (sw *settingsWatcher) Stop() {
	sw.stopOnce.Do(func() { close(sw.stopCh) })
	<-sw.doneCh
}

// matches reports whether an event name refers to the watched file.
func (sw *settingsWatcher) matches(name string) bool {
	if filepath.Base(name) != filepath.Base(sw.path) {
		return false
	}
	want, err1 := filepath.Abs(sw.path)
	got, err2 := filepath.Abs(name)
	return err1 != nil || err2 != nil || want == got
}

func (sw *settingsWatcher) loop() {
	defer close(sw.doneCh)
	defer sw.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-sw.stopCh:
			return

		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.matches(ev.Name) || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(sw.debounce)
			fire = timer.C

		case <-fire:
			timer, fire = nil, nil
			if err := sw.onChange(); err != nil && sw.onError != nil {
				sw.onError(err)
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			if sw.onError != nil {
				sw.onError(err)
			}
		}
	}
}
