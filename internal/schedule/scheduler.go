// Package schedule drives frame rendering: a repeating task that runs only
// while the wallpaper is visible, with its delay chosen per tick.
package schedule

import (
	"fmt"
	"sync"
	"time"
)

// Frame delays for the two second-hand modes.
const (
	SmoothDelay = 16 * time.Millisecond
	TickDelay   = time.Second
)

// FrameDelay returns the time between frames.
func FrameDelay(smooth bool) time.Duration {
	if smooth {
		return SmoothDelay
	}
	return TickDelay
}

// Handle cancels a repeating task. Stop may be called any number of times.
type Handle struct {
	stop func()
	once *sync.Once
}

// Stop cancels the task. A pending run is dropped; a run in progress
// finishes but schedules nothing.
func (h Handle) Stop() {
	if h.once == nil {
		return
	}
	h.once.Do(h.stop)
}

// task is a self-rescheduling callback.
type task struct {
	clock Clock
	delay func() time.Duration
	run   func()

	mu      sync.Mutex
	timer   Timer
	stopped bool
}

// Repeat runs fn now and then again after each delay() until the returned
// handle is stopped.
func Repeat(clock Clock, delay func() time.Duration, fn func()) Handle {
	t := &task{clock: clock, delay: delay, run: fn}
	t.fire()
	return Handle{stop: t.stop, once: new(sync.Once)}
}

func (t *task) fire() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.run()

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stopped {
		t.timer = t.clock.AfterFunc(t.delay(), t.fire)
	}
}

func (t *task) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// State is the scheduler lifecycle state.
type State int

const (
	Stopped State = iota
	Running
	Destroyed
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Hooks are the callbacks of a Scheduler. Only Tick is required. Hooks must
// not call SetVisible or Destroy.
type Hooks struct {
	// Begin runs when a visible session starts, before its first tick.
	Begin func()
	// Tick draws one frame.
	Tick func(now time.Time) error
	// End runs when the session stops, after the pending tick is cancelled.
	End func()
	// Delay picks the time until the next tick. Nil means TickDelay.
	Delay func() time.Duration
	// OnError receives tick errors and panics. The loop keeps going.
	OnError func(error)
}

// Scheduler renders frames while visible. Frames never overlap.
type Scheduler struct {
	clock Clock
	hooks Hooks

	mu     sync.Mutex
	state  State
	gen    uint64
	handle Handle
	ticks  int64
	errs   int64

	// sessionMu serializes session transitions: the End of one session
	// finishes before the Begin of the next.
	sessionMu sync.Mutex
	frameMu   sync.Mutex
}

// New returns a stopped scheduler. A nil clock means RealClock.
func New(clock Clock, hooks Hooks) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	if hooks.Delay == nil {
		hooks.Delay = func() time.Duration { return TickDelay }
	}
	return &Scheduler{clock: clock, hooks: hooks}
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ticks returns the number of frames run, errors included.
func (s *Scheduler) Ticks() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Errors returns the number of failed frames.
func (s *Scheduler) Errors() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs
}

// Session returns the number of sessions begun so far. During Begin and End
// it identifies the session being started or stopped.
func (s *Scheduler) Session() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Start makes the scheduler visible and returns a handle that hides it.
func (s *Scheduler) Start() Handle {
	s.SetVisible(true)
	return Handle{stop: func() { s.SetVisible(false) }, once: new(sync.Once)}
}

// SetVisible starts or stops the render loop. Becoming visible starts a new
// session and draws a frame at once. Repeated calls with the same value are
// no-ops. A call made while another session is being stopped waits for its
// End hook.
func (s *Scheduler) SetVisible(visible bool) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	s.mu.Lock()
	switch {
	case s.state == Destroyed:
		s.mu.Unlock()
	case visible && s.state == Stopped:
		s.state = Running
		s.gen++
		s.mu.Unlock()
		if s.hooks.Begin != nil {
			s.hooks.Begin()
		}
		h := Repeat(s.clock, s.hooks.Delay, s.loopTick)
		s.mu.Lock()
		s.handle = h
		s.mu.Unlock()
	case !visible && s.state == Running:
		s.stopLocked(Stopped)
	default:
		s.mu.Unlock()
	}
}

// Resize draws one extra frame for the new surface size.
func (s *Scheduler) Resize() {
	s.Redraw()
}

// Redraw draws one extra frame when running. The pending tick is kept.
func (s *Scheduler) Redraw() {
	if s.State() != Running {
		return
	}
	s.tick()
}

// Destroy stops the loop for good.
func (s *Scheduler) Destroy() {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	s.mu.Lock()
	switch s.state {
	case Running:
		s.stopLocked(Destroyed)
	default:
		s.state = Destroyed
		s.mu.Unlock()
	}
}

// stopLocked moves to next, cancels the loop and runs End once a frame in
// progress is done. s.mu and s.sessionMu must be held; s.mu is released.
func (s *Scheduler) stopLocked(next State) {
	h := s.handle
	s.handle = Handle{}
	s.state = next
	s.mu.Unlock()

	h.Stop()
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if s.hooks.End != nil {
		s.hooks.End()
	}
}

func (s *Scheduler) loopTick() {
	if s.State() != Running {
		return
	}
	s.tick()
}

func (s *Scheduler) tick() {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	err := s.safeTick(s.clock.Now())

	s.mu.Lock()
	s.ticks++
	if err != nil {
		s.errs++
	}
	s.mu.Unlock()

	if err != nil && s.hooks.OnError != nil {
		s.hooks.OnError(err)
	}
}

func (s *Scheduler) safeTick(now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("frame panicked: %v", r)
		}
	}()
	return s.hooks.Tick(now)
}
