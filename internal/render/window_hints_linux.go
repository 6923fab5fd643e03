//go:build linux

package render

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// DesktopHints selects the EWMH hints that turn the host window into a
// wallpaper.
type DesktopHints struct {
	Desktop     bool // _NET_WM_WINDOW_TYPE_DESKTOP
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

// stateAtoms returns the _NET_WM_STATE atom names for h.
func (h DesktopHints) stateAtoms() []string {
	var names []string
	if h.Below {
		names = append(names, "_NET_WM_STATE_BELOW")
	}
	if h.Sticky {
		names = append(names, "_NET_WM_STATE_STICKY")
	}
	if h.SkipTaskbar {
		names = append(names, "_NET_WM_STATE_SKIP_TASKBAR")
	}
	if h.SkipPager {
		names = append(names, "_NET_WM_STATE_SKIP_PAGER")
	}
	return names
}

// ErrNoWindow is returned when no X11 window could be found to hint.
var ErrNoWindow = errors.New("no X11 window to hint")

type hintApplier struct {
	mu    sync.Mutex
	conn  *xgb.Conn
	atoms map[string]xproto.Atom
}

var desktopHinter = &hintApplier{atoms: make(map[string]xproto.Atom)}

// ApplyDesktopHints sets h on the active X11 window. It must run after the
// host window is mapped. Failures leave the window as a normal window.
func ApplyDesktopHints(h DesktopHints) error {
	if h.None() {
		return nil
	}
	return desktopHinter.apply(h)
}

// CloseDesktopHints drops the X11 connection used for hinting.
func CloseDesktopHints() {
	desktopHinter.close()
}

func (a *hintApplier) apply(h DesktopHints) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		conn, err := xgb.NewConn()
		if err != nil {
			return fmt.Errorf("connect to X11: %w", err)
		}
		a.conn = conn
	}

	window, err := a.activeWindow()
	if err != nil {
		return err
	}

	if h.Desktop {
		typ, err := a.atom("_NET_WM_WINDOW_TYPE_DESKTOP")
		if err != nil {
			return err
		}
		if err := a.setAtoms(window, "_NET_WM_WINDOW_TYPE", []xproto.Atom{typ}); err != nil {
			return err
		}
	}

	names := h.stateAtoms()
	if len(names) == 0 {
		return nil
	}
	state, err := a.atomList(window, "_NET_WM_STATE")
	if err != nil {
		state = nil
	}
	for _, name := range names {
		atom, err := a.atom(name)
		if err != nil {
			return err
		}
		if !slices.Contains(state, atom) {
			state = append(state, atom)
		}
	}
	return a.setAtoms(window, "_NET_WM_STATE", state)
}

func (a *hintApplier) atom(name string) (xproto.Atom, error) {
	if atom, ok := a.atoms[name]; ok {
		return atom, nil
	}
	reply, err := xproto.InternAtom(a.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern atom %s: %w", name, err)
	}
	a.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// activeWindow prefers _NET_ACTIVE_WINDOW and falls back to the input focus.
func (a *hintApplier) activeWindow() (xproto.Window, error) {
	setup := xproto.Setup(a.conn)
	if len(setup.Roots) == 0 {
		return xproto.WindowNone, ErrNoWindow
	}
	root := setup.Roots[0].Root

	if active, err := a.atom("_NET_ACTIVE_WINDOW"); err == nil {
		reply, err := xproto.GetProperty(a.conn, false, root, active, xproto.AtomWindow, 0, 1).Reply()
		if err == nil && reply != nil && len(reply.Value) >= 4 {
			if w := xproto.Window(xgb.Get32(reply.Value)); w != xproto.WindowNone {
				return w, nil
			}
		}
	}

	focus, err := xproto.GetInputFocus(a.conn).Reply()
	if err != nil {
		return xproto.WindowNone, fmt.Errorf("get input focus: %w", err)
	}
	if focus.Focus == xproto.WindowNone {
		return xproto.WindowNone, ErrNoWindow
	}
	return focus.Focus, nil
}

func (a *hintApplier) atomList(window xproto.Window, prop string) ([]xproto.Atom, error) {
	propAtom, err := a.atom(prop)
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(a.conn, false, window, propAtom, xproto.AtomAtom, 0, 256).Reply()
	if err != nil || reply == nil {
		return nil, err
	}
	atoms := make([]xproto.Atom, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		atoms = append(atoms, xproto.Atom(xgb.Get32(reply.Value[i:])))
	}
	return atoms, nil
}

func (a *hintApplier) setAtoms(window xproto.Window, prop string, atoms []xproto.Atom) error {
	propAtom, err := a.atom(prop)
	if err != nil {
		return err
	}
	data := make([]byte, len(atoms)*4)
	for i, atom := range atoms {
		xgb.Put32(data[i*4:], uint32(atom))
	}
	return xproto.ChangePropertyChecked(a.conn, xproto.PropModeReplace, window,
		propAtom, xproto.AtomAtom, 32, uint32(len(atoms)), data).Check()
}

func (a *hintApplier) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
	clear(a.atoms)
}
