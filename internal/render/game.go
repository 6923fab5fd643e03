//go:build !noebiten

package render

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrGameTerminated is returned by Update once the game context is done.
var ErrGameTerminated = errors.New("game terminated")

// GameConfig configures the window host.
type GameConfig struct {
	Width  int
	Height int
	Title  string
	// Hints are applied to the X11 window on the first frame.
	Hints DesktopHints
}

// Game is the ebiten window host. It shows the last frame presented to its
// BufferHolder and reports visibility and size changes of the window.
type Game struct {
	config GameConfig
	buffer *BufferHolder

	mu           sync.Mutex
	ctx          context.Context
	onVisible    func(bool)
	onResize     func(width, height int)
	onHintsError func(error)
	screen       *ebiten.Image
	visible      bool
	started      bool
	hinted       bool
	width        int
	height       int
	running      bool
}

// NewGame returns a host drawing frames from buffer.
func NewGame(config GameConfig, buffer *BufferHolder) *Game {
	if config.Width <= 0 {
		config.Width = 800
	}
	if config.Height <= 0 {
		config.Height = 600
	}
	return &Game{config: config, buffer: buffer}
}

// SetContext stops the game loop when ctx is done.
func (g *Game) SetContext(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ctx = ctx
}

// OnVisibilityChange registers fn for window show and minimize events. The
// first call of fn reports the initial visibility.
func (g *Game) OnVisibilityChange(fn func(visible bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onVisible = fn
}

// OnResize registers fn for window size changes.
func (g *Game) OnResize(fn func(width, height int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onResize = fn
}

// OnHintsError registers fn for failures applying the desktop hints.
func (g *Game) OnHintsError(fn func(error)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onHintsError = fn
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	g.mu.Lock()
	if g.ctx != nil && g.ctx.Err() != nil {
		g.mu.Unlock()
		return ErrGameTerminated
	}
	visible := !ebiten.IsWindowMinimized()
	var notify func(bool)
	if !g.started || visible != g.visible {
		g.started = true
		g.visible = visible
		notify = g.onVisible
	}
	var hintsErr error
	var onHintsError func(error)
	if !g.hinted {
		g.hinted = true
		hintsErr = ApplyDesktopHints(g.config.Hints)
		onHintsError = g.onHintsError
	}
	g.mu.Unlock()

	if notify != nil {
		notify(visible)
	}
	if hintsErr != nil && onHintsError != nil {
		onHintsError(hintsErr)
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.buffer.withFront(func(front *image.RGBA) {
		if front == nil {
			return
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		b := front.Bounds()
		if g.screen == nil || g.screen.Bounds().Size() != b.Size() {
			if g.screen != nil {
				g.screen.Deallocate()
			}
			g.screen = ebiten.NewImage(b.Dx(), b.Dy())
		}
		g.screen.WritePixels(front.Pix)
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.screen != nil {
		screen.DrawImage(g.screen, nil)
	}
}

// Layout implements ebiten.Game. The logical screen follows the window so
// frames are drawn at device size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.mu.Lock()
	changed := outsideWidth != g.width || outsideHeight != g.height
	g.width, g.height = outsideWidth, outsideHeight
	fn := g.onResize
	g.mu.Unlock()

	if changed && fn != nil && outsideWidth > 0 && outsideHeight > 0 {
		fn(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed or the context ends.
func (g *Game) Run() error {
	ebiten.SetWindowSize(g.config.Width, g.config.Height)
	ebiten.SetWindowTitle(g.config.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetScreenClearedEveryFrame(false)

	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	err := ebiten.RunGame(g)

	g.mu.Lock()
	g.running = false
	g.mu.Unlock()
	CloseDesktopHints()

	if errors.Is(err, ErrGameTerminated) {
		return nil
	}
	return err
}

// IsRunning reports whether the window loop is running.
func (g *Game) IsRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}
