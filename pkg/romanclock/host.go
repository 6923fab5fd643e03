//go:build !noebiten

package romanclock

import (
	"context"

	"github.com/opd-ai/romanclock/internal/render"
)

// runHost shows the frame buffer in a window until ctx ends or the window
// closes. Headless wallpapers just wait.
func (w *wallpaper) runHost(ctx context.Context) error {
	if w.opts.Headless {
		<-ctx.Done()
		return nil
	}

	hints := render.DesktopHints{}
	if w.opts.DesktopHints {
		hints = render.WallpaperHints
	}
	game := render.NewGame(render.GameConfig{
		Width:  w.opts.Width,
		Height: w.opts.Height,
		Title:  w.opts.Title,
		Hints:  hints,
	}, w.buffer)
	game.SetContext(ctx)
	game.OnVisibilityChange(w.SetVisible)
	game.OnResize(w.Resize)
	game.OnHintsError(func(err error) {
		w.logger.Warn("desktop window hints not applied", "error", err)
	})

	w.logger.Debug("opening window", "width", w.opts.Width, "height", w.opts.Height)
	if err := game.Run(); err != nil {
		return NewCategorizedError(err, ErrorCategorySurface)
	}
	return nil
}
