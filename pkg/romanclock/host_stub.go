//go:build noebiten

package romanclock

import "context"

// runHost waits for ctx. Builds without ebiten have no window, so the
// wallpaper always renders into the frame buffer.
func (w *wallpaper) runHost(ctx context.Context) error {
	if !w.opts.Headless {
		w.logger.Warn("built without a window host, rendering headless")
		w.SetVisible(true)
	}
	<-ctx.Done()
	return nil
}
