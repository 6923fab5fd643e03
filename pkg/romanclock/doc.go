// Package romanclock runs a live wallpaper showing an analog clock with
// Roman numerals over a solid, gradient or photo collage background.
//
// # Basic Usage
//
//	w, err := romanclock.NewFromFile("/home/user/.config/romanclock.json", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Run opens a window and must be called from the main goroutine. Headless
// wallpapers render into a frame buffer that Frame returns:
//
//	opts := romanclock.DefaultOptions()
//	opts.Headless = true
//	w, _ := romanclock.NewInMemory(&opts)
//	_ = w.Start()
//	defer w.Stop()
//	frame := w.Frame()
//
// # Settings
//
// Every visual parameter lives in one immutable settings snapshot. Updates
// replace the snapshot wholesale, redraw at once and are saved to the store.
// [Wallpaper.Import] accepts only complete exported objects and leaves the
// current settings in place when it rejects a payload. With
// [Options.WatchSettings] the settings file is reloaded when it changes.
//
// # Rendering
//
// Frames are drawn while the wallpaper is visible: every second, or about
// sixty times a second with a smooth second hand. Collage images are decoded
// once per visible session and released when the wallpaper is hidden. An
// image that is not ready or fails to decode is left out of the frame.
//
// # Error Handling
//
// Runtime errors reach the [ErrorHandler] as [*CategorizedError] values:
//
//	w.SetErrorHandler(func(err error) {
//		if romanclock.CategoryOf(err) == romanclock.ErrorCategoryImport {
//			log.Printf("settings reload failed: %v", err)
//		}
//	})
//
// # Metrics
//
// [Wallpaper.Metrics] counts frames, skipped images and settings activity.
// [Metrics.RegisterExpvar] publishes them under /debug/vars, and
// [MetricsHandler] serves them in the Prometheus text format:
//
//	h, err := romanclock.MetricsHandler(w.Metrics())
//	if err != nil {
//	    return err
//	}
//	go http.ListenAndServe("localhost:9100", h)
package romanclock
