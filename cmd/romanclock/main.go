// Package main is the romanclock command: a live Roman-numeral clock
// wallpaper with solid, gradient and photo collage backgrounds.
package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/opd-ai/romanclock/internal/profiling"
	"github.com/opd-ai/romanclock/internal/settings"
	"github.com/opd-ai/romanclock/pkg/romanclock"
)

// Version is the current version of romanclock.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newCommand(stdout, stderr)
	if err := cmd.Run(context.Background(), append([]string{cmd.Name}, args...)); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "romanclock",
		Usage:     "live analog clock wallpaper with Roman numerals",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Aliases:   []string{"c"},
				Usage:     "settings file (.json, or a read-only .lua script)",
				TakesFile: true,
				Sources:   cli.EnvVars("ROMANCLOCK_SETTINGS"),
			},
			&cli.StringFlag{
				Name:      "env",
				Usage:     "load environment variables for $VAR image references from this file",
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:      "snapshot",
				Usage:     "render one frame to this PNG file and exit",
				TakesFile: true,
			},
			&cli.IntFlag{Name: "width", Value: romanclock.DefaultWidth, Usage: "window or snapshot width in pixels"},
			&cli.IntFlag{Name: "height", Value: romanclock.DefaultHeight, Usage: "window or snapshot height in pixels"},
			&cli.StringFlag{Name: "at", Usage: "snapshot time in RFC 3339 format (default: now)"},
			&cli.BoolFlag{Name: "export", Usage: "print the settings as JSON and exit"},
			&cli.StringFlag{Name: "import", Usage: "replace the settings with an exported JSON file", TakesFile: true},
			&cli.StringFlag{Name: "preset", Usage: "apply a bundled preset"},
			&cli.StringFlag{Name: "layout", Usage: "arrange the collage: GRID, MASONRY, CENTER_FOCUS, SPIRAL or RANDOM"},
			&cli.StringSliceFlag{Name: "add", Usage: "image paths or file:// URIs to add to the collage"},
			&cli.StringSliceFlag{Name: "remove", Usage: "collage images to remove"},
			&cli.StringFlag{Name: "front", Usage: "collage image to draw above the others"},
			&cli.FloatFlag{Name: "opacity", Usage: "set the opacity of every collage image (0 to 1)"},
			&cli.FloatFlag{Name: "rotate", Usage: "turn every collage image by this many degrees"},
			&cli.BoolFlag{Name: "list-presets", Usage: "list the bundled presets and exit"},
			&cli.BoolFlag{Name: "headless", Usage: "render without a window"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve /metrics and /debug/vars on this address"},
			&cli.StringFlag{Name: "cpuprofile", Usage: "write CPU profile to file", TakesFile: true},
			&cli.StringFlag{Name: "memprofile", Usage: "write memory profile to file", TakesFile: true},
		},
		Action: action,
	}
}

func action(ctx context.Context, c *cli.Command) error {
	stdout := c.Root().Writer

	if c.Bool("list-presets") {
		for _, p := range settings.Presets() {
			fmt.Fprintln(stdout, p.Name)
		}
		return nil
	}

	if envFile := c.String("env"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	profConfig := profiling.Config{
		CPUProfilePath: c.String("cpuprofile"),
		MemProfilePath: c.String("memprofile"),
	}
	profiler := profiling.New(profConfig)
	if profConfig.Enabled() {
		if err := profiler.Start(); err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				fmt.Fprintf(c.Root().ErrWriter, "Warning: failed to stop profiling: %v\n", err)
			}
		}()
	}

	path := c.String("config")
	if path == "" {
		var err error
		if path, err = defaultSettingsPath(); err != nil {
			return fmt.Errorf("no settings file given and no config directory: %w", err)
		}
	}

	oneShot := c.String("snapshot") != "" || c.Bool("export")
	opts := romanclock.DefaultOptions()
	opts.Logger = romanclock.DefaultLogger()
	if c.Bool("debug") {
		opts.Logger = romanclock.DebugLogger()
	}
	opts.Headless = c.Bool("headless")
	opts.Width, opts.Height = c.Int("width"), c.Int("height")
	opts.WatchSettings = !oneShot

	w, err := romanclock.NewFromFile(path, &opts)
	if err != nil {
		return err
	}
	if err := applyEdits(w, c); err != nil {
		return err
	}

	switch {
	case c.Bool("export"):
		data, err := w.Export()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	case c.String("snapshot") != "":
		return writeSnapshot(w, c)
	}
	return runWallpaper(ctx, w, c)
}

// applyEdits applies the settings edits in a fixed order: import, preset,
// added and removed images, front image, opacity, rotation, then layout.
// Each edit is saved.
func applyEdits(w romanclock.Wallpaper, c *cli.Command) error {
	if path := c.String("import"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		if err := w.Import(data); err != nil {
			return err
		}
	}
	if preset := c.String("preset"); preset != "" {
		if err := w.ApplyPreset(preset); err != nil {
			return err
		}
	}
	if refs := cleanRefs(c.StringSlice("add")); len(refs) > 0 {
		if err := w.AddImages(refs...); err != nil {
			return err
		}
	}
	if refs := cleanRefs(c.StringSlice("remove")); len(refs) > 0 {
		if err := w.RemoveImages(refs...); err != nil {
			return err
		}
	}
	if ref := strings.TrimSpace(c.String("front")); ref != "" {
		if err := w.BringToFront(ref); err != nil {
			return err
		}
	}
	if c.IsSet("opacity") {
		if err := w.SetImageOpacity(c.Float("opacity")); err != nil {
			return err
		}
	}
	if c.IsSet("rotate") {
		if err := w.RotateImages(c.Float("rotate")); err != nil {
			return err
		}
	}
	if layout := c.String("layout"); layout != "" {
		kind, err := settings.ParseCollageLayout(layout)
		if err != nil {
			return err
		}
		if err := w.ApplyLayout(kind); err != nil {
			return err
		}
	}
	return nil
}

func writeSnapshot(w romanclock.Wallpaper, c *cli.Command) error {
	at := time.Now()
	if s := c.String("at"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid --at time: %w", err)
		}
		at = t
	}
	img, err := w.SnapshotAt(c.Int("width"), c.Int("height"), at)
	if err != nil {
		return err
	}
	out, err := os.Create(c.String("snapshot"))
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func runWallpaper(ctx context.Context, w romanclock.Wallpaper, c *cli.Command) error {
	stdout, stderr := c.Root().Writer, c.Root().ErrWriter
	w.SetErrorHandler(func(err error) {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	})
	w.SetEventHandler(func(e romanclock.Event) {
		fmt.Fprintf(stdout, "[%s] %s: %s\n", e.Timestamp.Format("15:04:05"), e.Type, e.Message)
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if addr := c.String("metrics-addr"); addr != "" {
		srv, err := serveMetrics(addr, w.Metrics(), stderr)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				fmt.Fprintln(stdout, "Received SIGHUP, reloading settings...")
				if err := w.Reload(); err != nil {
					fmt.Fprintf(stderr, "Reload failed: %v\n", err)
				}
			}
		}
	}()

	return w.Run(ctx)
}

func serveMetrics(addr string, m *romanclock.Metrics, stderr io.Writer) (*http.Server, error) {
	handler, err := romanclock.MetricsHandler(m)
	if err != nil {
		return nil, err
	}
	m.RegisterExpvar("romanclock")
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(stderr, "Warning: metrics server: %v\n", err)
		}
	}()
	return srv, nil
}

// defaultSettingsPath returns romanclock/settings.json in the user config
// directory.
func defaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "romanclock", "settings.json"), nil
}

// cleanRefs trims image references and drops empty ones. Entries may still
// hold comma-separated lists.
func cleanRefs(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
