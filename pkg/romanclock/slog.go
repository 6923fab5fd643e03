package romanclock

import (
	"io"
	"log/slog"
	"os"
)

// SlogAdapter implements Logger on top of a *slog.Logger.
//
// Example:
//
//	opts := romanclock.DefaultOptions()
//	opts.Logger = romanclock.NewSlogAdapter(slog.Default())
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger. A nil logger means slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

func (s *SlogAdapter) Debug(msg string, args ...any) { s.logger.Debug(msg, args...) }
func (s *SlogAdapter) Info(msg string, args ...any)  { s.logger.Info(msg, args...) }
func (s *SlogAdapter) Warn(msg string, args ...any)  { s.logger.Warn(msg, args...) }
func (s *SlogAdapter) Error(msg string, args ...any) { s.logger.Error(msg, args...) }

// With returns an adapter that adds args to every record.
func (s *SlogAdapter) With(args ...any) *SlogAdapter {
	return &SlogAdapter{logger: s.logger.With(args...)}
}

// DefaultLogger logs text to stderr at Info level.
func DefaultLogger() Logger {
	return textLogger(os.Stderr, slog.LevelInfo, false)
}

// DebugLogger logs text to stderr at Debug level with source locations.
func DebugLogger() Logger {
	return textLogger(os.Stderr, slog.LevelDebug, true)
}

// JSONLogger logs JSON records to w at level. A nil w means stderr.
func JSONLogger(w io.Writer, level slog.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &SlogAdapter{logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}
}

func textLogger(w io.Writer, level slog.Level, source bool) Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, AddSource: source})
	return &SlogAdapter{logger: slog.New(h)}
}

// NopLogger discards everything.
func NopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
