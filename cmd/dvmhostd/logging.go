package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dvmgo/trunkcore/internal/config"
)

// setupLogger builds the process-wide slog logger: a tint-colorized
// console handler, plus an optional lumberjack-rotated file handler
// when logging.file_path is set, fanned out with a slog.Handler that
// writes to both. Grounded on USA-RedDragon-DMRHub/cmd/root.go's
// setupLogger, generalized to add the rotating file sink the teacher
// gateway's log package (internal/log) also offered.
func setupLogger(cfg config.Logging) *slog.Logger {
	level := parseLevel(cfg.Level)
	console := tint.NewHandler(os.Stdout, &tint.Options{Level: level})

	var handler slog.Handler = console
	if cfg.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		file := slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: level})
		handler = fanoutHandler{console, file}
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanoutHandler writes every record to each of its handlers, letting
// the console and rotated-file sinks run side by side.
type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
