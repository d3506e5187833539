package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/extforge/internal/config"
)

// newLogger creates an isolated slog.Logger from the log configuration. It
// does not touch the global logger. Debug logs carry their source location.
func newLogger(cfg config.LogConfig, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
