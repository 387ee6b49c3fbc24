package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Init installs the JSON logger on stdout at the given level (debug, info, warn, error).
func Init(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	Log = slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
