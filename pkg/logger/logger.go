package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New constructs a JSON slog logger. LOG_LEVEL selects the level and
// LOG_OUTPUT=stderr moves output off stdout (required by the MCP stdio transport).
func New() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	handler := slog.NewJSONHandler(output(os.Getenv("LOG_OUTPUT")), &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "safetravels")
}

func output(name string) io.Writer {
	if strings.EqualFold(strings.TrimSpace(name), "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
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
