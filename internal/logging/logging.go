package logging

import (
	"io"
	"log/slog"
)

// NewLogger returns a structured JSON logger writing to w.
// verbose selects Debug, quiet selects Warn, otherwise Info.
// verbose wins when both are set.
func NewLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := new(slog.LevelVar)
	switch {
	case verbose:
		level.Set(slog.LevelDebug)
	case quiet:
		level.Set(slog.LevelWarn)
	default:
		level.Set(slog.LevelInfo)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
