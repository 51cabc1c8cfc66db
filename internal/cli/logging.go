package cli

import (
	"io"
	"log/slog"
)

// newLogger writes text records to w: debug and up with verbose, warnings
// and errors otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
