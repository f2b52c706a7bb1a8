// Package logger configures the process-wide slog logger for hook handlers.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text-format slog logger at the given level. Hook stdout is
// reserved for the JSON decision, so diagnostics default to stderr.
func New(level string, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}
	lvl := new(slog.Level)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		*lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: lvl}))
}
