// Package logger configures the process-wide slog default for CLI runs.
package logger

import (
	"log/slog"
	"os"
)

// Setup installs a text handler on stderr. Verbose enables debug level.
func Setup(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
