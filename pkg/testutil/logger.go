// Package testutil provides shared helpers for tests.
package testutil

import (
	"io"
	"log/slog"
)

// NewTestLogger returns a debug-level text logger writing to w, so tests
// can capture and inspect log output. A nil writer discards everything.
func NewTestLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// DiscardLogger returns a logger whose output goes nowhere, for tests
// that only need to satisfy a logger parameter.
func DiscardLogger() *slog.Logger {
	return NewTestLogger(nil)
}
