package app

import (
	"io"
	"log/slog"

	"dispatch/internal/config"
)

// NewLogger creates the JSON logger shared by every component.
func NewLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With("service", "food-dispatch")
}
