package utils

import (
	"fmt"
	"io"
	"log/slog"
)

// NewLogger returns a text logger writing to w. level is one of debug, info,
// warn or error.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {

	l := slog.LevelInfo
	if level != "" {
		err := l.UnmarshalText([]byte(level))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: l,
	})), nil
}
