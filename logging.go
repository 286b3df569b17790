// logging.go - slog text logger for raw terminals

package main

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger. Raw terminal mode disables the CR that
// normally accompanies LF, so every line ends in CRLF.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := slog.HandlerOptions{
		AddSource: debug,
		Level:     level,
	}
	return slog.New(slog.NewTextHandler(&crlfWriter{w: w}, &opts))
}

type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p)+4)
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
