package utils

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// NewLogger creates a named logger. An empty level means info, a nil
// writer means standard error.
func NewLogger(name, level string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := hclog.Info
	if level != "" {
		lvl = hclog.LevelFromString(level)
		if lvl == hclog.NoLevel {
			lvl = hclog.Info
		}
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  lvl,
		Output: w,
	})
}

// OrNull returns l, or a logger that discards everything when l is nil
func OrNull(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}
