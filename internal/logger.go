package internal

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger builds the key/value logger used across memtree. Unknown levels
// fall back to info.
func NewLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "memtree",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// NopLogger discards everything.
func NopLogger() *log.Logger {
	return log.New(io.Discard)
}
