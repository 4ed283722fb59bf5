package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Options configures a console logger.
type Options struct {
	Level  string // debug, info, warn, error; empty means info
	Output io.Writer
	Prefix string
}

// New creates a structured key/value logger writing to Output (stderr by
// default). An unknown level falls back to info.
func New(opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level, err := log.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = log.InfoLevel
	}
	return log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          opts.Prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
