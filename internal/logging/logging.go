// Package logging configures the application logger. The terminal is owned
// by the UI, so logs go to a file (or nowhere).
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New returns a logger writing to the given file at the given level, plus
// a cleanup function closing the file. An empty path yields a disabled
// logger.
func New(level, file string) (zerolog.Logger, func(), error) {
	if file == "" {
		return zerolog.Nop(), func() {}, nil
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file %s: %w", file, err)
	}

	logger := zerolog.New(f).With().
		Timestamp().
		Logger().
		Level(lvl)

	return logger, func() { f.Close() }, nil
}
