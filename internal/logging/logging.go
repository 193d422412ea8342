// Package logging builds the zerolog logger mmwdash writes to its log file.
// The terminal belongs to the TUI, so nothing is logged to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const defaultLevel = zerolog.InfoLevel

// Open returns a JSON logger appending to path at the given level. An empty
// path yields a disabled logger. The returned closer releases the file.
func Open(path, level string) (zerolog.Logger, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	lvl, parseErr := ParseLevel(level)
	logger := New(file, lvl)
	if parseErr != nil {
		logger.Warn().Str("log_level", level).Msgf("invalid log level, defaulting to %s", lvl)
	}
	return logger, file, nil
}

// New returns a JSON logger writing to w with timestamps.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("app", "mmwdash").
		Logger()
}

// ParseLevel converts a config string to a level. Empty means info; an
// unknown value returns info and an error.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return defaultLevel, nil
	}
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return defaultLevel, fmt.Errorf("parse log level: %w", err)
	}
	return lvl, nil
}
