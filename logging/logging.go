// Package logging adapts zerolog to the printf-style Logger the rest of
// the codebase consumes.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog instance behind printf-style levels
type Logger struct {
	log zerolog.Logger
}

// New builds a Logger writing JSON to the given sink at the given level.
// Unknown level strings fall back to info.
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	log := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return &Logger{log: log}
}

// NewPretty builds a console-formatted Logger for local development
func NewPretty(level string) *Logger {
	l := New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, level)
	return l
}

// Debug logs at debug level
func (l *Logger) Debug(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

// Info logs at info level
func (l *Logger) Info(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

// Warn logs at warn level
func (l *Logger) Warn(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

// Error logs at error level
func (l *Logger) Error(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
