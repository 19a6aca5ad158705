// Package logger wraps zerolog for the CLI.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config selects the output format and level.
type Config struct {
	Format string // "console" for human-readable output, anything else JSON
	Level  string // trace, debug, info, warn, error
	Out    io.Writer
}

// Logger is a zerolog logger tagged with a run id.
type Logger struct {
	zl    zerolog.Logger
	runID string
}

// New creates a logger with a fresh run id. Output goes to stderr unless
// cfg.Out is set.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stderr
	if cfg.Out != nil {
		w = cfg.Out
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	runID := uuid.NewString()
	zl := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Str("run_id", runID).Logger()
	return &Logger{zl: zl, runID: runID}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), runID: uuid.NewString()}
}

// ParseLevel maps a level name to zerolog, defaulting to info for empty or
// unknown names.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// RunID identifies this invocation in logs and the fault log.
func (l *Logger) RunID() string { return l.runID }

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// With creates a child logger context sharing the run id.
func (l *Logger) With() zerolog.Context { return l.zl.With() }

// Zerolog returns the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }
