package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging messages.
type Logger interface {
	Error(msg string, err error)
	Warn(msg string)
	Info(msg string)
	Debug(msg string)
}

type zeroLogger struct {
	logger zerolog.Logger
}

var (
	loggerInstance *zeroLogger
	once           sync.Once
)

// New creates a singleton console logger. The level is read from LOG_LEVEL (default "info").
func New() Logger {
	once.Do(func() {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		loggerInstance = newZeroLogger(output, os.Getenv("LOG_LEVEL"))
	})
	return loggerInstance
}

// NewWithWriter builds a non-singleton logger writing JSON lines to w. Used by tests.
func NewWithWriter(w io.Writer, level string) Logger {
	return newZeroLogger(w, level)
}

func newZeroLogger(w io.Writer, level string) *zeroLogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return &zeroLogger{
		logger: zerolog.New(w).Level(lvl).With().Timestamp().Logger(),
	}
}

// Error logs an error message together with the causing error, if any.
func (l *zeroLogger) Error(msg string, err error) {
	ev := l.logger.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

func (l *zeroLogger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

func (l *zeroLogger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *zeroLogger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zeroLogger{logger: zerolog.Nop()}
}
