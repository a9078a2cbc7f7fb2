// Package logger provides the leveled logger used across the application.
// Three levels: off, normal (info/warn/error), verbose (adds debug).
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Level controls verbosity.
type Level int

const (
	LevelOff Level = iota
	LevelNormal
	LevelVerbose
)

// Logger is a leveled logger. Safe for concurrent use.
type Logger struct {
	mu    sync.RWMutex
	level Level
	out   *log.Logger
}

// New creates a logger writing to out (os.Stderr when nil).
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		level: level,
		out:   log.New(out, "", log.Ltime),
	}
}

// SetLevel changes the log level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) logf(min Level, tag, format string, args ...any) {
	l.mu.RLock()
	enabled := l.level >= min
	l.mu.RUnlock()
	if enabled {
		l.out.Output(3, tag+" "+fmt.Sprintf(format, args...))
	}
}

// Debug logs a message visible only in verbose mode.
func (l *Logger) Debug(format string, args ...any) {
	l.logf(LevelVerbose, "[DBG]", format, args...)
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	l.logf(LevelNormal, "[INF]", format, args...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.logf(LevelNormal, "[WRN]", format, args...)
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	l.logf(LevelNormal, "[ERR]", format, args...)
}
