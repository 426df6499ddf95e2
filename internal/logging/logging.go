// Package logging provides a simple leveled logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string. Unknown strings default to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "info", "INFO":
		return LevelInfo
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// shared holds state common to a logger and all loggers derived from it.
type shared struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
}

// Logger is a simple leveled logger. Loggers derived with Named share the
// parent's output and level.
type Logger struct {
	s    *shared
	name string
}

// New creates a new logger writing to stderr.
func New(level Level) *Logger {
	return &Logger{s: &shared{level: level, output: os.Stderr}}
}

// Named returns a logger that prefixes every line with a component name.
func (l *Logger) Named(name string) *Logger {
	child := &Logger{s: l.s, name: name}
	if l.name != "" {
		child.name = l.name + "." + name
	}
	return child
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.output = w
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.level = level
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if level < l.s.level {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	var line string
	if l.name != "" {
		line = fmt.Sprintf("%s [%s] %s: %s\n", timestamp, level.String(), l.name, msg)
	} else {
		line = fmt.Sprintf("%s [%s] %s\n", timestamp, level.String(), msg)
	}

	_, _ = l.s.output.Write([]byte(line))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return &Logger{s: &shared{level: LevelError + 1, output: io.Discard}}
}
