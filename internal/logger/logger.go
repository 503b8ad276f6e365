// Package logger provides levelled logging for bookbot.
//
// Warnings and errors always print. Info lines print at LevelInfo, which
// the server uses for its request log. Debug lines and sections print
// only in verbose mode, enabled with --verbose, to trace retrieval and
// intent routing.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the minimum severity that is printed.
type Level int

// Log levels, lowest first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

const timestampFormat = "2006-01-02 15:04:05"

var (
	mu         sync.RWMutex
	level      = LevelWarn
	timestamps bool
	output     io.Writer = os.Stderr
	now        = time.Now
)

// SetVerbose switches between LevelDebug and the default LevelWarn.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		level = LevelDebug
	} else {
		level = LevelWarn
	}
}

// IsVerbose returns true if debug output is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return level == LevelDebug
}

// SetLevel sets the minimum printed level.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetTimestamps prefixes each line with the local time.
func SetTimestamps(on bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = on
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// logf holds the write lock so concurrent lines do not interleave.
func logf(l Level, tag, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	if timestamps {
		fmt.Fprintf(output, "%s [%s] "+format+"\n", append([]any{now().Format(timestampFormat), tag}, args...)...)
		return
	}
	fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
}

// Debug prints a message in verbose mode.
func Debug(format string, args ...any) {
	logf(LevelDebug, "DEBUG", format, args...)
}

// Section prints a section header in verbose mode.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if level == LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message at LevelInfo and below.
func Info(format string, args ...any) {
	logf(LevelInfo, "INFO", format, args...)
}

// Warn prints a warning unless the level is LevelError.
func Warn(format string, args ...any) {
	logf(LevelWarn, "WARN", format, args...)
}

// Error always prints.
func Error(format string, args ...any) {
	logf(LevelError, "ERROR", format, args...)
}
