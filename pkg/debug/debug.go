// Package debug provides conditional debug logging for cdash.
//
// Debug logging is enabled by setting the CDASH_DEBUG environment variable:
//
//	CDASH_DEBUG=1 cdash -data concrete.csv
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops.
//
// The TUI owns the terminal, so when running interactively set
// CDASH_DEBUG_FILE to redirect output to a file instead of stderr.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

var (
	// enabled is true when CDASH_DEBUG env var is set
	enabled bool
	// logger writes to stderr (or CDASH_DEBUG_FILE) with [CDASH_DEBUG] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("CDASH_DEBUG") != "" {
		enabled = true
		logger = newLogger(defaultOutput())
	}
}

func defaultOutput() io.Writer {
	if path := os.Getenv("CDASH_DEBUG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			return f
		}
	}
	return os.Stderr
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[CDASH_DEBUG] ", log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger(defaultOutput())
	}
}

// SetOutput redirects debug output. Mostly useful in tests.
func SetOutput(w io.Writer) {
	logger = newLogger(w)
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogEnterExit logs function entry and exit with timing.
// Usage:
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    // ...
//	}
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}
