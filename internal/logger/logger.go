// Package logger provides levelled console logging for Folio.
// Debug, Info and Warn output is gated by verbose mode (the --verbose flag);
// Error output is always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if always || verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) { write(false, "[DEBUG] ", format, args...) }

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) { write(false, "[INFO] ", format, args...) }

// Warn prints a warning if verbose mode is enabled.
func Warn(format string, args ...any) { write(false, "[WARN] ", format, args...) }

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) { write(true, "[ERROR] ", format, args...) }

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Logger prefixes every message with a component name, e.g. "watcher: ".
type Logger struct {
	component string
}

// Named returns a Logger for the given component.
func Named(component string) *Logger {
	return &Logger{component: component}
}

// Debug prints a component message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	write(false, "[DEBUG] "+l.component+": ", format, args...)
}

// Info prints a component message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	write(false, "[INFO] "+l.component+": ", format, args...)
}

// Warn prints a component warning if verbose mode is enabled.
func (l *Logger) Warn(format string, args ...any) {
	write(false, "[WARN] "+l.component+": ", format, args...)
}

// Error prints a component error regardless of verbose mode.
func (l *Logger) Error(format string, args ...any) {
	write(true, "[ERROR] "+l.component+": ", format, args...)
}
