// Package logger provides verbose logging for labelrag.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow discovery, indexing and
// retrieval. Errors are always printed.
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

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "[WARN] "+format+"\n", args...)
	}
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output, "[ERROR] "+format+"\n", args...)
}

// Request tags every line with a request id so the stages of one
// find-and-retrieve call can be correlated.
type Request struct {
	id string
}

// ForRequest returns a logger that prefixes lines with the request id.
func ForRequest(id string) Request {
	return Request{id: id}
}

// ID returns the request id.
func (r Request) ID() string {
	return r.id
}

// Debug prints a tagged debug message if verbose mode is enabled.
func (r Request) Debug(format string, args ...any) {
	Debug("[%s] "+format, append([]any{r.id}, args...)...)
}

// Info prints a tagged informational message if verbose mode is enabled.
func (r Request) Info(format string, args ...any) {
	Info("[%s] "+format, append([]any{r.id}, args...)...)
}

// Warn prints a tagged warning if verbose mode is enabled.
func (r Request) Warn(format string, args ...any) {
	Warn("[%s] "+format, append([]any{r.id}, args...)...)
}

// Error prints a tagged error message.
func (r Request) Error(format string, args ...any) {
	Error("[%s] "+format, append([]any{r.id}, args...)...)
}
