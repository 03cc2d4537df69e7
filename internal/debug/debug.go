// Package debug implements a gated, mutex-protected debug logger used
// by the indexer, search executor, and watcher. Logging is a no-op
// unless explicitly enabled, so it carries no overhead on the default
// path. Grounded on the teacher's internal/debug/debug.go, trimmed of
// its MCP-protocol-suppression mode (filesieve has no MCP surface).
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug can be set at build time:
// go build -ldflags "-X github.com/filesieve/filesieve/internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	mu     sync.Mutex
	output io.Writer
	file   *os.File
)

// SetOutput sets the writer debug output is written to. Pass nil to
// disable debug output entirely.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// InitLogFile opens a fresh timestamped log file under the OS temp
// directory and routes debug output to it. Callers should defer
// CloseLogFile.
func InitLogFile() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(os.TempDir(), "fsieve-debug-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create debug log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("debug-%s.log", time.Now().Format("2006-01-02T150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("create debug log file: %w", err)
	}

	file = f
	output = f
	return path, nil
}

// CloseLogFile closes the log file opened by InitLogFile, if any.
func CloseLogFile() error {
	mu.Lock()
	defer mu.Unlock()

	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	output = nil
	return err
}

// Enabled reports whether debug logging is active: the build-time flag
// or the DEBUG environment variable.
func Enabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Log writes a component-tagged debug line when logging is enabled and
// an output writer is configured.
func Log(component, format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// LogIndex logs a debug line for the indexer/walker pipeline.
func LogIndex(format string, args ...interface{}) { Log("INDEX", format, args...) }

// LogSearch logs a debug line for the query parser/search executor.
func LogSearch(format string, args ...interface{}) { Log("SEARCH", format, args...) }

// LogWatch logs a debug line for the debouncer/watcher.
func LogWatch(format string, args ...interface{}) { Log("WATCH", format, args...) }
