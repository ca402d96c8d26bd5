// Package logging provides the two log streams shared by every package:
// ops for warnings, lifecycle and progress, diag for per-item detail.
//
// Both streams are plain *log.Logger values. Ops writes to stderr by
// default; diag is off until SetWriters enables it. Nothing is ever written
// to stdout, which the MCP server owns.
package logging

import (
	"io"
	"log"
	"os"
	"sync"
)

// Writers holds the destination of each stream. A nil writer disables it.
type Writers struct {
	Ops  io.Writer
	Diag io.Writer
}

var (
	mu         sync.RWMutex
	opsLogger  = newLogger(os.Stderr)
	diagLogger *log.Logger
)

// SetWriters reconfigures both streams at once.
func SetWriters(w Writers) {
	mu.Lock()
	defer mu.Unlock()
	opsLogger = newLogger(w.Ops)
	diagLogger = newLogger(w.Diag)
}

// FromEnv enables the diag stream on stderr when level is "debug".
func FromEnv(level string) {
	w := Writers{Ops: os.Stderr}
	if level == "debug" {
		w.Diag = os.Stderr
	}
	SetWriters(w)
}

func newLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, "[dataset-aug] ", log.LstdFlags)
}

// Opsf logs to the ops stream.
func Opsf(format string, args ...interface{}) {
	mu.RLock()
	l := opsLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// Warnf logs a recoverable problem to the ops stream.
func Warnf(format string, args ...interface{}) {
	Opsf("WARNING: "+format, args...)
}

// Diagf logs to the diag stream.
func Diagf(format string, args ...interface{}) {
	mu.RLock()
	l := diagLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}
