// Package checklog maintains the human-readable event history that the
// dashboard tails. It is separate from the structured service log.
package checklog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006-01-02 15:04:05"

// Logger appends one line per event to a shared file:
//
//	2025-03-05 15:30:22 (+) MAME: version 0.283 is current
//	2025-03-05 15:30:22 (-) MAME ERROR: failed to fetch source page: ...
//
// Timestamps are UTC. All checkers share one Logger.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a Logger writing to path, rotated like the service log.
func New(path string) *Logger {
	return &Logger{w: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}}
}

// NewWriter returns a Logger writing to w.
func NewWriter(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Logf appends one event line, (+) when ok and (-) otherwise.
// A nil Logger drops the event.
func (l *Logger) Logf(ok bool, format string, args ...any) {
	if l == nil {
		return
	}
	status := "(-)"
	if ok {
		status = "(+)"
	}
	line := fmt.Sprintf("%s %s %s\n",
		time.Now().UTC().Format(timeLayout), status, fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.Write([]byte(line)); err != nil {
		fmt.Fprintf(os.Stderr, "checklog: write failed: %v\n", err)
	}
}

// Tail returns the last n lines of the file at path, oldest first.
// A missing file yields no lines.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
