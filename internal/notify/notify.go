// Package notify delivers transient user-facing messages (toasts).
package notify

import (
	"io"
	"log"
	"os"
	"sync"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Notifier interface {
	Notify(level Level, message string)
}

// New picks a notifier by kind: "log" (default) writes to stderr, "noop"
// discards everything.
func New(kind string) Notifier {
	switch kind {
	case "noop", "quiet":
		return noopNotifier{}
	default:
		return NewLog(os.Stderr)
	}
}

type logNotifier struct {
	logger *log.Logger
}

func NewLog(w io.Writer) Notifier {
	return logNotifier{logger: log.New(w, "", 0)}
}

func (n logNotifier) Notify(level Level, message string) {
	n.logger.Printf("[%s] %s", level, message)
}

type noopNotifier struct{}

func (noopNotifier) Notify(Level, string) {}

type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: message})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
