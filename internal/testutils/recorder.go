package testutils

import (
	"strings"
	"sync"
)

// LogEntry is one call captured by RecordingLogger
type LogEntry struct {
	Level  string
	Msg    string
	Fields []any
}

// RecordingLogger captures log calls for assertions. It satisfies
// logging.Logger structurally and is safe for concurrent use.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (r *RecordingLogger) record(level, msg string, fields []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, LogEntry{Level: level, Msg: msg, Fields: fields})
}

func (r *RecordingLogger) Debug(msg string, fields ...any) { r.record("DEBUG", msg, fields) }
func (r *RecordingLogger) Info(msg string, fields ...any)  { r.record("INFO", msg, fields) }
func (r *RecordingLogger) Warn(msg string, fields ...any)  { r.record("WARN", msg, fields) }
func (r *RecordingLogger) Error(msg string, fields ...any) { r.record("ERROR", msg, fields) }

// Entries returns a copy of everything recorded so far
func (r *RecordingLogger) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Contains reports whether a message at level contains substr.
// An empty level matches any level.
func (r *RecordingLogger) Contains(level, substr string) bool {
	for _, e := range r.Entries() {
		if (level == "" || e.Level == level) && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}
