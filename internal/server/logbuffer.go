package server

import (
	"sync"
	"time"
)

const (
	defaultLogLines = 500
	logTrimSize     = 50
)

// LogLine is one line of server output
type LogLine struct {
	Seq   uint64    `json:"seq"`
	RunID string    `json:"runId"`
	Time  time.Time `json:"time"`
	Line  string    `json:"line"`
}

// LogBuffer keeps the most recent server output lines
type LogBuffer struct {
	mu      sync.Mutex
	lines   []LogLine
	max     int
	nextSeq uint64
}

// NewLogBuffer creates a buffer holding up to max lines
func NewLogBuffer(max int) *LogBuffer {
	if max <= 0 {
		max = defaultLogLines
	}
	return &LogBuffer{max: max, nextSeq: 1}
}

// Append stores line and returns the stored entry
func (b *LogBuffer) Append(runID, line string) LogLine {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := LogLine{Seq: b.nextSeq, RunID: runID, Time: time.Now(), Line: line}
	b.nextSeq++
	b.lines = append(b.lines, entry)
	if len(b.lines) > b.max {
		trim := logTrimSize
		if trim > b.max {
			trim = len(b.lines) - b.max
		}
		b.lines = append([]LogLine(nil), b.lines[trim:]...)
	}
	return entry
}

// Snapshot returns a copy of the buffered lines, oldest first
func (b *LogBuffer) Snapshot() []LogLine {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]LogLine, len(b.lines))
	copy(out, b.lines)
	return out
}
