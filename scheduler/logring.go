package scheduler

import (
	"sync"
	"time"
)

// Severity classifies a log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// LogCapacity bounds the rolling event log. Oldest entries are dropped
// silently on overflow.
const LogCapacity = 50

// LogEntry is one event in the rolling log.
type LogEntry struct {
	Message  string
	Severity Severity
	Time     time.Time
	Identity string
}

// LogRing is a fixed-capacity most-recent-N ring of log entries. Append-only
// within the bound; entries are never mutated.
type LogRing struct {
	mu       sync.Mutex
	capacity int
	entries  []LogEntry
}

// NewLogRing creates a ring holding at most capacity entries.
func NewLogRing(capacity int) *LogRing {
	if capacity <= 0 {
		capacity = LogCapacity
	}
	return &LogRing{capacity: capacity}
}

// Append adds an entry, dropping the oldest if the ring is full.
func (r *LogRing) Append(entry LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == r.capacity {
		copy(r.entries, r.entries[1:])
		r.entries[len(r.entries)-1] = entry
		return
	}
	r.entries = append(r.entries, entry)
}

// Entries returns a copy of the ring, oldest first.
func (r *LogRing) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the current number of entries.
func (r *LogRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
