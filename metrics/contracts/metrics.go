package contracts

// Snapshot is a point-in-time copy of the run counters.
type Snapshot struct {
	Mutations     int
	AcceptedSteps int
	Errors        int
}

// IRunMetrics accumulates counters for one process run. Counters reset only
// at process restart, never between cycles.
type IRunMetrics interface {
	RecordMutation()
	RecordSteps(count int)
	RecordError()
	Snapshot() Snapshot
	Display(cursor int, total int)
}
