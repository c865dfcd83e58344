package metrics

import (
	"fmt"
	"math"
	"sync"

	"groom/constants/lipgloss"
	"groom/metrics/contracts"
)

// runMetrics implementation
type runMetrics struct {
	mu            sync.Mutex
	mutations     int
	acceptedSteps int
	errors        int
}

// NewRunMetrics creates a new run metrics accumulator.
func NewRunMetrics() contracts.IRunMetrics {
	return &runMetrics{}
}

func (rm *runMetrics) RecordMutation() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.mutations++
}

func (rm *runMetrics) RecordSteps(count int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.acceptedSteps += count
}

func (rm *runMetrics) RecordError() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.errors++
}

func (rm *runMetrics) Snapshot() contracts.Snapshot {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return contracts.Snapshot{
		Mutations:     rm.mutations,
		AcceptedSteps: rm.acceptedSteps,
		Errors:        rm.errors,
	}
}

// Display renders the current counters and progress in a styled box.
func (rm *runMetrics) Display(cursor int, total int) {
	snapshot := rm.Snapshot()

	info := fmt.Sprintf("Progress: %d%% (%d/%d) - Mutations: %d - Steps: %d - Errors: %d",
		Progress(cursor, total), cursor, total,
		snapshot.Mutations, snapshot.AcceptedSteps, snapshot.Errors)

	fmt.Println(lipgloss.BoxStyle.Render(info))
}

// Progress derives the completion percentage of a run.
func Progress(cursor int, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(cursor) / float64(total) * 100))
}
