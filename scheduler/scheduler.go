package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"groom/metrics/contracts"
	"groom/pipeline"
)

// State is the scheduler's externally visible mode.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateIndexing
	StateOptimizing
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIndexing:
		return "indexing"
	case StateOptimizing:
		return "optimizing"
	default:
		return "idle"
	}
}

// DefaultInterval is the spacing between cycle ticks while live.
const DefaultInterval = 40 * time.Second

// Executor runs one file's pipeline. Satisfied by *pipeline.Executor.
type Executor interface {
	Run(ctx context.Context, path string) pipeline.Outcome
}

// CursorStore persists the cursor after every processed item. It is the sole
// crash-recovery mechanism for the run.
type CursorStore interface {
	SaveCursor(ctx context.Context, cursor int) error
}

// InsightSink receives one record per successful mutation. Writes are
// fire-and-forget: failures are logged and never retried.
type InsightSink interface {
	RecordMutation(ctx context.Context, path string) error
}

// Options configures a Scheduler.
type Options struct {
	Interval time.Duration
	Identity string
	Executor Executor
	Cursors  CursorStore
	Insights InsightSink
	Metrics  contracts.IRunMetrics

	// Echo mirrors each log entry to the terminal. May be nil.
	Echo func(LogEntry)
}

// Scheduler is the timer-driven cycle driver: it pops the path at the current
// cursor, runs the pipeline executor, interprets the outcome, and advances
// the persisted cursor. At most one tick's work is ever in flight.
type Scheduler struct {
	mu       sync.Mutex
	state    State
	live     bool
	running  bool
	inFlight bool
	indexed  bool
	identity string
	queue    []string
	cursor   int

	interval time.Duration
	exec     Executor
	cursors  CursorStore
	insights InsightSink
	metrics  contracts.IRunMetrics
	log      *LogRing
	echo     func(LogEntry)

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a scheduler in the Initializing state.
func New(opts Options) *Scheduler {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		state:    StateInitializing,
		identity: opts.Identity,
		interval: interval,
		exec:     opts.Executor,
		cursors:  opts.Cursors,
		insights: opts.Insights,
		metrics:  opts.Metrics,
		log:      NewLogRing(LogCapacity),
		echo:     opts.Echo,
	}
}

// SetQueue installs the work queue and cursor and marks indexing complete.
func (s *Scheduler) SetQueue(queue []string, cursor int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = queue
	s.cursor = cursor
	s.indexed = true
	s.state = StateIdle
}

// Cursor returns the current cursor position and queue length.
func (s *Scheduler) Cursor() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor, len(s.queue)
}

// State returns the scheduler's current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Live reports whether the loop is live.
func (s *Scheduler) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Log appends an entry to the rolling log and echoes it.
func (s *Scheduler) Log(severity Severity, message string) {
	entry := LogEntry{
		Message:  message,
		Severity: severity,
		Time:     time.Now(),
		Identity: s.identity,
	}
	s.log.Append(entry)
	if s.echo != nil {
		s.echo(entry)
	}
}

// Entries returns a copy of the rolling log, oldest first.
func (s *Scheduler) Entries() []LogEntry {
	return s.log.Entries()
}

// Start transitions to live and runs the tick loop in the background. The
// first tick fires immediately rather than waiting a full interval.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.live = true
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	s.stopCh = stopCh
	s.doneCh = doneCh
	s.mu.Unlock()

	go s.loop(ctx, stopCh, doneCh)
}

// Stop turns the loop off. An in-flight tick finishes; no new tick is
// scheduled.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	s.live = false
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
}

// Done is closed when the loop goroutine has exited.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doneCh
}

func (s *Scheduler) loop(ctx context.Context, stopCh chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	if !s.Live() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
		}
		if !s.Live() {
			return
		}
		s.Tick(ctx)
		if !s.Live() {
			return
		}
	}
}

// Tick processes exactly one queue item. It is a no-op if the loop is not
// live, no identity is established, indexing has not completed, or a previous
// tick is still in flight. Queue exhaustion logs completion and turns the
// loop off; this is the terminal state of a run.
func (s *Scheduler) Tick(ctx context.Context) {
	s.mu.Lock()
	if !s.live || s.identity == "" || !s.indexed || s.inFlight {
		s.mu.Unlock()
		return
	}
	if s.cursor >= len(s.queue) {
		s.live = false
		s.state = StateIdle
		if s.stopCh != nil {
			close(s.stopCh)
			s.stopCh = nil
		}
		s.mu.Unlock()
		s.Log(SeveritySuccess, "queue exhausted, run complete")
		return
	}
	path := s.queue[s.cursor]
	s.inFlight = true
	s.state = StateOptimizing
	s.mu.Unlock()

	outcome := s.exec.Run(ctx, path)

	switch outcome.Kind {
	case pipeline.Mutated:
		s.Log(SeveritySuccess, outcome.Message)
		s.metrics.RecordMutation()
		s.metrics.RecordSteps(outcome.StepsAccepted)
		if s.insights != nil {
			if err := s.insights.RecordMutation(ctx, path); err != nil {
				s.Log(SeverityWarning, fmt.Sprintf("insight write for '%s' failed: %v", path, err))
			}
		}
	case pipeline.Skipped:
		s.Log(SeverityInfo, outcome.Message)
	case pipeline.Failed:
		s.Log(SeverityError, outcome.Message)
		s.metrics.RecordError()
		// Steps accepted before the fault still count as pipeline progress.
		if outcome.StepsAccepted > 0 {
			s.metrics.RecordSteps(outcome.StepsAccepted)
		}
	}

	s.mu.Lock()
	s.cursor++
	cursor := s.cursor
	s.inFlight = false
	s.state = StateIdle
	s.mu.Unlock()

	if err := s.cursors.SaveCursor(ctx, cursor); err != nil {
		s.Log(SeverityWarning, fmt.Sprintf("persisting cursor %d failed: %v", cursor, err))
	}
}
