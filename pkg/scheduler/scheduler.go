package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matada/simlane/internal/observability"
	"github.com/matada/simlane/pkg/budget"
	"github.com/matada/simlane/pkg/seed"
)

// WorkFunc performs the per-job rollout work. The default implementation
// sleeps proportionally to the job's seconds budget as a stand-in for
// real compute; a real engine may be substituted without touching the
// admission or wait contracts.
type WorkFunc func(ctx context.Context, job *Job) error

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWork replaces the worker's per-job work function.
func WithWork(fn WorkFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.work = fn
		}
	}
}

// WithMaxWorkDelay caps the default work function's proportional delay.
func WithMaxWorkDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.maxWorkDelay = d
		}
	}
}

// WithSnapshots enables on-disk job.json snapshots under root.
// Snapshots are operator-facing only; scheduling never reads them.
func WithSnapshots(root string) Option {
	return func(s *Scheduler) {
		if root != "" {
			s.snapshots = NewStore(root)
		}
	}
}

// jobEntry pairs the authoritative record with its completion signal.
// The done channel is closed exactly once, on reaching a terminal
// state, releasing every waiter together.
type jobEntry struct {
	job  Job
	done chan struct{}
}

// Scheduler owns the FIFO admission queue and the single background
// worker. Jobs execute strictly one at a time in admission order; the
// worker exits when the queue drains and restarts on the next enqueue.
type Scheduler struct {
	mu            sync.Mutex
	jobs          map[string]*jobEntry
	queue         []string
	workerRunning bool

	work         WorkFunc
	maxWorkDelay time.Duration
	snapshots    *Store
}

// New creates a scheduler. The caller owns its lifecycle; one instance
// per process is the intended usage.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:         make(map[string]*jobEntry),
		maxWorkDelay: 5 * time.Second,
	}
	s.work = s.defaultWork
	for _, o := range opts {
		o(s)
	}
	return s
}

// Enqueue admits a job for the given seed.
//
// The seed is cloned so the per-job copy is independent of the caller's
// value; budget defaults (2000 tokens, 2.0 seconds) are applied to the
// copy when absent. The background worker is started lazily.
func (s *Scheduler) Enqueue(jobID string, sd *seed.Seed, traceID string) (Job, error) {
	if jobID == "" {
		return Job{}, fmt.Errorf("job_id is required")
	}
	if sd == nil {
		return Job{}, fmt.Errorf("seed is required")
	}

	jobSeed := sd.Clone()
	jobSeed.ApplyDefaults()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[jobID]; exists {
		return Job{}, fmt.Errorf("job %s already enqueued", jobID)
	}

	entry := &jobEntry{
		job: Job{
			JobID:         jobID,
			State:         StateQueued,
			TraceID:       traceID,
			CreatedAt:     time.Now().UTC(),
			BudgetTokens:  jobSeed.Constraints.Budgets.Tokens,
			BudgetSeconds: jobSeed.Constraints.Budgets.Seconds,
			Seed:          jobSeed,
		},
		done: make(chan struct{}),
	}
	s.jobs[jobID] = entry
	s.queue = append(s.queue, jobID)
	s.writeSnapshotLocked(&entry.job)

	if !s.workerRunning {
		s.workerRunning = true
		go s.runWorker()
	}

	observability.Logger.Info("job enqueued",
		zap.String("job_id", jobID),
		zap.String("trace_id", traceID),
		zap.Int("budget_tokens", entry.job.BudgetTokens),
		zap.Float64("budget_seconds", entry.job.BudgetSeconds))

	return entry.job, nil
}

// Get returns a non-blocking snapshot of the job, if known.
func (s *Scheduler) Get(jobID string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return entry.job, true
}

// Wait blocks until the job reaches a terminal state or ctx is done.
//
// Unknown jobs return immediately with no error. Multiple waiters on
// the same job are all released together by the completion signal.
func (s *Scheduler) Wait(ctx context.Context, jobID string) error {
	s.mu.Lock()
	entry, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-entry.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runWorker processes queued jobs strictly one at a time and exits once
// the queue drains.
func (s *Scheduler) runWorker() {
	for {
		entry := s.dequeue()
		if entry == nil {
			return
		}
		s.process(entry)
	}
}

// dequeue pops the next queued job, or marks the worker stopped and
// returns nil when the queue is empty.
func (s *Scheduler) dequeue() *jobEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		s.workerRunning = false
		return nil
	}
	jobID := s.queue[0]
	s.queue = s.queue[1:]
	return s.jobs[jobID]
}

// process runs one job through Running to a terminal state. Worker-side
// panics are recovered and recorded as a failed terminal state rather
// than leaving the job stuck.
func (s *Scheduler) process(entry *jobEntry) {
	start := time.Now().UTC()
	s.transition(entry, func(j *Job) {
		j.State = StateRunning
		j.StartedAt = &start
	})

	err := s.runWork(entry)

	finished := time.Now().UTC()
	elapsed := finished.Sub(start)

	decision, derr := budget.Evaluate(budget.Spec{
		Tokens:  entry.job.BudgetTokens,
		Seconds: entry.job.BudgetSeconds,
	}, elapsed)

	s.transition(entry, func(j *Job) {
		j.FinishedAt = &finished
		if derr == nil {
			j.BudgetOutcome = decision.Reason
		}
		if err != nil {
			j.State = StateFailed
			j.FailureReason = err.Error()
		} else {
			j.State = StateFinished
			j.Progress = 1.0
		}
	})
	close(entry.done)

	if err != nil {
		observability.Logger.Error("job failed",
			zap.String("job_id", entry.job.JobID),
			zap.String("trace_id", entry.job.TraceID),
			zap.Error(err))
		return
	}
	observability.Logger.Info("job finished",
		zap.String("job_id", entry.job.JobID),
		zap.String("trace_id", entry.job.TraceID),
		zap.Duration("elapsed", elapsed),
		zap.String("budget_outcome", entry.job.BudgetOutcome))
}

// runWork invokes the work function with panic recovery.
func (s *Scheduler) runWork(entry *jobEntry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()

	s.mu.Lock()
	jobCopy := entry.job
	s.mu.Unlock()

	return s.work(context.Background(), &jobCopy)
}

// defaultWork sleeps proportionally to the job's seconds budget, bounded
// by the configured cap. This is a stand-in for real rollout compute.
func (s *Scheduler) defaultWork(ctx context.Context, job *Job) error {
	delay := budget.WorkDelay(budget.Spec{
		Tokens:  job.BudgetTokens,
		Seconds: job.BudgetSeconds,
	}, s.maxWorkDelay)

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// transition applies a mutation to the authoritative record under the
// lock and writes a snapshot. Terminal states are never overwritten.
func (s *Scheduler) transition(entry *jobEntry, mutate func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.job.State.Terminal() {
		return
	}
	mutate(&entry.job)
	s.writeSnapshotLocked(&entry.job)
}

// writeSnapshotLocked persists a best-effort job.json snapshot when
// snapshots are enabled. Snapshot failures never affect scheduling.
func (s *Scheduler) writeSnapshotLocked(job *Job) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Write(job); err != nil {
		observability.Logger.Warn("job snapshot write failed",
			zap.String("job_id", job.JobID),
			zap.Error(err))
	}
}
