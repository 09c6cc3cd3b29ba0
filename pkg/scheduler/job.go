// Package scheduler owns the simulation job lifecycle.
//
// One scheduler instance runs per process, explicitly constructed and
// held by the facade (no package-level singleton). The scheduler
// exclusively owns job records and their state transitions; nothing
// else may mutate job state.
package scheduler

import (
	"time"

	"github.com/matada/simlane/pkg/seed"
)

// State is the lifecycle state of a simulation job.
//
// NOTE: these values are persisted in job.json snapshots and are part
// of the stable on-disk contract.
type State string

const (
	StateQueued   State = "queued"
	StateRunning  State = "running"
	StateFinished State = "finished"
	StateFailed   State = "failed"
)

// Terminal reports whether the state is terminal. Terminal states are
// never revisited.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed
}

// Job is the mutable per-job record.
//
// The scheduler hands out copies; the authoritative record never leaves
// the scheduler's job table.
type Job struct {
	JobID   string `json:"job_id"`
	State   State  `json:"state"`
	TraceID string `json:"trace_id"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Budgets are copied from the seed at admission and immutable after.
	BudgetTokens  int     `json:"budget_tokens"`
	BudgetSeconds float64 `json:"budget_seconds"`

	// Progress is 0.0–1.0.
	Progress float64 `json:"progress"`

	// BudgetOutcome records the worker's budget decision reason.
	BudgetOutcome string `json:"budget_outcome,omitempty"`

	// FailureReason is set when State is failed.
	FailureReason string `json:"failure_reason,omitempty"`

	// Seed is the independent per-job copy of the originating seed.
	Seed *seed.Seed `json:"-"`
}
