// Package budget evaluates job resource budgets.
//
// Budgets are recorded per job and honored loosely: the worker bounds
// its simulated work by the seconds budget and records the resulting
// decision, but budgets are not yet enforced as hard caps on real
// compute. Evaluation is deterministic.
package budget

import (
	"fmt"
	"time"
)

// Action is the deterministic budget decision.
type Action string

const (
	ActionContinue  Action = "continue"
	ActionWarn      Action = "warn"
	ActionExhausted Action = "exhausted"
)

// Spec defines a job's budgets, copied from the seed at admission time.
type Spec struct {
	// Tokens is the token budget.
	Tokens int

	// Seconds is the wall-clock budget in seconds.
	Seconds float64
}

// Decision is the outcome of evaluating usage against a spec.
type Decision struct {
	Action Action
	Reason string
}

// Evaluate compares elapsed wall-clock time against the seconds budget.
//
// Elapsed under 80% of the budget continues silently; between 80% and
// 100% continues with a warning; at or past the budget the decision is
// exhausted. Callers decide what exhaustion means — the current worker
// records it without aborting.
func Evaluate(spec Spec, elapsed time.Duration) (Decision, error) {
	if spec.Seconds <= 0 {
		return Decision{}, fmt.Errorf("budget seconds must be > 0, got %v", spec.Seconds)
	}
	if elapsed < 0 {
		return Decision{}, fmt.Errorf("elapsed must be >= 0, got %v", elapsed)
	}

	limit := time.Duration(spec.Seconds * float64(time.Second))
	warnAt := time.Duration(float64(limit) * 0.8)

	switch {
	case elapsed < warnAt:
		return Decision{Action: ActionContinue, Reason: "within_budget"}, nil
	case elapsed < limit:
		return Decision{Action: ActionWarn, Reason: "budget_warning"}, nil
	default:
		return Decision{Action: ActionExhausted, Reason: "budget_exhausted"}, nil
	}
}

// WorkDelay returns the worker's budget-proportional stand-in delay:
// one quarter of the seconds budget, bounded by cap. Real rollout work
// may be substituted here without changing the scheduler contract.
func WorkDelay(spec Spec, cap time.Duration) time.Duration {
	if spec.Seconds <= 0 {
		return 0
	}
	d := time.Duration(spec.Seconds * float64(time.Second) / 4)
	if cap > 0 && d > cap {
		d = cap
	}
	return d
}
