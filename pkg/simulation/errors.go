package simulation

import (
	"errors"
	"fmt"
)

// Sentinel errors for the facade's error taxonomy.
var (
	// ErrSimulationDisabled is returned by every facade operation while
	// the feature flag is off. Not retryable until the flag flips.
	ErrSimulationDisabled = errors.New("simulation lane is disabled")

	// ErrUnknownJob is returned by Collect for unrecognized job ids.
	ErrUnknownJob = errors.New("unknown job")
)

// PolicyViolationError is returned when the ethics gate rejects a seed
// or a collected node fails schema validation. It is fatal for that
// seed/job and never downgraded to a partial result.
type PolicyViolationError struct {
	Reason string
	Err    error
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy violation: %s", e.Reason)
}

func (e *PolicyViolationError) Unwrap() error {
	return e.Err
}

// JobFailedError is returned by Collect when the job reached the failed
// terminal state.
type JobFailedError struct {
	JobID  string
	Reason string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Reason)
}
