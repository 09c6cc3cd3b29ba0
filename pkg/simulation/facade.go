// Package simulation is the public surface of the simulation lane.
//
// The facade enforces the feature flag, invokes the ethics gate before
// admission, delegates lifecycle to the scheduler, and on collection
// runs rollouts, renders both output representations, and validates
// every node against the published schema before returning.
package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matada/simlane/internal/observability"
	"github.com/matada/simlane/pkg/policy"
	"github.com/matada/simlane/pkg/report"
	"github.com/matada/simlane/pkg/scenario"
	"github.com/matada/simlane/pkg/scheduler"
	"github.com/matada/simlane/pkg/seed"
)

// TraceIDPrefix prefixes every trace id derived from a job id.
const TraceIDPrefix = "LT-"

// FlagFunc reports the live feature flag value. It is consulted fresh
// on every facade call, so flipping the flag takes effect immediately
// for subsequent calls without affecting in-flight jobs.
type FlagFunc func() bool

// Status is the projection returned by the Status operation.
type Status struct {
	State string `json:"state"`
	JobID string `json:"job_id"`
}

// Result is the final collected output (the "dream result"): the
// summary shards and aggregate scores alongside the schema-conformant
// node list.
type Result struct {
	Shards      []report.Shard         `json:"shards"`
	Scores      report.AggregateScores `json:"scores"`
	TraceID     string                 `json:"trace_id"`
	MatadaNodes []report.Node          `json:"matada_nodes"`
	SchemaRef   string                 `json:"schema_ref"`
}

// Option configures a Facade.
type Option func(*Facade)

// WithEvaluator substitutes the scoring engine.
func WithEvaluator(e scenario.Evaluator) Option {
	return func(f *Facade) { f.runner = scenario.NewRunner(e) }
}

// WithScheduler substitutes a pre-configured scheduler (snapshots,
// custom work function, delay caps).
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(f *Facade) {
		if s != nil {
			f.sched = s
		}
	}
}

// WithSchemaRef overrides the node schema reference URI.
func WithSchemaRef(ref string) Option {
	return func(f *Facade) {
		if ref != "" {
			f.schemaRef = ref
		}
	}
}

// WithLenientValidation enables the explicit, logged degrade mode for a
// MISSING node validator. Genuine validation failures still surface.
func WithLenientValidation(lenient bool) Option {
	return func(f *Facade) { f.lenient = lenient }
}

// WithArtifactWriter emits collected results as JSONL records, as an
// audit trail. Write failures are logged, never fatal for collection.
func WithArtifactWriter(w report.Writer) Option {
	return func(f *Facade) { f.artifacts = w }
}

// Facade is the only public entry point to the simulation lane.
type Facade struct {
	enabled   FlagFunc
	sched     *scheduler.Scheduler
	runner    *scenario.Runner
	schemaRef string
	lenient   bool
	artifacts report.Writer
}

// New creates a facade. The enabled func is required: a nil func is
// treated as permanently disabled.
func New(enabled FlagFunc, opts ...Option) *Facade {
	f := &Facade{
		enabled:   enabled,
		sched:     scheduler.New(),
		runner:    scenario.NewRunner(nil),
		schemaRef: report.DefaultSchemaRef,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *Facade) flagEnabled() bool {
	return f.enabled != nil && f.enabled()
}

// Schedule validates the seed against the ethics gate and admits a job.
//
// Returns the new job id, or ErrSimulationDisabled / *PolicyViolationError.
// No job is ever created for a rejected seed.
func (f *Facade) Schedule(sd *seed.Seed) (string, error) {
	if !f.flagEnabled() {
		return "", ErrSimulationDisabled
	}

	if err := policy.Authorize(sd); err != nil {
		observability.Logger.Warn("seed rejected by ethics gate", zap.Error(err))
		return "", &PolicyViolationError{Reason: err.Error(), Err: err}
	}

	jobID := uuid.New().String()
	traceID := TraceIDPrefix + jobID[:8]

	if _, err := f.sched.Enqueue(jobID, sd, traceID); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return jobID, nil
}

// Status returns a non-blocking state projection for the job. Unknown
// jobs project state "unknown" rather than erroring.
func (f *Facade) Status(jobID string) (Status, error) {
	if !f.flagEnabled() {
		return Status{}, ErrSimulationDisabled
	}

	job, ok := f.sched.Get(jobID)
	if !ok {
		return Status{State: "unknown", JobID: jobID}, nil
	}
	return Status{State: string(job.State), JobID: jobID}, nil
}

// Collect waits for the job to finish, runs rollouts, validates every
// output node, and returns the merged result.
//
// Collection either returns a fully validated result or fails entirely;
// there is no partial-success mode. The wait is bounded by ctx.
func (f *Facade) Collect(ctx context.Context, jobID string) (*Result, error) {
	if !f.flagEnabled() {
		return nil, ErrSimulationDisabled
	}

	job, ok := f.sched.Get(jobID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
	}

	if err := f.sched.Wait(ctx, jobID); err != nil {
		return nil, fmt.Errorf("wait for job %s: %w", jobID, err)
	}

	job, _ = f.sched.Get(jobID)
	if job.State == scheduler.StateFailed {
		return nil, &JobFailedError{JobID: jobID, Reason: job.FailureReason}
	}

	rollouts := f.runner.Run(job.Seed, job.TraceID)

	nodes := report.BuildNodes(job.Seed, rollouts, job.TraceID, f.schemaRef)
	if err := report.ValidateNodes(nodes, f.lenient); err != nil {
		if errors.Is(err, report.ErrNodeValidationFailed) {
			return nil, &PolicyViolationError{Reason: err.Error(), Err: err}
		}
		return nil, fmt.Errorf("validate nodes for job %s: %w", jobID, err)
	}

	summary := report.Summarize(job.Seed, rollouts, job.TraceID)

	result := &Result{
		Shards:      summary.Shards,
		Scores:      summary.Scores,
		TraceID:     summary.TraceID,
		MatadaNodes: nodes,
		SchemaRef:   f.schemaRef,
	}
	f.emitArtifacts(ctx, result, &summary)
	return result, nil
}

// emitArtifacts writes the collected result to the configured artifact
// writer, best effort.
func (f *Facade) emitArtifacts(ctx context.Context, result *Result, summary *report.Summary) {
	if f.artifacts == nil {
		return
	}
	for i := range result.Shards {
		if err := f.artifacts.WriteShard(ctx, &result.Shards[i]); err != nil {
			observability.Logger.Warn("artifact shard write failed", zap.Error(err))
			return
		}
	}
	for i := range result.MatadaNodes {
		if err := f.artifacts.WriteNode(ctx, &result.MatadaNodes[i]); err != nil {
			observability.Logger.Warn("artifact node write failed", zap.Error(err))
			return
		}
	}
	if err := f.artifacts.WriteSummary(ctx, summary); err != nil {
		observability.Logger.Warn("artifact summary write failed", zap.Error(err))
	}
}
