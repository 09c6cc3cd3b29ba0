package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matada/simlane/pkg/report"
	"github.com/matada/simlane/pkg/scheduler"
	"github.com/matada/simlane/pkg/seed"
)

func enabled() bool  { return true }
func disabled() bool { return false }

func testSeed() *seed.Seed {
	return &seed.Seed{
		Goal:    "Evaluate onboarding flow",
		Context: map[string]any{"tenant": "demo"},
		Constraints: seed.Constraints{
			Budgets: seed.Budgets{Tokens: 500, Seconds: 0.5},
			Consent: seed.Consent{Scopes: []string{"simulation.read_context"}},
		},
	}
}

// fastFacade builds an enabled facade whose worker completes instantly.
func fastFacade(opts ...Option) *Facade {
	sched := scheduler.New(scheduler.WithWork(
		func(context.Context, *scheduler.Job) error { return nil },
	))
	return New(enabled, append([]Option{WithScheduler(sched)}, opts...)...)
}

func collectCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestFacade_DisabledFlagBlocksEveryOperation(t *testing.T) {
	f := New(disabled)

	_, err := f.Schedule(testSeed())
	assert.ErrorIs(t, err, ErrSimulationDisabled)

	_, err = f.Status("any")
	assert.ErrorIs(t, err, ErrSimulationDisabled)

	_, err = f.Collect(context.Background(), "any")
	assert.ErrorIs(t, err, ErrSimulationDisabled)
}

func TestFacade_NilFlagMeansDisabled(t *testing.T) {
	f := New(nil)
	_, err := f.Schedule(testSeed())
	assert.ErrorIs(t, err, ErrSimulationDisabled)
}

func TestFacade_FlagConsultedFreshPerCall(t *testing.T) {
	on := true
	f := fastFacade()
	f.enabled = func() bool { return on }

	jobID, err := f.Schedule(testSeed())
	require.NoError(t, err)

	on = false
	_, err = f.Status(jobID)
	assert.ErrorIs(t, err, ErrSimulationDisabled)

	on = true
	_, err = f.Status(jobID)
	assert.NoError(t, err)
}

func TestFacade_PolicyRejectionCreatesNoJob(t *testing.T) {
	f := fastFacade()

	sd := testSeed()
	sd.Constraints.Flags.DuressActive = true

	_, err := f.Schedule(sd)
	require.Error(t, err)

	var pv *PolicyViolationError
	require.True(t, errors.As(err, &pv))
	assert.Contains(t, pv.Reason, "duress")

	// Nothing was admitted: the scheduler knows no jobs.
	status, err := f.Status("anything")
	require.NoError(t, err)
	assert.Equal(t, "unknown", status.State)
}

func TestFacade_ScheduleDerivesTraceFromJobID(t *testing.T) {
	f := fastFacade()

	jobID, err := f.Schedule(testSeed())
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	result, err := f.Collect(collectCtx(t), jobID)
	require.NoError(t, err)
	assert.Equal(t, TraceIDPrefix+jobID[:8], result.TraceID)
}

func TestFacade_StatusUnknownJob(t *testing.T) {
	f := fastFacade()

	status, err := f.Status("no-such-job")
	require.NoError(t, err)
	assert.Equal(t, "unknown", status.State)
	assert.Equal(t, "no-such-job", status.JobID)
}

func TestFacade_CollectUnknownJob(t *testing.T) {
	f := fastFacade()

	_, err := f.Collect(context.Background(), "no-such-job")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestFacade_CollectFailedJob(t *testing.T) {
	sched := scheduler.New(scheduler.WithWork(
		func(context.Context, *scheduler.Job) error {
			return errors.New("rollout engine unavailable")
		},
	))
	f := New(enabled, WithScheduler(sched))

	jobID, err := f.Schedule(testSeed())
	require.NoError(t, err)

	_, err = f.Collect(collectCtx(t), jobID)
	require.Error(t, err)

	var jf *JobFailedError
	require.True(t, errors.As(err, &jf))
	assert.Equal(t, jobID, jf.JobID)
	assert.Contains(t, jf.Reason, "rollout engine unavailable")
}

func TestFacade_CollectBoundedByContext(t *testing.T) {
	release := make(chan struct{})
	sched := scheduler.New(scheduler.WithWork(
		func(context.Context, *scheduler.Job) error {
			<-release
			return nil
		},
	))
	defer close(release)
	f := New(enabled, WithScheduler(sched))

	jobID, err := f.Schedule(testSeed())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = f.Collect(ctx, jobID)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFacade_EndToEnd(t *testing.T) {
	f := fastFacade()

	jobID, err := f.Schedule(testSeed())
	require.NoError(t, err)

	result, err := f.Collect(collectCtx(t), jobID)
	require.NoError(t, err)

	require.Len(t, result.Shards, 3)
	assert.True(t, strings.HasPrefix(result.TraceID, TraceIDPrefix))
	assert.Greater(t, result.Scores.UtilityMean, 0.6)

	require.Len(t, result.MatadaNodes, 3)
	for _, n := range result.MatadaNodes {
		assert.True(t, strings.HasPrefix(n.ID, result.TraceID))
		assert.Equal(t, result.TraceID, n.Trace.TraceID)
	}
	assert.Equal(t, report.DefaultSchemaRef, result.SchemaRef)

	status, err := f.Status(jobID)
	require.NoError(t, err)
	assert.Equal(t, string(scheduler.StateFinished), status.State)
}

func TestFacade_CollectHonorsMaxRollouts(t *testing.T) {
	f := fastFacade()

	sd := testSeed()
	sd.Constraints.Budgets.MaxRollouts = 1

	jobID, err := f.Schedule(sd)
	require.NoError(t, err)

	result, err := f.Collect(collectCtx(t), jobID)
	require.NoError(t, err)
	require.Len(t, result.Shards, 1)
	assert.Equal(t, "optimistic", result.Shards[0].Variant)
	require.Len(t, result.MatadaNodes, 1)
}

func TestFacade_CollectIsRepeatable(t *testing.T) {
	f := fastFacade()

	jobID, err := f.Schedule(testSeed())
	require.NoError(t, err)

	first, err := f.Collect(collectCtx(t), jobID)
	require.NoError(t, err)
	second, err := f.Collect(collectCtx(t), jobID)
	require.NoError(t, err)

	assert.Equal(t, first.TraceID, second.TraceID)
	assert.Equal(t, first.Scores, second.Scores)
	assert.Equal(t, len(first.MatadaNodes), len(second.MatadaNodes))
}

func TestFacade_ResultCarriesNoContextValues(t *testing.T) {
	f := fastFacade()

	jobID, err := f.Schedule(testSeed())
	require.NoError(t, err)

	result, err := f.Collect(collectCtx(t), jobID)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"demo"`)
	assert.Contains(t, string(raw), "tenant")
}

func TestFacade_ArtifactWriterReceivesRecords(t *testing.T) {
	var buf bytes.Buffer
	f := fastFacade(WithArtifactWriter(report.NewJSONLWriter(&buf, "")))

	jobID, err := f.Schedule(testSeed())
	require.NoError(t, err)

	_, err = f.Collect(collectCtx(t), jobID)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	// 3 shards + 3 nodes + 1 summary.
	require.Len(t, lines, 7)

	var last report.Record
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &last))
	assert.Equal(t, report.TypeSummary, last.Type)
}
