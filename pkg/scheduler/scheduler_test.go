package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matada/simlane/pkg/seed"
)

func testSeed() *seed.Seed {
	return &seed.Seed{
		Goal: "Evaluate onboarding flow",
		Constraints: seed.Constraints{
			Budgets: seed.Budgets{Tokens: 500, Seconds: 0.5},
			Consent: seed.Consent{Scopes: []string{"simulation.read_context"}},
		},
	}
}

// instantWork completes immediately, keeping lifecycle tests fast.
func instantWork(context.Context, *Job) error { return nil }

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestEnqueue_AdmitsQueuedJob(t *testing.T) {
	s := New(WithWork(instantWork))

	job, err := s.Enqueue("job-1", testSeed(), "LT-0a1b2c3d")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.JobID)
	assert.Equal(t, "LT-0a1b2c3d", job.TraceID)
	assert.Equal(t, 500, job.BudgetTokens)
	assert.Equal(t, 0.5, job.BudgetSeconds)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestEnqueue_RejectsMissingInputs(t *testing.T) {
	s := New(WithWork(instantWork))

	_, err := s.Enqueue("", testSeed(), "LT-0a1b2c3d")
	require.Error(t, err)

	_, err = s.Enqueue("job-1", nil, "LT-0a1b2c3d")
	require.Error(t, err)
}

func TestEnqueue_RejectsDuplicateJobID(t *testing.T) {
	s := New(WithWork(instantWork))

	_, err := s.Enqueue("job-1", testSeed(), "LT-0a1b2c3d")
	require.NoError(t, err)

	_, err = s.Enqueue("job-1", testSeed(), "LT-0a1b2c3d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already enqueued")
}

func TestEnqueue_AppliesBudgetDefaults(t *testing.T) {
	s := New(WithWork(instantWork))
	sd := &seed.Seed{Goal: "test"}

	job, err := s.Enqueue("job-1", sd, "LT-0a1b2c3d")
	require.NoError(t, err)
	assert.Equal(t, seed.DefaultBudgetTokens, job.BudgetTokens)
	assert.Equal(t, seed.DefaultBudgetSeconds, job.BudgetSeconds)

	// The caller's seed must stay untouched.
	assert.Zero(t, sd.Constraints.Budgets.Tokens)
}

func TestEnqueue_ClonesSeed(t *testing.T) {
	s := New(WithWork(instantWork))
	sd := testSeed()
	sd.Context = map[string]any{"tenant": "demo"}

	_, err := s.Enqueue("job-1", sd, "LT-0a1b2c3d")
	require.NoError(t, err)

	sd.Context["tenant"] = "mutated"
	require.NoError(t, s.Wait(waitCtx(t), "job-1"))

	job, ok := s.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, "demo", job.Seed.Context["tenant"])
}

func TestJob_FinishedLifecycle(t *testing.T) {
	s := New(WithWork(instantWork))

	_, err := s.Enqueue("job-1", testSeed(), "LT-0a1b2c3d")
	require.NoError(t, err)
	require.NoError(t, s.Wait(waitCtx(t), "job-1"))

	job, ok := s.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, StateFinished, job.State)
	assert.Equal(t, 1.0, job.Progress)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.FinishedAt)
	assert.Equal(t, "within_budget", job.BudgetOutcome)
	assert.Empty(t, job.FailureReason)
}

func TestJob_WorkErrorYieldsFailedState(t *testing.T) {
	s := New(WithWork(func(context.Context, *Job) error {
		return errors.New("rollout engine unavailable")
	}))

	_, err := s.Enqueue("job-1", testSeed(), "LT-0a1b2c3d")
	require.NoError(t, err)
	require.NoError(t, s.Wait(waitCtx(t), "job-1"))

	job, _ := s.Get("job-1")
	assert.Equal(t, StateFailed, job.State)
	assert.Equal(t, "rollout engine unavailable", job.FailureReason)
	assert.NotNil(t, job.FinishedAt)
}

func TestJob_WorkPanicYieldsFailedState(t *testing.T) {
	s := New(WithWork(func(context.Context, *Job) error {
		panic("boom")
	}))

	_, err := s.Enqueue("job-1", testSeed(), "LT-0a1b2c3d")
	require.NoError(t, err)
	require.NoError(t, s.Wait(waitCtx(t), "job-1"))

	job, _ := s.Get("job-1")
	assert.Equal(t, StateFailed, job.State)
	assert.Contains(t, job.FailureReason, "worker panic")
}

func TestJobs_RunStrictlyInAdmissionOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string

	s := New(WithWork(func(_ context.Context, job *Job) error {
		mu.Lock()
		order = append(order, job.JobID)
		mu.Unlock()
		return nil
	}))

	ids := []string{"job-1", "job-2", "job-3"}
	for _, id := range ids {
		_, err := s.Enqueue(id, testSeed(), "LT-0a1b2c3d")
		require.NoError(t, err)
	}
	for _, id := range ids {
		require.NoError(t, s.Wait(waitCtx(t), id))
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, ids, order)
}

func TestWait_UnknownJobReturnsImmediately(t *testing.T) {
	s := New(WithWork(instantWork))
	require.NoError(t, s.Wait(context.Background(), "no-such-job"))
}

func TestWait_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	s := New(WithWork(func(context.Context, *Job) error {
		<-release
		return nil
	}))
	defer close(release)

	_, err := s.Enqueue("job-1", testSeed(), "LT-0a1b2c3d")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = s.Wait(ctx, "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWait_MultipleWaitersAllReleased(t *testing.T) {
	s := New(WithWork(instantWork))

	_, err := s.Enqueue("job-1", testSeed(), "LT-0a1b2c3d")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Wait(waitCtx(t), "job-1")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestGet_UnknownJob(t *testing.T) {
	s := New(WithWork(instantWork))
	_, ok := s.Get("no-such-job")
	assert.False(t, ok)
}

func TestWorkerRestartsAfterQueueDrains(t *testing.T) {
	s := New(WithWork(instantWork))

	_, err := s.Enqueue("job-1", testSeed(), "LT-0a1b2c3d")
	require.NoError(t, err)
	require.NoError(t, s.Wait(waitCtx(t), "job-1"))

	// The worker exits when the queue drains; a later enqueue must
	// restart it.
	_, err = s.Enqueue("job-2", testSeed(), "LT-0a1b2c3d")
	require.NoError(t, err)
	require.NoError(t, s.Wait(waitCtx(t), "job-2"))

	job, _ := s.Get("job-2")
	assert.Equal(t, StateFinished, job.State)
}

func TestSnapshots_WrittenThroughLifecycle(t *testing.T) {
	root := t.TempDir()
	s := New(WithWork(instantWork), WithSnapshots(root))

	_, err := s.Enqueue("job-1", testSeed(), "LT-0a1b2c3d")
	require.NoError(t, err)
	require.NoError(t, s.Wait(waitCtx(t), "job-1"))

	store := NewStore(root)
	snap, err := store.Read("job-1")
	require.NoError(t, err)
	assert.Equal(t, StateFinished, snap.State)
	assert.Equal(t, "LT-0a1b2c3d", snap.TraceID)
}

func TestState_Terminal(t *testing.T) {
	assert.False(t, StateQueued.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateFinished.Terminal())
	assert.True(t, StateFailed.Terminal())
}
