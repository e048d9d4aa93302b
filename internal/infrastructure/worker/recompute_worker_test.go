package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/rewards/internal/application"
	"github.com/joacominatel/rewards/internal/domain"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

type fakeRunner struct {
	mu     sync.Mutex
	calls  []application.ComputeAllInput
	output *application.ComputeAllOutput
	err    error
	ran    chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{ran: make(chan struct{}, 100)}
}

func (r *fakeRunner) ExecuteAll(_ context.Context, input application.ComputeAllInput) (*application.ComputeAllOutput, error) {
	r.mu.Lock()
	r.calls = append(r.calls, input)
	r.mu.Unlock()
	r.ran <- struct{}{}
	if r.err != nil {
		return nil, r.err
	}
	return r.output, nil
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func waitForRun(t *testing.T, r *fakeRunner) {
	t.Helper()
	select {
	case <-r.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("batch did not run")
	}
}

func TestRecomputeWorker_RunsOnStartWithLimit(t *testing.T) {
	runner := newFakeRunner()
	runner.output = &application.ComputeAllOutput{
		Results:  []domain.RewardBreakdown{{UserID: "a"}, {UserID: "b"}},
		Failures: []application.UserFailure{{UserID: "c", Error: "boom"}},
	}

	w := NewRecomputeWorker(runner, RecomputeWorkerConfig{
		Interval:   time.Hour,
		BatchLimit: 50,
		RunOnStart: true,
	}, logging.Discard())
	w.Start(context.Background())
	waitForRun(t, runner)
	w.Stop()
	<-w.Stopped()

	require.Equal(t, 1, runner.callCount())
	assert.Equal(t, 50, runner.calls[0].Limit)
	assert.Empty(t, runner.calls[0].UserIDs)
}

func TestRecomputeWorker_TicksRepeatedly(t *testing.T) {
	runner := newFakeRunner()
	runner.output = &application.ComputeAllOutput{}

	w := NewRecomputeWorker(runner, RecomputeWorkerConfig{Interval: 10 * time.Millisecond}, logging.Discard())
	w.Start(context.Background())
	waitForRun(t, runner)
	waitForRun(t, runner)
	w.Stop()

	assert.GreaterOrEqual(t, runner.callCount(), 2)
}

func TestRecomputeWorker_KeepsTickingAfterBatchError(t *testing.T) {
	runner := newFakeRunner()
	runner.err = errors.New("directory unavailable")

	w := NewRecomputeWorker(runner, RecomputeWorkerConfig{Interval: 10 * time.Millisecond, RunOnStart: true}, logging.Discard())
	w.Start(context.Background())
	waitForRun(t, runner)
	waitForRun(t, runner)
	w.Stop()

	assert.GreaterOrEqual(t, runner.callCount(), 2)
}

func TestRecomputeWorker_StopIsIdempotent(t *testing.T) {
	runner := newFakeRunner()
	w := NewRecomputeWorker(runner, RecomputeWorkerConfig{Interval: time.Hour}, logging.Discard())
	w.Start(context.Background())

	w.Stop()
	w.Stop()

	select {
	case <-w.Stopped():
	default:
		t.Fatal("stopped channel not closed")
	}
	assert.Equal(t, 0, runner.callCount())
}
