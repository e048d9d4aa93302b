package worker

import (
	"context"
	"sync"
	"time"

	"github.com/joacominatel/rewards/internal/application"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

// BatchRunner runs one batch recomputation.
type BatchRunner interface {
	ExecuteAll(ctx context.Context, input application.ComputeAllInput) (*application.ComputeAllOutput, error)
}

// RecomputeWorkerConfig holds configuration for the periodic recompute.
type RecomputeWorkerConfig struct {
	// Interval is the time between two batches.
	Interval time.Duration

	// BatchLimit caps the users of one batch. zero means all.
	BatchLimit int

	// RunOnStart triggers a batch immediately instead of waiting one interval.
	RunOnStart bool
}

// RecomputeWorker recomputes every user's breakdown on a ticker.
// batches never overlap: a tick that fires during a batch is skipped.
type RecomputeWorker struct {
	runner BatchRunner
	config RecomputeWorkerConfig
	logger *logging.Logger

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewRecomputeWorker creates a new recompute worker.
func NewRecomputeWorker(runner BatchRunner, config RecomputeWorkerConfig, logger *logging.Logger) *RecomputeWorker {
	return &RecomputeWorker{
		runner:  runner,
		config:  config,
		logger:  logger.WithComponent("recompute_worker"),
		stopped: make(chan struct{}),
	}
}

// Start begins the ticker goroutine.
func (w *RecomputeWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.logger.Info("recompute worker starting",
		"interval", w.config.Interval.String(),
		"batch_limit", w.config.BatchLimit,
		"run_on_start", w.config.RunOnStart,
	)

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop cancels the running batch and waits for the goroutine to exit.
func (w *RecomputeWorker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("recompute worker stopping")
		if w.cancel != nil {
			w.cancel()
		}
		w.wg.Wait()
		close(w.stopped)
		w.logger.Info("recompute worker stopped")
	})
}

// Stopped returns a channel that closes when the worker has fully stopped.
func (w *RecomputeWorker) Stopped() <-chan struct{} {
	return w.stopped
}

func (w *RecomputeWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	if w.config.RunOnStart {
		w.runBatch(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("recompute worker exiting on context cancel")
			return
		case <-ticker.C:
			w.runBatch(ctx)
		}
	}
}

// runBatch executes a single recompute cycle.
// the use case logs and records the batch; the worker only reports what it cannot.
func (w *RecomputeWorker) runBatch(ctx context.Context) {
	start := time.Now()
	output, err := w.runner.ExecuteAll(ctx, application.ComputeAllInput{
		Limit: w.config.BatchLimit,
	})
	if err != nil {
		w.logger.Error("scheduled recompute failed",
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	for _, f := range output.Failures {
		w.logger.Warn("scheduled recompute: user failed",
			"user_id", f.UserID,
			"error", f.Error,
		)
	}
}
