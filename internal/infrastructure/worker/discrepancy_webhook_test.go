package worker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/rewards/internal/domain"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

type capturedRequest struct {
	body      []byte
	signature string
	event     string
}

func newCapturingServer(t *testing.T, status int) (*httptest.Server, <-chan capturedRequest) {
	t.Helper()
	received := make(chan capturedRequest, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- capturedRequest{
			body:      body,
			signature: r.Header.Get("X-Rewards-Signature"),
			event:     r.Header.Get("X-Rewards-Event"),
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, received
}

func testAlert() domain.DiscrepancyAlert {
	return domain.DiscrepancyAlert{
		UserID:          "9b2f8f6e-4a65-4f35-8a8e-0c8f4b1e2d01",
		LiveBalance:     210_000,
		RecomputedTotal: 200_000,
		Discrepancy:     10_000,
		DetectedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWebhookWorker_DeliversSignedAlert(t *testing.T) {
	srv, received := newCapturingServer(t, http.StatusNoContent)

	cfg := DefaultWebhookWorkerConfig()
	cfg.TargetURL = srv.URL
	cfg.Secret = "shh"
	w := NewWebhookWorker(cfg, logging.Discard())
	w.Start(context.Background())

	require.NoError(t, w.NotifyDiscrepancy(context.Background(), testAlert()))

	select {
	case req := <-received:
		assert.Equal(t, "balance_discrepancy", req.event)
		assert.Equal(t, ComputeSignature(req.body, "shh"), req.signature)

		var payload WebhookPayload
		require.NoError(t, json.Unmarshal(req.body, &payload))
		assert.Equal(t, "balance_discrepancy", payload.Event)
		assert.Equal(t, int64(210_000), payload.LiveBalance)
		assert.Equal(t, int64(200_000), payload.RecomputedTotal)
		assert.Equal(t, int64(10_000), payload.Discrepancy)
		assert.Equal(t, "2026-03-01T12:00:00Z", payload.Timestamp)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}

	w.Stop()
	<-w.Stopped()
}

func TestWebhookWorker_StopDrainsQueue(t *testing.T) {
	srv, received := newCapturingServer(t, http.StatusOK)

	cfg := DefaultWebhookWorkerConfig()
	cfg.TargetURL = srv.URL
	cfg.WorkerCount = 1

	w := NewWebhookWorker(cfg, logging.Discard())
	for i := 0; i < 3; i++ {
		require.NoError(t, w.NotifyDiscrepancy(context.Background(), testAlert()))
	}
	w.Start(context.Background())
	w.Stop()

	assert.Len(t, received, 3)
}

func TestWebhookWorker_FullBufferDropsAlert(t *testing.T) {
	cfg := DefaultWebhookWorkerConfig()
	cfg.BufferSize = 1
	w := NewWebhookWorker(cfg, logging.Discard())

	require.NoError(t, w.NotifyDiscrepancy(context.Background(), testAlert()))
	assert.NoError(t, w.NotifyDiscrepancy(context.Background(), testAlert()))
	assert.Len(t, w.alertChan, 1)
}

func TestWebhookWorker_NonSuccessStatus(t *testing.T) {
	srv, _ := newCapturingServer(t, http.StatusInternalServerError)

	cfg := DefaultWebhookWorkerConfig()
	cfg.TargetURL = srv.URL
	w := NewWebhookWorker(cfg, logging.Discard())

	assert.False(t, w.dispatch(context.Background(), testAlert(), 0))
}

func TestWebhookWorker_Thresholds(t *testing.T) {
	cfg := DefaultWebhookWorkerConfig()
	cfg.Thresholds = domain.DiscrepancyThresholds{MinAbsolute: 5000}
	w := NewWebhookWorker(cfg, logging.Discard())

	assert.Equal(t, domain.Points(5000), w.Thresholds().MinAbsolute)
}

func TestComputeSignature(t *testing.T) {
	sig := ComputeSignature([]byte(`{"event":"balance_discrepancy"}`), "secret")

	assert.Regexp(t, `^sha256=[0-9a-f]{64}$`, sig)
	assert.Equal(t, sig, ComputeSignature([]byte(`{"event":"balance_discrepancy"}`), "secret"))
	assert.NotEqual(t, sig, ComputeSignature([]byte(`{"event":"balance_discrepancy"}`), "other"))
}

func TestWebhookWorker_NotifyAfterStop(t *testing.T) {
	cfg := DefaultWebhookWorkerConfig()
	w := NewWebhookWorker(cfg, logging.Discard())
	w.Start(context.Background())
	w.Stop()

	assert.NotPanics(t, func() {
		err := w.NotifyDiscrepancy(context.Background(), testAlert())
		assert.ErrorIs(t, err, ErrWorkerStopped)
	})
}

func TestWebhookWorker_ConcurrentNotifyAndStop(t *testing.T) {
	cfg := DefaultWebhookWorkerConfig()
	cfg.BufferSize = 4
	w := NewWebhookWorker(cfg, logging.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := w.NotifyDiscrepancy(context.Background(), testAlert())
				if err != nil {
					assert.ErrorIs(t, err, ErrWorkerStopped)
				}
			}
		}()
	}
	w.Stop()
	wg.Wait()
}
