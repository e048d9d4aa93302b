package worker

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/joacominatel/rewards/internal/domain"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

// ErrWorkerStopped is returned when an alert is queued after Stop.
var ErrWorkerStopped = errors.New("webhook worker stopped")

// WebhookWorkerConfig holds configuration for the discrepancy webhook dispatcher.
type WebhookWorkerConfig struct {
	// TargetURL receives every alert as a signed json POST.
	TargetURL string

	// Secret signs payloads with HMAC-SHA256.
	Secret string

	// BufferSize is the size of the alert channel buffer.
	BufferSize int

	// WorkerCount is the number of concurrent workers dispatching webhooks.
	WorkerCount int

	// RequestTimeout is the max time to wait for each outgoing HTTP request.
	RequestTimeout time.Duration

	// Thresholds define when a discrepancy is worth an alert.
	Thresholds domain.DiscrepancyThresholds
}

// DefaultWebhookWorkerConfig returns sensible defaults.
func DefaultWebhookWorkerConfig() WebhookWorkerConfig {
	return WebhookWorkerConfig{
		BufferSize:     1000,
		WorkerCount:    2,
		RequestTimeout: 5 * time.Second,
		Thresholds:     domain.DefaultDiscrepancyThresholds(),
	}
}

// WebhookWorker dispatches discrepancy alerts to an operator webhook.
// implements domain.NotificationService.
type WebhookWorker struct {
	alertChan  chan domain.DiscrepancyAlert
	httpClient *http.Client
	config     WebhookWorkerConfig
	logger     *logging.Logger

	// mu guards closed; senders hold it shared so Stop never closes alertChan mid-send
	mu     sync.RWMutex
	closed bool

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewWebhookWorker creates a new webhook worker.
func NewWebhookWorker(config WebhookWorkerConfig, logger *logging.Logger) *WebhookWorker {
	return &WebhookWorker{
		alertChan: make(chan domain.DiscrepancyAlert, config.BufferSize),
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		config:  config,
		logger:  logger.WithComponent("webhook_worker"),
		stopped: make(chan struct{}),
	}
}

// Start begins the worker goroutines.
func (w *WebhookWorker) Start(ctx context.Context) {
	w.logger.Info("webhook worker starting",
		"buffer_size", w.config.BufferSize,
		"worker_count", w.config.WorkerCount,
		"request_timeout", w.config.RequestTimeout.String(),
	)

	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.runWorker(ctx, i)
	}
}

// Stop gracefully shuts down the worker, draining queued alerts.
func (w *WebhookWorker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("webhook worker stopping, draining buffer...")
		w.mu.Lock()
		w.closed = true
		close(w.alertChan)
		w.mu.Unlock()
		w.wg.Wait()
		close(w.stopped)
		w.logger.Info("webhook worker stopped")
	})
}

// Stopped returns a channel that closes when the worker has fully stopped.
func (w *WebhookWorker) Stopped() <-chan struct{} {
	return w.stopped
}

// NotifyDiscrepancy queues an alert for delivery without blocking.
// a full buffer drops the alert; the discrepancy is still logged and counted.
// returns ErrWorkerStopped once Stop has been called.
func (w *WebhookWorker) NotifyDiscrepancy(ctx context.Context, alert domain.DiscrepancyAlert) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWorkerStopped
	}

	select {
	case w.alertChan <- alert:
		w.logger.Debug("discrepancy alert queued",
			"user_id", alert.UserID,
			"discrepancy", alert.Discrepancy.Int64(),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		w.logger.Warn("webhook buffer full, alert dropped",
			"user_id", alert.UserID,
		)
		return nil
	}
}

// Thresholds returns the configured alert thresholds.
func (w *WebhookWorker) Thresholds() domain.DiscrepancyThresholds {
	return w.config.Thresholds
}

// runWorker is the main worker loop.
func (w *WebhookWorker) runWorker(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case alert, ok := <-w.alertChan:
			if !ok {
				w.logger.Debug("worker exiting after drain", "worker_id", workerID)
				return
			}
			w.dispatch(ctx, alert, workerID)

		case <-ctx.Done():
			w.logger.Debug("worker exiting on context cancel", "worker_id", workerID)
			return
		}
	}
}

// dispatch sends one alert.
func (w *WebhookWorker) dispatch(ctx context.Context, alert domain.DiscrepancyAlert, workerID int) bool {
	payload, err := json.Marshal(WebhookPayload{
		Event:           "balance_discrepancy",
		UserID:          alert.UserID,
		LiveBalance:     alert.LiveBalance.Int64(),
		RecomputedTotal: alert.RecomputedTotal.Int64(),
		Discrepancy:     alert.Discrepancy.Int64(),
		Timestamp:       alert.DetectedAt.Format(time.RFC3339),
	})
	if err != nil {
		w.logger.Error("failed to marshal payload",
			"worker_id", workerID,
			"error", err.Error(),
		)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.TargetURL, bytes.NewReader(payload))
	if err != nil {
		w.logger.Error("failed to create request",
			"worker_id", workerID,
			"target_url", w.config.TargetURL,
			"error", err.Error(),
		)
		return false
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Rewards-Signature", ComputeSignature(payload, w.config.Secret))
	req.Header.Set("X-Rewards-Event", "balance_discrepancy")
	req.Header.Set("User-Agent", "Rewards-Webhook/1.0")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		w.logger.Warn("webhook request failed",
			"worker_id", workerID,
			"target_url", w.config.TargetURL,
			"error", err.Error(),
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		w.logger.Debug("webhook delivered",
			"user_id", alert.UserID,
			"status", resp.StatusCode,
		)
		return true
	}

	w.logger.Warn("webhook returned non-success status",
		"worker_id", workerID,
		"target_url", w.config.TargetURL,
		"status", resp.StatusCode,
	)
	return false
}

// ComputeSignature generates the HMAC-SHA256 signature header value.
func ComputeSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}

// WebhookPayload is the JSON structure sent to webhook endpoints.
type WebhookPayload struct {
	Event           string `json:"event"`
	UserID          string `json:"user_id"`
	LiveBalance     int64  `json:"live_balance"`
	RecomputedTotal int64  `json:"recomputed_total"`
	Discrepancy     int64  `json:"discrepancy"`
	Timestamp       string `json:"timestamp"`
}
