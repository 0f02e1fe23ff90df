package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PendingDeliverer retries notifications that have not reached every channel yet
type PendingDeliverer interface {
	DeliverPending(ctx context.Context, batch int) (int, error)
}

// NotificationWorkerConfig holds configuration for the notification retry worker
type NotificationWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultNotificationWorkerConfig returns default configuration
func DefaultNotificationWorkerConfig() NotificationWorkerConfig {
	return NotificationWorkerConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    50,
	}
}

// NotificationWorker periodically re-delivers pending and failed notifications
type NotificationWorker struct {
	config    NotificationWorkerConfig
	deliverer PendingDeliverer
	logger    *zap.Logger

	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	sentCount int
	runs      int
	lastError error
}

// NewNotificationWorker creates a new notification retry worker
func NewNotificationWorker(config NotificationWorkerConfig, deliverer PendingDeliverer, logger *zap.Logger) *NotificationWorker {
	defaults := DefaultNotificationWorkerConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	return &NotificationWorker{
		config:    config,
		deliverer: deliverer,
		logger:    logger,
	}
}

// Start begins the worker polling loop
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("notification worker already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("NotificationWorker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize))

	go w.pollLoop(w.ctx, w.done)

	return nil
}

// Stop gracefully terminates the worker and waits for the current batch
func (w *NotificationWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.mu.RLock()
	sent := w.sentCount
	w.mu.RUnlock()
	w.logger.Info("NotificationWorker stopped", zap.Int("sent_count", sent))

	return nil
}

// Name returns the worker name for identification
func (w *NotificationWorker) Name() string {
	return "NotificationWorker"
}

// Stats returns how many batches ran, how many notifications were sent and the last error
func (w *NotificationWorker) Stats() (runs, sent int, lastErr error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.runs, w.sentCount, w.lastError
}

func (w *NotificationWorker) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Poll loop context cancelled")
			return

		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *NotificationWorker) runOnce(ctx context.Context) {
	sent, err := w.deliverer.DeliverPending(ctx, w.config.BatchSize)

	w.mu.Lock()
	w.runs++
	w.sentCount += sent
	w.lastError = err
	w.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		w.logger.Error("Failed to deliver pending notifications", zap.Error(err))
	}
}
