package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDeliverer struct {
	mu      sync.Mutex
	calls   int
	batches []int
	err     error
}

func (f *fakeDeliverer) DeliverPending(ctx context.Context, batch int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.batches = append(f.batches, batch)
	return 2, f.err
}

func (f *fakeDeliverer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNotificationWorker_PollsUntilStopped(t *testing.T) {
	deliverer := &fakeDeliverer{}
	w := NewNotificationWorker(NotificationWorkerConfig{PollInterval: 5 * time.Millisecond, BatchSize: 7}, deliverer, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()), "second start is refused")

	require.Eventually(t, func() bool { return deliverer.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, w.Stop())

	calls := deliverer.callCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, deliverer.callCount(), "no polling after stop")

	runs, sent, lastErr := w.Stats()
	assert.Equal(t, calls, runs)
	assert.Equal(t, 2*calls, sent)
	assert.NoError(t, lastErr)
	assert.Equal(t, 7, deliverer.batches[0])

	assert.NoError(t, w.Stop(), "stop is idempotent")
}

func TestNotificationWorker_RecordsErrors(t *testing.T) {
	deliverer := &fakeDeliverer{err: errors.New("database is locked")}
	w := NewNotificationWorker(NotificationWorkerConfig{PollInterval: 5 * time.Millisecond}, deliverer, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	require.Eventually(t, func() bool { return deliverer.callCount() >= 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, w.Stop())

	_, _, lastErr := w.Stats()
	assert.EqualError(t, lastErr, "database is locked")
	assert.Equal(t, DefaultNotificationWorkerConfig().BatchSize, deliverer.batches[0])
}

type stubWorker struct {
	name     string
	startErr error
	started  bool
	stopped  bool
}

func (s *stubWorker) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *stubWorker) Stop() error {
	s.stopped = true
	return nil
}

func (s *stubWorker) Name() string { return s.name }

func TestWorkerManager(t *testing.T) {
	m := NewWorkerManager(zap.NewNop())
	ok := &stubWorker{name: "ok"}
	broken := &stubWorker{name: "broken", startErr: errors.New("boom")}
	m.Register(ok)
	m.Register(broken)
	assert.Equal(t, 2, m.GetWorkerCount())
	assert.Panics(t, func() { m.Register(&stubWorker{name: "ok"}) })

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.True(t, ok.started)
	assert.Equal(t, map[string]bool{"ok": true, "broken": false}, m.Status())
	assert.Error(t, m.StartAll(context.Background()))

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
	assert.True(t, ok.stopped)
	assert.False(t, broken.stopped, "a worker that never started is not stopped")
	assert.Equal(t, map[string]bool{"ok": false, "broken": false}, m.Status())
	assert.NoError(t, m.StopAll())
}

type failingStop struct{ stubWorker }

func (f *failingStop) Stop() error { return errors.New("stuck") }

func TestWorkerManager_StopErrorsAreJoined(t *testing.T) {
	m := NewWorkerManager(zap.NewNop())
	m.Register(&failingStop{stubWorker{name: "stuck"}})
	m.Register(&stubWorker{name: "fine"})

	require.NoError(t, m.StartAll(context.Background()))
	err := m.StopAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop stuck: stuck")
	assert.False(t, m.IsRunning())
}
