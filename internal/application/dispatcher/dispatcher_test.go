package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garyjia/procurement-portal/internal/domain/event"
)

type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func transitionEvent() *event.Event {
	return event.NewEvent(event.TypeTransitionApplied, "goods_request", "gr-1", map[string]interface{}{
		event.KeyTrigger: "submit",
	})
}

func noop(ctx context.Context, evt *event.Event) error { return nil }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubscribe(t *testing.T) {
	t.Run("auto-generated names are unique per type", func(t *testing.T) {
		d := NewDispatcher()
		d.Subscribe(event.TypeTransitionApplied, noop)
		d.Subscribe(event.TypeTransitionApplied, noop)

		handlers := d.ListHandlers(event.TypeTransitionApplied)
		if len(handlers) != 2 {
			t.Fatalf("expected 2 handlers, got %d", len(handlers))
		}
		if handlers[0].Name == handlers[1].Name {
			t.Errorf("handler names collide: %s", handlers[0].Name)
		}
	})

	t.Run("unsubscribe removes only the named handler", func(t *testing.T) {
		d := NewDispatcher()
		var calls []string
		d.SubscribeNamed(event.TypeTransitionApplied, "a", func(ctx context.Context, evt *event.Event) error {
			calls = append(calls, "a")
			return nil
		})
		d.SubscribeNamed(event.TypeTransitionApplied, "b", func(ctx context.Context, evt *event.Event) error {
			calls = append(calls, "b")
			return nil
		})

		d.Unsubscribe(event.TypeTransitionApplied, "a")
		if err := d.Dispatch(context.Background(), transitionEvent()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(calls) != 1 || calls[0] != "b" {
			t.Errorf("expected only b to run, got %v", calls)
		}
	})
}

func TestDispatch(t *testing.T) {
	t.Run("runs handlers in order then wildcard handlers", func(t *testing.T) {
		d := NewDispatcher()
		var order []string
		d.SubscribeNamed(AnyType, "all", func(ctx context.Context, evt *event.Event) error {
			order = append(order, "all")
			return nil
		})
		d.SubscribeNamed(event.TypeTransitionApplied, "first", func(ctx context.Context, evt *event.Event) error {
			order = append(order, "first")
			return nil
		})
		d.SubscribeNamed(event.TypeEntityCreated, "other", func(ctx context.Context, evt *event.Event) error {
			order = append(order, "other")
			return nil
		})

		if err := d.Dispatch(context.Background(), transitionEvent()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 2 || order[0] != "first" || order[1] != "all" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("stops at first error", func(t *testing.T) {
		d := NewDispatcher()
		boom := errors.New("boom")
		var secondRan bool
		d.Subscribe(event.TypeTransitionApplied, func(ctx context.Context, evt *event.Event) error { return boom })
		d.Subscribe(event.TypeTransitionApplied, func(ctx context.Context, evt *event.Event) error {
			secondRan = true
			return nil
		})

		err := d.Dispatch(context.Background(), transitionEvent())
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if secondRan {
			t.Error("second handler should not run")
		}
	})

	t.Run("recovers from handler panic", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		d.Subscribe(event.TypeTransitionApplied, func(ctx context.Context, evt *event.Event) error {
			panic("kaboom")
		})

		if err := d.Dispatch(context.Background(), transitionEvent()); err == nil {
			t.Error("expected error from panicking handler")
		}
		if logger.ErrorCount() == 0 {
			t.Error("expected panic to be logged")
		}
	})

	t.Run("refuses after close", func(t *testing.T) {
		d := NewDispatcher()
		_ = d.Close()
		if err := d.Dispatch(context.Background(), transitionEvent()); err == nil {
			t.Error("expected error on closed dispatcher")
		}
	})
}

func TestDispatchAsync(t *testing.T) {
	t.Run("handlers outlive the caller's context", func(t *testing.T) {
		d := NewDispatcher()
		release := make(chan struct{})
		var sawCancel atomic.Bool
		var done atomic.Bool

		d.Subscribe(event.TypeTransitionApplied, func(ctx context.Context, evt *event.Event) error {
			<-release
			sawCancel.Store(ctx.Err() != nil)
			done.Store(true)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		d.DispatchAsync(ctx, transitionEvent())
		cancel()
		close(release)

		waitFor(t, done.Load)
		if sawCancel.Load() {
			t.Error("async handler should not observe the caller's cancellation")
		}
	})

	t.Run("errors and panics are logged not returned", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		d.Subscribe(event.TypeTransitionApplied, func(ctx context.Context, evt *event.Event) error {
			return errors.New("boom")
		})
		d.Subscribe(event.TypeTransitionApplied, func(ctx context.Context, evt *event.Event) error {
			panic("kaboom")
		})

		d.DispatchAsync(context.Background(), transitionEvent())
		if err := d.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if logger.ErrorCount() < 2 {
			t.Errorf("expected at least 2 logged errors, got %d", logger.ErrorCount())
		}
	})

	t.Run("dropped after close", func(t *testing.T) {
		d := NewDispatcher()
		var called atomic.Bool
		d.Subscribe(event.TypeTransitionApplied, func(ctx context.Context, evt *event.Event) error {
			called.Store(true)
			return nil
		})
		_ = d.Close()

		d.DispatchAsync(context.Background(), transitionEvent())
		time.Sleep(20 * time.Millisecond)
		if called.Load() {
			t.Error("handler ran after close")
		}
	})
}

func TestClose(t *testing.T) {
	t.Run("waits for in-flight handlers", func(t *testing.T) {
		d := NewDispatcher()
		var finished atomic.Bool
		d.Subscribe(event.TypeNotificationsQueued, func(ctx context.Context, evt *event.Event) error {
			time.Sleep(30 * time.Millisecond)
			finished.Store(true)
			return nil
		})

		d.DispatchAsync(context.Background(), event.NewEvent(event.TypeNotificationsQueued, "goods_request", "gr-1", nil))
		if err := d.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if !finished.Load() {
			t.Error("close returned before handler finished")
		}
	})

	t.Run("double close is an error", func(t *testing.T) {
		d := NewDispatcher()
		if err := d.Close(); err != nil {
			t.Fatalf("first close: %v", err)
		}
		if err := d.Close(); err == nil {
			t.Error("expected error on second close")
		}
	})
}

func TestConcurrentSubscribeAndDispatch(t *testing.T) {
	d := NewDispatcher()
	var count atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Subscribe(event.TypeTransitionApplied, func(ctx context.Context, evt *event.Event) error {
				count.Add(1)
				return nil
			})
		}()
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.DispatchAsync(context.Background(), transitionEvent())
		}()
	}
	wg.Wait()
	_ = d.Close()

	if got := count.Load(); got != 100 {
		t.Errorf("expected 100 handler calls, got %d", got)
	}
}
