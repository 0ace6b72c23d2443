package shutdown

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"reel/internal/pkg/logger"
)

func newTestLogger() *logger.Logger {
	var buf bytes.Buffer
	return logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
}

func TestShutdownRunsHandlersLIFO(t *testing.T) {
	mgr := NewManager(newTestLogger(), 5*time.Second)

	var order []string
	mgr.Register("redis", func(ctx context.Context) error {
		order = append(order, "redis")
		return nil
	})
	mgr.RegisterSimple("postgres", func() { order = append(order, "postgres") })
	mgr.Register("render-registry", func(ctx context.Context) error {
		order = append(order, "render-registry")
		return nil
	})

	mgr.Shutdown()

	want := []string{"render-registry", "postgres", "redis"}
	if len(order) != len(want) {
		t.Fatalf("expected %d handlers, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestShutdownContinuesAfterFailure(t *testing.T) {
	mgr := NewManager(newTestLogger(), 5*time.Second)

	var ran atomic.Bool
	mgr.Register("first", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	mgr.Register("failing", func(ctx context.Context) error {
		return context.DeadlineExceeded
	})

	mgr.Shutdown()

	if !ran.Load() {
		t.Error("expected handler after a failing one to run")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	mgr := NewManager(newTestLogger(), time.Second)

	var calls atomic.Int32
	mgr.RegisterSimple("count", func() { calls.Add(1) })

	mgr.Shutdown()
	mgr.Shutdown()

	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestDoneAndContext(t *testing.T) {
	mgr := NewManager(nil, 0)
	ctx := mgr.Context()

	select {
	case <-mgr.Done():
		t.Fatal("done closed before shutdown")
	case <-ctx.Done():
		t.Fatal("context canceled before shutdown")
	default:
	}

	mgr.Shutdown()

	select {
	case <-mgr.Done():
	case <-time.After(time.Second):
		t.Error("expected done channel to be closed")
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("expected context to be canceled")
	}
}

func TestWaitWithContext(t *testing.T) {
	mgr := NewManager(newTestLogger(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mgr.WaitWithContext(ctx)

	select {
	case <-mgr.Done():
	default:
		t.Error("expected shutdown to complete after context cancellation")
	}
}

func TestShutdownTimeout(t *testing.T) {
	mgr := NewManager(newTestLogger(), 100*time.Millisecond)

	mgr.Register("slow", func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
		}
		return nil
	})

	start := time.Now()
	mgr.Shutdown()

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("shutdown took too long: %v", elapsed)
	}
}
