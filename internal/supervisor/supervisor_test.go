package supervisor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func TestSanitizeError(t *testing.T) {
	live := context.Background()
	done, cancel := context.WithCancel(context.Background())
	cancel()

	if err := SanitizeError(live, nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	plain := errors.New("boom")
	if err := SanitizeError(live, plain); err != plain {
		t.Fatalf("expected plain error to pass through, got %v", err)
	}

	err := SanitizeError(live, context.Canceled)
	if err == nil || errors.Is(err, context.Canceled) {
		t.Fatalf("expected stray cancel to be masked, got %v", err)
	}
	if !strings.Contains(err.Error(), "context canceled") {
		t.Fatalf("expected message to survive, got %q", err)
	}

	wrapped := errors.Join(suture.ErrDoNotRestart, context.DeadlineExceeded)
	if err := SanitizeError(live, wrapped); !errors.Is(err, suture.ErrDoNotRestart) || errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected ErrDoNotRestart kept and deadline masked, got %v", err)
	}

	if err := SanitizeError(done, plain); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected ctx error once ctx is done, got %v", err)
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSupervisor_RestartsFailedService(t *testing.T) {
	var logs lockedBuffer
	super := New("test", slog.New(slog.NewTextHandler(&logs, nil)))

	var calls atomic.Int32
	running := make(chan struct{})
	Add(super, NewFunc("flaky", func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			return errors.New("first start fails")
		}
		close(running)
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := super.ServeBackground(ctx)

	select {
	case <-running:
	case <-time.After(5 * time.Second):
		t.Fatal("service was not restarted")
	}
	cancel()
	<-errCh

	if !strings.Contains(logs.String(), "service failed") || !strings.Contains(logs.String(), "flaky") {
		t.Fatalf("expected failure to be logged, got %q", logs.String())
	}
}

func TestFunc_String(t *testing.T) {
	f := NewFunc("ipc", func(context.Context) error { return nil })
	if f.String() != "ipc" {
		t.Fatalf("expected ipc, got %q", f.String())
	}
	if err := f.Serve(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
