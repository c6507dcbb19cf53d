package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arcadecheck/arcadecheck/internal/domain"
)

// --- fakes ---

type fakeRunner struct {
	mu         sync.Mutex
	calls      int
	panicFirst bool
}

func (f *fakeRunner) RunOnce(ctx context.Context) (domain.Outcome, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if f.panicFirst && n == 1 {
		panic("boom")
	}
	return domain.OutcomeUnchanged, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// --- tests ---

func TestScheduler_ImmediatePass(t *testing.T) {
	r := &fakeRunner{}
	s := New(zap.NewNop(), []Job{{Name: "mame", Interval: time.Hour, Runner: r}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.Run(ctx)

	// Wait a tiny bit for the immediate pass to execute.
	time.Sleep(20 * time.Millisecond)

	if r.count() == 0 {
		t.Fatal("expected an immediate pass before the first tick")
	}
}

func TestScheduler_DisabledJobNeverRuns(t *testing.T) {
	r := &fakeRunner{}
	s := New(zap.NewNop(), []Job{{Name: "mame", Interval: 0, Runner: r}})

	// With only disabled jobs Run returns without waiting on ctx.
	s.Run(context.Background())

	if r.count() != 0 {
		t.Fatalf("disabled job must never run, got %d calls", r.count())
	}
}

func TestScheduler_PanicRecovered(t *testing.T) {
	r := &fakeRunner{panicFirst: true}
	s := New(zap.NewNop(), []Job{{Name: "mame", Interval: 10 * time.Millisecond, Runner: r}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.Run(ctx)
	time.Sleep(100 * time.Millisecond)

	if r.count() < 2 {
		t.Fatalf("loop must survive a panicking pass, got %d calls", r.count())
	}
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	r := &fakeRunner{}
	s := New(zap.NewNop(), []Job{
		{Name: "mame", Interval: time.Hour, Runner: r},
		{Name: "retroarch", Interval: time.Hour, Runner: r},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
