package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestRegisterDuplicateName(t *testing.T) {
	t.Parallel()
	s := New()
	if err := s.Register("status", "60s", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	err := s.Register("status", "30s", func(context.Context) error { return nil })
	if !errors.Is(err, ErrTaskExists) {
		t.Fatalf("duplicate Register error = %v, want ErrTaskExists", err)
	}

	snap := s.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 registered task, got %d", len(snap))
	}
	if snap[0].Schedule != "60s" {
		t.Fatalf("original schedule changed to %q", snap[0].Schedule)
	}
}

func TestRegisterInvalidSchedule(t *testing.T) {
	t.Parallel()
	s := New()
	if err := s.Register("bad", "not-a-schedule", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if len(s.Snapshot()) != 0 {
		t.Fatal("invalid registration must not be recorded")
	}
}

func TestRunOnceUnknownTask(t *testing.T) {
	t.Parallel()
	var runs atomic.Int64
	s := New()
	if err := s.Register("known", "1m", func(context.Context) error { runs.Add(1); return nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	err := s.RunOnce(context.Background(), "missing")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("RunOnce error = %v, want ErrTaskNotFound", err)
	}
	if runs.Load() != 0 {
		t.Fatal("RunOnce on unknown name must not invoke anything")
	}
}

func TestRunOnceDoesNotAdvanceSchedule(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	var runs int
	s := New(WithClock(clk.Now))
	if err := s.Register("status", "60s", func(context.Context) error { runs++; return nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := s.RunOnce(context.Background(), "status"); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}

	// The scheduled invocation still fires at the original due time.
	clk.Advance(60 * time.Second)
	if n := s.Tick(context.Background()); n != 1 {
		t.Fatalf("Tick executed %d tasks, want 1", n)
	}
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
}

func TestIntervalFiresAfterFullWindow(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	var runs int
	s := New(WithClock(clk.Now))
	if err := s.Register("status", "60s", func(context.Context) error { runs++; return nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ctx := context.Background()
	if n := s.Tick(ctx); n != 0 {
		t.Fatalf("task fired immediately after registration (%d)", n)
	}

	clk.Advance(59 * time.Second)
	s.Tick(ctx)
	if runs != 0 {
		t.Fatalf("task fired at 59s, runs = %d", runs)
	}

	clk.Advance(1 * time.Second)
	s.Tick(ctx)
	if runs != 1 {
		t.Fatalf("task not fired at 60s, runs = %d", runs)
	}

	// At most once per window: repeated ticks inside the next window do
	// nothing.
	for i := 0; i < 59; i++ {
		clk.Advance(1 * time.Second)
		s.Tick(ctx)
	}
	if runs != 1 {
		t.Fatalf("task fired again inside window, runs = %d", runs)
	}

	clk.Advance(1 * time.Second)
	s.Tick(ctx)
	if runs != 2 {
		t.Fatalf("task not fired at next window, runs = %d", runs)
	}
}

func TestDueTasksRunInRegistrationOrder(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	var order []string
	record := func(name string) Action {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}

	s := New(WithClock(clk.Now))
	for _, name := range []string{"nowplaying", "status", "lyric"} {
		if err := s.Register(name, "10s", record(name)); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	clk.Advance(10 * time.Second)
	if n := s.Tick(context.Background()); n != 3 {
		t.Fatalf("Tick executed %d tasks, want 3", n)
	}
	want := []string{"nowplaying", "status", "lyric"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("execution order = %v, want %v", order, want)
		}
	}
}

func TestFailingTaskDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	var healthyRuns int
	s := New(WithClock(clk.Now))
	if err := s.Register("broken", "10s", func(context.Context) error {
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register("healthy", "10s", func(context.Context) error {
		healthyRuns++
		return nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	clk.Advance(10 * time.Second)
	s.Tick(context.Background())
	if healthyRuns != 1 {
		t.Fatalf("healthy task did not run alongside failing one, runs = %d", healthyRuns)
	}

	for _, info := range s.Snapshot() {
		switch info.Name {
		case "broken":
			if info.Failures != 1 {
				t.Fatalf("broken failures = %d, want 1", info.Failures)
			}
		case "healthy":
			if info.Failures != 0 {
				t.Fatalf("healthy failures = %d, want 0", info.Failures)
			}
		}
	}
}

func TestPanickingTaskIsRecovered(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	var afterRuns int
	s := New(WithClock(clk.Now))
	if err := s.Register("panics", "10s", func(context.Context) error {
		panic("unexpected")
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register("after", "10s", func(context.Context) error {
		afterRuns++
		return nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	clk.Advance(10 * time.Second)
	s.Tick(context.Background())
	if afterRuns != 1 {
		t.Fatal("task after a panicking one did not run")
	}
	if s.Snapshot()[0].Failures != 1 {
		t.Fatal("panic not counted as failure")
	}
}

func TestStopTerminatesRunPromptly(t *testing.T) {
	t.Parallel()
	var runs atomic.Int64
	s := New(WithGranularity(10 * time.Millisecond))
	if err := s.Register("idle", "1h", func(context.Context) error {
		runs.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Stop() // idempotent

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop within a granularity period")
	}
	if runs.Load() != 0 {
		t.Fatalf("idle task invoked %d times during short run", runs.Load())
	}
}

func TestRunHonorsContextCancel(t *testing.T) {
	t.Parallel()
	s := New(WithGranularity(10 * time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not observe context cancellation")
	}
}
