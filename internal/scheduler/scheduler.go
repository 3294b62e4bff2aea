package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

var (
	// ErrTaskExists is returned by Register when the name is already taken.
	ErrTaskExists = errors.New("task already registered")
	// ErrTaskNotFound is returned by RunOnce for an unknown task name.
	ErrTaskNotFound = errors.New("task not registered")
)

// Action is a unit of monitoring work. Errors are isolated and logged; an
// action is responsible for its own retries (or for ignoring failures).
type Action func(ctx context.Context) error

// TaskInfo is a point-in-time view of one registered task.
type TaskInfo struct {
	Name     string
	Schedule string
	LastRun  time.Time
	NextDue  time.Time
	Runs     uint64
	Failures uint64
}

type taskState struct {
	name     string
	schedule Schedule
	action   Action

	lastRun  time.Time
	nextDue  time.Time
	runs     uint64
	failures uint64
}

// Scheduler holds a small ordered set of named tasks and dispatches them from
// a single goroutine. See the package documentation for loop semantics.
type Scheduler struct {
	log         logx.Logger
	granularity time.Duration
	now         func() time.Time

	mu    sync.Mutex
	tasks []*taskState // registration order
	index map[string]*taskState

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(log logx.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithGranularity sets the sleep between ticks. Defaults to one second,
// matching the original per-second task clocks.
func WithGranularity(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.granularity = d
		}
	}
}

// WithClock injects the time source. Tests use this to advance simulated
// time instead of sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		log:         logx.Nop(),
		granularity: time.Second,
		now:         time.Now,
		index:       map[string]*taskState{},
		stopCh:      make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register adds a named task. The schedule string is parsed per
// ParseSchedule. Duplicate names and invalid schedules fail without touching
// existing registrations. The first due time is one full schedule window
// after registration; tasks do not fire immediately.
func (s *Scheduler) Register(name, spec string, action Action) error {
	if name == "" {
		return fmt.Errorf("task name required")
	}
	if action == nil {
		return fmt.Errorf("task %q: action required", name)
	}
	sched, err := ParseSchedule(spec)
	if err != nil {
		return fmt.Errorf("task %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.index[name]; dup {
		return fmt.Errorf("%w: %q", ErrTaskExists, name)
	}
	now := s.now()
	st := &taskState{
		name:     name,
		schedule: sched,
		action:   action,
		lastRun:  now,
		nextDue:  sched.Next(now),
	}
	s.tasks = append(s.tasks, st)
	s.index[name] = st
	s.log.Debug("task registered",
		logx.String("task", name),
		logx.String("schedule", sched.String()),
		logx.Time("next", st.nextDue))
	return nil
}

// Tick runs every due task once, sequentially in registration order, and
// advances their due times. It returns the number of tasks executed. Tick is
// the unit a test harness drives directly; Run is a thin loop around it.
func (s *Scheduler) Tick(ctx context.Context) int {
	now := s.now()

	s.mu.Lock()
	due := make([]*taskState, 0, len(s.tasks))
	for _, st := range s.tasks {
		if !now.Before(st.nextDue) {
			due = append(due, st)
		}
	}
	s.mu.Unlock()

	for _, st := range due {
		s.runTask(ctx, st, now)
	}
	return len(due)
}

func (s *Scheduler) runTask(ctx context.Context, st *taskState, now time.Time) {
	start := s.now()
	err := s.invoke(ctx, st)
	took := s.now().Sub(start)

	s.mu.Lock()
	st.lastRun = now
	st.nextDue = st.schedule.Next(now)
	st.runs++
	if err != nil {
		st.failures++
	}
	next := st.nextDue
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("task failed",
			logx.String("task", st.name),
			logx.Err(err),
			logx.Duration("took", took),
			logx.Time("next", next))
		return
	}
	s.log.Info("task ok",
		logx.String("task", st.name),
		logx.Duration("took", took),
		logx.Time("next", next))
}

// invoke shields the loop from a panicking action.
func (s *Scheduler) invoke(ctx context.Context, st *taskState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.log.Error("panic in task",
				logx.String("task", st.name),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()
	return st.action(ctx)
}

// RunOnce invokes a single registered task immediately, bypassing its
// schedule and without advancing its due time.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	s.mu.Lock()
	st, ok := s.index[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}
	return s.invoke(ctx, st)
}

// Run blocks, ticking until Stop() is called or ctx is canceled. The stop
// flag is observed at the top of each tick; in-flight actions are not
// interrupted.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler started",
		logx.Int("tasks", len(s.Snapshot())),
		logx.Duration("granularity", s.granularity))
	for {
		select {
		case <-s.stopCh:
			s.log.Info("scheduler stopped")
			return nil
		case <-ctx.Done():
			s.log.Info("scheduler stopped", logx.Err(ctx.Err()))
			return ctx.Err()
		default:
		}

		s.Tick(ctx)

		select {
		case <-s.stopCh:
			s.log.Info("scheduler stopped")
			return nil
		case <-ctx.Done():
			s.log.Info("scheduler stopped", logx.Err(ctx.Err()))
			return ctx.Err()
		case <-time.After(s.granularity):
		}
	}
}

// Stop raises the control flag observed by Run. Idempotent and safe to call
// from any goroutine.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Snapshot returns the registered tasks in registration order.
func (s *Scheduler) Snapshot() []TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskInfo, 0, len(s.tasks))
	for _, st := range s.tasks {
		out = append(out, TaskInfo{
			Name:     st.name,
			Schedule: st.schedule.String(),
			LastRun:  st.lastRun,
			NextDue:  st.nextDue,
			Runs:     st.runs,
			Failures: st.failures,
		})
	}
	return out
}
