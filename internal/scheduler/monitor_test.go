package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/statusmonitor/internal/domain"
	"github.com/hamed0406/statusmonitor/internal/repo/memory"
)

// --- fakes ---

type scriptedChecker struct {
	mu    sync.Mutex
	calls map[string]int
	down  map[string]bool
	panic map[string]bool
}

func (c *scriptedChecker) Check(ctx context.Context, t domain.Target) domain.ProbeResult {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[t.Name]++
	c.mu.Unlock()

	if c.panic[t.Name] {
		panic("checker exploded")
	}
	if c.down[t.Name] {
		return domain.ProbeResult{Status: domain.StatusDown, Error: "connection failed", Timestamp: time.Now().UTC()}
	}
	return domain.ProbeResult{Status: domain.StatusUp, LatencyMS: 1, Code: domain.IntPtr(200), Timestamp: time.Now().UTC()}
}

func (c *scriptedChecker) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

// recordingSaver captures the history length of each target at save time.
type recordingSaver struct {
	mu    sync.Mutex
	saves []domain.PersistedState
	err   error
}

func (s *recordingSaver) Save(ctx context.Context, st domain.PersistedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, st)
	return s.err
}

func (s *recordingSaver) n() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func targets(names ...string) []domain.Target {
	out := make([]domain.Target, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Target{Name: n, URL: "https://" + n + ".example.com"})
	}
	return out
}

// --- tests ---

func TestMonitor_RunOnceCommitsBeforeSave(t *testing.T) {
	state := memory.New(targets("A", "B", "C"), 10)
	saver := &recordingSaver{}
	m := NewMonitor(zap.NewNop(), state, &scriptedChecker{down: map[string]bool{"B": true}}, saver, time.Minute, 2)

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if saver.n() != 1 {
		t.Fatalf("want one save, got %d", saver.n())
	}
	saved := saver.saves[0]
	for _, name := range []string{"A", "B", "C"} {
		if len(saved.History[name]) != 1 {
			t.Fatalf("saved snapshot missing %s: %+v", name, saved.History)
		}
		if _, ok := saved.Current[name]; !ok {
			t.Fatalf("saved snapshot missing current for %s", name)
		}
	}
	if saved.LastCheck == nil {
		t.Fatalf("saved snapshot must carry last check")
	}
	if saved.Current["B"].Up() || !saved.Current["A"].Up() {
		t.Fatalf("unexpected statuses: %+v", saved.Current)
	}
}

func TestMonitor_PanickingTargetDoesNotStopOthers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	state := memory.New(targets("A", "bad", "C"), 10)
	chk := &scriptedChecker{panic: map[string]bool{"bad": true}}
	m := NewMonitor(zap.New(core), state, chk, nil, time.Minute, 1)

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	for _, name := range []string{"A", "C"} {
		if r, ok := state.Current(name); !ok || !r.Up() {
			t.Fatalf("target %s not recorded as up: %+v ok=%v", name, r, ok)
		}
	}
	r, ok := state.Current("bad")
	if !ok || r.Up() || r.Error == "" || r.LatencyMS != 0 {
		t.Fatalf("panicking target should be down with error, got %+v", r)
	}
	if logs.FilterMessage("monitor_check_panic").Len() != 1 {
		t.Fatalf("expected panic to be logged, got %v", logs.All())
	}
}

func TestMonitor_SaveErrorIsReturnedAndStateKept(t *testing.T) {
	boom := errors.New("disk full")
	state := memory.New(targets("A"), 10)
	m := NewMonitor(zap.NewNop(), state, &scriptedChecker{}, &recordingSaver{err: boom}, time.Minute, 1)

	if err := m.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want save error, got %v", err)
	}
	if len(state.History("A")) != 1 {
		t.Fatalf("in-memory state must survive a failed save")
	}
}

func TestMonitor_RunKeepsGoingAfterSaveFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	state := memory.New(targets("A"), 3)
	saver := &recordingSaver{err: errors.New("read-only fs")}
	chk := &scriptedChecker{}
	m := NewMonitor(zap.New(core), state, chk, saver, 5*time.Millisecond, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for chk.count("A") < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}

	if chk.count("A") < 5 {
		t.Fatalf("loop stalled after save failures: %d cycles", chk.count("A"))
	}
	if got := len(state.History("A")); got != 3 {
		t.Fatalf("history must stay bounded at 3, got %d", got)
	}
	if logs.FilterMessage("monitor_save_failed").Len() == 0 {
		t.Fatalf("expected save failures to be logged")
	}
	if logs.FilterMessage("monitor_stopped").Len() != 1 {
		t.Fatalf("expected monitor_stopped log")
	}
}

// blockingSaver holds every save until its context ends.
type blockingSaver struct{}

func (blockingSaver) Save(ctx context.Context, s domain.PersistedState) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestMonitor_SaveIsBoundedByInterval(t *testing.T) {
	state := memory.New(targets("A"), 10)
	m := NewMonitor(zap.NewNop(), state, &scriptedChecker{}, blockingSaver{}, 50*time.Millisecond, 1)

	start := time.Now()
	err := m.RunOnce(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("save was not cut off: %s", elapsed)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
	if len(state.History("A")) != 1 {
		t.Fatalf("cycle must be committed even when the save times out")
	}
}

type panickingSaver struct{ n atomic.Int32 }

func (p *panickingSaver) Save(ctx context.Context, s domain.PersistedState) error {
	p.n.Add(1)
	panic("saver exploded")
}

func TestMonitor_CyclePanicIsRecovered(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	state := memory.New(targets("A"), 10)
	saver := &panickingSaver{}
	m := NewMonitor(zap.New(core), state, &scriptedChecker{}, saver, time.Minute, 1)

	m.cycle(context.Background())
	m.cycle(context.Background())

	if saver.n.Load() != 2 {
		t.Fatalf("want two cycles to reach save, got %d", saver.n.Load())
	}
	if logs.FilterMessage("monitor_cycle_panic").Len() != 2 {
		t.Fatalf("expected cycle panics to be logged, got %v", logs.All())
	}
}

func TestMonitor_ConcurrencyIsBounded(t *testing.T) {
	var inFlight, peak atomic.Int32
	chk := checkerFunc(func(ctx context.Context, tg domain.Target) domain.ProbeResult {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return domain.ProbeResult{Status: domain.StatusUp}
	})

	state := memory.New(targets("a", "b", "c", "d", "e", "f", "g", "h"), 10)
	m := NewMonitor(zap.NewNop(), state, chk, nil, time.Minute, 3)
	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if p := peak.Load(); p > 3 {
		t.Fatalf("want at most 3 concurrent checks, got %d", p)
	}
	if len(state.CurrentAll()) != 8 {
		t.Fatalf("want all 8 targets recorded, got %d", len(state.CurrentAll()))
	}
}

func TestMonitor_CancelledCycleIsNotCommitted(t *testing.T) {
	state := memory.New(targets("A"), 10)
	saver := &recordingSaver{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMonitor(zap.NewNop(), state, &scriptedChecker{}, saver, time.Minute, 1)
	if err := m.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if state.LastCheck() != nil || saver.n() != 0 {
		t.Fatalf("cancelled cycle must not be committed or saved")
	}
}

func TestNewMonitor_Defaults(t *testing.T) {
	m := NewMonitor(zap.NewNop(), memory.New(nil, 1), &scriptedChecker{}, nil, 0, 0)
	if m.Interval != DefaultInterval || m.Concurrency != DefaultConcurrency {
		t.Fatalf("defaults not applied: interval=%s concurrency=%d", m.Interval, m.Concurrency)
	}
}

type checkerFunc func(ctx context.Context, t domain.Target) domain.ProbeResult

func (f checkerFunc) Check(ctx context.Context, t domain.Target) domain.ProbeResult { return f(ctx, t) }
