package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/statusmonitor/internal/domain"
	"github.com/hamed0406/statusmonitor/internal/probe"
	"github.com/hamed0406/statusmonitor/internal/repo/memory"
)

const (
	DefaultInterval    = 30 * time.Second
	DefaultConcurrency = 4
)

// StateSaver persists a snapshot after each cycle. *repo.Persister
// satisfies it.
type StateSaver interface {
	Save(ctx context.Context, s domain.PersistedState) error
}

// Monitor is the only writer of the monitor state. Each cycle probes every
// target, commits the results in one step and then saves a snapshot.
type Monitor struct {
	Logger      *zap.Logger
	State       *memory.Store
	Checker     probe.Checker
	Saver       StateSaver
	Interval    time.Duration
	Concurrency int

	now func() time.Time
}

func NewMonitor(
	logger *zap.Logger,
	state *memory.Store,
	checker probe.Checker,
	saver StateSaver,
	interval time.Duration,
	concurrency int,
) *Monitor {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		Logger:      logger,
		State:       state,
		Checker:     checker,
		Saver:       saver,
		Interval:    interval,
		Concurrency: concurrency,
		now:         time.Now,
	}
}

// Run does an immediate pass, then one per tick, until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.Interval)
	defer t.Stop()

	m.Logger.Info("monitor_started",
		zap.Duration("interval", m.Interval),
		zap.Int("targets", len(m.State.Targets())),
		zap.Int("concurrency", m.Concurrency),
	)

	m.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			m.Logger.Info("monitor_stopped")
			return
		case <-t.C:
			m.cycle(ctx)
		}
	}
}

// cycle runs one pass and never lets a panic escape the loop.
func (m *Monitor) cycle(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			m.Logger.Error("monitor_cycle_panic", zap.Any("panic", rec))
		}
	}()
	if err := m.RunOnce(ctx); err != nil {
		m.Logger.Warn("monitor_save_failed", zap.Error(err))
	}
}

// RunOnce probes all targets, commits the cycle and saves the resulting
// snapshot. Only a save failure is returned; the in-memory state is already
// updated by then.
func (m *Monitor) RunOnce(ctx context.Context) error {
	targets := m.State.Targets()
	if len(targets) == 0 {
		return nil
	}
	start := m.now()
	log := m.Logger.With(zap.String("cycle_id", uuid.NewString()))

	results := m.probeAll(ctx, log, targets)
	if ctx.Err() != nil {
		// shutting down mid-cycle: keep the last complete cycle
		return nil
	}
	m.State.CommitCycle(results, m.now())

	up := 0
	for _, r := range results {
		if r.Up() {
			up++
		}
	}
	log.Info("monitor_cycle_done",
		zap.Int("targets", len(results)),
		zap.Int("up", up),
		zap.Duration("took", m.now().Sub(start)),
	)

	if m.Saver == nil {
		return nil
	}
	// a stuck backend must not delay the next tick
	sctx, cancel := context.WithTimeout(ctx, m.Interval)
	defer cancel()
	return m.Saver.Save(sctx, m.State.Snapshot())
}

func (m *Monitor) probeAll(ctx context.Context, log *zap.Logger, targets []domain.Target) map[string]domain.ProbeResult {
	sem := make(chan struct{}, m.Concurrency)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]domain.ProbeResult, len(targets))
	)

	for _, t := range targets {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			out := m.check(ctx, log, t)

			mu.Lock()
			results[t.Name] = out
			mu.Unlock()

			log.Debug("monitor_checked",
				zap.String("target", t.Name),
				zap.String("url", t.URL),
				zap.String("status", string(out.Status)),
				zap.Int64("latency_ms", out.LatencyMS),
				zap.String("error", out.Error),
			)
		}()
	}

	wg.Wait()
	return results
}

// check turns a panicking checker into a down result for that target only.
func (m *Monitor) check(ctx context.Context, log *zap.Logger, t domain.Target) (out domain.ProbeResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("monitor_check_panic",
				zap.String("target", t.Name),
				zap.Any("panic", rec),
			)
			out = domain.ProbeResult{
				Status:    domain.StatusDown,
				Error:     fmt.Sprintf("internal error: %v", rec),
				Timestamp: m.now().UTC(),
			}
		}
	}()
	return m.Checker.Check(ctx, t)
}
