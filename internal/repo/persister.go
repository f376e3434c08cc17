package repo

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/statusmonitor/internal/domain"
)

// Persister applies the load/save policy on top of a StateStore: loading
// never fails and always yields a state shaped for the configured targets.
type Persister struct {
	Logger   *zap.Logger
	Store    StateStore
	Targets  []string
	Capacity int
}

func NewPersister(l *zap.Logger, s StateStore, targets []string, capacity int) *Persister {
	return &Persister{Logger: l, Store: s, Targets: targets, Capacity: capacity}
}

// Load reads the persisted state. Missing or unreadable state yields an empty
// state for the configured targets; the failure is logged, not returned.
func (p *Persister) Load(ctx context.Context) domain.PersistedState {
	s, err := p.Store.Load(ctx)
	switch {
	case errors.Is(err, ErrNoState):
		p.Logger.Info("state_not_found_starting_empty")
		return domain.EmptyState(p.Targets)
	case err != nil:
		p.Logger.Error("state_load_failed", zap.Error(err))
		return domain.EmptyState(p.Targets)
	}
	out := Reconcile(s, p.Targets, p.Capacity)
	p.Logger.Info("state_loaded",
		zap.Int("targets", len(out.History)),
		zap.Bool("has_last_check", out.LastCheck != nil),
	)
	return out
}

func (p *Persister) Save(ctx context.Context, s domain.PersistedState) error {
	if err := p.Store.Save(ctx, s); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Reconcile shapes s for the given target set: unknown targets are dropped,
// missing targets get an empty history, and each history keeps only its
// capacity most recent entries.
func Reconcile(s domain.PersistedState, targets []string, capacity int) domain.PersistedState {
	out := domain.EmptyState(targets)
	for _, name := range targets {
		h := s.History[name]
		if capacity > 0 && len(h) > capacity {
			h = h[len(h)-capacity:]
		}
		out.History[name] = append(out.History[name], h...)
		if cur, ok := s.Current[name]; ok {
			out.Current[name] = cur
		}
	}
	if s.LastCheck != nil {
		lc := *s.LastCheck
		out.LastCheck = &lc
	}
	return out
}
