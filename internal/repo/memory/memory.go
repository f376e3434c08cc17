package memory

import (
	"sync"
	"time"

	"github.com/hamed0406/statusmonitor/internal/domain"
	"github.com/hamed0406/statusmonitor/internal/history"
)

// Store is the live monitor state: per-target history, latest status and the
// time of the last completed cycle, all behind one RWMutex. The monitor loop
// is the only writer.
type Store struct {
	mu        sync.RWMutex
	targets   []domain.Target
	history   *history.Store
	current   *history.Cache
	lastCheck *time.Time
}

func New(targets []domain.Target, capacity int) *Store {
	return &Store{
		targets: append([]domain.Target(nil), targets...),
		history: history.NewStore(capacity),
		current: history.NewCache(),
	}
}

// Targets returns the configured targets in configuration order.
func (m *Store) Targets() []domain.Target {
	return append([]domain.Target(nil), m.targets...)
}

func (m *Store) TargetNames() []string {
	out := make([]string, len(m.targets))
	for i, t := range m.targets {
		out[i] = t.Name
	}
	return out
}

func (m *Store) Capacity() int { return m.history.Capacity() }

// Restore replaces the whole state with s. Entries for unknown targets are
// ignored.
func (m *Store) Restore(s domain.PersistedState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = history.NewStore(m.history.Capacity())
	m.current = history.NewCache()
	for _, t := range m.targets {
		m.history.Reset(t.Name, s.History[t.Name])
		if r, ok := s.Current[t.Name]; ok {
			m.current.Set(t.Name, r)
		}
	}
	m.lastCheck = nil
	if s.LastCheck != nil {
		lc := *s.LastCheck
		m.lastCheck = &lc
	}
}

// CommitCycle applies the results of one full cycle and stamps lastCheck in a
// single critical section, so readers see either the previous cycle or this
// one.
func (m *Store) CommitCycle(results map[string]domain.ProbeResult, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.targets {
		r, ok := results[t.Name]
		if !ok {
			continue
		}
		m.current.Set(t.Name, r)
		m.history.Append(t.Name, r)
	}
	at = at.UTC()
	m.lastCheck = &at
}

// History, Current, CurrentAll and LastCheck are point-read accessors. Views
// spanning several fields should use Snapshot or TargetSnapshot.
func (m *Store) History(name string) []domain.ProbeResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.Get(name)
}

func (m *Store) Current(name string) (domain.ProbeResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Get(name)
}

func (m *Store) CurrentAll() map[string]domain.ProbeResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.All()
}

func (m *Store) LastCheck() *time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastCheck == nil {
		return nil
	}
	lc := *m.lastCheck
	return &lc
}

// TargetSnapshot copies the history and latest result of one target under a
// single read lock. cur is nil if the target has not been checked yet.
func (m *Store) TargetSnapshot(name string) (hist []domain.ProbeResult, cur *domain.ProbeResult) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hist = m.history.Get(name)
	if r, ok := m.current.Get(name); ok {
		cur = &r
	}
	return hist, cur
}

// Snapshot copies the full state under one read lock.
func (m *Store) Snapshot() domain.PersistedState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := domain.EmptyState(m.TargetNames())
	for _, t := range m.targets {
		s.History[t.Name] = m.history.Get(t.Name)
	}
	s.Current = m.current.All()
	if m.lastCheck != nil {
		lc := *m.lastCheck
		s.LastCheck = &lc
	}
	return s
}
