package history

import "github.com/hamed0406/statusmonitor/internal/domain"

// Store keeps one Ring per target name, all with the same capacity.
type Store struct {
	capacity int
	rings    map[string]*Ring
}

func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{capacity: capacity, rings: make(map[string]*Ring)}
}

func (s *Store) Capacity() int { return s.capacity }

// Append adds r at the tail of name's history, evicting from the head once
// the capacity is exceeded.
func (s *Store) Append(name string, r domain.ProbeResult) {
	ring := s.rings[name]
	if ring == nil {
		ring = NewRing(s.capacity)
		s.rings[name] = ring
	}
	ring.Push(r)
}

// Get returns a copy of name's history, oldest first. Unknown names yield an
// empty slice.
func (s *Store) Get(name string) []domain.ProbeResult {
	ring := s.rings[name]
	if ring == nil {
		return []domain.ProbeResult{}
	}
	return ring.Slice()
}

// Reset replaces name's history with entries, keeping only the most recent
// capacity of them.
func (s *Store) Reset(name string, entries []domain.ProbeResult) {
	ring := NewRing(s.capacity)
	for _, e := range entries {
		ring.Push(e)
	}
	s.rings[name] = ring
}
