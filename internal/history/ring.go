// Package history holds the bounded per-target result log and the latest
// status per target. Neither type is safe for concurrent use; callers guard
// them with their own lock (see repo/memory).
package history

import "github.com/hamed0406/statusmonitor/internal/domain"

// Ring is a fixed-capacity FIFO of probe results. Pushing onto a full ring
// evicts the oldest entry.
type Ring struct {
	buf  []domain.ProbeResult
	head int // index of the oldest entry
	size int
}

func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]domain.ProbeResult, capacity)}
}

func (r *Ring) Cap() int { return len(r.buf) }
func (r *Ring) Len() int { return r.size }

func (r *Ring) Push(v domain.ProbeResult) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = v
		r.size++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

// Slice returns a copy of the contents, oldest first.
func (r *Ring) Slice() []domain.ProbeResult {
	out := make([]domain.ProbeResult, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}
