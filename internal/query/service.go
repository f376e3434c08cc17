// Package query builds the read-only status view served to dashboards and
// the terminal client.
package query

import (
	"context"
	"time"

	"github.com/hamed0406/statusmonitor/internal/domain"
)

// Source is the read side of the monitor state. *memory.Store satisfies it.
type Source interface {
	Targets() []domain.Target
	Snapshot() domain.PersistedState
	TargetSnapshot(name string) ([]domain.ProbeResult, *domain.ProbeResult)
}

type SiteStatus struct {
	Current *domain.ProbeResult  `json:"current"`
	History []domain.ProbeResult `json:"history"`
	URL     string               `json:"url"`
	Uptime  int                  `json:"uptime"`
}

type StatusResponse struct {
	LastCheck *time.Time            `json:"last_check"`
	Sites     map[string]SiteStatus `json:"sites"`
}

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// Status returns every configured target, built from one snapshot so all
// sites belong to the same cycle.
func (s *Service) Status(ctx context.Context) StatusResponse {
	snap := s.src.Snapshot()
	targets := s.src.Targets()

	out := StatusResponse{
		LastCheck: snap.LastCheck,
		Sites:     make(map[string]SiteStatus, len(targets)),
	}
	for _, t := range targets {
		var cur *domain.ProbeResult
		if r, ok := snap.Current[t.Name]; ok {
			cur = &r
		}
		out.Sites[t.Name] = site(t, snap.History[t.Name], cur)
	}
	return out
}

// Site returns the status of one target. ok is false for unknown names.
func (s *Service) Site(ctx context.Context, name string) (SiteStatus, bool) {
	for _, t := range s.src.Targets() {
		if t.Name == name {
			hist, cur := s.src.TargetSnapshot(name)
			return site(t, hist, cur), true
		}
	}
	return SiteStatus{}, false
}

func site(t domain.Target, h []domain.ProbeResult, cur *domain.ProbeResult) SiteStatus {
	if h == nil {
		h = []domain.ProbeResult{}
	}
	return SiteStatus{
		Current: cur,
		History: h,
		URL:     t.URL,
		Uptime:  domain.Uptime(h),
	}
}
