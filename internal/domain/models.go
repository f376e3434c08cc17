package domain

import "time"

type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// ProbeConfig holds the per-target knobs for a single health check.
type ProbeConfig struct {
	Timeout         time.Duration
	VerifyTLS       bool
	FollowRedirects bool
	SuccessCodes    []int
	Headers         map[string]string
}

// IsSuccess reports whether code counts as "up" for this target.
func (p ProbeConfig) IsSuccess(code int) bool {
	for _, c := range p.SuccessCodes {
		if c == code {
			return true
		}
	}
	return false
}

type Target struct {
	Name  string
	URL   string
	Probe ProbeConfig
}

// ProbeResult is the outcome of one check against one target.
// LatencyMS is serialized as "time" to stay compatible with existing state files.
type ProbeResult struct {
	Status    Status    `json:"status"`
	LatencyMS int64     `json:"time"`
	Code      *int      `json:"code,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

func (r ProbeResult) Up() bool { return r.Status == StatusUp }

// PersistedState is the durable form of the monitor state.
type PersistedState struct {
	History   map[string][]ProbeResult `json:"history"`
	Current   map[string]ProbeResult   `json:"current"`
	LastCheck *time.Time               `json:"last_check"`
}

// EmptyState returns a state with one empty history per target name.
func EmptyState(names []string) PersistedState {
	s := PersistedState{
		History: make(map[string][]ProbeResult, len(names)),
		Current: make(map[string]ProbeResult),
	}
	for _, n := range names {
		s.History[n] = []ProbeResult{}
	}
	return s
}

func IntPtr(v int) *int { return &v }
