package probe

import (
	"context"

	"github.com/hamed0406/statusmonitor/internal/domain"
)

// Checker performs a single health check against one target. It never
// returns an error: every failure is reported as a "down" result.
type Checker interface {
	Check(ctx context.Context, t domain.Target) domain.ProbeResult
}
