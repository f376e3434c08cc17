package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/statusmonitor/internal/domain"
)

// ErrNoState is returned by a StateStore that has never been saved to.
var ErrNoState = errors.New("no persisted state")

// StateStore is a durable backend for the full monitor state. Save must be
// atomic: a crash mid-save leaves the previous state readable.
type StateStore interface {
	Load(ctx context.Context) (domain.PersistedState, error)
	Save(ctx context.Context, s domain.PersistedState) error
}
