package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/hamed0406/statusmonitor/internal/domain"
	"github.com/hamed0406/statusmonitor/internal/repo"
)

var _ repo.StateStore = (*Store)(nil)

// Store keeps the monitor state as one JSON document on disk.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(ctx context.Context) (domain.PersistedState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.PersistedState{}, repo.ErrNoState
		}
		return domain.PersistedState{}, fmt.Errorf("read state file: %w", err)
	}
	var st domain.PersistedState
	if err := json.Unmarshal(data, &st); err != nil {
		return domain.PersistedState{}, fmt.Errorf("decode state file %s: %w", s.path, err)
	}
	return st, nil
}

// Save writes to a temp file in the same directory and renames it over the
// state file, so readers see either the old or the new document.
func (s *Store) Save(ctx context.Context, st domain.PersistedState) (err error) {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	_, werr := tmp.Write(data)
	err = multierr.Combine(werr, tmp.Sync(), tmp.Close())
	if err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
