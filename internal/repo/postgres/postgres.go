package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/statusmonitor/internal/domain"
	"github.com/hamed0406/statusmonitor/internal/repo"
)

var _ repo.StateStore = (*Store)(nil)

// Schema holds the whole monitor state as a single JSONB document.
const Schema = `
CREATE TABLE IF NOT EXISTS monitor_state (
  id       SMALLINT PRIMARY KEY CHECK (id = 1),
  doc      JSONB NOT NULL,
  saved_at TIMESTAMPTZ NOT NULL
);`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	log.Info("postgres_state_ready")
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Load(ctx context.Context) (domain.PersistedState, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM monitor_state WHERE id = 1`).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PersistedState{}, repo.ErrNoState
		}
		return domain.PersistedState{}, fmt.Errorf("select state: %w", err)
	}
	var st domain.PersistedState
	if err := json.Unmarshal(doc, &st); err != nil {
		return domain.PersistedState{}, fmt.Errorf("decode state: %w", err)
	}
	return st, nil
}

// Save upserts the document in one statement, which Postgres applies
// atomically.
func (s *Store) Save(ctx context.Context, st domain.PersistedState) error {
	doc, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO monitor_state (id, doc, saved_at)
		 VALUES (1, $1, $2)
		 ON CONFLICT (id)
		 DO UPDATE SET doc = EXCLUDED.doc, saved_at = EXCLUDED.saved_at`,
		doc, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}
