package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digiplanner/backend/repository"
)

// Store is the Postgres-backed repository.Store used when the process runs
// as the system-of-record backend.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool. The pool's lifetime belongs to the
// caller; Close here is a no-op so the pool can be shared.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() error {
	return nil
}

var _ repository.Store = (*Store)(nil)
