package waitlist

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS waitlist_signups (
	id bigserial PRIMARY KEY,
	email text UNIQUE NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);
`

// Store persists waitlist signups in Postgres.
type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres and verifies connectivity with a ping.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection, used in tests.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the signups table if it does not already exist.
// Called once at startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure waitlist schema: %w", err)
	}
	return nil
}

// Add records a signup. Repeating an email is a no-op refresh of the
// existing row, so the endpoint stays idempotent per address.
func (s *Store) Add(ctx context.Context, email string) error {
	const q = `
		INSERT INTO waitlist_signups (email)
		VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
	`
	if _, err := s.db.ExecContext(ctx, q, email); err != nil {
		return fmt.Errorf("failed to record signup: %w", err)
	}
	return nil
}

// Count returns the number of distinct signups.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT count(*) FROM waitlist_signups`); err != nil {
		return 0, fmt.Errorf("failed to count signups: %w", err)
	}
	return count, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
