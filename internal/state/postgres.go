package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/fruitsalade/drivesbrowser/internal/metrics"
)

const createTable = `CREATE TABLE IF NOT EXISTS browser_state (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps snapshots in the browser_state table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and ensures the table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("state database url is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := NewPostgresStoreFromDB(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreFromDB wraps an existing connection pool.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the browser_state table if needed.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create browser_state table: %w", err)
	}
	return nil
}

// Fetch returns the value stored under key.
func (s *PostgresStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer func() { metrics.RecordStateOperation("postgres", "fetch", time.Since(start)) }()

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM browser_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch state %s: %w", key, err)
	}
	return value, nil
}

// Save upserts the value stored under key.
func (s *PostgresStore) Save(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	defer func() { metrics.RecordStateOperation("postgres", "save", time.Since(start)) }()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO browser_state (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
