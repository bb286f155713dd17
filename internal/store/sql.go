package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Dialect holds the statements a SQL backend needs
type Dialect struct {
	Name       string
	Get        string
	Upsert     string
	Delete     string
	Migrations []string
}

// SQLiteDialect targets modernc.org/sqlite
var SQLiteDialect = Dialect{
	Name:   "sqlite",
	Get:    `SELECT value FROM kv WHERE key = ?`,
	Upsert: `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	Delete: `DELETE FROM kv WHERE key = ?`,
	Migrations: []string{
		migrationCreateKVSQLite,
	},
}

// PostgresDialect targets lib/pq
var PostgresDialect = Dialect{
	Name:   "postgres",
	Get:    `SELECT value FROM kv WHERE key = $1`,
	Upsert: `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	Delete: `DELETE FROM kv WHERE key = $1`,
	Migrations: []string{
		migrationCreateKVPostgres,
	},
}

// SQL is a Store on top of a database/sql connection
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQL wraps an open connection. Call Migrate before first use on a fresh database.
func NewSQL(db *sql.DB, dialect Dialect) *SQL {
	return &SQL{db: db, dialect: dialect}
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.Get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, s.dialect.Upsert, key, value, now); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Delete, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
