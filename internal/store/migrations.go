package store

import (
	"context"
	"fmt"
)

// Migrate runs all database migrations for the store's dialect
func (s *SQL) Migrate(ctx context.Context) error {
	for i, m := range s.dialect.Migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("%s migration %d failed: %w", s.dialect.Name, i+1, err)
		}
	}

	return nil
}

const migrationCreateKVSQLite = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at TEXT NOT NULL
);
`

const migrationCreateKVPostgres = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BYTEA NOT NULL,
    updated_at TEXT NOT NULL
);
`
