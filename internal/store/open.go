package store

import (
	"context"
	"fmt"
)

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config selects and parameterises a backend
type Config struct {
	Backend       string
	DBPath        string // sqlite
	DatabaseURL   string // postgres
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Passphrase    string // enables encryption at rest when set
}

// Open creates the configured store
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)

	switch cfg.Backend {
	case BackendMemory:
		s = NewMemory()
	case "", BackendSQLite:
		path := cfg.DBPath
		if path == "" {
			if path, err = DefaultDBPath(); err != nil {
				return nil, err
			}
		}
		s, err = OpenSQLite(ctx, path)
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires database_url")
		}
		s, err = OpenPostgres(ctx, cfg.DatabaseURL)
	case BackendRedis:
		s, err = OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Passphrase == "" {
		return s, nil
	}

	enc, err := NewEncrypted(ctx, s, cfg.Passphrase)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return enc, nil
}
