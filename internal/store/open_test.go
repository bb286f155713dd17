package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Config{Backend: BackendSQLite, DBPath: filepath.Join(t.TempDir(), "t.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQL{}, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, Config{Backend: BackendMemory, Passphrase: "pw"})
	require.NoError(t, err)
	assert.IsType(t, &Encrypted{}, s)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Config{Backend: "etcd"})
	assert.Error(t, err)

	_, err = Open(ctx, Config{Backend: BackendPostgres})
	assert.Error(t, err)
}
