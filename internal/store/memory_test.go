package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "todos_alice")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "todos_alice", []byte(`[]`)))
	got, err := m.Get(ctx, "todos_alice")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, m.Delete(ctx, "todos_alice"))
	_, err = m.Get(ctx, "todos_alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestLoadJSON(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var users map[string]string
	err := LoadJSON(ctx, m, "users", &users)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SaveJSON(ctx, m, "users", map[string]string{"bob": "x"}))
	require.NoError(t, LoadJSON(ctx, m, "users", &users))
	assert.Equal(t, "x", users["bob"])

	require.NoError(t, m.Set(ctx, "users", []byte("{not json")))
	var again map[string]string
	err = LoadJSON(ctx, m, "users", &again)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "users", decErr.Key)
	assert.Nil(t, again)
}

func TestLoadJSON_TypeMismatchLeavesValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type entry struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}
	require.NoError(t, m.Set(ctx, "k", []byte(`[{"title":"kept","count":1},{"title":"x","count":"two"}]`)))

	got := []entry{{Title: "before"}}
	err := LoadJSON(ctx, m, "k", &got)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, []entry{{Title: "before"}}, got)

	var s string
	assert.Error(t, LoadJSON(ctx, m, "k", s))
}
