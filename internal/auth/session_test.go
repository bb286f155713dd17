package auth

import (
	"context"
	"testing"

	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_SaveCurrentClear(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	sessions := NewSessions(st)

	_, err := sessions.Current(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, sessions.Save(ctx, model.Session{Username: "alice", Token: "tok"}))
	sess, err := sessions.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, "tok", sess.Token)

	raw, err := st.Get(ctx, userKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice"}`, string(raw))

	require.NoError(t, sessions.Clear(ctx))
	_, err = sessions.Current(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSessions_Resume(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := newTestService(t, st)
	sessions := NewSessions(st)

	sess, err := svc.Signup(ctx, "alice", "pw")
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, sess))

	got, err := sessions.Resume(ctx, svc)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	// A forged token ends the session
	require.NoError(t, sessions.Save(ctx, model.Session{Username: "alice", Token: "forged"}))
	_, err = sessions.Resume(ctx, svc)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = sessions.Current(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSessions_FailedLoginKeepsMarkers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := newTestService(t, st)
	sessions := NewSessions(st)

	sess, err := svc.Signup(ctx, "alice", "pw")
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, sess))

	_, err = svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := sessions.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)
}
