package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/store"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// Sessions keeps the logged-in user and token markers of a single client
type Sessions struct {
	store store.Store
}

// NewSessions creates session markers over st
func NewSessions(st store.Store) *Sessions {
	return &Sessions{store: st}
}

// Save records sess as the current session
func (s *Sessions) Save(ctx context.Context, sess model.Session) error {
	if err := store.SaveJSON(ctx, s.store, tokenKey, sess.Token); err != nil {
		return err
	}
	return store.SaveJSON(ctx, s.store, userKey, model.User{Username: sess.Username})
}

// Current returns the saved session, or ErrNotLoggedIn
func (s *Sessions) Current(ctx context.Context) (model.Session, error) {
	var user *model.User
	if err := store.LoadJSON(ctx, s.store, userKey, &user); err != nil {
		return model.Session{}, notLoggedIn(err)
	}
	var token string
	if err := store.LoadJSON(ctx, s.store, tokenKey, &token); err != nil {
		return model.Session{}, notLoggedIn(err)
	}
	if user == nil || user.Username == "" || token == "" {
		return model.Session{}, ErrNotLoggedIn
	}
	return model.Session{Username: user.Username, Token: token}, nil
}

func notLoggedIn(err error) error {
	var decErr *store.DecodeError
	if errors.Is(err, store.ErrNotFound) || errors.As(err, &decErr) {
		return ErrNotLoggedIn
	}
	return fmt.Errorf("failed to read session: %w", err)
}

// Clear removes the session markers
func (s *Sessions) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, userKey); err != nil {
		return err
	}
	return s.store.Delete(ctx, tokenKey)
}

// Resume returns the saved session after checking its token with svc.
// An invalid or expired token clears the markers.
func (s *Sessions) Resume(ctx context.Context, svc *Service) (model.Session, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return model.Session{}, err
	}
	username, err := svc.ParseToken(sess.Token)
	if err != nil || username != sess.Username {
		_ = s.Clear(ctx)
		return model.Session{}, ErrNotLoggedIn
	}
	return sess, nil
}
