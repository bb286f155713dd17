package model

import "time"

// User is an account that owns a todo list
type User struct {
	Username string `json:"username"`
}

// Session represents a logged-in user and the token issued for it
type Session struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
