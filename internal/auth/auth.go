// Package auth keeps the credential table and issues session tokens. All state lives in an
// injected store: credentials under "users", the signing secret under "auth_secret".
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	usersKey  = "users"
	secretKey = "auth_secret"

	// DefaultTokenTTL matches the sync server's session lifetime
	DefaultTokenTTL = 30 * 24 * time.Hour
)

var (
	ErrEmptyCredentials   = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotLoggedIn        = errors.New("not logged in")
)

// Option configures a Service
type Option func(*Service)

// WithSecret sets the token signing secret instead of the one kept in the store
func WithSecret(secret []byte) Option {
	return func(s *Service) { s.secret = secret }
}

// WithTokenTTL sets how long issued tokens stay valid
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock sets the time source used for token timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithBcryptCost overrides the bcrypt cost, mainly to keep tests fast
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// Service registers users and verifies credentials
type Service struct {
	mu     sync.Mutex // serializes read-modify-write of the users table
	store  store.Store
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
	log    *zap.Logger
}

// New creates a Service over st. Without WithSecret, a random secret is generated on first
// use and kept in the store so tokens survive restarts.
func New(ctx context.Context, st store.Store, opts ...Option) (*Service, error) {
	s := &Service{
		store: st,
		ttl:   DefaultTokenTTL,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.secret) == 0 {
		secret, err := s.loadSecret(ctx)
		if err != nil {
			return nil, err
		}
		s.secret = secret
	}
	return s, nil
}

func (s *Service) loadSecret(ctx context.Context) ([]byte, error) {
	var encoded string
	err := store.LoadJSON(ctx, s.store, secretKey, &encoded)
	if err == nil {
		if secret, decErr := hex.DecodeString(encoded); decErr == nil && len(secret) > 0 {
			return secret, nil
		}
	} else if !errors.Is(err, store.ErrNotFound) && !isDecodeError(err) {
		return nil, fmt.Errorf("failed to read token secret: %w", err)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	if err := store.SaveJSON(ctx, s.store, secretKey, hex.EncodeToString(secret)); err != nil {
		return nil, fmt.Errorf("failed to save token secret: %w", err)
	}
	s.log.Info("generated token secret")
	return secret, nil
}

func isDecodeError(err error) bool {
	var decErr *store.DecodeError
	return errors.As(err, &decErr)
}

// users reads the credential table. Missing or invalid tables read as empty.
func (s *Service) users(ctx context.Context) (map[string]string, error) {
	users := map[string]string{}
	err := store.LoadJSON(ctx, s.store, usersKey, &users)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
	case isDecodeError(err):
		s.log.Warn("credential table is invalid, treating as empty", zap.Error(err))
		users = map[string]string{}
	default:
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	if users == nil {
		users = map[string]string{}
	}
	return users, nil
}

func normalize(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return "", ErrEmptyCredentials
	}
	return username, nil
}

// Register adds a user. It fails with ErrUserExists without touching the table.
func (s *Service) Register(ctx context.Context, username, password string) error {
	username, err := normalize(username, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	if _, ok := users[username]; ok {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	users[username] = string(hash)

	if err := store.SaveJSON(ctx, s.store, usersKey, users); err != nil {
		return err
	}
	s.log.Info("user registered", zap.String("username", username))
	return nil
}

// Verify checks a username and password against the table
func (s *Service) Verify(ctx context.Context, username, password string) error {
	username, err := normalize(username, password)
	if err != nil {
		return err
	}

	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	hash, ok := users[username]
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Seed registers each user that does not exist yet
func (s *Service) Seed(ctx context.Context, users map[string]string) error {
	for name, pass := range users {
		err := s.Register(ctx, name, pass)
		if err != nil && !errors.Is(err, ErrUserExists) {
			return fmt.Errorf("failed to seed %q: %w", name, err)
		}
	}
	return nil
}

// Signup registers a user and issues a session for it
func (s *Service) Signup(ctx context.Context, username, password string) (model.Session, error) {
	if err := s.Register(ctx, username, password); err != nil {
		return model.Session{}, err
	}
	return s.Issue(strings.TrimSpace(username))
}

// Login verifies credentials and issues a session
func (s *Service) Login(ctx context.Context, username, password string) (model.Session, error) {
	if err := s.Verify(ctx, username, password); err != nil {
		s.log.Debug("login rejected", zap.String("username", username))
		return model.Session{}, err
	}
	return s.Issue(strings.TrimSpace(username))
}
