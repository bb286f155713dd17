package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/existflow/irontodo/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "irontodo"

// Issue signs a token for username
func (s *Service) Issue(username string) (model.Session, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return model.Session{
		Username:  username,
		Token:     signed,
		ExpiresAt: expiresAt.Truncate(time.Second),
	}, nil
}

// ParseToken validates a token and returns its username
func (s *Service) ParseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return "", errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
