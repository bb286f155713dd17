package server

import (
	"net/http"
	"time"

	"github.com/existflow/irontodo/internal/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Username  string `json:"username"`
}

func newAuthResponse(sess model.Session) authResponse {
	return authResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339),
		Username:  sess.Username,
	}
}

// handleSignup handles user registration
func (s *Server) handleSignup(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	sess, err := s.auth.Signup(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}

	s.log.Info("user registered", zap.String("username", sess.Username))
	return c.JSON(http.StatusCreated, newAuthResponse(sess))
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	sess, err := s.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}

	s.log.Info("user logged in", zap.String("username", sess.Username))
	return c.JSON(http.StatusOK, newAuthResponse(sess))
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, model.User{Username: currentUser(c)})
}
