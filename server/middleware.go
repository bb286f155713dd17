package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const usernameKey = "username"

// authMiddleware checks for a valid bearer token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Get token from Authorization header
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
		}

		username, err := s.auth.ParseToken(token)
		if err != nil {
			s.log.Debug("rejected token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		}

		// Add username to context
		c.Set(usernameKey, username)
		return next(c)
	}
}

// currentUser returns the username set by authMiddleware
func currentUser(c echo.Context) string {
	username, _ := c.Get(usernameKey).(string)
	return username
}
