package server

import (
	"errors"
	"net/http"

	"github.com/existflow/irontodo/internal/auth"
	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/todo"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, todo.ErrEmptyTitle),
		errors.Is(err, todo.ErrInvalidDueDate),
		errors.Is(err, todo.ErrAmbiguous),
		errors.Is(err, model.ErrUnknownFilter),
		errors.Is(err, auth.ErrEmptyCredentials):
		return http.StatusBadRequest
	case errors.Is(err, todo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON error body. Internal errors are logged and not exposed.
func (s *Server) writeError(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
		return c.JSON(status, map[string]string{"error": "internal error"})
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
