// Package server exposes the todo lists over an HTTP JSON API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/existflow/irontodo/internal/auth"
	"github.com/existflow/irontodo/internal/todo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server is the todo API server
type Server struct {
	auth  *auth.Service
	todos *todo.Registry
	log   *zap.Logger
	echo  *echo.Echo
}

// New creates a new server over the given auth service and list registry
func New(svc *auth.Service, todos *todo.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		auth:  svc,
		todos: todos,
		log:   log,
	}

	// Setup Echo
	s.setupEcho()

	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/signup", s.handleSignup)
	api.POST("/login", s.handleLogin)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.GET("/todos", s.handleListTodos)
	protected.POST("/todos", s.handleAddTodo)
	protected.POST("/todos/clear-completed", s.handleClearCompleted)
	protected.GET("/todos/:id", s.handleGetTodo)
	protected.PATCH("/todos/:id", s.handleUpdateTodo)
	protected.DELETE("/todos/:id", s.handleDeleteTodo)
	protected.POST("/todos/:id/toggle", s.handleToggleTodo)
	protected.POST("/todos/:id/restore", s.handleRestoreTodo)

	s.echo = e
}

// Close applies outstanding deletes
func (s *Server) Close() error {
	return s.todos.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs every request with its status and duration
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		// Process request
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		res := c.Response()
		s.log.Info("HTTP request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.String("remote", c.RealIP()),
			zap.Int("status", res.Status),
			zap.Int64("size", res.Size),
			zap.Duration("duration", time.Since(start)))

		return nil
	}
}
