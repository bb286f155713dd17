package server

import (
	"net/http"

	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/todo"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// todoResponse is a Todo as seen by API clients, including its transient delete flag
type todoResponse struct {
	model.Todo
	Deleting bool `json:"deleting,omitempty"`
}

type listResponse struct {
	Todos  []todoResponse `json:"todos"`
	Active int            `json:"active"`
	Total  int            `json:"total"`
}

type addRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
}

func newTodoResponse(t model.Todo) todoResponse {
	return todoResponse{Todo: t, Deleting: t.IsDeleting}
}

// manager returns the list of the authenticated user, refreshed from the store
func (s *Server) manager(c echo.Context) (*todo.Manager, error) {
	ctx := c.Request().Context()
	m, err := s.todos.For(ctx, currentUser(c))
	if err != nil {
		return nil, err
	}
	if err := m.Refresh(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// resolve finds the task named by the :id path parameter, accepting unique prefixes
func (s *Server) resolve(c echo.Context) (*todo.Manager, model.Todo, error) {
	m, err := s.manager(c)
	if err != nil {
		return nil, model.Todo{}, err
	}
	t, err := m.Resolve(c.Param("id"))
	if err != nil {
		return nil, model.Todo{}, err
	}
	return m, t, nil
}

// handleListTodos returns the filtered, searched view of the user's list
func (s *Server) handleListTodos(c echo.Context) error {
	filter, err := model.ParseFilter(c.QueryParam("filter"))
	if err != nil {
		return s.writeError(c, err)
	}

	m, err := s.manager(c)
	if err != nil {
		return s.writeError(c, err)
	}

	view := m.View(filter, c.QueryParam("q"))
	resp := listResponse{Todos: make([]todoResponse, 0, len(view))}
	for _, t := range view {
		resp.Todos = append(resp.Todos, newTodoResponse(t))
	}
	resp.Active, resp.Total = m.Counts()

	return c.JSON(http.StatusOK, resp)
}

// handleAddTodo creates a task at the head of the list
func (s *Server) handleAddTodo(c echo.Context) error {
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	m, err := s.manager(c)
	if err != nil {
		return s.writeError(c, err)
	}

	t, err := m.Add(c.Request().Context(), req.Title, req.Description, req.DueDate)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, newTodoResponse(t))
}

func (s *Server) handleGetTodo(c echo.Context) error {
	_, t, err := s.resolve(c)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, newTodoResponse(t))
}

// handleUpdateTodo applies a partial update; absent fields are left unchanged
func (s *Server) handleUpdateTodo(c echo.Context) error {
	var patch model.Patch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	m, t, err := s.resolve(c)
	if err != nil {
		return s.writeError(c, err)
	}

	t, err = m.Update(c.Request().Context(), t.ID, patch)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, newTodoResponse(t))
}

func (s *Server) handleToggleTodo(c echo.Context) error {
	m, t, err := s.resolve(c)
	if err != nil {
		return s.writeError(c, err)
	}

	t, err = m.Toggle(c.Request().Context(), t.ID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, newTodoResponse(t))
}

// handleDeleteTodo confirms a delete. The task is flagged deleting and removed once
// the delete delay has passed, unless restored first.
func (s *Server) handleDeleteTodo(c echo.Context) error {
	m, t, err := s.resolve(c)
	if err != nil {
		return s.writeError(c, err)
	}

	if err := m.ConfirmDelete(t.ID); err != nil {
		return s.writeError(c, err)
	}
	s.log.Debug("task delete confirmed", zap.String("username", currentUser(c)), zap.String("id", t.ID))

	t, ok := m.Get(t.ID)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusAccepted, newTodoResponse(t))
}

// handleRestoreTodo aborts a delete that has not been applied yet
func (s *Server) handleRestoreTodo(c echo.Context) error {
	m, t, err := s.resolve(c)
	if err != nil {
		return s.writeError(c, err)
	}

	if !m.AbortDelete(t.ID) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "task is not being deleted"})
	}

	t, _ = m.Get(t.ID)
	return c.JSON(http.StatusOK, newTodoResponse(t))
}

func (s *Server) handleClearCompleted(c echo.Context) error {
	m, err := s.manager(c)
	if err != nil {
		return s.writeError(c, err)
	}

	n, err := m.ClearCompleted(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"cleared": n})
}
