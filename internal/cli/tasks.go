package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/existflow/irontodo/internal/auth"
	"github.com/existflow/irontodo/internal/client"
	"github.com/existflow/irontodo/internal/config"
	"github.com/existflow/irontodo/internal/logger"
	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/todo"
)

// taskList is the list the commands work on, held in the local store or on a server
type taskList interface {
	Name() string
	View(ctx context.Context, filter model.Filter, query string) (tasks []model.Todo, active, total int, err error)
	Add(ctx context.Context, title, description, dueDate string) (model.Todo, error)
	Resolve(ctx context.Context, ref string) (model.Todo, error)
	Toggle(ctx context.Context, id string) (model.Todo, error)
	Update(ctx context.Context, id string, p model.Patch) (model.Todo, error)
	Delete(ctx context.Context, id string) error
	ClearCompleted(ctx context.Context) (int, error)
}

// withList runs fn against the current user's list. A configured server URL
// selects the remote list; otherwise the local store is opened and closed around fn.
func withList(ctx context.Context, fn func(l taskList) error) error {
	cfg := currentConfig()
	if cfg.ServerURL != "" {
		l, err := openRemote(cfg)
		if err != nil {
			return err
		}
		return fn(l)
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	m, err := a.openTodos(ctx)
	if err != nil {
		return err
	}
	return fn(&localList{app: a, todos: m})
}

// localList runs commands on a Manager over the local store
type localList struct {
	app   *app
	todos *todo.Manager
}

func (l *localList) Name() string { return l.app.listName() }

func (l *localList) View(_ context.Context, filter model.Filter, query string) ([]model.Todo, int, int, error) {
	tasks := l.todos.View(filter, query)
	active, total := l.todos.Counts()
	return tasks, active, total, nil
}

func (l *localList) Add(ctx context.Context, title, description, dueDate string) (model.Todo, error) {
	return l.todos.Add(ctx, title, description, dueDate)
}

func (l *localList) Resolve(_ context.Context, ref string) (model.Todo, error) {
	return l.todos.Resolve(ref)
}

func (l *localList) Toggle(ctx context.Context, id string) (model.Todo, error) {
	return l.todos.Toggle(ctx, id)
}

func (l *localList) Update(ctx context.Context, id string, p model.Patch) (model.Todo, error) {
	return l.todos.Update(ctx, id, p)
}

// Delete stages the delete and applies it before the process exits
func (l *localList) Delete(_ context.Context, id string) error {
	if _, err := l.todos.RequestDelete(id); err != nil {
		return err
	}
	if err := l.todos.ConfirmDelete(""); err != nil {
		return err
	}

	l.todos.Flush()
	if _, ok := l.todos.Get(id); ok {
		logger.Error("Task still present after delete", logger.F("id", id))
		return fmt.Errorf("task %s is still present", shortID(id))
	}
	return nil
}

func (l *localList) ClearCompleted(ctx context.Context) (int, error) {
	return l.todos.ClearCompleted(ctx)
}

// remoteList runs commands through the server's HTTP API
type remoteList struct {
	client   *client.Client
	username string
}

// openRemote returns the remote list of the user logged in to cfg.ServerURL
func openRemote(cfg *config.Config) (*remoteList, error) {
	sess := cfg.RemoteSession()
	if sess.IsExpired(time.Now()) {
		sess = model.Session{}
	}

	c := client.New(cfg.ServerURL)
	c.SetToken(sess.Token)
	if !c.IsLoggedIn() {
		return nil, fmt.Errorf("%w to %s: run 'todo auth login'", auth.ErrNotLoggedIn, cfg.ServerURL)
	}

	logger.Debug("Using remote list", logger.F("server", cfg.ServerURL), logger.F("username", sess.Username))
	return &remoteList{client: c, username: sess.Username}, nil
}

func (l *remoteList) Name() string { return l.username + "@server" }

func (l *remoteList) View(ctx context.Context, filter model.Filter, query string) ([]model.Todo, int, int, error) {
	list, err := l.client.List(ctx, filter, query)
	if err != nil {
		return nil, 0, 0, remoteError(err)
	}
	tasks := make([]model.Todo, 0, len(list.Todos))
	for _, t := range list.Todos {
		tasks = append(tasks, fromRemote(t))
	}
	return tasks, list.Active, list.Total, nil
}

func (l *remoteList) Add(ctx context.Context, title, description, dueDate string) (model.Todo, error) {
	t, err := l.client.Add(ctx, title, description, dueDate)
	return fromRemote(t), remoteError(err)
}

func (l *remoteList) Resolve(ctx context.Context, ref string) (model.Todo, error) {
	t, err := l.client.Get(ctx, ref)
	return fromRemote(t), remoteError(err)
}

func (l *remoteList) Toggle(ctx context.Context, id string) (model.Todo, error) {
	t, err := l.client.Toggle(ctx, id)
	return fromRemote(t), remoteError(err)
}

func (l *remoteList) Update(ctx context.Context, id string, p model.Patch) (model.Todo, error) {
	t, err := l.client.Update(ctx, id, p)
	return fromRemote(t), remoteError(err)
}

// Delete confirms the delete; the server applies it after its delete delay
func (l *remoteList) Delete(ctx context.Context, id string) error {
	return remoteError(l.client.Delete(ctx, id))
}

func (l *remoteList) ClearCompleted(ctx context.Context) (int, error) {
	n, err := l.client.ClearCompleted(ctx)
	return n, remoteError(err)
}

func fromRemote(t client.Todo) model.Todo {
	td := t.Todo
	td.IsDeleting = t.Deleting
	return td
}

// remoteError maps API statuses back to the errors the local list returns
func remoteError(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Status {
	case http.StatusNotFound:
		return todo.ErrNotFound
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", auth.ErrNotLoggedIn, apiErr.Message)
	default:
		return err
	}
}
