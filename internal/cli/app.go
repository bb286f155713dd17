package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/existflow/irontodo/internal/auth"
	"github.com/existflow/irontodo/internal/config"
	"github.com/existflow/irontodo/internal/logger"
	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/store"
	"github.com/existflow/irontodo/internal/todo"
	"golang.org/x/term"
)

// app bundles what a command needs: the store, auth and, once opened, the current user's list
type app struct {
	cfg      *config.Config
	store    store.Store
	auth     *auth.Service
	sessions *auth.Sessions
	session  model.Session // zero when running as guest
	todos    *todo.Manager
}

// currentConfig returns the configuration loaded by the root command
func currentConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// openApp opens the configured store and resumes the saved session, if any
func openApp(ctx context.Context) (*app, error) {
	cfg := currentConfig()

	st, err := store.Open(ctx, cfg.StoreConfig())
	if err != nil {
		logger.Error("Failed to open store", logger.F("backend", cfg.Store), logger.F("error", err))
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	opts := []auth.Option{
		auth.WithTokenTTL(cfg.TokenTTL),
		auth.WithLogger(logger.L().Named("auth")),
	}
	if cfg.TokenSecret != "" {
		opts = append(opts, auth.WithSecret([]byte(cfg.TokenSecret)))
	}
	svc, err := auth.New(ctx, st, opts...)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}
	if err := svc.Seed(ctx, cfg.SeedUsers); err != nil {
		logger.Warn("Failed to seed users", logger.F("error", err))
	}

	a := &app{
		cfg:      cfg,
		store:    st,
		auth:     svc,
		sessions: auth.NewSessions(st),
	}

	sess, err := a.sessions.Resume(ctx, svc)
	switch {
	case err == nil:
		a.session = sess
	case errors.Is(err, auth.ErrNotLoggedIn):
		logger.Debug("No active session, using guest list")
	default:
		logger.Warn("Failed to resume session", logger.F("error", err))
	}

	return a, nil
}

// openTodos loads the current user's list
func (a *app) openTodos(ctx context.Context, opts ...todo.Option) (*todo.Manager, error) {
	base := []todo.Option{
		todo.WithDeleteDelay(a.cfg.DeleteDelay),
		todo.WithLogger(logger.L().Named("todo")),
	}
	mgr, err := todo.Open(ctx, a.store, a.session.Username, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	a.todos = mgr
	return mgr, nil
}

// Close applies outstanding removals and closes the store
func (a *app) Close() error {
	if a.todos != nil {
		if err := a.todos.Close(); err != nil {
			logger.Error("Failed to close task list", logger.F("error", err))
		}
	}
	return a.store.Close()
}

// listName returns the label shown for the current list
func (a *app) listName() string {
	if a.session.Username == "" {
		return "guest"
	}
	return a.session.Username
}

// prompt prints label and reads one trimmed line from in
func prompt(in io.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := readLine(in)
	return strings.TrimSpace(line)
}

// readLine reads up to the next newline one byte at a time so that
// successive prompts can share an unbuffered input
func readLine(in io.Reader) (string, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if err != nil {
			if len(line) > 0 {
				break
			}
			return "", err
		}
	}
	return strings.TrimRight(string(line), "\r"), nil
}

// confirm asks a yes/no question, defaulting to no
func confirm(in io.Reader, out io.Writer, question string) bool {
	answer := prompt(in, out, question+" [y/N]: ")
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

// readPassword reads a password without echo when in is a terminal
func readPassword(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return readLine(in)
}

// shortID returns the first 8 characters of id
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
