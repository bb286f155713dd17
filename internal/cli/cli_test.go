package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/existflow/irontodo/internal/auth"
	"github.com/existflow/irontodo/internal/config"
	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/store"
	"github.com/existflow/irontodo/internal/todo"
	"github.com/existflow/irontodo/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var addedID = regexp.MustCompile(`\(([0-9a-f]{8})\)`)

func setupHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("IRONTODO_STORE", "sqlite")
	t.Setenv("IRONTODO_DB_PATH", filepath.Join(home, "todo.db"))
	t.Setenv("IRONTODO_LOG_FILE", filepath.Join(home, "todo.log"))
	t.Setenv("IRONTODO_DELETE_DELAY", "10ms")
}

// resetFlags undoes flag values left behind by a previous Execute
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(input))

	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, input string, args ...string) string {
	t.Helper()
	out, err := run(t, input, args...)
	require.NoError(t, err, out)
	return out
}

func addTask(t *testing.T, args ...string) string {
	t.Helper()
	out := mustRun(t, "", append([]string{"add"}, args...)...)
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	return m[1]
}

func TestAddListToggleClear(t *testing.T) {
	setupHome(t)

	id := addTask(t, "Buy", "milk", "-d", "  2 litres  ")

	out := mustRun(t, "", "list")
	assert.Contains(t, out, "guest (1 items left)")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "2 litres")

	out = mustRun(t, "", "done", id)
	assert.Contains(t, out, `Completed: "Buy milk"`)

	out = mustRun(t, "", "list", "--filter", "active")
	assert.Contains(t, out, "No tasks match.")

	out = mustRun(t, "", "list", "--filter", "completed")
	assert.Contains(t, out, "[x]")

	out = mustRun(t, "", "clear", "--force")
	assert.Contains(t, out, "Cleared 1 completed task(s)")

	out = mustRun(t, "", "list")
	assert.Contains(t, out, "No tasks found")
}

func TestAdd_BlankTitleFails(t *testing.T) {
	setupHome(t)

	_, err := run(t, "", "add", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")

	out := mustRun(t, "", "list")
	assert.Contains(t, out, "No tasks found")
}

func TestList_UnknownFilter(t *testing.T) {
	setupHome(t)

	_, err := run(t, "", "list", "--filter", "someday")
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	setupHome(t)

	addTask(t, "Write report", "-d", "quarterly numbers")
	addTask(t, "Call mom")

	out := mustRun(t, "", "list", "--search", "QUARTERLY")
	assert.Contains(t, out, "Write report")
	assert.NotContains(t, out, "Call mom")
}

func TestEdit(t *testing.T) {
	setupHome(t)

	id := addTask(t, "Draft", "-d", "old notes")

	out := mustRun(t, "", "edit", id, "--title", "Final draft", "--description", "", "--due", "2030-01-01")
	assert.Contains(t, out, `Updated: "Final draft"`)

	out = mustRun(t, "", "list")
	assert.Contains(t, out, "Final draft")
	assert.Contains(t, out, "Jan 1")
	assert.NotContains(t, out, "old notes")

	_, err := run(t, "", "edit", id)
	assert.Error(t, err)

	_, err = run(t, "", "edit", id, "--due", "tomorrow")
	assert.Error(t, err)
}

func TestDelete_ConfirmPrompt(t *testing.T) {
	setupHome(t)

	id := addTask(t, "Throw away")

	out := mustRun(t, "n\n", "delete", id)
	assert.Contains(t, out, "Cancelled.")
	assert.Contains(t, mustRun(t, "", "list"), "Throw away")

	out = mustRun(t, "y\n", "rm", id)
	assert.Contains(t, out, `Deleted: "Throw away"`)
	assert.Contains(t, mustRun(t, "", "list"), "No tasks found")

	_, err := run(t, "", "delete", id, "--yes")
	assert.Error(t, err)
}

func TestAuth_SwitchesLists(t *testing.T) {
	setupHome(t)

	addTask(t, "guest task")

	out := mustRun(t, "", "auth", "signup", "alice", "-p", "secret")
	assert.Contains(t, out, "logged in as alice")

	assert.Equal(t, "alice\n", mustRun(t, "", "auth", "whoami"))
	assert.Contains(t, mustRun(t, "", "list"), "No tasks found")

	addTask(t, "alice task")

	_, err := run(t, "", "auth", "signup", "alice", "-p", "other")
	assert.Error(t, err)

	assert.Contains(t, mustRun(t, "", "auth", "logout"), "Logged out")
	out = mustRun(t, "", "list")
	assert.Contains(t, out, "guest task")
	assert.NotContains(t, out, "alice task")

	_, err = run(t, "", "auth", "login", "alice", "-p", "wrong")
	assert.Error(t, err)
	assert.Contains(t, mustRun(t, "", "auth", "whoami"), "not logged in")

	// Password read from input when the flag is absent
	out = mustRun(t, "alice\nsecret\n", "auth", "login")
	assert.Contains(t, out, "Logged in as alice")
	assert.Contains(t, mustRun(t, "", "list"), "alice task")
}

func TestAuth_SeededUser(t *testing.T) {
	setupHome(t)

	out := mustRun(t, "", "auth", "login", "ragul", "-p", "123456")
	assert.Contains(t, out, "Logged in as ragul")
}

func TestSharedLocalStore_KeepsEveryWriter(t *testing.T) {
	setupHome(t)
	ctx := context.Background()

	// A long-running process, such as the TUI, holding the guest list open
	st, err := store.Open(ctx, config.DefaultConfig().StoreConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	m, err := todo.Open(ctx, st, "")
	require.NoError(t, err)

	_, err = m.Add(ctx, "from tui", "", "")
	require.NoError(t, err)
	addTask(t, "from cli")
	_, err = m.Add(ctx, "tui again", "", "")
	require.NoError(t, err)

	out := mustRun(t, "", "list")
	assert.Contains(t, out, "guest (3 items left)")
	for _, title := range []string{"from tui", "from cli", "tui again"} {
		assert.Contains(t, out, title)
	}
}

func startServer(t *testing.T) (string, store.Store) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()

	svc, err := auth.New(ctx, st, auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	require.NoError(t, svc.Seed(ctx, map[string]string{"ragul": "123456"}))

	srv := server.New(svc, todo.NewRegistry(st, todo.WithDeleteDelay(0)), zap.NewNop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return ts.URL, st
}

func serverTitles(t *testing.T, st store.Store) []string {
	t.Helper()
	var todos []model.Todo
	err := store.LoadJSON(context.Background(), st, todo.StorageKey("ragul"), &todos)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	require.NoError(t, err)
	out := make([]string, len(todos))
	for i, td := range todos {
		out[i] = td.Title
	}
	return out
}

func TestRemoteList(t *testing.T) {
	setupHome(t)
	url, st := startServer(t)

	_, err := run(t, "", "add", "too early", "--server", url)
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)

	out := mustRun(t, "", "auth", "login", "ragul", "-p", "123456")
	assert.Contains(t, out, "Logged in as ragul")
	assert.Contains(t, out, url)
	assert.Contains(t, mustRun(t, "", "auth", "whoami"), "ragul ("+url+")")

	id := addTask(t, "Remote", "task", "-d", "kept by the server")
	assert.Equal(t, []string{"Remote task"}, serverTitles(t, st))

	out = mustRun(t, "", "list")
	assert.Contains(t, out, "ragul@server (1 items left)")
	assert.Contains(t, out, "kept by the server")

	out = mustRun(t, "", "done", id)
	assert.Contains(t, out, `Completed: "Remote task"`)
	out = mustRun(t, "", "edit", id, "--title", "Renamed")
	assert.Contains(t, out, `Updated: "Renamed"`)

	_, err = run(t, "", "toggle", "ffffffff")
	assert.ErrorIs(t, err, todo.ErrNotFound)

	out = mustRun(t, "", "delete", id, "--yes")
	assert.Contains(t, out, `Deleted: "Renamed"`)
	assert.Eventually(t, func() bool {
		return len(serverTitles(t, st)) == 0
	}, time.Second, 10*time.Millisecond)

	assert.Contains(t, mustRun(t, "", "auth", "logout"), "Logged out")
	_, err = run(t, "", "list")
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)

	// Clearing the server returns to the local guest list
	assert.Contains(t, mustRun(t, "", "list", "--server="), "No tasks found")
	assert.Contains(t, mustRun(t, "", "auth", "whoami"), "not logged in")
}
