package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tandem/internal/config"
	"tandem/internal/storage"
	"tandem/internal/store"
	"tandem/internal/task"
)

// testApp wires an App backed by an in-memory SQLite store.
func testApp(t *testing.T) *App {
	t.Helper()
	backend, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	n := 0
	logger, _ := logtest.NewNullLogger()
	st := store.New(backend, store.Options{
		PageSize: 5,
		Logger:   logger,
		NewID: func() string {
			n++
			return fmt.Sprintf("task-%02d", n)
		},
	})
	require.NoError(t, st.Load(context.Background()))

	return &App{
		Store:  st,
		Config: config.Default(t.TempDir()),
		Log:    logger,
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func texts(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, tk := range tasks {
		out[i] = tk.Text
	}
	return out
}

func TestAddCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "add", "Buy", "milk", "--due", "2024-05-01", "--priority", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Task added")
	assert.Contains(t, out, "Buy milk • High")
	assert.Contains(t, out, "task-01")

	tasks := app.Store.Tasks(task.Personal)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2024-05-01", tasks[0].DueLabel())
	assert.Equal(t, task.High, tasks[0].Priority)
}

func TestAddCmd_ProfessionalScope(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "add", "-s", "professional", "Ship report")
	require.NoError(t, err)
	assert.Empty(t, app.Store.Tasks(task.Personal))
	assert.Equal(t, []string{"Ship report"}, texts(app.Store.Tasks(task.Professional)))
}

func TestAddCmd_Rejects(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "add", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, task.ErrEmptyText)

	_, err = executeCmd(t, app, "add", "x", "--due", "05/01/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid due date")

	_, err = executeCmd(t, app, "add", "x", "--scope", "work")
	assert.ErrorIs(t, err, task.ErrUnknownScope)

	_, err = executeCmd(t, app, "add", "x", "--priority", "urgent")
	assert.ErrorIs(t, err, task.ErrUnknownPriority)

	assert.Empty(t, app.Store.Tasks(task.Personal))
}

func TestListCmd(t *testing.T) {
	app := testApp(t)
	for i := 1; i <= 7; i++ {
		_, err := executeCmd(t, app, "add", fmt.Sprintf("chore %d", i))
		require.NoError(t, err)
	}
	_, err := executeCmd(t, app, "add", "-s", "professional", "Quarterly review")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "PERSONAL")
	assert.Contains(t, out, "PROFESSIONAL")
	assert.Contains(t, out, "chore 5")
	assert.NotContains(t, out, "chore 6")
	assert.Contains(t, out, "Page: 1/2")
	assert.Contains(t, out, "Quarterly review")

	out, err = executeCmd(t, app, "list", "-s", "personal", "--page", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "chore 7")
	assert.Contains(t, out, "Page: 2/2")
	assert.NotContains(t, out, "PROFESSIONAL")

	out, err = executeCmd(t, app, "list", "-s", "personal", "-q", "CHORE 3")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing: 1")
	assert.Contains(t, out, "chore 3")

	out, err = executeCmd(t, app, "ls", "-q", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No match found")
}

func TestRootCmd_NonInteractiveLists(t *testing.T) {
	app := testApp(t)
	out, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks yet")
}

func TestRootCmd_InteractiveRunsTUI(t *testing.T) {
	app := testApp(t)
	ran := false
	app.IsInteractive = func() bool { return true }
	app.RunTUI = func(context.Context) error {
		ran = true
		return nil
	}
	_, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestDoneCmd_TogglesByPrefix(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "add", "a")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "done", "task-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed")
	assert.True(t, app.Store.Tasks(task.Personal)[0].Done)

	out, err = executeCmd(t, app, "toggle", "task-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Active")
	assert.False(t, app.Store.Tasks(task.Personal)[0].Done)
}

func TestResolveTask_Errors(t *testing.T) {
	app := testApp(t)
	for _, text := range []string{"a", "b"} {
		_, err := executeCmd(t, app, "add", text)
		require.NoError(t, err)
	}

	_, err := executeCmd(t, app, "done", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task not found")

	_, err = executeCmd(t, app, "done", "task-0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestEditPriorityDueCmds(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "add", "draft")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "edit", "task-01", "final", "draft")
	require.NoError(t, err)
	assert.Contains(t, out, "Task text updated.")

	out, err = executeCmd(t, app, "edit", "task-01", "final draft")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing changed")

	_, err = executeCmd(t, app, "priority", "task-01", "low")
	require.NoError(t, err)

	out, err = executeCmd(t, app, "due", "task-01", "2025-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-01-31")

	got := app.Store.Tasks(task.Personal)[0]
	assert.Equal(t, "final draft", got.Text)
	assert.Equal(t, task.Low, got.Priority)
	assert.Equal(t, 1, got.Order)

	out, err = executeCmd(t, app, "due", "task-01", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "No due")
}

func TestRemoveCmd(t *testing.T) {
	app := testApp(t)
	for _, text := range []string{"a", "b", "c"} {
		_, err := executeCmd(t, app, "add", text)
		require.NoError(t, err)
	}
	out, err := executeCmd(t, app, "rm", "task-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted")

	tasks := app.Store.Tasks(task.Personal)
	assert.Equal(t, []string{"a", "c"}, texts(tasks))
	assert.Equal(t, []int{1, 2}, []int{tasks[0].Order, tasks[1].Order})
}

func TestSortCmd(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "add", "A", "--due", "2024-05-10")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "add", "B")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "add", "C", "--due", "2024-05-01")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "sort")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks sorted by due date.")
	assert.Equal(t, []string{"C", "A", "B"}, texts(app.Store.Tasks(task.Personal)))
}

func TestMoveCmd(t *testing.T) {
	app := testApp(t)
	for _, text := range []string{"A", "B", "C"} {
		_, err := executeCmd(t, app, "add", text)
		require.NoError(t, err)
	}
	_, err := executeCmd(t, app, "add", "-s", "professional", "X")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "move", "task-01", "task-03")
	require.NoError(t, err)
	assert.Contains(t, out, "Reordered")
	assert.Equal(t, []string{"B", "C", "A"}, texts(app.Store.Tasks(task.Personal)))

	_, err = executeCmd(t, app, "move", "task-01", "task-04")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot move")

	out, err = executeCmd(t, app, "move", "task-02", "task-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing moved")
}

func TestClearCmd(t *testing.T) {
	app := testApp(t)
	for _, text := range []string{"a", "b"} {
		_, err := executeCmd(t, app, "add", text)
		require.NoError(t, err)
	}

	out, err := executeCmd(t, app, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "No completed tasks to clear.")

	_, err = executeCmd(t, app, "done", "task-01")
	require.NoError(t, err)
	out, err = executeCmd(t, app, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "1 completed task(s) removed.")
	assert.Equal(t, []string{"b"}, texts(app.Store.Tasks(task.Personal)))
}

func TestResetCmd(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "add", "a")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "reset")
	require.Error(t, err)
	assert.Len(t, app.Store.Tasks(task.Personal), 1)

	app.IsInteractive = func() bool { return true }
	app.Confirm = func(string) (bool, error) { return false, nil }
	out, err := executeCmd(t, app, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset cancelled")
	assert.Len(t, app.Store.Tasks(task.Personal), 1)

	app.Confirm = func(string) (bool, error) { return true, nil }
	out, err = executeCmd(t, app, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "All tasks cleared.")
	assert.Empty(t, app.Store.Tasks(task.Personal))

	_, err = executeCmd(t, app, "add", "b")
	require.NoError(t, err)
	app.IsInteractive = nil
	_, err = executeCmd(t, app, "reset", "--yes")
	require.NoError(t, err)
	assert.Empty(t, app.Store.Tasks(task.Personal))
}
