package notify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tandem/internal/task"
)

func TestCenter_PushAndDismiss(t *testing.T) {
	c := NewCenter(0, 0)

	first := c.Push(Info, "a", "one")
	second := c.Push(Success, "b", "two")

	assert.Equal(t, DefaultTimeout, first.AutoDismiss)
	assert.NotEqual(t, first.ID, second.ID)
	require.Len(t, c.Active(), 2)

	assert.True(t, c.Dismiss(first.ID))
	assert.False(t, c.Dismiss(first.ID), "second dismissal is a no-op")
	assert.False(t, c.Dismiss(12345))

	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)
}

func TestCenter_Limit(t *testing.T) {
	c := NewCenter(time.Second, 2)
	c.Push(Info, "1", "")
	c.Push(Info, "2", "")
	c.Push(Info, "3", "")

	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "2", active[0].Title)
	assert.Equal(t, time.Second, active[0].AutoDismiss)
}

func TestCenter_DismissLatest(t *testing.T) {
	c := NewCenter(0, 0)
	assert.False(t, c.DismissLatest())
	c.Push(Info, "1", "")
	c.Push(Info, "2", "")

	assert.True(t, c.DismissLatest())
	require.Len(t, c.Active(), 1)
	assert.Equal(t, "1", c.Active()[0].Title)
}

func TestMessages(t *testing.T) {
	long := strings.Repeat("x", 45)
	kind, title, msg := Added(task.Task{Text: long, Priority: task.High})
	assert.Equal(t, Success, kind)
	assert.Equal(t, "Task added", title)
	assert.Equal(t, strings.Repeat("x", 40)+"... • High", msg)

	_, _, msg = Added(task.Task{Text: "short", Priority: task.Medium})
	assert.Equal(t, "short • Medium", msg)

	kind, _, msg = Cleared(0)
	assert.Equal(t, Info, kind)
	assert.Equal(t, "No completed tasks to clear.", msg)
	kind, _, msg = Cleared(3)
	assert.Equal(t, Success, kind)
	assert.Equal(t, "3 completed task(s) removed.", msg)

	_, _, msg = Deleted("")
	assert.Equal(t, "Task removed.", msg)

	kind, title, _ = Toggled(false)
	assert.Equal(t, Info, kind)
	assert.Equal(t, "Active", title)

	_, _, msg = Failed(errors.New("boom"))
	assert.Equal(t, "boom", msg)
}
