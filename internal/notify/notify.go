// Package notify keeps the list of toasts currently on screen.
package notify

import (
	"fmt"
	"sync"
	"time"

	"tandem/internal/task"
)

type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Warning Kind = "warning"
	Danger  Kind = "danger"
)

// DefaultTimeout is how long a toast stays up unless dismissed.
const DefaultTimeout = 2600 * time.Millisecond

type Toast struct {
	ID          int
	Kind        Kind
	Title       string
	Message     string
	AutoDismiss time.Duration
}

// Center holds active toasts. Dismissal is idempotent, so an auto-dismiss
// firing after a manual one is harmless.
type Center struct {
	mu      sync.Mutex
	timeout time.Duration
	nextID  int
	active  []Toast
	limit   int
}

// NewCenter keeps at most limit toasts; older ones are dropped first.
// A limit below 1 means unbounded.
func NewCenter(timeout time.Duration, limit int) *Center {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Center{timeout: timeout, limit: limit}
}

// Push adds a toast and returns it with its id and timeout filled in.
func (c *Center) Push(kind Kind, title, message string) Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := Toast{ID: c.nextID, Kind: kind, Title: title, Message: message, AutoDismiss: c.timeout}
	c.active = append(c.active, t)
	if c.limit > 0 && len(c.active) > c.limit {
		c.active = c.active[len(c.active)-c.limit:]
	}
	return t
}

// Dismiss removes the toast with id and reports whether it was present.
func (c *Center) Dismiss(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.active {
		if t.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return true
		}
	}
	return false
}

// DismissLatest removes the newest toast, if any.
func (c *Center) DismissLatest() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.active) == 0 {
		return false
	}
	c.active = c.active[:len(c.active)-1]
	return true
}

// Active returns the toasts on screen, oldest first.
func (c *Center) Active() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Toast(nil), c.active...)
}

// Messages emitted by the task operations.

func Added(t task.Task) (Kind, string, string) {
	text := t.Text
	if len([]rune(text)) > 40 {
		text = string([]rune(text)[:40]) + "..."
	}
	return Success, "Task added", fmt.Sprintf("%s • %s", text, t.Priority)
}

func MissingText() (Kind, string, string) {
	return Warning, "Missing task", "Please type a task first."
}

func Deleted(text string) (Kind, string, string) {
	if text == "" {
		text = "Task removed."
	}
	return Danger, "Deleted", text
}

func Cleared(removed int) (Kind, string, string) {
	if removed == 0 {
		return Info, "Clear completed", "No completed tasks to clear."
	}
	return Success, "Clear completed", fmt.Sprintf("%d completed task(s) removed.", removed)
}

func Sorted() (Kind, string, string) {
	return Info, "Sorted", "Tasks sorted by due date."
}

func Reset() (Kind, string, string) {
	return Warning, "Reset", "All tasks cleared."
}

func Updated() (Kind, string, string) {
	return Success, "Updated", "Task text updated."
}

func Toggled(done bool) (Kind, string, string) {
	if done {
		return Success, "Completed", "Task marked as completed."
	}
	return Info, "Active", "Task moved back to active."
}

func Reordered() (Kind, string, string) {
	return Info, "Reordered", "Task order updated."
}

func Failed(err error) (Kind, string, string) {
	return Danger, "Error", err.Error()
}
