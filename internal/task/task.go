package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the calendar-date form used for due dates everywhere.
const DateLayout = "2006-01-02"

var (
	ErrEmptyText       = errors.New("task text is empty")
	ErrUnknownScope    = errors.New("unknown scope")
	ErrUnknownPriority = errors.New("unknown priority")
)

// ValidationError reports user input that was rejected without changing state.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type Scope string

const (
	Personal     Scope = "personal"
	Professional Scope = "professional"
)

// Scopes lists every scope in display order.
var Scopes = []Scope{Personal, Professional}

func ParseScope(v string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(v))) {
	case Personal:
		return Personal, nil
	case Professional:
		return Professional, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, v)
}

// Title returns the scope name as shown in headers.
func (s Scope) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

type Priority string

const (
	Low    Priority = "Low"
	Medium Priority = "Medium"
	High   Priority = "High"
)

// Priorities lists the priorities from lowest to highest.
var Priorities = []Priority{Low, Medium, High}

// ParsePriority accepts any casing; an empty value means Medium.
func ParsePriority(v string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return Medium, nil
	case "low", "l":
		return Low, nil
	case "medium", "med", "m":
		return Medium, nil
	case "high", "h":
		return High, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPriority, v)
}

// Next cycles Low -> Medium -> High -> Low.
func (p Priority) Next() Priority {
	switch p {
	case Low:
		return Medium
	case Medium:
		return High
	default:
		return Low
	}
}

// Prev cycles High -> Medium -> Low -> High.
func (p Priority) Prev() Priority {
	switch p {
	case High:
		return Medium
	case Medium:
		return Low
	default:
		return High
	}
}

type Task struct {
	ID       string
	Text     string
	Done     bool
	Due      *time.Time
	Priority Priority
	Order    int
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.Due != nil {
		d := *t.Due
		t.Due = &d
	}
	return t
}

// DueLabel renders the due date or "No due".
func (t Task) DueLabel() string {
	if t.Due == nil {
		return "No due"
	}
	return t.Due.Format(DateLayout)
}

// ValidateText trims text and rejects empty values.
func ValidateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ValidationError{Field: "text", Err: ErrEmptyText}
	}
	return text, nil
}

// ValidatePriority rejects values outside Priorities. Empty means Medium.
func ValidatePriority(p Priority) (Priority, error) {
	if p == "" {
		return Medium, nil
	}
	if !slices.Contains(Priorities, p) {
		return "", &ValidationError{Field: "priority", Err: fmt.Errorf("%w: %q", ErrUnknownPriority, string(p))}
	}
	return p, nil
}

// ParseDue parses an optional YYYY-MM-DD date. Blank input yields nil.
func ParseDue(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, v)
	if err != nil {
		return nil, &ValidationError{Field: "due", Err: err}
	}
	return &d, nil
}

// CloneAll copies a slice of tasks deeply.
func CloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
