// Package store owns the two task scopes in memory and writes the whole state
// through a storage backend after every mutation.
package store

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tandem/internal/paging"
	"tandem/internal/storage"
	"tandem/internal/task"
)

// Op names a store mutation in change notifications and logs.
type Op string

const (
	OpLoad           Op = "load"
	OpAdd            Op = "add"
	OpRemove         Op = "remove"
	OpUpdate         Op = "update"
	OpReplace        Op = "replace"
	OpSort           Op = "sort"
	OpReorder        Op = "reorder"
	OpClearCompleted Op = "clear_completed"
	OpReset          Op = "reset"
)

// Change is delivered to subscribers after a mutation has been persisted.
type Change struct {
	Op     Op
	Scopes []task.Scope
	TaskID string
}

// Stats summarises a scope.
type Stats struct {
	Total  int
	Active int
	Done   int
}

// Drag records which task a drag gesture picked up and from where.
type Drag struct {
	Scope task.Scope
	ID    string
}

type Options struct {
	Key      string
	PageSize int
	Logger   logrus.FieldLogger
	NewID    func() string
}

type Store struct {
	mu          sync.Mutex
	backend     storage.Backend
	key         string
	pageSize    int
	log         logrus.FieldLogger
	newID       func() string
	state       storage.State
	subscribers []func(Change)
}

// New returns an empty store. Call Load to read persisted state.
func New(backend storage.Backend, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = storage.DefaultKey
	}
	if opts.PageSize < 1 {
		opts.PageSize = 5
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Store{
		backend:  backend,
		key:      opts.Key,
		pageSize: opts.PageSize,
		log:      opts.Logger,
		newID:    opts.NewID,
		state:    storage.State{Personal: []task.Task{}, Professional: []task.Task{}},
	}
}

// PageSize is the number of tasks per page used by View.
func (s *Store) PageSize() int {
	return s.pageSize
}

// Subscribe registers fn to be called after every persisted mutation.
func (s *Store) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Load replaces in-memory state with the persisted blob. Missing or corrupt
// data is not an error; it yields empty scopes.
func (s *Store) Load(ctx context.Context) error {
	data, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.log.WithError(err).WithField("op", OpLoad).Error("reading state failed")
		return fmt.Errorf("loading state: %w", err)
	}
	state, report := storage.Decode(data)
	entry := s.log.WithFields(logrus.Fields{"op": OpLoad, "found": ok})
	if !report.Clean() {
		entry.WithFields(logrus.Fields{
			"malformed":  report.Malformed,
			"defaulted":  report.DefaultedScope,
			"skipped":    report.SkippedRecords,
			"backfilled": report.Backfilled,
		}).Warn("persisted state repaired")
	}
	entry.WithFields(logrus.Fields{
		"personal":     len(state.Personal),
		"professional": len(state.Professional),
	}).Debug("state loaded")

	s.mu.Lock()
	s.state = state
	subs := s.subscribers
	s.mu.Unlock()
	notify(subs, Change{Op: OpLoad, Scopes: task.Scopes})
	return nil
}

// Persist writes the current state.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, s.state)
}

func (s *Store) write(ctx context.Context, state storage.State) error {
	data, err := storage.Encode(state)
	if err != nil {
		return err
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		s.log.WithError(err).Error("writing state failed")
		return fmt.Errorf("persisting state: %w", err)
	}
	return nil
}

// mutation computes the next state from a private copy of the current one.
// Returning ok=false leaves the store untouched.
type mutation func(cur storage.State) (next storage.State, change Change, ok bool, err error)

// apply persists the result of fn and, only once that succeeded, makes it
// current. Subscribers run after the lock is released.
func (s *Store) apply(ctx context.Context, fn mutation) (bool, error) {
	change, subs, ok, err := s.applyLocked(ctx, fn)
	if err != nil || !ok {
		return false, err
	}
	notify(subs, change)
	return true, nil
}

func (s *Store) applyLocked(ctx context.Context, fn mutation) (Change, []func(Change), bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, change, ok, err := fn(s.state)
	if err != nil || !ok {
		return Change{}, nil, false, err
	}
	if err := s.write(ctx, next); err != nil {
		return Change{}, nil, false, err
	}
	s.state = next
	s.log.WithFields(logrus.Fields{
		"op":     change.Op,
		"scopes": change.Scopes,
		"id":     change.TaskID,
	}).Debug("state committed")
	return change, slices.Clone(s.subscribers), true, nil
}

func notify(subs []func(Change), change Change) {
	for _, fn := range subs {
		fn(change)
	}
}

func (s *Store) scope(scope task.Scope) []task.Task {
	return task.CloneAll(s.state.Tasks(scope))
}

// Tasks returns scope's tasks ordered by Order.
func (s *Store) Tasks(scope task.Scope) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return task.SortByOrder(s.state.Tasks(scope))
}

// Get returns the task with id in scope.
func (s *Store) Get(scope task.Scope, id string) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.state.Tasks(scope)
	if i := task.IndexOf(tasks, id); i >= 0 {
		return tasks[i].Clone(), true
	}
	return task.Task{}, false
}

// Find resolves an id or unique id prefix across both scopes.
func (s *Store) Find(idOrPrefix string) (task.Scope, task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return "", task.Task{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	var (
		foundScope task.Scope
		found      task.Task
		matches    int
	)
	for _, sc := range task.Scopes {
		for _, t := range s.state.Tasks(sc) {
			if t.ID == idOrPrefix {
				return sc, t.Clone(), nil
			}
			if strings.HasPrefix(t.ID, idOrPrefix) {
				foundScope, found = sc, t.Clone()
				matches++
			}
		}
	}
	switch matches {
	case 0:
		return "", task.Task{}, fmt.Errorf("%w: %q", ErrNotFound, idOrPrefix)
	case 1:
		return foundScope, found, nil
	default:
		return "", task.Task{}, fmt.Errorf("%w: %q matches %d tasks", ErrAmbiguousID, idOrPrefix, matches)
	}
}

// Stats counts all, active and done tasks in scope.
func (s *Store) Stats(scope task.Scope) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st Stats
	for _, t := range s.state.Tasks(scope) {
		st.Total++
		if t.Done {
			st.Done++
		}
	}
	st.Active = st.Total - st.Done
	return st
}

// View computes the visible page of scope for query.
func (s *Store) View(scope task.Scope, query string, page int) paging.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return paging.View(s.scope(scope), query, page, s.pageSize)
}

// PageForNewTask is the last page of the unfiltered scope, where a freshly
// added task lands.
func (s *Store) PageForNewTask(scope task.Scope) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return paging.TotalPages(len(s.state.Tasks(scope)), s.pageSize)
}

// Add appends a task to scope. Empty text or an unknown priority is
// rejected with a *task.ValidationError and leaves state untouched.
func (s *Store) Add(ctx context.Context, scope task.Scope, text string, due *time.Time, priority task.Priority) (task.Task, error) {
	text, err := task.ValidateText(text)
	if err != nil {
		return task.Task{}, err
	}
	priority, err = task.ValidatePriority(priority)
	if err != nil {
		return task.Task{}, err
	}

	var added task.Task
	_, err = s.apply(ctx, func(cur storage.State) (storage.State, Change, bool, error) {
		tasks := task.SortByOrder(cur.Tasks(scope))
		t := task.Task{
			ID:       s.newID(),
			Text:     text,
			Priority: priority,
			Order:    task.NextOrder(tasks),
		}
		if due != nil {
			d := *due
			t.Due = &d
		}
		tasks = task.ReassignSequentialOrder(append(tasks, t))
		added = tasks[len(tasks)-1]
		return cur.With(scope, tasks), Change{Op: OpAdd, Scopes: []task.Scope{scope}, TaskID: added.ID}, true, nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return added.Clone(), nil
}

// Remove deletes id from scope and closes the gap in Order. A missing id is a
// no-op reported as false.
func (s *Store) Remove(ctx context.Context, scope task.Scope, id string) (bool, error) {
	return s.apply(ctx, func(cur storage.State) (storage.State, Change, bool, error) {
		tasks := task.SortByOrder(cur.Tasks(scope))
		i := task.IndexOf(tasks, id)
		if i < 0 {
			return cur, Change{}, false, nil
		}
		tasks = slices.Delete(tasks, i, i+1)
		return cur.With(scope, task.ReassignSequentialOrder(tasks)), Change{Op: OpRemove, Scopes: []task.Scope{scope}, TaskID: id}, true, nil
	})
}

// Update applies mutate to a copy of the task. ID and Order cannot be changed
// this way, and a priority outside task.Priorities is rejected. The write is
// skipped when mutate changes nothing.
func (s *Store) Update(ctx context.Context, scope task.Scope, id string, mutate func(*task.Task)) (bool, error) {
	return s.apply(ctx, func(cur storage.State) (storage.State, Change, bool, error) {
		tasks := task.CloneAll(cur.Tasks(scope))
		i := task.IndexOf(tasks, id)
		if i < 0 {
			return cur, Change{}, false, nil
		}
		before := tasks[i].Clone()
		mutate(&tasks[i])
		tasks[i].ID = before.ID
		tasks[i].Order = before.Order
		if p := tasks[i].Priority; !slices.Contains(task.Priorities, p) {
			return cur, Change{}, false, &task.ValidationError{
				Field: "priority",
				Err:   fmt.Errorf("%w: %q", task.ErrUnknownPriority, string(p)),
			}
		}
		if sameTask(before, tasks[i]) {
			return cur, Change{}, false, nil
		}
		return cur.With(scope, tasks), Change{Op: OpUpdate, Scopes: []task.Scope{scope}, TaskID: id}, true, nil
	})
}

func sameTask(a, b task.Task) bool {
	if a.Text != b.Text || a.Done != b.Done || a.Priority != b.Priority {
		return false
	}
	if (a.Due == nil) != (b.Due == nil) {
		return false
	}
	return a.Due == nil || a.Due.Equal(*b.Due)
}

// Toggle flips Done and returns the new value.
func (s *Store) Toggle(ctx context.Context, scope task.Scope, id string) (bool, error) {
	var done bool
	changed, err := s.Update(ctx, scope, id, func(t *task.Task) {
		t.Done = !t.Done
		done = t.Done
	})
	if err != nil {
		return false, err
	}
	if !changed {
		return false, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return done, nil
}

// EditText replaces the text when the trimmed value is non-empty and differs
// from the current one.
func (s *Store) EditText(ctx context.Context, scope task.Scope, id, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}
	return s.Update(ctx, scope, id, func(t *task.Task) {
		t.Text = text
	})
}

func (s *Store) SetPriority(ctx context.Context, scope task.Scope, id string, p task.Priority) (bool, error) {
	return s.Update(ctx, scope, id, func(t *task.Task) {
		t.Priority = p
	})
}

// SetDue sets or, with nil, clears the due date.
func (s *Store) SetDue(ctx context.Context, scope task.Scope, id string, due *time.Time) (bool, error) {
	return s.Update(ctx, scope, id, func(t *task.Task) {
		if due == nil {
			t.Due = nil
			return
		}
		d := *due
		t.Due = &d
	})
}

// ReplaceAll swaps scope's collection for tasks, keeping their relative
// Order and renormalizing it.
func (s *Store) ReplaceAll(ctx context.Context, scope task.Scope, tasks []task.Task) error {
	_, err := s.apply(ctx, func(cur storage.State) (storage.State, Change, bool, error) {
		next := cur.With(scope, task.ReassignSequentialOrder(task.SortByOrder(tasks)))
		return next, Change{Op: OpReplace, Scopes: []task.Scope{scope}}, true, nil
	})
	return err
}

// SortByDue reorders scope by due date, undated tasks last.
func (s *Store) SortByDue(ctx context.Context, scope task.Scope) error {
	_, err := s.apply(ctx, func(cur storage.State) (storage.State, Change, bool, error) {
		next := cur.With(scope, task.SortByDueDate(cur.Tasks(scope)))
		return next, Change{Op: OpSort, Scopes: []task.Scope{scope}}, true, nil
	})
	return err
}

// Reorder moves movedID to targetID's position. Equal or unknown ids are a
// no-op reported as false.
func (s *Store) Reorder(ctx context.Context, scope task.Scope, movedID, targetID string) (bool, error) {
	return s.apply(ctx, func(cur storage.State) (storage.State, Change, bool, error) {
		tasks, ok := task.Reorder(cur.Tasks(scope), movedID, targetID)
		if !ok {
			return cur, Change{}, false, nil
		}
		return cur.With(scope, tasks), Change{Op: OpReorder, Scopes: []task.Scope{scope}, TaskID: movedID}, true, nil
	})
}

// Drop completes a drag onto targetID in scope. Drags that started in another
// scope are ignored; tasks never change scope.
func (s *Store) Drop(ctx context.Context, drag Drag, scope task.Scope, targetID string) (bool, error) {
	if drag.Scope != scope {
		s.log.WithFields(logrus.Fields{"from": drag.Scope, "to": scope, "id": drag.ID}).Debug("cross-scope drop ignored")
		return false, nil
	}
	return s.Reorder(ctx, scope, drag.ID, targetID)
}

// ClearCompleted removes every done task from scope and returns how many went.
func (s *Store) ClearCompleted(ctx context.Context, scope task.Scope) (int, error) {
	var removed int
	_, err := s.apply(ctx, func(cur storage.State) (storage.State, Change, bool, error) {
		all := task.SortByOrder(cur.Tasks(scope))
		kept := make([]task.Task, 0, len(all))
		for _, t := range all {
			if !t.Done {
				kept = append(kept, t)
			}
		}
		removed = len(all) - len(kept)
		if removed == 0 {
			return cur, Change{}, false, nil
		}
		return cur.With(scope, task.ReassignSequentialOrder(kept)), Change{Op: OpClearCompleted, Scopes: []task.Scope{scope}}, true, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Reset empties both scopes.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.apply(ctx, func(storage.State) (storage.State, Change, bool, error) {
		next := storage.State{Personal: []task.Task{}, Professional: []task.Task{}}
		return next, Change{Op: OpReset, Scopes: task.Scopes}, true, nil
	})
	return err
}
