package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"tandem/internal/config"
	"tandem/internal/notify"
	"tandem/internal/paging"
	"tandem/internal/store"
	"tandem/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeSearch
	modeGoto
	modeConfirmReset
)

// paneState is the transient, never persisted view state of one scope.
type paneState struct {
	page   int
	query  string
	cursor int
}

type addForm struct {
	text     string
	due      string
	priority string
	index    int
}

type (
	toastExpiredMsg struct{ id int }
	storeChangedMsg store.Change
	deleteCommitMsg struct {
		scope task.Scope
		id    string
		text  string
	}
)

type Model struct {
	ctx      context.Context
	store    *store.Store
	cfg      config.Config
	log      logrus.FieldLogger
	toasts   *notify.Center
	changes  chan store.Change
	active   task.Scope
	panes    map[task.Scope]*paneState
	mode     mode
	input    textinput.Model
	add      *addForm
	editID   string
	drag     *store.Drag
	deleting map[string]bool
	status   string
	width    int
	quitting bool
}

// New builds the model and subscribes it to store changes.
func New(ctx context.Context, st *store.Store, cfg config.Config, log logrus.FieldLogger) Model {
	ti := textinput.New()
	ti.Placeholder = "Task"
	ti.CharLimit = 256
	ti.Width = 40

	changes := make(chan store.Change, 32)
	st.Subscribe(func(c store.Change) {
		select {
		case changes <- c:
		default:
		}
	})

	return Model{
		ctx:    ctx,
		store:  st,
		cfg:    cfg,
		log:    log,
		toasts: notify.NewCenter(cfg.ToastTimeout(), 4),
		active: task.Personal,
		panes: map[task.Scope]*paneState{
			task.Personal:     {page: 1},
			task.Professional: {page: 1},
		},
		changes:  changes,
		mode:     modeList,
		input:    ti,
		deleting: map[string]bool{},
		status:   "Press 'a' to add, space to toggle, 'd' to delete, tab to switch lists.",
	}
}

func Run(ctx context.Context, st *store.Store, cfg config.Config, log logrus.FieldLogger) error {
	program := tea.NewProgram(New(ctx, st, cfg, log), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan store.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return storeChangedMsg(c)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width/2-12)
	case toastExpiredMsg:
		m.toasts.Dismiss(msg.id)
	case deleteCommitMsg:
		return m.commitDelete(msg)
	case storeChangedMsg:
		m.refresh(msg.Scopes)
		return m, waitForChange(m.changes)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd:
		return m.updateAddMode(key, msg)
	case modeEdit:
		return m.updateEditMode(key, msg)
	case modeSearch:
		return m.updateSearchMode(key, msg)
	case modeGoto:
		return m.updateGotoMode(key, msg)
	case modeConfirmReset:
		return m.updateResetConfirm(key)
	}
	return m.updateListMode(key)
}

func (m Model) pane() *paneState {
	return m.panes[m.active]
}

func (m Model) view(scope task.Scope) paging.Result {
	p := m.panes[scope]
	return m.store.View(scope, p.query, p.page)
}

func (m Model) selected() (task.Task, bool) {
	res := m.view(m.active)
	if len(res.PageItems) == 0 {
		return task.Task{}, false
	}
	return res.PageItems[clampCursor(m.pane().cursor, len(res.PageItems))], true
}

// refresh pulls each pane's page and cursor back into range after a change.
func (m Model) refresh(scopes []task.Scope) {
	for _, sc := range scopes {
		p, ok := m.panes[sc]
		if !ok {
			continue
		}
		res := m.store.View(sc, p.query, p.page)
		p.page = res.CurrentPage
		p.cursor = clampCursor(p.cursor, len(res.PageItems))
	}
}

func isKey(key, binding string) bool {
	if key == binding {
		return true
	}
	return (key == " " || key == "space") && (binding == " " || binding == "space")
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	p := m.pane()
	switch {
	case key == "ctrl+c" || key == k.Quit:
		m.quitting = true
		return m, tea.Quit
	case key == k.Down || key == "down":
		m.moveCursor(1)
	case key == k.Up || key == "up":
		m.moveCursor(-1)
	case key == k.NextPage || key == "right":
		p.page = m.store.View(m.active, p.query, p.page+1).CurrentPage
		p.cursor = 0
	case key == k.PrevPage || key == "left":
		p.page = m.store.View(m.active, p.query, p.page-1).CurrentPage
		p.cursor = 0
	case key == k.SwitchScope || key == "shift+tab":
		m.toggleScope()
	case key == k.Add:
		m.add = &addForm{}
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = m.add.currentLabel()
		m.input.Focus()
		m.status = fmt.Sprintf("Add to %s: type a task, enter to continue, esc to cancel", m.active.Title())
	case key == k.Edit || key == "enter":
		return m.startEdit()
	case isKey(key, k.Toggle):
		return m.toggleSelected()
	case key == k.Delete:
		return m.startDelete()
	case key == k.PriorityUp:
		return m.shiftPriority(true)
	case key == k.PriorityDown:
		return m.shiftPriority(false)
	case key == k.SortDue:
		if err := m.store.SortByDue(m.ctx, m.active); err != nil {
			return m, m.fail("sort", err)
		}
		p.page, p.cursor = 1, 0
		return m, m.toast(notify.Sorted())
	case key == k.ClearCompleted:
		removed, err := m.store.ClearCompleted(m.ctx, m.active)
		if err != nil {
			return m, m.fail("clear completed", err)
		}
		p.page, p.cursor = 1, 0
		return m, m.toast(notify.Cleared(removed))
	case key == k.Reset:
		m.mode = modeConfirmReset
		m.status = "Reset all tasks in both lists? This cannot be undone. y/n"
	case key == k.Search:
		m.mode = modeSearch
		m.input.SetValue(p.query)
		m.input.Placeholder = "Search"
		m.input.Focus()
		m.status = "Search: type to filter, enter to keep, esc to clear"
	case key == k.GotoPage:
		m.mode = modeGoto
		m.input.SetValue("")
		m.input.Placeholder = "Page number"
		m.input.Focus()
		m.status = "Go to page: type a number and press enter"
	case key == k.Grab:
		return m.grabOrDrop()
	case key == k.DismissToast:
		m.toasts.DismissLatest()
	case key == k.Cancel || key == "esc":
		if m.drag != nil {
			m.drag = nil
			m.status = "Move cancelled"
		}
	}
	return m, nil
}

func (m *Model) toggleScope() {
	if m.active == task.Personal {
		m.active = task.Professional
	} else {
		m.active = task.Personal
	}
}

func (m *Model) moveCursor(delta int) {
	p := m.pane()
	res := m.view(m.active)
	next := clampCursor(p.cursor, len(res.PageItems)) + delta
	switch {
	case next >= len(res.PageItems) && p.page < res.TotalPages:
		p.page++
		p.cursor = 0
	case next < 0 && p.page > 1:
		p.page--
		p.cursor = m.store.PageSize() - 1
	default:
		p.cursor = clampCursor(next, len(res.PageItems))
	}
}

func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		return m, nil
	}
	done, err := m.store.Toggle(m.ctx, m.active, t.ID)
	if err != nil {
		return m, m.fail("toggle", err)
	}
	return m, m.toast(notify.Toggled(done))
}

func (m Model) shiftPriority(up bool) (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		return m, nil
	}
	next := t.Priority.Prev()
	if up {
		next = t.Priority.Next()
	}
	if _, err := m.store.SetPriority(m.ctx, m.active, t.ID, next); err != nil {
		return m, m.fail("priority", err)
	}
	m.status = fmt.Sprintf("Priority: %s", next)
	return m, nil
}

// startDelete marks the row as deleting; the store removal happens when the
// delay elapses.
func (m Model) startDelete() (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok || m.deleting[t.ID] {
		return m, nil
	}
	m.deleting[t.ID] = true
	msg := deleteCommitMsg{scope: m.active, id: t.ID, text: t.Text}
	delay := m.cfg.DeleteDelay()
	if delay <= 0 {
		return m, func() tea.Msg { return msg }
	}
	return m, tea.Tick(delay, func(time.Time) tea.Msg { return msg })
}

func (m Model) commitDelete(msg deleteCommitMsg) (tea.Model, tea.Cmd) {
	delete(m.deleting, msg.id)
	removed, err := m.store.Remove(m.ctx, msg.scope, msg.id)
	if err != nil {
		return m, m.fail("delete", err)
	}
	if !removed {
		return m, nil
	}
	if m.drag != nil && m.drag.ID == msg.id {
		m.drag = nil
	}
	return m, m.toast(notify.Deleted(msg.text))
}

func (m Model) grabOrDrop() (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if m.drag == nil {
		if !ok {
			return m, nil
		}
		m.drag = &store.Drag{Scope: m.active, ID: t.ID}
		m.status = fmt.Sprintf("Moving %q: pick a target row and press %s, esc to cancel", t.Text, m.cfg.Keys.Grab)
		return m, nil
	}
	drag := *m.drag
	m.drag = nil
	if !ok {
		return m, nil
	}
	if drag.Scope != m.active {
		m.status = "Tasks cannot move between lists"
		return m, nil
	}
	moved, err := m.store.Drop(m.ctx, drag, m.active, t.ID)
	if err != nil {
		return m, m.fail("reorder", err)
	}
	if !moved {
		m.status = "Nothing moved"
		return m, nil
	}
	m.status = ""
	return m, m.toast(notify.Reordered())
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		m.status = "No tasks to edit"
		return m, nil
	}
	m.mode = modeEdit
	m.editID = t.ID
	m.input.SetValue(t.Text)
	m.input.Placeholder = "Task"
	m.input.CursorEnd()
	m.input.Focus()
	m.status = "Editing: enter to save, esc to cancel"
	return m, nil
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key == m.cfg.Keys.Cancel || key == "esc":
		m.finishEdit()
		m.status = "Edit cancelled"
		return m, nil
	case key == m.cfg.Keys.Confirm || key == "enter":
		return m.commitEdit()
	case key == m.cfg.Keys.SwitchScope:
		// leaving the field commits, like a blur
		next, cmd := m.commitEdit()
		nm := next.(Model)
		nm.toggleScope()
		return nm, cmd
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) commitEdit() (tea.Model, tea.Cmd) {
	id, text := m.editID, m.input.Value()
	m.finishEdit()
	changed, err := m.store.EditText(m.ctx, m.active, id, text)
	if err != nil {
		return m, m.fail("edit", err)
	}
	if !changed {
		m.status = ""
		return m, nil
	}
	m.status = ""
	return m, m.toast(notify.Updated())
}

func (m *Model) finishEdit() {
	m.editID = ""
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.pane()
	switch {
	case key == m.cfg.Keys.Cancel || key == "esc":
		p.query, p.page, p.cursor = "", 1, 0
		m.leaveInput()
		m.status = "Search cleared"
		return m, nil
	case key == m.cfg.Keys.Confirm || key == "enter":
		m.leaveInput()
		m.status = ""
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if q := m.input.Value(); q != p.query {
			p.query, p.page, p.cursor = q, 1, 0
		}
		return m, cmd
	}
}

func (m Model) updateGotoMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.pane()
	switch {
	case key == m.cfg.Keys.Cancel || key == "esc":
		m.leaveInput()
		m.status = "Cancelled"
		return m, nil
	case key == m.cfg.Keys.Confirm || key == "enter":
		n, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		m.leaveInput()
		if err != nil {
			m.status = "Page must be a number"
			return m, nil
		}
		p.page = m.store.View(m.active, p.query, n).CurrentPage
		p.cursor = 0
		m.status = ""
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) updateResetConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.mode = modeList
		if err := m.store.Reset(m.ctx); err != nil {
			return m, m.fail("reset", err)
		}
		for _, p := range m.panes {
			p.page, p.cursor = 1, 0
		}
		m.drag = nil
		m.status = ""
		return m, m.toast(notify.Reset())
	case "n", "N", "esc", m.cfg.Keys.Cancel:
		m.mode = modeList
		m.status = "Reset cancelled"
	}
	return m, nil
}

func addFields() []string {
	return []string{"task", "due date (YYYY-MM-DD)", "priority (low/medium/high)"}
}

func (f addForm) currentLabel() string {
	return addFields()[f.index]
}

func (f addForm) currentValue() string {
	switch f.index {
	case 0:
		return f.text
	case 1:
		return f.due
	case 2:
		return f.priority
	default:
		return ""
	}
}

func (f *addForm) setCurrentValue(v string) {
	switch f.index {
	case 0:
		f.text = v
	case 1:
		f.due = v
	case 2:
		f.priority = v
	}
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.add = nil
		m.leaveInput()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down", "shift+tab", "up":
		m.add.setCurrentValue(m.input.Value())
		step := 1
		if key == "shift+tab" || key == "up" {
			step = -1
		}
		m.add.index = wrapIndex(m.add.index+step, len(addFields()))
		m.input.SetValue(m.add.currentValue())
		m.input.Placeholder = m.add.currentLabel()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.add.setCurrentValue(m.input.Value())
		if m.add.index >= len(addFields())-1 {
			return m.saveAdd()
		}
		m.add.index++
		m.input.SetValue(m.add.currentValue())
		m.input.Placeholder = m.add.currentLabel()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveAdd() (tea.Model, tea.Cmd) {
	f := m.add
	due, err := task.ParseDue(f.due)
	if err != nil {
		m.status = fmt.Sprintf("due date invalid: %v", err)
		return m.refocusAdd(1), nil
	}
	priority, err := task.ParsePriority(f.priority)
	if err != nil {
		m.status = fmt.Sprintf("priority invalid: %v", err)
		return m.refocusAdd(2), nil
	}
	added, err := m.store.Add(m.ctx, m.active, f.text, due, priority)
	if err != nil {
		if errors.Is(err, task.ErrEmptyText) {
			return m.refocusAdd(0), m.toast(notify.MissingText())
		}
		return m, m.fail("add", err)
	}

	m.add = nil
	m.leaveInput()
	p := m.pane()
	p.page = m.store.PageForNewTask(m.active)
	res := m.store.View(m.active, p.query, p.page)
	p.page = res.CurrentPage
	p.cursor = max(0, len(res.PageItems)-1)
	m.status = ""
	return m, m.toast(notify.Added(added))
}

func (m Model) refocusAdd(index int) Model {
	m.add.index = index
	m.input.SetValue(m.add.currentValue())
	m.input.Placeholder = m.add.currentLabel()
	return m
}

func (m Model) toast(kind notify.Kind, title, message string) tea.Cmd {
	t := m.toasts.Push(kind, title, message)
	id := t.ID
	return tea.Tick(t.AutoDismiss, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (m Model) fail(op string, err error) tea.Cmd {
	m.log.WithError(err).WithFields(logrus.Fields{"op": op, "scope": m.active}).Error("operation failed")
	return m.toast(notify.Failed(err))
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
