package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tandem/internal/cli/formatter"
	"tandem/internal/config"
	"tandem/internal/task"
)

const defaultPaneWidth = 58

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(formatter.ColorDim).
			Padding(0, 1)
	activePaneStyle = paneStyle.BorderForeground(formatter.ColorHeader)
	toastStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1)
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(formatter.StyleHeader.Render("Tandem"))
	b.WriteString(formatter.Dim("  personal & professional tasks"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPane(task.Personal),
		" ",
		m.renderPane(task.Professional),
	))
	b.WriteString("\n")

	if m.mode == modeAdd && m.add != nil {
		b.WriteString("\n")
		b.WriteString(formatter.Bold("New " + m.active.Title() + " task"))
		b.WriteString("\n")
		b.WriteString(m.renderAddBox())
		b.WriteString("Field: " + m.add.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.mode == modeSearch || m.mode == modeGoto {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString("\n")
		b.WriteString(toasts)
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(formatter.Dim(renderHelp(m.cfg.Keys)))
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s/%s page • %s list • %s add • %s edit • %s toggle • %s delete • %s/%s priority • %s move task • %s search • %s sort • %s clear done • %s reset • %s quit",
		k.Up, k.Down, k.PrevPage, k.NextPage, k.SwitchScope, k.Add, k.Edit, k.Toggle, k.Delete,
		k.PriorityUp, k.PriorityDown, k.Grab, k.Search, k.SortDue, k.ClearCompleted, k.Reset, k.Quit)
}

func (m Model) paneWidth() int {
	if m.width <= 0 {
		return defaultPaneWidth
	}
	return max(40, m.width/2-3)
}

func (m Model) renderPane(scope task.Scope) string {
	p := m.panes[scope]
	res := m.store.View(scope, p.query, p.page)
	active := scope == m.active

	var b strings.Builder
	title := scope.Title()
	if active {
		b.WriteString(formatter.StyleHeader.Render("▸ " + title))
	} else {
		b.WriteString(formatter.Bold(title))
	}
	b.WriteString("\n")
	b.WriteString(formatter.Dim(formatter.Summary(m.store.Stats(scope), res, p.query, m.store.PageSize())))
	b.WriteString("\n")
	if p.query != "" {
		b.WriteString(formatter.Dim("Search: " + p.query))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(res.PageItems) == 0 {
		title, hint := formatter.EmptyState(p.query)
		b.WriteString(formatter.Bold(title))
		b.WriteString("\n")
		b.WriteString(formatter.Dim(hint))
		b.WriteString("\n")
	} else {
		cursor := clampCursor(p.cursor, len(res.PageItems))
		for i, t := range res.PageItems {
			b.WriteString(m.renderRow(t, active && i == cursor))
			b.WriteString("\n")
		}
	}

	if pager := formatter.Pager(res.TotalPages, res.CurrentPage, m.cfg.WindowRadius); pager != "" {
		b.WriteString("\n")
		b.WriteString(pager)
		b.WriteString("\n")
	}

	style := paneStyle
	if active {
		style = activePaneStyle
	}
	return style.Width(m.paneWidth()).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderRow(t task.Task, selected bool) string {
	cursor := " "
	if selected && m.mode == modeList {
		cursor = ">"
	}
	if m.drag != nil && m.drag.ID == t.ID {
		cursor = "≡"
	}

	text := formatter.TaskText(t)
	switch {
	case m.deleting[t.ID]:
		text = formatter.StyleDone.Render(t.Text) + formatter.Dim(" deleting…")
	case m.mode == modeEdit && m.editID == t.ID:
		text = m.input.View()
	}

	return fmt.Sprintf("%s %s %s  %s  %s",
		cursor,
		formatter.Checkbox(t.Done),
		text,
		formatter.Dim(t.DueLabel()),
		formatter.PriorityBadge(t.Priority),
	)
}

func (m Model) renderAddBox() string {
	f := m.add
	values := []string{f.text, f.due, f.priority}
	var b strings.Builder
	for i, name := range addFields() {
		prefix := " "
		if i == f.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-28s : %s\n", prefix, name, val))
	}
	return b.String()
}

func (m Model) renderToasts() string {
	var b strings.Builder
	for _, t := range m.toasts.Active() {
		style := formatter.KindStyle(t.Kind)
		line := style.Bold(true).Render(t.Title)
		if t.Message != "" {
			line += " " + t.Message
		}
		b.WriteString(toastStyle.BorderForeground(style.GetForeground()).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
