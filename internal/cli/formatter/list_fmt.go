package formatter

import (
	"fmt"
	"strings"

	"tandem/internal/paging"
	"tandem/internal/store"
	"tandem/internal/task"
)

// Summary renders "Total · Active · Done", adding the filtered count while a
// query is active and the page position once the results span pages.
func Summary(c store.Stats, res paging.Result, query string, pageSize int) string {
	parts := []string{
		fmt.Sprintf("Total: %d", c.Total),
		fmt.Sprintf("Active: %d", c.Active),
		fmt.Sprintf("Done: %d", c.Done),
	}
	if paging.NormalizeQuery(query) != "" {
		parts = append(parts, fmt.Sprintf("Showing: %d", res.FilteredCount))
	}
	if res.FilteredCount > pageSize {
		parts = append(parts, fmt.Sprintf("Page: %d/%d", res.CurrentPage, res.TotalPages))
	}
	return strings.Join(parts, " · ")
}

// Pager renders the numbered window with prev/next arrows. It is empty when
// there is a single page.
func Pager(totalPages, current, radius int) string {
	if !paging.ShowPager(totalPages) {
		return ""
	}
	var b strings.Builder
	if current <= 1 {
		b.WriteString(StyleDim.Render("‹"))
	} else {
		b.WriteString(StyleFg.Render("‹"))
	}
	for _, e := range paging.BuildWindow(totalPages, current, radius) {
		b.WriteString(" ")
		switch {
		case e.Ellipsis:
			b.WriteString(StyleDim.Render(e.String()))
		case e.Page == current:
			b.WriteString(StyleHeader.Render(fmt.Sprintf("[%d]", e.Page)))
		default:
			b.WriteString(StyleFg.Render(e.String()))
		}
	}
	b.WriteString(" ")
	if current >= totalPages {
		b.WriteString(StyleDim.Render("›"))
	} else {
		b.WriteString(StyleFg.Render("›"))
	}
	return b.String()
}

// EmptyState is the placeholder shown when a page has no rows.
func EmptyState(query string) (string, string) {
	if paging.NormalizeQuery(query) != "" {
		return "No match found", "Try a different keyword."
	}
	return "No tasks yet", "Add one to get started."
}

func Checkbox(done bool) string {
	if done {
		return StyleGreen.Render("[x]")
	}
	return "[ ]"
}

// TaskText renders the task body, struck through once done.
func TaskText(t task.Task) string {
	if t.Done {
		return StyleDone.Render(t.Text)
	}
	return StyleFg.Render(t.Text)
}

// ShortID trims a uuid for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatTasks renders one page of a scope as a table plus the summary and
// pager lines.
func FormatTasks(scope task.Scope, c store.Stats, res paging.Result, query string, pageSize, radius int) string {
	var b strings.Builder
	b.WriteString(Header(scope.Title()))
	b.WriteString("\n")
	b.WriteString(Dim(Summary(c, res, query, pageSize)))
	b.WriteString("\n\n")

	if len(res.PageItems) == 0 {
		title, hint := EmptyState(query)
		b.WriteString(Bold(title))
		b.WriteString("\n")
		b.WriteString(Dim(hint))
		b.WriteString("\n")
		return b.String()
	}

	headers := []string{"ID", "DONE", "TASK", "DUE", "PRIORITY"}
	rows := make([][]string, 0, len(res.PageItems))
	for _, t := range res.PageItems {
		rows = append(rows, []string{
			Dim(ShortID(t.ID)),
			Checkbox(t.Done),
			TaskText(t),
			t.DueLabel(),
			PriorityBadge(t.Priority),
		})
	}
	b.WriteString(RenderTable(headers, rows))
	if pager := Pager(res.TotalPages, res.CurrentPage, radius); pager != "" {
		b.WriteString("\n")
		b.WriteString(pager)
		b.WriteString("\n")
	}
	return b.String()
}
