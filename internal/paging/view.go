// Package paging filters an ordered task collection by a search query and
// slices it into fixed-size pages, and builds the compressed page-number
// window shown by pagers.
package paging

import (
	"strings"

	"tandem/internal/task"
)

// Result is one computed page of a scope.
type Result struct {
	PageItems     []task.Task
	CurrentPage   int
	TotalPages    int
	TotalCount    int
	FilteredCount int
}

// NormalizeQuery trims and lowercases a search query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Matches reports whether t's text contains query, ignoring case. An empty
// query matches everything.
func Matches(t task.Task, query string) bool {
	q := NormalizeQuery(query)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Text), q)
}

// TotalPages returns max(1, ceil(count/pageSize)).
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Clamp forces page into [1, totalPages].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// View orders tasks, filters them by query and returns the requested page.
// Out of range pages are clamped, never rejected.
func View(tasks []task.Task, query string, requestedPage, pageSize int) Result {
	if pageSize < 1 {
		pageSize = 1
	}
	ordered := task.SortByOrder(tasks)
	q := NormalizeQuery(query)

	filtered := ordered
	if q != "" {
		filtered = make([]task.Task, 0, len(ordered))
		for _, t := range ordered {
			if strings.Contains(strings.ToLower(t.Text), q) {
				filtered = append(filtered, t)
			}
		}
	}

	total := TotalPages(len(filtered), pageSize)
	page := Clamp(requestedPage, total)
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(filtered))
	items := []task.Task{}
	if start < end {
		items = filtered[start:end]
	}

	return Result{
		PageItems:     items,
		CurrentPage:   page,
		TotalPages:    total,
		TotalCount:    len(tasks),
		FilteredCount: len(filtered),
	}
}
