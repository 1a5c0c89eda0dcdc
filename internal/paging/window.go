package paging

import "strconv"

// DefaultRadius is the number of pages shown on each side of the current one.
const DefaultRadius = 2

// Entry is a page number or, when Ellipsis is set, a gap marker.
type Entry struct {
	Page     int
	Ellipsis bool
}

func (e Entry) String() string {
	if e.Ellipsis {
		return "..."
	}
	return strconv.Itoa(e.Page)
}

// BuildWindow returns page 1, the last page, every page within radius of
// current, and ellipsis markers for skipped ranges. No page appears twice.
func BuildWindow(totalPages, current, radius int) []Entry {
	if totalPages < 1 {
		totalPages = 1
	}
	if radius < 0 {
		radius = 0
	}
	current = Clamp(current, totalPages)

	out := []Entry{{Page: 1}}
	if totalPages == 1 {
		return out
	}

	start := max(2, current-radius)
	end := min(totalPages-1, current+radius)

	if start > 2 {
		out = append(out, Entry{Ellipsis: true})
	}
	for p := start; p <= end; p++ {
		out = append(out, Entry{Page: p})
	}
	if end < totalPages-1 {
		out = append(out, Entry{Ellipsis: true})
	}
	return append(out, Entry{Page: totalPages})
}

// ShowPager reports whether a pager is worth drawing.
func ShowPager(totalPages int) bool {
	return totalPages > 1
}
