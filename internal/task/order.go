package task

import (
	"cmp"
	"slices"
)

// ReassignSequentialOrder sets Order to 1..N following slice position.
// The input is not modified.
func ReassignSequentialOrder(tasks []Task) []Task {
	out := CloneAll(tasks)
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

// SortByOrder returns a copy ordered ascending by Order. Equal orders keep
// their relative position.
func SortByOrder(tasks []Task) []Task {
	out := CloneAll(tasks)
	slices.SortStableFunc(out, func(a, b Task) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}

// NextOrder returns max(existing orders, 0) + 1.
func NextOrder(tasks []Task) int {
	highest := 0
	for _, t := range tasks {
		if t.Order > highest {
			highest = t.Order
		}
	}
	return highest + 1
}

// SortByDueDate orders tasks by due date ascending with undated tasks last,
// breaking ties by current order, then renormalizes.
func SortByDueDate(tasks []Task) []Task {
	out := CloneAll(tasks)
	slices.SortStableFunc(out, func(a, b Task) int {
		if (a.Due == nil) != (b.Due == nil) {
			if a.Due != nil {
				return -1
			}
			return 1
		}
		if a.Due != nil && !a.Due.Equal(*b.Due) {
			return a.Due.Compare(*b.Due)
		}
		return cmp.Compare(a.Order, b.Order)
	})
	return ReassignSequentialOrder(out)
}

// Reorder moves movedID to the index the target held before the move and
// renormalizes. It reports false and returns the input unchanged when the ids
// are equal or either one is missing.
func Reorder(tasks []Task, movedID, targetID string) ([]Task, bool) {
	if movedID == "" || movedID == targetID {
		return tasks, false
	}
	ordered := SortByOrder(tasks)
	from := IndexOf(ordered, movedID)
	to := IndexOf(ordered, targetID)
	if from < 0 || to < 0 {
		return tasks, false
	}
	moved := ordered[from]
	ordered = slices.Delete(ordered, from, from+1)
	ordered = slices.Insert(ordered, to, moved)
	return ReassignSequentialOrder(ordered), true
}

// IndexOf returns the position of id in tasks, or -1.
func IndexOf(tasks []Task, id string) int {
	return slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
}
