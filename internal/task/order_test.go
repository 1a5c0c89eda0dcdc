package task

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, v string) *time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, v)
	require.NoError(t, err)
	return &d
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func orders(tasks []Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.Order
	}
	return out
}

func TestReassignSequentialOrder(t *testing.T) {
	in := []Task{{ID: "a", Order: 7}, {ID: "b", Order: 3}, {ID: "c", Order: 42}}

	out := ReassignSequentialOrder(in)

	assert.Equal(t, []int{1, 2, 3}, orders(out))
	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	assert.Equal(t, []int{7, 3, 42}, orders(in), "input must not be modified")
}

func TestSortByOrder_StableOnTies(t *testing.T) {
	in := []Task{{ID: "a", Order: 2}, {ID: "b", Order: 1}, {ID: "c", Order: 2}}

	out := SortByOrder(in)

	assert.Equal(t, []string{"b", "a", "c"}, ids(out))
}

func TestSortByOrder_ExtremeOrders(t *testing.T) {
	in := []Task{{ID: "big", Order: math.MaxInt}, {ID: "neg", Order: -5}, {ID: "min", Order: math.MinInt}}

	out := SortByOrder(in)

	assert.Equal(t, []string{"min", "neg", "big"}, ids(out))
}

func TestSortByDueDate_ExtremeOrdersOnTies(t *testing.T) {
	in := []Task{{ID: "big", Order: math.MaxInt}, {ID: "neg", Order: -5}}

	out := SortByDueDate(in)

	assert.Equal(t, []string{"neg", "big"}, ids(out))
	assert.Equal(t, []int{1, 2}, orders(out))
}

func TestNextOrder(t *testing.T) {
	assert.Equal(t, 1, NextOrder(nil))
	assert.Equal(t, 10, NextOrder([]Task{{Order: 3}, {Order: 9}, {Order: 1}}))
}

func TestSortByDueDate(t *testing.T) {
	in := []Task{
		{ID: "A", Due: date(t, "2024-05-01"), Order: 1},
		{ID: "B", Order: 2},
		{ID: "C", Due: date(t, "2024-01-01"), Order: 3},
	}

	out := SortByDueDate(in)

	assert.Equal(t, []string{"C", "A", "B"}, ids(out))
	assert.Equal(t, []int{1, 2, 3}, orders(out))
}

func TestSortByDueDate_TiesBrokenByOrder(t *testing.T) {
	in := []Task{
		{ID: "late", Order: 5},
		{ID: "x", Due: date(t, "2024-03-03"), Order: 4},
		{ID: "early", Order: 1},
		{ID: "y", Due: date(t, "2024-03-03"), Order: 2},
	}

	out := SortByDueDate(in)

	assert.Equal(t, []string{"y", "x", "early", "late"}, ids(out))
}

func TestReorder(t *testing.T) {
	base := []Task{{ID: "A", Order: 1}, {ID: "B", Order: 2}, {ID: "C", Order: 3}}

	tests := []struct {
		name    string
		moved   string
		target  string
		want    []string
		changed bool
	}{
		{name: "move last before first", moved: "C", target: "A", want: []string{"C", "A", "B"}, changed: true},
		{name: "move first onto last", moved: "A", target: "C", want: []string{"B", "C", "A"}, changed: true},
		{name: "move onto neighbour", moved: "A", target: "B", want: []string{"B", "A", "C"}, changed: true},
		{name: "drop on itself", moved: "B", target: "B", want: []string{"A", "B", "C"}},
		{name: "unknown moved", moved: "Z", target: "A", want: []string{"A", "B", "C"}},
		{name: "unknown target", moved: "A", target: "Z", want: []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, changed := Reorder(base, tt.moved, tt.target)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, ids(SortByOrder(out)))
			if changed {
				assert.Equal(t, []int{1, 2, 3}, orders(out))
			}
		})
	}
}

func TestReorder_UsesOrderNotSlicePosition(t *testing.T) {
	in := []Task{{ID: "C", Order: 30}, {ID: "A", Order: 10}, {ID: "B", Order: 20}}

	out, changed := Reorder(in, "C", "A")

	require.True(t, changed)
	assert.Equal(t, []string{"C", "A", "B"}, ids(out))
	assert.Equal(t, []int{1, 2, 3}, orders(out))
}
