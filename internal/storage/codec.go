package storage

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"tandem/internal/task"
)

// State is the entire durable application state.
type State struct {
	Personal     []task.Task
	Professional []task.Task
}

// Tasks returns the collection owned by scope.
func (s State) Tasks(scope task.Scope) []task.Task {
	if scope == task.Professional {
		return s.Professional
	}
	return s.Personal
}

// With returns a copy of s with scope's collection replaced.
func (s State) With(scope task.Scope, tasks []task.Task) State {
	if scope == task.Professional {
		s.Professional = tasks
	} else {
		s.Personal = tasks
	}
	return s
}

// DecodeReport lists the repairs made while decoding a blob.
type DecodeReport struct {
	Malformed      bool
	DefaultedScope []task.Scope
	SkippedRecords int
	Backfilled     int
}

// Clean reports whether the blob decoded without any repair.
func (r DecodeReport) Clean() bool {
	return !r.Malformed && len(r.DefaultedScope) == 0 && r.SkippedRecords == 0 && r.Backfilled == 0
}

type record struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Done     bool    `json:"done"`
	Due      *string `json:"due"`
	Priority string  `json:"priority,omitempty"`
	Order    *int    `json:"order,omitempty"`
}

type envelope struct {
	Personal     []record `json:"personal"`
	Professional []record `json:"professional"`
}

type rawEnvelope struct {
	Personal     sonic.NoCopyRawMessage `json:"personal"`
	Professional sonic.NoCopyRawMessage `json:"professional"`
}

// Encode serializes both scopes.
func Encode(s State) ([]byte, error) {
	env := envelope{
		Personal:     toRecords(s.Personal),
		Professional: toRecords(s.Professional),
	}
	data, err := sonic.ConfigStd.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	return data, nil
}

func toRecords(tasks []task.Task) []record {
	out := make([]record, 0, len(tasks))
	for _, t := range task.SortByOrder(tasks) {
		r := record{
			ID:       t.ID,
			Text:     t.Text,
			Done:     t.Done,
			Priority: string(t.Priority),
		}
		order := t.Order
		r.Order = &order
		if t.Due != nil {
			d := t.Due.Format(task.DateLayout)
			r.Due = &d
		}
		out = append(out, r)
	}
	return out
}

// Decode never fails: missing or corrupt data yields empty collections, and
// legacy records lacking order or priority are backfilled.
func Decode(data []byte) (State, DecodeReport) {
	var report DecodeReport
	if len(strings.TrimSpace(string(data))) == 0 {
		return State{Personal: []task.Task{}, Professional: []task.Task{}}, report
	}

	var raw rawEnvelope
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		report.Malformed = true
		return State{Personal: []task.Task{}, Professional: []task.Task{}}, report
	}

	return State{
		Personal:     decodeScope(task.Personal, raw.Personal, &report),
		Professional: decodeScope(task.Professional, raw.Professional, &report),
	}, report
}

func decodeScope(scope task.Scope, raw sonic.NoCopyRawMessage, report *DecodeReport) []task.Task {
	var items []sonic.NoCopyRawMessage
	if len(raw) == 0 || sonic.ConfigStd.Unmarshal(raw, &items) != nil {
		report.DefaultedScope = append(report.DefaultedScope, scope)
		return []task.Task{}
	}

	out := make([]task.Task, 0, len(items))
	for i, item := range items {
		var r storedRecord
		if err := sonic.ConfigStd.Unmarshal(item, &r); err != nil {
			report.SkippedRecords++
			continue
		}
		t, repaired := fromStored(r, i+1)
		if repaired {
			report.Backfilled++
		}
		out = append(out, t)
	}
	return out
}

// storedRecord is the lenient read side of record. Fields of the wrong type
// are repaired instead of costing the whole task.
type storedRecord struct {
	ID       any `json:"id"`
	Text     any `json:"text"`
	Done     any `json:"done"`
	Due      any `json:"due"`
	Priority any `json:"priority"`
	Order    any `json:"order"`
}

// maxStoredOrder bounds orders to integers a float64 holds exactly.
const maxStoredOrder = 1 << 53

// fromStored converts r, backfilling what is missing or mistyped. position is
// the record's 1-based index in the stored array.
func fromStored(r storedRecord, position int) (task.Task, bool) {
	repaired := false
	var t task.Task

	if id, ok := r.ID.(string); ok && id != "" {
		t.ID = id
	} else {
		t.ID = uuid.NewString()
		repaired = true
	}
	if text, ok := r.Text.(string); ok {
		t.Text = text
	}

	switch done := r.Done.(type) {
	case bool:
		t.Done = done
	case nil:
	default:
		repaired = true
	}

	if order, ok := storedOrder(r.Order); ok {
		t.Order = order
	} else {
		t.Order = position
		repaired = true
	}

	raw, _ := r.Priority.(string)
	p, err := task.ParsePriority(raw)
	if err != nil || raw == "" {
		p = task.Medium
		repaired = true
	}
	t.Priority = p

	if due, ok := r.Due.(string); ok {
		t.Due = parseStoredDate(due)
	}
	return t, repaired
}

func storedOrder(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > maxStoredOrder {
		return 0, false
	}
	return int(f), true
}

func parseStoredDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if len(v) > len(task.DateLayout) {
		v = v[:len(task.DateLayout)]
	}
	d, err := time.Parse(task.DateLayout, v)
	if err != nil {
		return nil
	}
	return &d
}
