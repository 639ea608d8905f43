// Package missing accumulates the expressions that reached the
// placeholder tier. The tracker is the one piece of shared mutable
// state in the compiler; it is handed around explicitly rather than
// living in a package global so each invocation gets its own scope.
package missing

import (
	"sync"

	"convgen/internal/tree"
)

// Record is one untranslatable expression, identified by its first
// occurrence.
type Record struct {
	TagID   uint32
	TagName string
	Group   string
	Expr    string
	Kind    tree.ConvKind
}

type key struct {
	expr string
	kind tree.ConvKind
}

// Tracker is a mutex-guarded, insertion-ordered set of Records keyed by
// (expression, kind). First occurrence wins; later calls with the same
// key are accepted and ignored.
type Tracker struct {
	mu      sync.Mutex
	seen    map[key]bool
	records []Record
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[key]bool)}
}

// Record stores one missing conversion. Idempotent per (expr, kind).
func (t *Tracker) Record(kind tree.ConvKind, tagID uint32, tagName, group, expr string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key{expr: expr, kind: kind}
	if t.seen[k] {
		return
	}
	t.seen[k] = true
	t.records = append(t.records, Record{
		TagID:   tagID,
		TagName: tagName,
		Group:   group,
		Expr:    expr,
		Kind:    kind,
	})
}

// List returns the records in insertion order. The returned slice is a
// copy; callers may hold it across later Record calls.
func (t *Tracker) List() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Len reports the current record count.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Reset clears all records. Used for test isolation.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen = make(map[key]bool)
	t.records = nil
}
