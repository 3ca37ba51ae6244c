// Package history implements a bounded undo/redo stack over whole schema
// snapshots.
package history

import "github.com/goliatone/go-formbuilder/pkg/schema"

// DefaultCapacity is the number of past snapshots kept when none is given.
const DefaultCapacity = 50

// Stack keeps past, present and future snapshots. Snapshots are deep copied
// on the way in and out.
type Stack struct {
	past     []schema.Schema
	present  *schema.Schema
	future   []schema.Schema
	capacity int
}

// New creates a stack keeping at most capacity past entries. Non positive
// values use DefaultCapacity.
func New(capacity int) *Stack {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stack{capacity: capacity}
}

// Push records s as the present snapshot and discards the redo branch. When
// the past exceeds capacity the oldest entry is evicted.
func (h *Stack) Push(s schema.Schema) {
	if h.present != nil {
		h.past = append(h.past, *h.present)
		if len(h.past) > h.capacity {
			h.past = append([]schema.Schema(nil), h.past[len(h.past)-h.capacity:]...)
		}
	}
	snapshot := s.Clone()
	h.present = &snapshot
	h.future = nil
}

// Undo steps back and returns the now current snapshot.
func (h *Stack) Undo() (schema.Schema, bool) {
	if len(h.past) == 0 {
		return schema.Schema{}, false
	}
	h.future = append(h.future, *h.present)
	last := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.present = &last
	return last.Clone(), true
}

// Redo steps forward and returns the now current snapshot.
func (h *Stack) Redo() (schema.Schema, bool) {
	if len(h.future) == 0 {
		return schema.Schema{}, false
	}
	h.past = append(h.past, *h.present)
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.present = &next
	return next.Clone(), true
}

// Present returns the current snapshot, if any.
func (h *Stack) Present() (schema.Schema, bool) {
	if h.present == nil {
		return schema.Schema{}, false
	}
	return h.present.Clone(), true
}

func (h *Stack) CanUndo() bool { return len(h.past) > 0 }

func (h *Stack) CanRedo() bool { return len(h.future) > 0 }

// Len reports the number of past and future entries.
func (h *Stack) Len() (past, future int) {
	return len(h.past), len(h.future)
}

// Clear drops every snapshot.
func (h *Stack) Clear() {
	h.past = nil
	h.present = nil
	h.future = nil
}
