package editor

import "pagebuilder/internal/domain"

const DefaultHistoryLimit = 50

// History is a bounded undo/redo stack of schema snapshots. Snapshots share
// structure with each other; nothing in the editor mutates a schema in
// place, so no copies are taken.
type History struct {
	limit  int
	past   []domain.PageSchema
	future []domain.PageSchema
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Record pushes the schema that is about to be replaced. A new edit
// invalidates everything that could be redone.
func (h *History) Record(prev domain.PageSchema) {
	h.past = append(h.past, prev)
	if over := len(h.past) - h.limit; over > 0 {
		h.past = append([]domain.PageSchema(nil), h.past[over:]...)
	}
	h.future = nil
}

// Undo returns the previous schema and remembers current for Redo.
func (h *History) Undo(current domain.PageSchema) (domain.PageSchema, bool) {
	if len(h.past) == 0 {
		return current, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, current)
	return prev, true
}

// Redo reapplies the most recently undone schema.
func (h *History) Redo(current domain.PageSchema) (domain.PageSchema, bool) {
	if len(h.future) == 0 {
		return current, false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, current)
	return next, true
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the number of undo steps available.
func (h *History) Depth() int { return len(h.past) }

func (h *History) Clear() {
	h.past = nil
	h.future = nil
}
