// Package layout implements the structural edits of a page schema.
//
// Every operation takes a schema and returns a schema. Nothing is edited in
// place: the nodes on the path from the root to the edited node are new
// values, every other subtree is shared with the input. An operation whose
// target does not resolve returns its input unchanged.
package layout

import (
	"strconv"

	"pagebuilder/internal/domain"
)

// DefaultPropsFunc supplies the default props for a component type. The
// registry's GetDefaultProps satisfies it.
type DefaultPropsFunc func(componentType string) domain.Props

// Mutator applies structural edits. The zero value is not usable; build one
// with New.
type Mutator struct {
	ids      IDSource
	defaults DefaultPropsFunc
}

// New builds a mutator. A nil ids falls back to UUIDSource; a nil defaults
// gives new components only the props passed to AddComponent.
func New(ids IDSource, defaults DefaultPropsFunc) *Mutator {
	if ids == nil {
		ids = UUIDSource{}
	}
	return &Mutator{ids: ids, defaults: defaults}
}

// Changed reports whether b is a different schema instance than a. It is
// the cheap change signal renderers and the editor use; every successful
// edit produces a new top-level sections slice.
func Changed(a, b domain.PageSchema) bool {
	if len(a.Sections) != len(b.Sections) {
		return true
	}
	if len(a.Sections) == 0 {
		return false
	}
	return &a.Sections[0] != &b.Sections[0]
}

// maxIDAttempts bounds how often newID asks the source for a fresh id
// before deriving one itself.
const maxIDAttempts = 8

// newID returns an id from the source that is not used anywhere in s. A
// source that keeps repeating itself, or returns "", gets its last answer
// suffixed with -2, -3, ... until the id is free.
func (m *Mutator) newID(s domain.PageSchema, prefix string, taken map[string]bool) string {
	if taken == nil {
		taken = usedIDs(s)
	}
	var id string
	for range maxIDAttempts {
		id = m.ids.NewID(prefix)
		if id != "" && !taken[id] {
			taken[id] = true
			return id
		}
	}
	if id == "" {
		id = prefix
	}
	for n := 2; ; n++ {
		candidate := id + "-" + strconv.Itoa(n)
		if !taken[candidate] {
			taken[candidate] = true
			return candidate
		}
	}
}

func usedIDs(s domain.PageSchema) map[string]bool {
	taken := make(map[string]bool)
	for _, id := range domain.IDs(s) {
		taken[id] = true
	}
	return taken
}

// ─────────────────────────────────────────────────────────────
// Path-copying helpers
// ─────────────────────────────────────────────────────────────

// Each helper locates one node, hands a copy to fn and, when fn reports a
// change, rebuilds only the slices on the path back to the root.

func updateSection(s domain.PageSchema, sectionID string, fn func(domain.Section) (domain.Section, bool)) (domain.PageSchema, bool) {
	i := domain.IndexOfSection(s.Sections, sectionID)
	if i < 0 {
		return s, false
	}
	sec, ok := fn(s.Sections[i])
	if !ok {
		return s, false
	}
	return domain.PageSchema{Sections: replaceAt(s.Sections, i, sec)}, true
}

func updateRow(s domain.PageSchema, p domain.Path, fn func(domain.Row) (domain.Row, bool)) (domain.PageSchema, bool) {
	return updateSection(s, p.SectionID, func(sec domain.Section) (domain.Section, bool) {
		i := domain.IndexOfRow(sec.Rows, p.RowID)
		if i < 0 {
			return sec, false
		}
		row, ok := fn(sec.Rows[i])
		if !ok {
			return sec, false
		}
		sec.Rows = replaceAt(sec.Rows, i, row)
		return sec, true
	})
}

func updateColumn(s domain.PageSchema, p domain.Path, fn func(domain.Column) (domain.Column, bool)) (domain.PageSchema, bool) {
	return updateRow(s, p, func(row domain.Row) (domain.Row, bool) {
		i := domain.IndexOfColumn(row.Columns, p.ColumnID)
		if i < 0 {
			return row, false
		}
		col, ok := fn(row.Columns[i])
		if !ok {
			return row, false
		}
		row.Columns = replaceAt(row.Columns, i, col)
		return row, true
	})
}

func updateComponent(s domain.PageSchema, p domain.Path, fn func(domain.Component) (domain.Component, bool)) (domain.PageSchema, bool) {
	return updateColumn(s, p, func(col domain.Column) (domain.Column, bool) {
		i := domain.IndexOfComponent(col.Components, p.ComponentID)
		if i < 0 {
			return col, false
		}
		comp, ok := fn(col.Components[i])
		if !ok {
			return col, false
		}
		col.Components = replaceAt(col.Components, i, comp)
		return col, true
	})
}

// replaceAt returns a copy of list with list[i] replaced.
func replaceAt[T any](list []T, i int, v T) []T {
	out := make([]T, len(list))
	copy(out, list)
	out[i] = v
	return out
}

// insertAt returns a copy of list with v inserted at i. An index outside
// [0, len] appends.
func insertAt[T any](list []T, i int, v T) []T {
	if i < 0 || i > len(list) {
		i = len(list)
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, v)
	return append(out, list[i:]...)
}

// removeAt returns a copy of list without list[i].
func removeAt[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

// moveIndex returns a copy of list with the element at from moved to to.
// It reports false for out-of-range or equal indices.
func moveIndex[T any](list []T, from, to int) ([]T, bool) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) || from == to {
		return list, false
	}
	v := list[from]
	return insertAt(removeAt(list, from), to, v), true
}
