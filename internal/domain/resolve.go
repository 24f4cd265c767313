package domain

// Node is the result of resolving a Path. Kind tells which fields are set;
// ancestors of the resolved node are filled in as well. The pointers refer
// to copies, so writing through them never reaches the schema.
type Node struct {
	Kind      NodeKind
	Path      Path
	Section   *Section
	Row       *Row
	Column    *Column
	Component *Component

	// Index is the position of the node within its parent's sequence.
	Index int
}

// Settings returns the resolved node's settings map.
func (n Node) Settings() Settings {
	switch n.Kind {
	case KindSection:
		return n.Section.Settings
	case KindRow:
		return n.Row.Settings
	case KindColumn:
		return n.Column.Settings
	case KindComponent:
		return n.Component.Settings
	}
	return nil
}

// Resolve walks the chain of ids in p from the root. It reports false when
// any link is missing; it never panics.
func Resolve(s PageSchema, p Path) (Node, bool) {
	if !p.Valid() {
		return Node{}, false
	}
	n := Node{Kind: p.Kind, Path: p}

	si := IndexOfSection(s.Sections, p.SectionID)
	if si < 0 {
		return Node{}, false
	}
	sec := s.Sections[si]
	n.Section, n.Index = &sec, si
	if p.Kind == KindSection {
		return n, true
	}

	ri := IndexOfRow(sec.Rows, p.RowID)
	if ri < 0 {
		return Node{}, false
	}
	row := sec.Rows[ri]
	n.Row, n.Index = &row, ri
	if p.Kind == KindRow {
		return n, true
	}

	ci := IndexOfColumn(row.Columns, p.ColumnID)
	if ci < 0 {
		return Node{}, false
	}
	col := row.Columns[ci]
	n.Column, n.Index = &col, ci
	if p.Kind == KindColumn {
		return n, true
	}

	ki := IndexOfComponent(col.Components, p.ComponentID)
	if ki < 0 {
		return Node{}, false
	}
	comp := col.Components[ki]
	n.Component, n.Index = &comp, ki
	return n, true
}

// Exists reports whether p resolves in s.
func Exists(s PageSchema, p Path) bool {
	_, ok := Resolve(s, p)
	return ok
}

func IndexOfSection(list []Section, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func IndexOfRow(list []Row, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func IndexOfColumn(list []Column, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func IndexOfComponent(list []Component, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// WalkFunc is called for every node in render order. Returning false skips
// the node's children.
type WalkFunc func(p Path, n Node) bool

// Walk visits every node of s depth-first in render order. The Node
// pointers alias s and must be treated as read-only.
func Walk(s PageSchema, fn WalkFunc) {
	for si := range s.Sections {
		sec := &s.Sections[si]
		sp := SectionPath(sec.ID)
		if !fn(sp, Node{Kind: KindSection, Path: sp, Section: sec, Index: si}) {
			continue
		}
		for ri := range sec.Rows {
			row := &sec.Rows[ri]
			rp := RowPath(sec.ID, row.ID)
			if !fn(rp, Node{Kind: KindRow, Path: rp, Section: sec, Row: row, Index: ri}) {
				continue
			}
			for ci := range row.Columns {
				col := &row.Columns[ci]
				cp := ColumnPath(sec.ID, row.ID, col.ID)
				if !fn(cp, Node{Kind: KindColumn, Path: cp, Section: sec, Row: row, Column: col, Index: ci}) {
					continue
				}
				for ki := range col.Components {
					comp := &col.Components[ki]
					kp := ComponentPath(sec.ID, row.ID, col.ID, comp.ID)
					fn(kp, Node{Kind: KindComponent, Path: kp, Section: sec, Row: row, Column: col, Component: comp, Index: ki})
				}
			}
		}
	}
}

// IDs collects every node id in s, in render order.
func IDs(s PageSchema) []string {
	var ids []string
	Walk(s, func(p Path, _ Node) bool {
		ids = append(ids, p.ID())
		return true
	})
	return ids
}
