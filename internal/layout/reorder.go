package layout

import "pagebuilder/internal/domain"

// ReorderSections moves the section at from to position to.
func (m *Mutator) ReorderSections(s domain.PageSchema, from, to int) domain.PageSchema {
	sections, ok := moveIndex(s.Sections, from, to)
	if !ok {
		return s
	}
	return domain.PageSchema{Sections: sections}
}

func (m *Mutator) ReorderRows(s domain.PageSchema, sectionID string, from, to int) domain.PageSchema {
	out, _ := updateSection(s, sectionID, func(sec domain.Section) (domain.Section, bool) {
		rows, ok := moveIndex(sec.Rows, from, to)
		sec.Rows = rows
		return sec, ok
	})
	return out
}

func (m *Mutator) ReorderColumns(s domain.PageSchema, rowPath domain.Path, from, to int) domain.PageSchema {
	if rowPath.Kind != domain.KindRow {
		return s
	}
	out, _ := updateRow(s, rowPath, func(row domain.Row) (domain.Row, bool) {
		cols, ok := moveIndex(row.Columns, from, to)
		row.Columns = cols
		return row, ok
	})
	return out
}

func (m *Mutator) ReorderComponents(s domain.PageSchema, columnPath domain.Path, from, to int) domain.PageSchema {
	if columnPath.Kind != domain.KindColumn {
		return s
	}
	out, _ := updateColumn(s, columnPath, func(col domain.Column) (domain.Column, bool) {
		comps, ok := moveIndex(col.Components, from, to)
		col.Components = comps
		return col, ok
	})
	return out
}

// Reorder moves a child of parent from one index to another. The root path
// reorders sections, a section path its rows, a row path its columns and a
// column path its components.
func (m *Mutator) Reorder(s domain.PageSchema, parent domain.Path, from, to int) domain.PageSchema {
	if parent.IsRoot() {
		return m.ReorderSections(s, from, to)
	}
	switch parent.Kind {
	case domain.KindSection:
		return m.ReorderRows(s, parent.SectionID, from, to)
	case domain.KindRow:
		return m.ReorderColumns(s, parent, from, to)
	case domain.KindColumn:
		return m.ReorderComponents(s, parent, from, to)
	}
	return s
}

// MoveUp swaps a node with its previous sibling.
func (m *Mutator) MoveUp(s domain.PageSchema, p domain.Path) domain.PageSchema {
	return m.shift(s, p, -1)
}

// MoveDown swaps a node with its next sibling.
func (m *Mutator) MoveDown(s domain.PageSchema, p domain.Path) domain.PageSchema {
	return m.shift(s, p, 1)
}

func (m *Mutator) shift(s domain.PageSchema, p domain.Path, delta int) domain.PageSchema {
	n, ok := domain.Resolve(s, p)
	if !ok {
		return s
	}
	return m.Reorder(s, p.Parent(), n.Index, n.Index+delta)
}
