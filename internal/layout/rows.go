package layout

import "pagebuilder/internal/domain"

// AddRow appends a row to a section with one empty column per template
// entry. Sizes are clamped to the grid; an empty template yields a single
// full-width column.
func (m *Mutator) AddRow(s domain.PageSchema, sectionID string, template []float64) (domain.PageSchema, domain.Path) {
	if domain.IndexOfSection(s.Sections, sectionID) < 0 {
		return s, domain.Path{}
	}
	if len(template) == 0 {
		template = []float64{domain.GridUnits}
	}
	taken := usedIDs(s)
	row := domain.Row{
		ID:       m.newID(s, PrefixRow, taken),
		Settings: domain.Settings{},
		Columns:  make([]domain.Column, len(template)),
	}
	for i, size := range template {
		row.Columns[i] = domain.Column{
			ID:         m.newID(s, PrefixColumn, taken),
			Size:       domain.ClampSize(size),
			Settings:   domain.Settings{},
			Components: []domain.Component{},
		}
	}
	out, _ := updateSection(s, sectionID, func(sec domain.Section) (domain.Section, bool) {
		sec.Rows = insertAt(sec.Rows, -1, row)
		return sec, true
	})
	return out, domain.RowPath(sectionID, row.ID)
}

// AddRowFromTemplate is AddRow with a named template such as "1-2-1".
// Unknown names are a no-op.
func (m *Mutator) AddRowFromTemplate(s domain.PageSchema, sectionID, name string) (domain.PageSchema, domain.Path) {
	cols, ok := domain.LookupRowTemplate(name)
	if !ok {
		return s, domain.Path{}
	}
	return m.AddRow(s, sectionID, cols)
}

// DeleteRow removes a row from its section.
func (m *Mutator) DeleteRow(s domain.PageSchema, p domain.Path) domain.PageSchema {
	if p.Kind != domain.KindRow {
		return s
	}
	out, _ := updateSection(s, p.SectionID, func(sec domain.Section) (domain.Section, bool) {
		i := domain.IndexOfRow(sec.Rows, p.RowID)
		if i < 0 {
			return sec, false
		}
		sec.Rows = removeAt(sec.Rows, i)
		return sec, true
	})
	return out
}

// AddColumn appends one empty column of the given size to a row. Sibling
// sizes are left alone.
func (m *Mutator) AddColumn(s domain.PageSchema, rowPath domain.Path, size float64) (domain.PageSchema, domain.Path) {
	if rowPath.Kind != domain.KindRow || !domain.Exists(s, rowPath) {
		return s, domain.Path{}
	}
	col := domain.Column{
		ID:         m.newID(s, PrefixColumn, nil),
		Size:       domain.ClampSize(size),
		Settings:   domain.Settings{},
		Components: []domain.Component{},
	}
	out, _ := updateRow(s, rowPath, func(row domain.Row) (domain.Row, bool) {
		row.Columns = insertAt(row.Columns, -1, col)
		return row, true
	})
	return out, domain.ColumnPath(rowPath.SectionID, rowPath.RowID, col.ID)
}

// DeleteColumn removes a column and resizes the remaining columns of the row
// to equal widths (GridUnits / remaining). Removing the last column leaves
// an empty row.
func (m *Mutator) DeleteColumn(s domain.PageSchema, p domain.Path) domain.PageSchema {
	if p.Kind != domain.KindColumn {
		return s
	}
	out, _ := updateRow(s, p, func(row domain.Row) (domain.Row, bool) {
		i := domain.IndexOfColumn(row.Columns, p.ColumnID)
		if i < 0 {
			return row, false
		}
		cols := removeAt(row.Columns, i)
		if n := len(cols); n > 0 {
			size := float64(domain.GridUnits) / float64(n)
			for j := range cols {
				cols[j].Size = size
			}
		}
		row.Columns = cols
		return row, true
	})
	return out
}

// ResizeColumn sets a column's size, clamped to [1, 12]. Sibling columns are
// not renormalized, so a row's total may differ from the grid.
func (m *Mutator) ResizeColumn(s domain.PageSchema, p domain.Path, size float64) domain.PageSchema {
	if p.Kind != domain.KindColumn {
		return s
	}
	size = domain.ClampSize(size)
	out, _ := updateColumn(s, p, func(col domain.Column) (domain.Column, bool) {
		if col.Size == size {
			return col, false
		}
		col.Size = size
		return col, true
	})
	return out
}
