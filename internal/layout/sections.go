package layout

import "pagebuilder/internal/domain"

// AddSection appends an empty section with a generated id. An empty kind
// means SectionContainer.
func (m *Mutator) AddSection(s domain.PageSchema, kind string) (domain.PageSchema, domain.Path) {
	return m.InsertSection(s, -1, kind)
}

// AddSectionWithID appends an empty section with a caller-supplied id. It is
// a no-op when id is empty or already used anywhere in s.
func (m *Mutator) AddSectionWithID(s domain.PageSchema, id, kind string) (domain.PageSchema, domain.Path) {
	if id == "" || usedIDs(s)[id] {
		return s, domain.Path{}
	}
	return insertSection(s, len(s.Sections), id, kind)
}

// InsertSection inserts an empty section at index. An index outside
// [0, len] appends.
func (m *Mutator) InsertSection(s domain.PageSchema, index int, kind string) (domain.PageSchema, domain.Path) {
	return insertSection(s, index, m.newID(s, PrefixSection, nil), kind)
}

func insertSection(s domain.PageSchema, index int, id, kind string) (domain.PageSchema, domain.Path) {
	if kind == "" {
		kind = domain.SectionContainer
	}
	sec := domain.Section{ID: id, Kind: kind, Settings: domain.Settings{}, Rows: []domain.Row{}}
	return domain.PageSchema{Sections: insertAt(s.Sections, index, sec)}, domain.SectionPath(id)
}

// DuplicateSection inserts a deep copy of a section, with fresh ids for it
// and all of its descendants, directly after the original.
func (m *Mutator) DuplicateSection(s domain.PageSchema, sectionID string) (domain.PageSchema, domain.Path) {
	i := domain.IndexOfSection(s.Sections, sectionID)
	if i < 0 {
		return s, domain.Path{}
	}
	taken := usedIDs(s)
	sec := s.Sections[i].Clone()
	sec.ID = m.newID(s, PrefixSection, taken)
	for ri := range sec.Rows {
		row := &sec.Rows[ri]
		row.ID = m.newID(s, PrefixRow, taken)
		for ci := range row.Columns {
			col := &row.Columns[ci]
			col.ID = m.newID(s, PrefixColumn, taken)
			for ki := range col.Components {
				col.Components[ki].ID = m.newID(s, PrefixComponent, taken)
			}
		}
	}
	return domain.PageSchema{Sections: insertAt(s.Sections, i+1, sec)}, domain.SectionPath(sec.ID)
}

// DeleteSection removes a section and everything below it.
func (m *Mutator) DeleteSection(s domain.PageSchema, sectionID string) domain.PageSchema {
	i := domain.IndexOfSection(s.Sections, sectionID)
	if i < 0 {
		return s
	}
	return domain.PageSchema{Sections: removeAt(s.Sections, i)}
}

// SetSectionKind changes a section's kind tag.
func (m *Mutator) SetSectionKind(s domain.PageSchema, sectionID, kind string) domain.PageSchema {
	out, _ := updateSection(s, sectionID, func(sec domain.Section) (domain.Section, bool) {
		if kind == "" || sec.Kind == kind {
			return sec, false
		}
		sec.Kind = kind
		return sec, true
	})
	return out
}
