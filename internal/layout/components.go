package layout

import "pagebuilder/internal/domain"

// AddComponent inserts a new component of componentType into the column at
// index; an index outside [0, len] appends. Props start from the type's
// defaults with the given props laid over them.
func (m *Mutator) AddComponent(s domain.PageSchema, column domain.Path, index int, componentType string, props domain.Props) (domain.PageSchema, domain.Path) {
	if column.Kind != domain.KindColumn || componentType == "" || !domain.Exists(s, column) {
		return s, domain.Path{}
	}
	merged := domain.Props{}
	if m.defaults != nil {
		merged = m.defaults(componentType).Clone()
	}
	for k, v := range props.Clone() {
		merged[k] = v
	}
	comp := domain.Component{
		ID:       m.newID(s, PrefixComponent, nil),
		Type:     componentType,
		Props:    merged,
		Settings: domain.Settings{},
	}
	return m.InsertComponent(s, column, index, comp)
}

// InsertComponent inserts an already built component. Its id must not be
// used anywhere in s; otherwise the call is a no-op.
func (m *Mutator) InsertComponent(s domain.PageSchema, column domain.Path, index int, comp domain.Component) (domain.PageSchema, domain.Path) {
	if column.Kind != domain.KindColumn || comp.ID == "" || usedIDs(s)[comp.ID] {
		return s, domain.Path{}
	}
	comp = comp.Clone()
	out, ok := updateColumn(s, column, func(col domain.Column) (domain.Column, bool) {
		col.Components = insertAt(col.Components, index, comp)
		return col, true
	})
	if !ok {
		return s, domain.Path{}
	}
	return out, domain.ComponentPath(column.SectionID, column.RowID, column.ColumnID, comp.ID)
}

// DuplicateComponent inserts a deep copy with a fresh id right after the
// original.
func (m *Mutator) DuplicateComponent(s domain.PageSchema, p domain.Path) (domain.PageSchema, domain.Path) {
	n, ok := domain.Resolve(s, p)
	if !ok || p.Kind != domain.KindComponent {
		return s, domain.Path{}
	}
	dup := n.Component.Clone()
	dup.ID = m.newID(s, PrefixComponent, nil)
	return m.InsertComponent(s, p.Parent(), n.Index+1, dup)
}

// DeleteComponent removes a component from its column.
func (m *Mutator) DeleteComponent(s domain.PageSchema, p domain.Path) domain.PageSchema {
	if p.Kind != domain.KindComponent {
		return s
	}
	out, _ := updateColumn(s, p, func(col domain.Column) (domain.Column, bool) {
		i := domain.IndexOfComponent(col.Components, p.ComponentID)
		if i < 0 {
			return col, false
		}
		col.Components = removeAt(col.Components, i)
		return col, true
	})
	return out
}

// MoveComponent moves a component into the target column at index, where
// index counts positions in the target column as it was before the move.
// Within one column this is a reorder; across columns the removal and the
// insertion happen in a single call, so callers never see the component in
// both columns or in neither.
func (m *Mutator) MoveComponent(s domain.PageSchema, from, to domain.Path, index int) (domain.PageSchema, domain.Path) {
	src, ok := domain.Resolve(s, from)
	if !ok || from.Kind != domain.KindComponent {
		return s, domain.Path{}
	}
	dst, ok := domain.Resolve(s, to)
	if !ok || to.Kind != domain.KindColumn {
		return s, domain.Path{}
	}
	if index < 0 || index > len(dst.Column.Components) {
		index = len(dst.Column.Components)
	}

	if from.Parent() == to {
		target := index
		if target > src.Index {
			target--
		}
		out := m.ReorderComponents(s, to, src.Index, target)
		if !Changed(s, out) {
			return s, domain.Path{}
		}
		return out, from
	}

	comp := *src.Component
	removed := m.DeleteComponent(s, from)
	out, ok := updateColumn(removed, to, func(col domain.Column) (domain.Column, bool) {
		col.Components = insertAt(col.Components, index, comp)
		return col, true
	})
	if !ok {
		return s, domain.Path{}
	}
	return out, domain.ComponentPath(to.SectionID, to.RowID, to.ColumnID, comp.ID)
}
