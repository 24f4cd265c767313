package layout

import "pagebuilder/internal/domain"

// Delete removes the node p points at, dispatching on p.Kind.
func (m *Mutator) Delete(s domain.PageSchema, p domain.Path) domain.PageSchema {
	switch p.Kind {
	case domain.KindSection:
		return m.DeleteSection(s, p.SectionID)
	case domain.KindRow:
		return m.DeleteRow(s, p)
	case domain.KindColumn:
		return m.DeleteColumn(s, p)
	case domain.KindComponent:
		return m.DeleteComponent(s, p)
	}
	return s
}

// Duplicate copies a section or component next to the original. Rows and
// columns are not duplicated.
func (m *Mutator) Duplicate(s domain.PageSchema, p domain.Path) (domain.PageSchema, domain.Path) {
	switch p.Kind {
	case domain.KindSection:
		if !p.Valid() {
			return s, domain.Path{}
		}
		return m.DuplicateSection(s, p.SectionID)
	case domain.KindComponent:
		return m.DuplicateComponent(s, p)
	}
	return s, domain.Path{}
}

// UpdateSetting sets one key of a node's settings, leaving the other keys
// untouched. Setting a key to the value it already holds is a no-op.
func (m *Mutator) UpdateSetting(s domain.PageSchema, p domain.Path, key string, value any) domain.PageSchema {
	if key == "" {
		return s
	}
	return m.editSettings(s, p, func(cur domain.Settings) (domain.Settings, bool) {
		if old, ok := cur[key]; ok && domain.ValueEqual(old, value) {
			return cur, false
		}
		next := copyMap(cur)
		next[key] = domain.Settings{key: value}.Clone()[key]
		return next, true
	})
}

// RemoveSetting deletes one key of a node's settings.
func (m *Mutator) RemoveSetting(s domain.PageSchema, p domain.Path, key string) domain.PageSchema {
	return m.editSettings(s, p, func(cur domain.Settings) (domain.Settings, bool) {
		if _, ok := cur[key]; !ok {
			return cur, false
		}
		next := copyMap(cur)
		delete(next, key)
		return next, true
	})
}

// UpdateProp sets one key of a component's props.
func (m *Mutator) UpdateProp(s domain.PageSchema, p domain.Path, key string, value any) domain.PageSchema {
	if key == "" || p.Kind != domain.KindComponent || !p.Valid() {
		return s
	}
	out, _ := updateComponent(s, p, func(c domain.Component) (domain.Component, bool) {
		if old, ok := c.Props[key]; ok && domain.ValueEqual(old, value) {
			return c, false
		}
		next := domain.Props(copyMap(domain.Settings(c.Props)))
		next[key] = domain.Props{key: value}.Clone()[key]
		c.Props = next
		return c, true
	})
	return out
}

// RemoveProp deletes one key of a component's props.
func (m *Mutator) RemoveProp(s domain.PageSchema, p domain.Path, key string) domain.PageSchema {
	if p.Kind != domain.KindComponent {
		return s
	}
	out, _ := updateComponent(s, p, func(c domain.Component) (domain.Component, bool) {
		if _, ok := c.Props[key]; !ok {
			return c, false
		}
		next := domain.Props(copyMap(domain.Settings(c.Props)))
		delete(next, key)
		c.Props = next
		return c, true
	})
	return out
}

func (m *Mutator) editSettings(s domain.PageSchema, p domain.Path, fn func(domain.Settings) (domain.Settings, bool)) domain.PageSchema {
	if !p.Valid() {
		return s
	}
	var out domain.PageSchema
	switch p.Kind {
	case domain.KindSection:
		out, _ = updateSection(s, p.SectionID, func(sec domain.Section) (domain.Section, bool) {
			next, ok := fn(sec.Settings)
			sec.Settings = next
			return sec, ok
		})
	case domain.KindRow:
		out, _ = updateRow(s, p, func(row domain.Row) (domain.Row, bool) {
			next, ok := fn(row.Settings)
			row.Settings = next
			return row, ok
		})
	case domain.KindColumn:
		out, _ = updateColumn(s, p, func(col domain.Column) (domain.Column, bool) {
			next, ok := fn(col.Settings)
			col.Settings = next
			return col, ok
		})
	case domain.KindComponent:
		out, _ = updateComponent(s, p, func(c domain.Component) (domain.Component, bool) {
			next, ok := fn(c.Settings)
			c.Settings = next
			return c, ok
		})
	default:
		return s
	}
	return out
}

// copyMap is a shallow copy: untouched values stay shared with the input
// schema, like untouched subtrees.
func copyMap(m domain.Settings) domain.Settings {
	out := make(domain.Settings, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
