// Package selection tracks the single selected node of an editor and routes
// settings edits for it through the layout mutator.
package selection

import (
	"pagebuilder/internal/domain"
	"pagebuilder/internal/layout"
)

// Panel is the sidebar view the editor shows.
type Panel string

const (
	PanelComponents Panel = "components"
	PanelSettings   Panel = "settings"
)

// State holds at most one selected path. The path is a lookup key: it is
// resolved against the current schema on every read, so a stale selection
// reads as "nothing selected".
type State struct {
	selected *domain.Path
	panel    Panel
}

func New() *State {
	return &State{panel: PanelComponents}
}

// Select selects p and switches to the settings panel. Invalid paths clear
// the selection.
func (s *State) Select(p domain.Path) {
	if !p.Valid() {
		s.Clear()
		return
	}
	s.selected = &p
	s.panel = PanelSettings
}

// Clear deselects, as clicking empty canvas does.
func (s *State) Clear() {
	s.selected = nil
	s.panel = PanelComponents
}

// Selected returns the selected path if it still resolves in schema. A path
// that no longer resolves is cleared.
func (s *State) Selected(schema domain.PageSchema) (domain.Path, bool) {
	if s.selected == nil {
		return domain.Path{}, false
	}
	if !domain.Exists(schema, *s.selected) {
		s.Clear()
		return domain.Path{}, false
	}
	return *s.selected, true
}

// Node resolves the selection in schema.
func (s *State) Node(schema domain.PageSchema) (domain.Node, bool) {
	p, ok := s.Selected(schema)
	if !ok {
		return domain.Node{}, false
	}
	return domain.Resolve(schema, p)
}

// IsSelected reports whether p is the selected path. It does not resolve.
func (s *State) IsSelected(p domain.Path) bool {
	return s.selected != nil && *s.selected == p
}

func (s *State) Panel() Panel { return s.panel }

func (s *State) SetPanel(p Panel) {
	switch p {
	case PanelComponents, PanelSettings:
		s.panel = p
	}
}

// Invalidate clears the selection when it is the deleted node or one of its
// descendants.
func (s *State) Invalidate(deleted domain.Path) {
	if s.selected != nil && deleted.Contains(*s.selected) {
		s.Clear()
	}
}

// UpdateSetting sets a setting on the selected node. With nothing selected,
// or a stale selection, schema is returned unchanged.
func (s *State) UpdateSetting(schema domain.PageSchema, m *layout.Mutator, key string, value any) domain.PageSchema {
	p, ok := s.Selected(schema)
	if !ok {
		return schema
	}
	return m.UpdateSetting(schema, p, key, value)
}

// RemoveSetting deletes a setting key on the selected node.
func (s *State) RemoveSetting(schema domain.PageSchema, m *layout.Mutator, key string) domain.PageSchema {
	p, ok := s.Selected(schema)
	if !ok {
		return schema
	}
	return m.RemoveSetting(schema, p, key)
}

// UpdateProp sets a prop on the selected component. Other node kinds have no
// props; the schema is returned unchanged for them.
func (s *State) UpdateProp(schema domain.PageSchema, m *layout.Mutator, key string, value any) domain.PageSchema {
	p, ok := s.Selected(schema)
	if !ok || p.Kind != domain.KindComponent {
		return schema
	}
	return m.UpdateProp(schema, p, key, value)
}
