// Package render walks a page schema and produces HTML, either as the
// interactive editor canvas or as the published frontend page.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"pagebuilder/internal/dnd"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/registry"
)

type Mode int

const (
	// Frontend renders presentational markup only.
	Frontend Mode = iota
	// Editor wraps every node with selection and drag affordances.
	Editor
)

func (m Mode) String() string {
	if m == Editor {
		return "editor"
	}
	return "frontend"
}

// ParseMode accepts "editor" and "frontend".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "editor":
		return Editor, nil
	case "frontend", "":
		return Frontend, nil
	}
	return Frontend, fmt.Errorf("unknown render mode %q", s)
}

// SelectionState is the part of the selection state the renderer reads.
type SelectionState interface {
	IsSelected(p domain.Path) bool
}

// Renderer renders schemas. Registry may be nil or empty; frontend mode
// then falls back to the built-in renderers. Selection and Drag are only
// read in editor mode and may be nil.
type Renderer struct {
	Registry  *registry.Registry
	Mode      Mode
	Selection SelectionState
	Drag      *dnd.Coordinator
}

// Attrs are the wrapper attributes shared by every node level.
type Attrs struct {
	Editor     bool
	Path       string
	Class      string
	ID         string
	Style      template.CSS
	Selected   bool
	DropActive bool
	Dragging   bool
}

type sectionView struct {
	Attrs
	Kind string
	Rows []rowView
}

type rowView struct {
	Attrs
	Columns []columnView
}

type columnView struct {
	Attrs
	Width      string
	Components []componentView
}

type componentView struct {
	Attrs
	Type    string
	Content template.HTML
}

type pageView struct {
	Editor   bool
	Root     string
	Active   bool
	Sections []sectionView
}

// RenderPage renders the whole schema.
func (r *Renderer) RenderPage(s domain.PageSchema) (template.HTML, error) {
	editor := r.Mode == Editor
	view := pageView{
		Editor: editor,
		Root:   domain.Path{}.String(),
		Active: editor && r.dropActive(domain.Path{}),
	}
	for _, sec := range s.Sections {
		if !editor && len(sec.Rows) == 0 {
			continue
		}
		view.Sections = append(view.Sections, r.section(sec))
	}
	return r.RenderOne("page", view)
}

// RenderComponent renders a single component with its wrapper. The
// component is treated as detached from any page, so editor affordances
// that depend on its path are omitted.
func (r *Renderer) RenderComponent(c domain.Component) (template.HTML, error) {
	v := componentView{
		Attrs: Attrs{
			Class: classes("pb-component", "pb-component--"+c.Type, ClassNames(c.Settings)),
			ID:    ElementID(c.Settings),
			Style: Style(c.Settings),
		},
		Type:    c.Type,
		Content: r.Content(c),
	}
	return r.RenderOne("component", v)
}

// RenderOne executes a named wrapper template.
func (r *Renderer) RenderOne(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := wrappers.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Content resolves the inner markup of a component: the registry when it
// knows the type, otherwise the built-in fallback, which ends in a
// "Component: {type}" placeholder. The chain is the same in both modes.
func (r *Renderer) Content(c domain.Component) template.HTML {
	if r.Registry != nil && r.Registry.Has(c.Type) {
		return r.Registry.Render(c.Type, c.Props, c.Settings)
	}
	return Fallback(c)
}

func (r *Renderer) node(p domain.Path, base string, s domain.Settings) Attrs {
	v := Attrs{
		Class: classes(base, ClassNames(s)),
		ID:    ElementID(s),
		Style: Style(s),
	}
	if r.Mode == Editor {
		v.Editor = true
		v.Path = p.String()
		v.Selected = r.Selection != nil && r.Selection.IsSelected(p)
		v.DropActive = r.dropActive(p)
		v.Dragging = r.Drag != nil && r.Drag.IsDragging(p)
		v.Class = classes(v.Class, flag(v.Selected, "pb-selected"), flag(v.DropActive, "pb-drop-active"), flag(v.Dragging, "pb-dragging"))
	}
	return v
}

func (r *Renderer) dropActive(p domain.Path) bool {
	return r.Drag != nil && r.Drag.IsActive(p)
}

func flag(on bool, class string) string {
	if on {
		return class
	}
	return ""
}

func (r *Renderer) section(sec domain.Section) sectionView {
	p := domain.SectionPath(sec.ID)
	kind := sec.Kind
	if kind == "" {
		kind = domain.SectionContainer
	}
	v := sectionView{
		Attrs: r.node(p, classes("pb-section", "pb-section--"+kind), sec.Settings),
		Kind:  kind,
	}
	for _, row := range sec.Rows {
		v.Rows = append(v.Rows, r.row(p, row))
	}
	return v
}

func (r *Renderer) row(parent domain.Path, row domain.Row) rowView {
	p := domain.RowPath(parent.SectionID, row.ID)
	v := rowView{Attrs: r.node(p, "pb-row", row.Settings)}
	for _, col := range row.Columns {
		v.Columns = append(v.Columns, r.column(p, col))
	}
	return v
}

func (r *Renderer) column(parent domain.Path, col domain.Column) columnView {
	p := domain.ColumnPath(parent.SectionID, parent.RowID, col.ID)
	v := columnView{
		Attrs: r.node(p, "pb-column", col.Settings),
		Width: ColumnWidth(col.Size),
	}
	v.Style = columnStyle(col)
	for _, c := range col.Components {
		v.Components = append(v.Components, r.component(p, c))
	}
	return v
}

func (r *Renderer) component(parent domain.Path, c domain.Component) componentView {
	p := domain.ComponentPath(parent.SectionID, parent.RowID, parent.ColumnID, c.ID)
	return componentView{
		Attrs:   r.node(p, classes("pb-component", "pb-component--"+c.Type), c.Settings),
		Type:    c.Type,
		Content: r.Content(c),
	}
}

// Document wraps rendered page markup in a standalone HTML document.
func Document(title string, body template.HTML) (template.HTML, error) {
	var buf bytes.Buffer
	if err := wrappers.ExecuteTemplate(&buf, "document", struct {
		Title string
		Body  template.HTML
	}{title, body}); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return template.HTML(buf.String()), nil
}
