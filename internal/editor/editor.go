// Package editor is one page-builder editing session: the current schema,
// its selection and drag state, and undo history. Every intent goes through
// the layout mutator and fires a change event when the schema changed.
package editor

import (
	"context"
	"html/template"

	"go.uber.org/zap"

	"pagebuilder/internal/dnd"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/layout"
	"pagebuilder/internal/registry"
	"pagebuilder/internal/render"
	"pagebuilder/internal/selection"
)

// EventSchemaChanged is emitted after every edit that produced a new schema.
const EventSchemaChanged = "schema:changed"

// Emitter receives change notifications. service.EventEmitter satisfies it.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Change is the payload of EventSchemaChanged.
type Change struct {
	Label  string            `json:"label"`
	Schema domain.PageSchema `json:"schema"`
}

type Options struct {
	Context      context.Context
	Registry     *registry.Registry
	IDs          layout.IDSource
	Emitter      Emitter
	HistoryLimit int
	Logger       *zap.SugaredLogger
}

// Editor is not safe for concurrent use. Callers serialize intents the way
// a UI event loop does.
type Editor struct {
	ctx       context.Context
	schema    domain.PageSchema
	mutator   *layout.Mutator
	registry  *registry.Registry
	selection *selection.State
	drag      *dnd.Coordinator
	history   *History
	emitter   Emitter
	log       *zap.SugaredLogger
}

func New(schema domain.PageSchema, opts Options) *Editor {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = zap.S()
	}
	var defaults layout.DefaultPropsFunc
	if opts.Registry != nil {
		defaults = opts.Registry.GetDefaultProps
	}
	m := layout.New(opts.IDs, defaults)
	return &Editor{
		ctx:       opts.Context,
		schema:    domain.Normalize(schema),
		mutator:   m,
		registry:  opts.Registry,
		selection: selection.New(),
		drag:      dnd.New(m),
		history:   NewHistory(opts.HistoryLimit),
		emitter:   opts.Emitter,
		log:       opts.Logger,
	}
}

// Schema returns the current schema. It must be treated as read-only.
func (e *Editor) Schema() domain.PageSchema { return e.schema }

func (e *Editor) Mutator() *layout.Mutator     { return e.mutator }
func (e *Editor) Selection() *selection.State  { return e.selection }
func (e *Editor) Drag() *dnd.Coordinator       { return e.drag }
func (e *Editor) Registry() *registry.Registry { return e.registry }

func (e *Editor) Resolve(p domain.Path) (domain.Node, bool) { return domain.Resolve(e.schema, p) }

// Load replaces the session's schema wholesale, as when a page is opened.
// History, selection and drag state are reset; nothing is emitted.
func (e *Editor) Load(schema domain.PageSchema) {
	e.schema = domain.Normalize(schema)
	e.history.Clear()
	e.selection.Clear()
	e.drag.Cancel()
}

// apply commits out if it differs from the current schema.
func (e *Editor) apply(label string, out domain.PageSchema) bool {
	if !layout.Changed(e.schema, out) {
		return false
	}
	e.history.Record(e.schema)
	e.schema = out
	e.emit(label)
	return true
}

func (e *Editor) emit(label string) {
	e.log.Debugw("editor: schema changed", "label", label, "sections", len(e.schema.Sections))
	if e.emitter != nil {
		e.emitter.Emit(e.ctx, EventSchemaChanged, Change{Label: label, Schema: e.schema})
	}
}

// ─────────────────────────────────────────────────────────────
// Structure
// ─────────────────────────────────────────────────────────────

func (e *Editor) AddSection(kind string) domain.Path {
	out, p := e.mutator.AddSection(e.schema, kind)
	e.apply("add section", out)
	return p
}

func (e *Editor) InsertSection(index int, kind string) domain.Path {
	out, p := e.mutator.InsertSection(e.schema, index, kind)
	e.apply("insert section", out)
	return p
}

func (e *Editor) SetSectionKind(sectionID, kind string) bool {
	return e.apply("change section kind", e.mutator.SetSectionKind(e.schema, sectionID, kind))
}

// AddRow appends a row built from column sizes. An empty template yields a
// single full-width column.
func (e *Editor) AddRow(sectionID string, sizes []float64) (domain.Path, bool) {
	out, p := e.mutator.AddRow(e.schema, sectionID, sizes)
	return p, e.apply("add row", out)
}

// AddRowFromTemplate appends a row using a named template such as "1-2".
func (e *Editor) AddRowFromTemplate(sectionID, name string) (domain.Path, bool) {
	out, p := e.mutator.AddRowFromTemplate(e.schema, sectionID, name)
	return p, e.apply("add row", out)
}

func (e *Editor) AddColumn(row domain.Path, size float64) (domain.Path, bool) {
	out, p := e.mutator.AddColumn(e.schema, row, size)
	return p, e.apply("add column", out)
}

func (e *Editor) ResizeColumn(column domain.Path, size float64) bool {
	return e.apply("resize column", e.mutator.ResizeColumn(e.schema, column, size))
}

// AddComponent inserts a component of the given type into a column. Props
// are overlaid on the registry defaults. Props that fail the type's schema
// are logged, not rejected.
func (e *Editor) AddComponent(column domain.Path, index int, componentType string, props domain.Props) (domain.Path, bool) {
	out, p := e.mutator.AddComponent(e.schema, column, index, componentType, props)
	if !e.apply("add component", out) {
		return domain.Path{}, false
	}
	if e.registry != nil {
		if !e.registry.Has(componentType) {
			e.log.Warnw("editor: component type not registered", "type", componentType, "path", p.String())
		} else if n, ok := domain.Resolve(e.schema, p); ok {
			if err := e.registry.Validate(componentType, n.Component.Props); err != nil {
				e.log.Warnw("editor: component props do not match schema", "type", componentType, "error", err)
			}
		}
	}
	return p, true
}

// Delete removes any node. Selection and drag state referring to the node
// or its descendants are cleared.
func (e *Editor) Delete(p domain.Path) bool {
	if !e.apply("delete "+string(p.Kind), e.mutator.Delete(e.schema, p)) {
		return false
	}
	e.selection.Invalidate(p)
	e.drag.Invalidate(p)
	return true
}

// Duplicate copies a section or component next to the original.
func (e *Editor) Duplicate(p domain.Path) (domain.Path, bool) {
	out, np := e.mutator.Duplicate(e.schema, p)
	if !e.apply("duplicate "+string(p.Kind), out) {
		return domain.Path{}, false
	}
	return np, true
}

// Reorder moves the child at index from to index to under parent. The root
// path reorders sections.
func (e *Editor) Reorder(parent domain.Path, from, to int) bool {
	return e.apply("reorder", e.mutator.Reorder(e.schema, parent, from, to))
}

func (e *Editor) MoveUp(p domain.Path) bool {
	return e.apply("move up", e.mutator.MoveUp(e.schema, p))
}

func (e *Editor) MoveDown(p domain.Path) bool {
	return e.apply("move down", e.mutator.MoveDown(e.schema, p))
}

// MoveComponent moves a component to index within another (or the same)
// column. The returned path is the component's new location.
func (e *Editor) MoveComponent(from, to domain.Path, index int) (domain.Path, bool) {
	out, p := e.mutator.MoveComponent(e.schema, from, to, index)
	if !e.apply("move component", out) {
		return domain.Path{}, false
	}
	if e.selection.IsSelected(from) {
		e.selection.Select(p)
	}
	return p, true
}

// ─────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────

func (e *Editor) UpdateSetting(p domain.Path, key string, value any) bool {
	return e.apply("update setting", e.mutator.UpdateSetting(e.schema, p, key, value))
}

func (e *Editor) RemoveSetting(p domain.Path, key string) bool {
	return e.apply("remove setting", e.mutator.RemoveSetting(e.schema, p, key))
}

func (e *Editor) UpdateProp(p domain.Path, key string, value any) bool {
	return e.apply("update prop", e.mutator.UpdateProp(e.schema, p, key, value))
}

func (e *Editor) RemoveProp(p domain.Path, key string) bool {
	return e.apply("remove prop", e.mutator.RemoveProp(e.schema, p, key))
}

// ─────────────────────────────────────────────────────────────
// Selection
// ─────────────────────────────────────────────────────────────

func (e *Editor) Select(p domain.Path) { e.selection.Select(p) }
func (e *Editor) ClearSelection()     { e.selection.Clear() }

// Selected returns the selected node, or false when nothing is selected or
// the selection no longer resolves.
func (e *Editor) Selected() (domain.Node, bool) { return e.selection.Node(e.schema) }

// UpdateSelectedSetting edits a setting of the selected node.
func (e *Editor) UpdateSelectedSetting(key string, value any) bool {
	return e.apply("update setting", e.selection.UpdateSetting(e.schema, e.mutator, key, value))
}

// UpdateSelectedProp edits a prop of the selected component.
func (e *Editor) UpdateSelectedProp(key string, value any) bool {
	return e.apply("update prop", e.selection.UpdateProp(e.schema, e.mutator, key, value))
}

// ─────────────────────────────────────────────────────────────
// Drag and drop
// ─────────────────────────────────────────────────────────────

func (e *Editor) DragStart(p dnd.Payload) bool { return e.drag.DragStart(p) }
func (e *Editor) DragOver(t dnd.Target)        { e.drag.DragOver(t) }
func (e *Editor) DragLeave()                   { e.drag.DragLeave() }
func (e *Editor) DragCancel()                  { e.drag.Cancel() }

// DragEnd resolves the drop. t is nil when the pointer was released outside
// every target.
func (e *Editor) DragEnd(t *dnd.Target) bool {
	payload, dragging := e.drag.Payload()
	out, moved, changed := e.drag.DragEndPath(e.schema, t)
	if !changed {
		return false
	}
	label := "drop component"
	existing := dragging && payload.Kind == dnd.PayloadExistingNode
	if existing {
		label = "move " + string(payload.Path.Kind)
	}
	if !e.apply(label, out) {
		return false
	}
	// A moved component keeps its selection at the new location, as with
	// MoveComponent.
	if existing && e.selection.IsSelected(*payload.Path) {
		e.selection.Select(moved)
	}
	return true
}

// ─────────────────────────────────────────────────────────────
// History
// ─────────────────────────────────────────────────────────────

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// Undo restores the previous schema. An in-flight drag is abandoned.
func (e *Editor) Undo() bool {
	prev, ok := e.history.Undo(e.schema)
	if !ok {
		return false
	}
	e.restore("undo", prev)
	return true
}

func (e *Editor) Redo() bool {
	next, ok := e.history.Redo(e.schema)
	if !ok {
		return false
	}
	e.restore("redo", next)
	return true
}

func (e *Editor) restore(label string, s domain.PageSchema) {
	e.drag.Cancel()
	e.schema = s
	e.emit(label)
}

// Render renders the current schema with the session's selection and drag
// state.
func (e *Editor) Render(mode render.Mode) (template.HTML, error) {
	r := render.Renderer{Registry: e.registry, Mode: mode, Selection: e.selection, Drag: e.drag}
	return r.RenderPage(e.schema)
}
