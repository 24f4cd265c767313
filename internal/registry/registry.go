package registry

import (
	"fmt"
	"html/template"
	"slices"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
)

// Palette categories shipped with the built-in components. Category is a
// free grouping string; the registry does not restrict it to these.
const (
	CategoryLayout      = "layout"
	CategoryContent     = "content"
	CategoryMedia       = "media"
	CategoryInteractive = "interactive"
)

// RenderFunc turns a component's props and settings into markup. It must be
// pure: the same inputs always produce the same output.
type RenderFunc func(props domain.Props, settings domain.Settings) template.HTML

// Definition describes one component type.
type Definition struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	Icon         string         `json:"icon,omitempty"`
	DefaultProps domain.Props   `json:"defaultProps"`
	PropSchema   map[string]any `json:"propSchema,omitempty"`
	Render       RenderFunc     `json:"-"`

	// Source is the file a definition was loaded from, empty for built-ins.
	Source string `json:"source,omitempty"`
}

type entry struct {
	def    Definition
	schema *jsonschema.Resolved
}

// ─────────────────────────────────────────────────────────────
// Registry: component type table
// ─────────────────────────────────────────────────────────────

// Registry maps component type ids to definitions. It is an explicit value:
// each editor, renderer or test owns the registry it is given. Safe for
// concurrent use; the file watcher re-registers from its own goroutine.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	log     *zap.SugaredLogger
}

// New creates an empty registry that logs through the global zap logger.
func New() *Registry {
	return NewWithLogger(zap.S())
}

func NewWithLogger(log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{entries: make(map[string]*entry), log: log}
}

// Register adds def. Registering an id that already exists replaces the
// earlier definition, keeps its position in GetAll and logs a warning.
// Definitions with an empty id are ignored.
func (r *Registry) Register(def Definition) {
	if def.ID == "" {
		r.log.Warnw("registry: ignoring definition without id", "name", def.Name)
		return
	}
	def.DefaultProps = def.DefaultProps.Clone()
	e := &entry{def: def}
	if def.PropSchema != nil {
		resolved, err := resolveSchema(def.PropSchema)
		if err != nil {
			r.log.Warnw("registry: invalid prop schema, validation disabled",
				"component", def.ID, "error", err)
		} else {
			e.schema = resolved
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, exists := r.entries[def.ID]; exists {
		r.log.Warnw("registry: overwriting component definition",
			"component", def.ID, "previousSource", prev.def.Source, "source", def.Source)
	} else {
		r.order = append(r.order, def.ID)
	}
	r.entries[def.ID] = e
}

// Unregister removes a definition. It reports whether one was present.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return true
}

// Get returns a copy of the definition registered under id.
func (r *Registry) Get(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return Definition{}, false
	}
	return e.def.copy(), true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// GetAll returns every definition in registration order.
func (r *Registry) GetAll() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].def.copy())
	}
	return out
}

// GetByCategory filters GetAll by category.
func (r *Registry) GetByCategory(category string) []Definition {
	var out []Definition
	for _, d := range r.GetAll() {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Categories lists categories in the order they were first registered.
func (r *Registry) Categories() []string {
	var out []string
	for _, d := range r.GetAll() {
		if !slices.Contains(out, d.Category) {
			out = append(out, d.Category)
		}
	}
	return out
}

// GetDefaultProps returns a deep copy of the defaults for id, or an empty
// map for unknown ids. Mutating the result never affects the registry.
func (r *Registry) GetDefaultProps(id string) domain.Props {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return domain.Props{}
	}
	return e.def.DefaultProps.Clone()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Render produces the markup for a component. Unknown ids, definitions
// without a render func and render funcs that panic all yield a visible
// placeholder; Render never panics.
func (r *Registry) Render(id string, props domain.Props, settings domain.Settings) (out template.HTML) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok || e.def.Render == nil {
		return Placeholder(id)
	}
	if props == nil {
		props = domain.Props{}
	}
	if settings == nil {
		settings = domain.Settings{}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warnw("registry: render panicked", "component", id, "panic", fmt.Sprint(rec))
			out = errorPlaceholder(id, fmt.Sprint(rec))
		}
	}()
	return e.def.Render(props.Clone(), settings.Clone())
}

// Placeholder is the marked output used for component types that cannot be
// rendered, so broken schemas stay visible where the component sits.
func Placeholder(componentType string) template.HTML {
	t := template.HTMLEscapeString(componentType)
	return template.HTML(`<div class="pb-unknown-component" data-type="` + t + `">Unknown component: ` + t + `</div>`)
}

func errorPlaceholder(componentType, msg string) template.HTML {
	t := template.HTMLEscapeString(componentType)
	return template.HTML(`<div class="pb-unknown-component pb-render-error" data-type="` + t + `" title="` +
		template.HTMLEscapeString(msg) + `">Component failed to render: ` + t + `</div>`)
}

func (d Definition) copy() Definition {
	out := d
	out.DefaultProps = d.DefaultProps.Clone()
	if d.PropSchema != nil {
		out.PropSchema = map[string]any(domain.Props(d.PropSchema).Clone())
	}
	return out
}
