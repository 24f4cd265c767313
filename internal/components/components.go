// Package components holds the built-in component definitions.
package components

import (
	"bytes"
	"html/template"

	"github.com/Masterminds/sprig/v3"
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/registry"
)

// All returns the built-in definitions in palette order.
func All() []registry.Definition {
	return []registry.Definition{
		Spacer(), Divider(),
		Heading(), Text(), Markdown(), Button(), List(), Quote(), HTML(),
		Image(), Video(), Icon(),
		Form(), Accordion(),
	}
}

// RegisterAll registers every built-in. Calling it again re-registers the
// same definitions, which only logs the overwrite warnings.
func RegisterAll(r *registry.Registry) {
	for _, def := range All() {
		r.Register(def)
	}
}

// ─────────────────────────────────────────────────────────────
// template helpers
// ─────────────────────────────────────────────────────────────

func mustTemplate(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(sprig.FuncMap()).Parse(body))
}

// execute renders t with data. Built-in templates are fixed, so an error
// here means a prop had a shape the template cannot handle.
func execute(t *template.Template, data any) template.HTML {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		zap.S().Warnw("components: render failed", "component", t.Name(), "error", err)
		return registry.Placeholder(t.Name())
	}
	return template.HTML(buf.String())
}

// schema builds an object JSON schema from property definitions.
func schema(props map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		req := make([]any, len(required))
		for i, r := range required {
			req[i] = r
		}
		s["required"] = req
	}
	return s
}

func str() map[string]any { return map[string]any{"type": "string"} }

func enum(values ...string) map[string]any {
	e := make([]any, len(values))
	for i, v := range values {
		e[i] = v
	}
	return map[string]any{"type": "string", "enum": e}
}

func number(min, max float64) map[string]any {
	return map[string]any{"type": "number", "minimum": min, "maximum": max}
}

func boolean() map[string]any { return map[string]any{"type": "boolean"} }

func list(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

// clampInt keeps a numeric prop within bounds.
func clampInt(p domain.Props, key string, def, lo, hi int) int {
	v := p.Int(key, def)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
