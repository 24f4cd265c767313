package render

import (
	"bytes"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"pagebuilder/internal/domain"
)

// Minimal renderers for the well-known types, used by frontend rendering
// when the registry has not been populated.
var fallbacks = template.Must(template.New("fallback").Parse(
	`{{define "text"}}<p>{{.Props.String "content"}}</p>{{end}}` +
		`{{define "image"}}{{with .Props.String "src"}}<img src="{{.}}" alt="{{$.Props.String "alt"}}">{{end}}{{end}}` +
		`{{define "button"}}<a class="pb-button" href="{{or (.Props.String "href") "#"}}">{{.Props.String "label"}}</a>{{end}}` +
		`{{define "spacer"}}<div class="pb-spacer" style="height: {{.Height}}px"></div>{{end}}` +
		`{{define "divider"}}<hr class="pb-divider">{{end}}` +
		`{{define "unknown"}}<div class="pb-unknown-component" data-type="{{.Type}}">Component: {{.Type}}</div>{{end}}`,
))

type fallbackData struct {
	Type   string
	Props  domain.Props
	Height int
}

// Fallback renders c with the built-in renderers, or a "Component: {type}"
// placeholder for any other type. It never fails.
func Fallback(c domain.Component) template.HTML {
	name := c.Type
	switch name {
	case "heading", "text", "image", "button", "spacer", "divider":
	default:
		name = "unknown"
	}
	props := c.Props
	if props == nil {
		props = domain.Props{}
	}
	if name == "heading" {
		level := clamp(props.Int("level", 2), 1, 6)
		return template.HTML(fmt.Sprintf("<h%d>%s</h%d>", level, template.HTMLEscapeString(props.String("text")), level))
	}
	data := fallbackData{
		Type:   c.Type,
		Props:  props,
		Height: clamp(props.Int("height", 40), 0, 1000),
	}
	var buf bytes.Buffer
	if err := fallbacks.ExecuteTemplate(&buf, name, data); err != nil {
		zap.S().Warnw("render: fallback failed", "type", c.Type, "error", err)
		buf.Reset()
		_ = fallbacks.ExecuteTemplate(&buf, "unknown", data)
	}
	return template.HTML(buf.String())
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
