package components

import (
	"fmt"
	"html/template"
	"strings"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/registry"
)

func Heading() registry.Definition {
	return registry.Definition{
		ID:           "heading",
		Name:         "Heading",
		Category:     registry.CategoryContent,
		Icon:         "heading",
		DefaultProps: domain.Props{"text": "Heading", "level": 2},
		PropSchema: schema(map[string]any{
			"text":  str(),
			"level": map[string]any{"type": "integer", "minimum": 1, "maximum": 6},
		}, "text"),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			level := clampInt(p, "level", 2, 1, 6)
			return template.HTML(fmt.Sprintf("<h%d>%s</h%d>", level, template.HTMLEscapeString(p.String("text")), level))
		},
	}
}

// Text renders plain text; line breaks in the content become <br>.
func Text() registry.Definition {
	return registry.Definition{
		ID:           "text",
		Name:         "Text",
		Category:     registry.CategoryContent,
		Icon:         "type",
		DefaultProps: domain.Props{"content": "Enter your text here"},
		PropSchema:   schema(map[string]any{"content": str()}),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			return template.HTML("<p>" + TextLines(p.String("content")) + "</p>")
		},
	}
}

// TextLines escapes s and joins its lines with <br>.
func TextLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = template.HTMLEscapeString(l)
	}
	return strings.Join(lines, "<br>")
}

var buttonTmpl = mustTemplate("button",
	`<a class="pb-button pb-button-{{ .Variant }}" href="{{ .Href }}">{{ .Label }}</a>`)

func Button() registry.Definition {
	return registry.Definition{
		ID:           "button",
		Name:         "Button",
		Category:     registry.CategoryContent,
		Icon:         "mouse-pointer",
		DefaultProps: domain.Props{"label": "Click me", "href": "#", "variant": "primary"},
		PropSchema: schema(map[string]any{
			"label":   str(),
			"href":    str(),
			"variant": enum("primary", "secondary", "outline", "link"),
		}, "label"),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			href := p.String("href")
			if href == "" {
				href = "#"
			}
			variant := p.String("variant")
			switch variant {
			case "primary", "secondary", "outline", "link":
			default:
				variant = "primary"
			}
			return execute(buttonTmpl, map[string]any{"Label": p.String("label"), "Href": href, "Variant": variant})
		},
	}
}

var listTmpl = mustTemplate("list",
	`{{ if .Ordered }}<ol>{{ else }}<ul>{{ end }}{{ range .Items }}<li>{{ . }}</li>{{ end }}{{ if .Ordered }}</ol>{{ else }}</ul>{{ end }}`)

func List() registry.Definition {
	return registry.Definition{
		ID:           "list",
		Name:         "List",
		Category:     registry.CategoryContent,
		Icon:         "list",
		DefaultProps: domain.Props{"items": []any{"First item", "Second item"}, "ordered": false},
		PropSchema: schema(map[string]any{
			"items":   list(str()),
			"ordered": boolean(),
		}),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			return execute(listTmpl, map[string]any{"Items": p.Strings("items"), "Ordered": p.Bool("ordered", false)})
		},
	}
}

var quoteTmpl = mustTemplate("quote",
	`<blockquote class="pb-quote"><p>{{ .Text }}</p>{{ with .Cite }}<cite>{{ . }}</cite>{{ end }}</blockquote>`)

func Quote() registry.Definition {
	return registry.Definition{
		ID:           "quote",
		Name:         "Quote",
		Category:     registry.CategoryContent,
		Icon:         "quote",
		DefaultProps: domain.Props{"text": "Quote text", "cite": ""},
		PropSchema:   schema(map[string]any{"text": str(), "cite": str()}, "text"),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			return execute(quoteTmpl, map[string]any{"Text": p.String("text"), "Cite": p.String("cite")})
		},
	}
}

// HTML passes its markup through unescaped. It is meant for trusted editors.
func HTML() registry.Definition {
	return registry.Definition{
		ID:           "html",
		Name:         "Custom HTML",
		Category:     registry.CategoryContent,
		Icon:         "code",
		DefaultProps: domain.Props{"html": ""},
		PropSchema:   schema(map[string]any{"html": str()}),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			return template.HTML(`<div class="pb-html">` + p.String("html") + `</div>`)
		},
	}
}
