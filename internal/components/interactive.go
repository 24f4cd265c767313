package components

import (
	"html/template"
	"strings"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/registry"
)

type formField struct {
	Name     string
	Label    string
	Type     string
	Required bool
}

var formTmpl = mustTemplate("form", `<form class="pb-form" action="{{ .Action }}" method="{{ .Method }}">`+
	`{{ range .Fields }}<label>{{ .Label }}`+
	`{{ if eq .Type "textarea" }}<textarea name="{{ .Name }}"{{ if .Required }} required{{ end }}></textarea>`+
	`{{ else }}<input type="{{ .Type }}" name="{{ .Name }}"{{ if .Required }} required{{ end }}>{{ end }}</label>{{ end }}`+
	`<button type="submit">{{ .Submit }}</button></form>`)

var fieldTypes = []string{"text", "email", "tel", "number", "textarea", "checkbox", "date"}

func Form() registry.Definition {
	return registry.Definition{
		ID:       "form",
		Name:     "Form",
		Category: registry.CategoryInteractive,
		Icon:     "clipboard",
		DefaultProps: domain.Props{
			"action": "",
			"method": "post",
			"submit": "Send",
			"fields": []any{
				map[string]any{"name": "name", "label": "Name", "type": "text", "required": true},
				map[string]any{"name": "email", "label": "Email", "type": "email", "required": true},
				map[string]any{"name": "message", "label": "Message", "type": "textarea"},
			},
		},
		PropSchema: schema(map[string]any{
			"action": str(),
			"method": enum("get", "post"),
			"submit": str(),
			"fields": list(schema(map[string]any{
				"name":     str(),
				"label":    str(),
				"type":     enum(fieldTypes...),
				"required": boolean(),
			}, "name")),
		}),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			method := strings.ToLower(p.String("method"))
			if method != "get" {
				method = "post"
			}
			var fields []formField
			for _, item := range p.Items("fields") {
				f := domain.Props(item)
				typ := f.String("type")
				if !contains(fieldTypes, typ) {
					typ = "text"
				}
				label := f.String("label")
				if label == "" {
					label = f.String("name")
				}
				fields = append(fields, formField{Name: f.String("name"), Label: label, Type: typ, Required: f.Bool("required", false)})
			}
			submit := p.String("submit")
			if submit == "" {
				submit = "Send"
			}
			return execute(formTmpl, map[string]any{"Action": p.String("action"), "Method": method, "Fields": fields, "Submit": submit})
		},
	}
}

var accordionTmpl = mustTemplate("accordion", `<div class="pb-accordion">{{ range .Items }}`+
	`<details><summary>{{ .Title }}</summary><div>{{ .Body }}</div></details>{{ end }}</div>`)

func Accordion() registry.Definition {
	return registry.Definition{
		ID:       "accordion",
		Name:     "Accordion",
		Category: registry.CategoryInteractive,
		Icon:     "chevrons-down",
		DefaultProps: domain.Props{"items": []any{
			map[string]any{"title": "Section 1", "body": "Content for section 1"},
			map[string]any{"title": "Section 2", "body": "Content for section 2"},
		}},
		PropSchema: schema(map[string]any{
			"items": list(schema(map[string]any{"title": str(), "body": str()}, "title")),
		}),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			type item struct{ Title, Body string }
			var items []item
			for _, raw := range p.Items("items") {
				i := domain.Props(raw)
				items = append(items, item{Title: i.String("title"), Body: i.String("body")})
			}
			return execute(accordionTmpl, map[string]any{"Items": items})
		},
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
