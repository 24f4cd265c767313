package components

import (
	"html/template"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/registry"
)

var spacerTmpl = mustTemplate("spacer", `<div class="pb-spacer" style="height: {{ .Height }}px"></div>`)

func Spacer() registry.Definition {
	return registry.Definition{
		ID:           "spacer",
		Name:         "Spacer",
		Category:     registry.CategoryLayout,
		Icon:         "move-vertical",
		DefaultProps: domain.Props{"height": 40},
		PropSchema:   schema(map[string]any{"height": number(0, 1000)}),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			return execute(spacerTmpl, map[string]any{"Height": clampInt(p, "height", 40, 0, 1000)})
		},
	}
}

var dividerTmpl = mustTemplate("divider",
	`<hr class="pb-divider" style="border: none; border-top: {{ .Thickness }}px {{ .Style }} {{ .Color }}">`)

func Divider() registry.Definition {
	return registry.Definition{
		ID:           "divider",
		Name:         "Divider",
		Category:     registry.CategoryLayout,
		Icon:         "minus",
		DefaultProps: domain.Props{"style": "solid", "color": "#e5e7eb", "thickness": 1},
		PropSchema: schema(map[string]any{
			"style":     enum("solid", "dashed", "dotted"),
			"color":     str(),
			"thickness": number(1, 20),
		}),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			style := p.String("style")
			switch style {
			case "solid", "dashed", "dotted":
			default:
				style = "solid"
			}
			return execute(dividerTmpl, map[string]any{
				"Style":     style,
				"Color":     cssColor(p.String("color"), "#e5e7eb"),
				"Thickness": clampInt(p, "thickness", 1, 1, 20),
			})
		},
	}
}

// cssColor passes a color through as a typed CSS value when it is free of
// characters that could end the declaration.
func cssColor(v, def string) template.CSS {
	if v == "" {
		return template.CSS(def)
	}
	for _, r := range v {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\'', '\\':
			return template.CSS(def)
		}
	}
	return template.CSS(v)
}
