package components

import (
	"html/template"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/registry"
)

var imageTmpl = mustTemplate("image",
	`{{ if .Src }}<img class="pb-image" src="{{ .Src }}" alt="{{ .Alt }}"{{ with .Width }} style="width: {{ . }}"{{ end }}>`+
		`{{ else }}<div class="pb-image-empty">No image selected</div>{{ end }}`)

func Image() registry.Definition {
	return registry.Definition{
		ID:           "image",
		Name:         "Image",
		Category:     registry.CategoryMedia,
		Icon:         "image",
		DefaultProps: domain.Props{"src": "", "alt": "", "width": "100%"},
		PropSchema:   schema(map[string]any{"src": str(), "alt": str(), "width": str()}),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			var width template.CSS
			if w := p.String("width"); w != "" {
				width = cssColor(w, "100%")
			}
			return execute(imageTmpl, map[string]any{"Src": p.String("src"), "Alt": p.String("alt"), "Width": width})
		},
	}
}

var videoTmpl = mustTemplate("video",
	`{{ if .URL }}<video class="pb-video" src="{{ .URL }}"{{ if .Controls }} controls{{ end }}{{ if .Autoplay }} autoplay muted{{ end }}></video>`+
		`{{ else }}<div class="pb-video-empty">No video selected</div>{{ end }}`)

func Video() registry.Definition {
	return registry.Definition{
		ID:           "video",
		Name:         "Video",
		Category:     registry.CategoryMedia,
		Icon:         "video",
		DefaultProps: domain.Props{"url": "", "controls": true, "autoplay": false},
		PropSchema:   schema(map[string]any{"url": str(), "controls": boolean(), "autoplay": boolean()}),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			return execute(videoTmpl, map[string]any{
				"URL":      p.String("url"),
				"Controls": p.Bool("controls", true),
				"Autoplay": p.Bool("autoplay", false),
			})
		},
	}
}

var iconTmpl = mustTemplate("icon",
	`<span class="pb-icon" data-icon="{{ .Name }}" style="font-size: {{ .Size }}px" aria-hidden="true"></span>`)

func Icon() registry.Definition {
	return registry.Definition{
		ID:           "icon",
		Name:         "Icon",
		Category:     registry.CategoryMedia,
		Icon:         "star",
		DefaultProps: domain.Props{"name": "star", "size": 24},
		PropSchema:   schema(map[string]any{"name": str(), "size": number(8, 256)}, "name"),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			return execute(iconTmpl, map[string]any{"Name": p.String("name"), "Size": clampInt(p, "size", 24, 8, 256)})
		},
	}
}
