package components

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/registry"
)

var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func markdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownInstance
}

// RenderMarkdown converts GitHub-flavoured markdown to HTML. Raw HTML in the
// source is omitted by goldmark's default renderer.
func RenderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownParser().Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func Markdown() registry.Definition {
	return registry.Definition{
		ID:           "markdown",
		Name:         "Markdown",
		Category:     registry.CategoryContent,
		Icon:         "file-text",
		DefaultProps: domain.Props{"source": "## Title\n\nSome *markdown* text."},
		PropSchema:   schema(map[string]any{"source": str()}),
		Render: func(p domain.Props, _ domain.Settings) template.HTML {
			html, err := RenderMarkdown(p.String("source"))
			if err != nil {
				zap.S().Warnw("components: markdown conversion failed", "error", err)
				return registry.Placeholder("markdown")
			}
			return `<div class="pb-markdown">` + html + `</div>`
		},
	}
}
