package render_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/components"
	"pagebuilder/internal/dnd"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/layout"
	"pagebuilder/internal/registry"
	"pagebuilder/internal/render"
	"pagebuilder/internal/selection"
)

type fixture struct {
	m      *layout.Mutator
	s      domain.PageSchema
	col    domain.Path
	comp   domain.Path
	reg    *registry.Registry
	sel    *selection.State
	drag   *dnd.Coordinator
	editor *render.Renderer
	front  *render.Renderer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := registry.New()
	components.RegisterAll(reg)
	m := layout.New(layout.NewCounterSource(), reg.GetDefaultProps)
	s, sec := m.AddSection(domain.PageSchema{}, "")
	s, row := m.AddRow(s, sec.SectionID, []float64{8, 4})
	col := domain.ColumnPath(row.SectionID, row.RowID, "column-1")
	s, comp := m.AddComponent(s, col, -1, "heading", domain.Props{"text": "Welcome"})
	s = m.UpdateSetting(s, comp, "textAlign", "center")

	f := &fixture{m: m, s: s, col: col, comp: comp, reg: reg, sel: selection.New(), drag: dnd.New(m)}
	f.editor = &render.Renderer{Registry: reg, Mode: render.Editor, Selection: f.sel, Drag: f.drag}
	f.front = &render.Renderer{Registry: reg, Mode: render.Frontend}
	return f
}

func TestRender_SameContentInBothModes(t *testing.T) {
	f := newFixture(t)
	n, ok := domain.Resolve(f.s, f.comp)
	require.True(t, ok)

	assert.Equal(t, f.front.Content(*n.Component), f.editor.Content(*n.Component))

	ed, err := f.editor.RenderPage(f.s)
	require.NoError(t, err)
	fr, err := f.front.RenderPage(f.s)
	require.NoError(t, err)

	for _, out := range []template.HTML{ed, fr} {
		assert.Contains(t, string(out), "<h2>Welcome</h2>")
		assert.Contains(t, string(out), "flex: 0 0 66.6667%; max-width: 66.6667%;")
		assert.Contains(t, string(out), "text-align: center")
	}
}

func TestRender_FrontendHasNoAffordances(t *testing.T) {
	f := newFixture(t)
	out, err := f.front.RenderPage(f.s)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "data-pb-path")
	assert.NotContains(t, string(out), "pb-controls")
	assert.NotContains(t, string(out), "pb-dropzone")
}

func TestRender_EditorAffordances(t *testing.T) {
	f := newFixture(t)
	f.sel.Select(f.comp)
	require.True(t, f.drag.DragStart(dnd.NewComponent("text")))
	f.drag.DragOver(dnd.Target{Path: f.col.Parent()})

	out, err := f.editor.RenderPage(f.s)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `data-pb-path="`+f.comp.String()+`"`)
	assert.Contains(t, html, "pb-selected")
	assert.Contains(t, html, "pb-drop-active")
	assert.Contains(t, html, "pb-drag-handle")
	assert.Contains(t, html, `data-pb-action="delete"`)
	assert.Equal(t, 1, strings.Count(html, "pb-selected"))
}

func TestRender_EmptySection(t *testing.T) {
	f := newFixture(t)
	s, _ := f.m.AddSection(domain.PageSchema{}, domain.SectionFullWidth)

	ed, err := f.editor.RenderPage(s)
	require.NoError(t, err)
	assert.Contains(t, string(ed), "pb-dropzone--empty")
	assert.Contains(t, string(ed), "pb-section--full-width")

	fr, err := f.front.RenderPage(s)
	require.NoError(t, err)
	assert.NotContains(t, string(fr), "<section")
}

func TestRender_FrontendFallbackWithEmptyRegistry(t *testing.T) {
	f := newFixture(t)
	s, _ := f.m.AddComponent(f.s, f.col, -1, "carousel", domain.Props{})

	bare := &render.Renderer{Registry: registry.New(), Mode: render.Frontend}
	out, err := bare.RenderPage(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h2>Welcome</h2>")
	assert.Contains(t, string(out), "Component: carousel")

	nilReg := &render.Renderer{Mode: render.Frontend}
	out2, err := nilReg.RenderPage(s)
	require.NoError(t, err)
	assert.Equal(t, out, out2)
}

func TestRender_EmptyRegistrySameContentInBothModes(t *testing.T) {
	f := newFixture(t)
	s, _ := f.m.AddComponent(f.s, f.col, -1, "carousel", domain.Props{})

	reg := registry.New()
	editor := &render.Renderer{Registry: reg, Mode: render.Editor, Selection: f.sel, Drag: f.drag}
	front := &render.Renderer{Registry: reg, Mode: render.Frontend}

	domain.Walk(s, func(p domain.Path, n domain.Node) bool {
		if n.Component != nil {
			assert.Equal(t, front.Content(*n.Component), editor.Content(*n.Component), p.String())
		}
		return true
	})

	out, err := editor.RenderPage(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h2>Welcome</h2>")
	assert.Contains(t, string(out), "Component: carousel")
	assert.NotContains(t, string(out), "Unknown component")
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name string
		c    domain.Component
		want string
	}{
		{"heading", domain.Component{Type: "heading", Props: domain.Props{"text": "<b>T</b>", "level": 9}}, "<h6>&lt;b&gt;T&lt;/b&gt;</h6>"},
		{"text", domain.Component{Type: "text", Props: domain.Props{"content": "hi"}}, "<p>hi</p>"},
		{"image", domain.Component{Type: "image", Props: domain.Props{"src": "/a.png", "alt": "A"}}, `<img src="/a.png" alt="A">`},
		{"image without src", domain.Component{Type: "image"}, ""},
		{"button", domain.Component{Type: "button", Props: domain.Props{"label": "Go"}}, `<a class="pb-button" href="#">Go</a>`},
		{"spacer", domain.Component{Type: "spacer", Props: domain.Props{"height": 10}}, `<div class="pb-spacer" style="height: 10px"></div>`},
		{"divider", domain.Component{Type: "divider"}, `<hr class="pb-divider">`},
		{"unknown", domain.Component{Type: "map"}, `<div class="pb-unknown-component" data-type="map">Component: map</div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, template.HTML(tt.want), render.Fallback(tt.c))
		})
	}
}

func TestColumnWidth(t *testing.T) {
	assert.Equal(t, "50%", render.ColumnWidth(6))
	assert.Equal(t, "100%", render.ColumnWidth(12))
	assert.Equal(t, "33.3333%", render.ColumnWidth(4))
	assert.Equal(t, "20%", render.ColumnWidth(2.4))
	assert.Equal(t, "4.1667%", render.ColumnWidth(0.5))
	assert.Equal(t, "125%", render.ColumnWidth(15))
}

func TestStyle(t *testing.T) {
	s := domain.Settings{
		"padding":         "8px",
		"margin":          "0 auto",
		"backgroundColor": "#fff",
		"textAlign":       "left",
		"text-align":      "right",
		"color":           "red",
	}
	assert.Equal(t, template.CSS("background-color: #fff; margin: 0 auto; padding: 8px; text-align: right;"), render.Style(s))

	unsafe := domain.Settings{"margin": "0; position: fixed", "padding": "url(x)", "background-color": "blue"}
	assert.Equal(t, template.CSS("background-color: blue;"), render.Style(unsafe))
	assert.Empty(t, render.Style(nil))
}

func TestClassNamesAndID(t *testing.T) {
	f := newFixture(t)
	s := f.m.UpdateSetting(f.s, f.comp, "cssClass", "  hero   big ")
	s = f.m.UpdateSetting(s, f.comp, "cssId", "intro")

	n, _ := domain.Resolve(s, f.comp)
	assert.Equal(t, "hero big", render.ClassNames(n.Component.Settings))

	out, err := f.front.RenderPage(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `id="intro"`)
	assert.Contains(t, string(out), "pb-component pb-component--heading hero big")
}

func TestRenderComponent(t *testing.T) {
	f := newFixture(t)
	out, err := f.front.RenderComponent(domain.Component{ID: "x", Type: "text", Props: domain.Props{"content": "a\nb"}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<p>a<br>b</p>")
	assert.Contains(t, string(out), `data-pb-type="text"`)
}

func TestDocument(t *testing.T) {
	doc, err := render.Document("A & B", template.HTML("<p>x</p>"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc), "<!DOCTYPE html>"))
	assert.Contains(t, string(doc), "<title>A &amp; B</title>")
	assert.Contains(t, string(doc), "<p>x</p>")
}

func TestParseMode(t *testing.T) {
	m, err := render.ParseMode("editor")
	require.NoError(t, err)
	assert.Equal(t, render.Editor, m)
	_, err = render.ParseMode("print")
	assert.Error(t, err)
}
