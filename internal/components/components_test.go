package components_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagebuilder/internal/components"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/registry"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.NewWithLogger(zap.NewNop().Sugar())
	components.RegisterAll(r)
	return r
}

func TestRegisterAll_IsIdempotent(t *testing.T) {
	r := newRegistry(t)
	n := r.Len()
	components.RegisterAll(r)
	assert.Equal(t, n, r.Len())
	assert.Equal(t, []string{"layout", "content", "media", "interactive"}, r.Categories())
}

func TestBuiltins_DefaultPropsValidate(t *testing.T) {
	r := newRegistry(t)
	for _, def := range r.GetAll() {
		assert.NoError(t, r.Validate(def.ID, r.GetDefaultProps(def.ID)), def.ID)
		out := r.Render(def.ID, r.GetDefaultProps(def.ID), nil)
		assert.NotContains(t, string(out), "pb-unknown-component", def.ID)
	}
}

func TestHeading(t *testing.T) {
	r := newRegistry(t)
	assert.Equal(t, "<h1>Hi</h1>", string(r.Render("heading", domain.Props{"text": "Hi", "level": 1}, nil)))
	assert.Equal(t, "<h6>x</h6>", string(r.Render("heading", domain.Props{"text": "x", "level": 42}, nil)))
	assert.Contains(t, string(r.Render("heading", domain.Props{"text": "<i>"}, nil)), "&lt;i&gt;")
	assert.Error(t, r.Validate("heading", domain.Props{"text": "x", "level": 0}))
}

func TestText_LineBreaks(t *testing.T) {
	r := newRegistry(t)
	out := r.Render("text", domain.Props{"content": "a\nb<c"}, nil)
	assert.Equal(t, "<p>a<br>b&lt;c</p>", string(out))
}

func TestMarkdown(t *testing.T) {
	r := newRegistry(t)
	out := string(r.Render("markdown", domain.Props{"source": "# Title\n\n- [x] done\n\n<script>x</script>"}, nil))
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, `type="checkbox"`)
	assert.NotContains(t, out, "<script>")
}

func TestButton_RejectsUnsafeHref(t *testing.T) {
	r := newRegistry(t)
	out := string(r.Render("button", domain.Props{"label": "Go", "href": "javascript:alert(1)"}, nil))
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "pb-button-primary")
}

func TestList(t *testing.T) {
	r := newRegistry(t)
	out := string(r.Render("list", domain.Props{"items": []any{"a", "b"}, "ordered": true}, nil))
	assert.Equal(t, "<ol><li>a</li><li>b</li></ol>", out)
}

func TestForm_FieldsAndFallbackType(t *testing.T) {
	r := newRegistry(t)
	out := string(r.Render("form", domain.Props{
		"method": "GET",
		"fields": []any{map[string]any{"name": "q", "type": "weird"}},
	}, nil))
	assert.Contains(t, out, `method="get"`)
	assert.Contains(t, out, `<input type="text" name="q">`)
}

func TestAccordion(t *testing.T) {
	r := newRegistry(t)
	out := string(r.Render("accordion", domain.Props{"items": []any{map[string]any{"title": "T", "body": "B"}}}, nil))
	assert.Contains(t, out, "<summary>T</summary>")
}

func TestDivider_DropsUnsafeColor(t *testing.T) {
	r := newRegistry(t)
	out := string(r.Render("divider", domain.Props{"color": "red; background: url(x)"}, nil))
	assert.NotContains(t, out, "url(")
	require.Contains(t, out, "#e5e7eb")
}
