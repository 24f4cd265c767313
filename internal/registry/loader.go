package registry

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"pagebuilder/internal/domain"
)

// templateFile is the on-disk form of a component defined without Go code.
//
//	id: callout
//	name: Callout
//	category: content
//	defaultProps: {title: Note, body: ""}
//	template: |
//	  <aside class="callout"><strong>{{ .Props.title }}</strong> {{ .Props.body | trunc 200 }}</aside>
type templateFile struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Category     string         `yaml:"category"`
	Icon         string         `yaml:"icon"`
	DefaultProps map[string]any `yaml:"defaultProps"`
	PropSchema   map[string]any `yaml:"propSchema"`
	Template     string         `yaml:"template"`
}

// TemplateData is what a definition template is executed with.
type TemplateData struct {
	Props    domain.Props
	Settings domain.Settings
}

// IsDefinitionFile reports whether path looks like a template definition.
func IsDefinitionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFile parses one template definition.
func LoadFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read definition: %w", err)
	}
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Definition{}, fmt.Errorf("parse definition %s: %w", filepath.Base(path), err)
	}
	if f.ID == "" {
		return Definition{}, fmt.Errorf("definition %s: missing id", filepath.Base(path))
	}
	if strings.TrimSpace(f.Template) == "" {
		return Definition{}, fmt.Errorf("definition %s: missing template", filepath.Base(path))
	}
	tmpl, err := template.New(f.ID).Funcs(sprig.FuncMap()).Parse(f.Template)
	if err != nil {
		return Definition{}, fmt.Errorf("compile template %s: %w", f.ID, err)
	}
	if f.Name == "" {
		f.Name = f.ID
	}
	if f.Category == "" {
		f.Category = CategoryContent
	}
	return Definition{
		ID:           f.ID,
		Name:         f.Name,
		Category:     f.Category,
		Icon:         f.Icon,
		DefaultProps: domain.Props(normalizeYAML(f.DefaultProps).(map[string]any)),
		PropSchema:   schemaOrNil(f.PropSchema),
		Render:       templateRender(f.ID, tmpl),
		Source:       path,
	}, nil
}

func schemaOrNil(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return normalizeYAML(m).(map[string]any)
}

func templateRender(id string, tmpl *template.Template) RenderFunc {
	return func(props domain.Props, settings domain.Settings) template.HTML {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, TemplateData{Props: props, Settings: settings}); err != nil {
			zap.S().Warnw("registry: template render failed", "component", id, "error", err)
			return errorPlaceholder(id, err.Error())
		}
		return template.HTML(buf.String())
	}
}

// LoadDir registers every definition file in dir, in file name order. Files
// that fail to load are skipped and reported in the joined error; the rest
// are still registered. A missing directory is not an error.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read components dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && IsDefinitionFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var errs []error
	loaded := 0
	for _, name := range names {
		def, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.Register(def)
		loaded++
	}
	r.log.Infow("registry: loaded template definitions", "dir", dir, "count", loaded, "failed", len(errs))
	return loaded, errors.Join(errs...)
}

// normalizeYAML converts yaml.v3 decoded values into JSON-shaped values so
// props from files and props from JSON schemas compare and validate alike.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	}
	return v
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeYAML(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	}
	return v
}
