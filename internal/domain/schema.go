package domain

import (
	"encoding/json"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// Section kinds shipped by the editor palette. Kind is an open string.
const (
	SectionContainer = "container"
	SectionFullWidth = "full-width"
)

// Column grid bounds.
const (
	GridUnits     = 12
	MinColumnSize = 1
	MaxColumnSize = 12
)

// PageSchema is the root of a page layout. It is created empty and replaced
// wholesale on every edit.
type PageSchema struct {
	Sections []Section `json:"sections"`
}

type Section struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Settings Settings `json:"settings"`
	Rows     []Row    `json:"rows"`
}

type Row struct {
	ID       string   `json:"id"`
	Settings Settings `json:"settings"`
	Columns  []Column `json:"columns"`
}

type Column struct {
	ID         string      `json:"id"`
	Size       float64     `json:"size"`
	Settings   Settings    `json:"settings"`
	Components []Component `json:"components"`
}

type Component struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Props    Props    `json:"props"`
	Settings Settings `json:"settings"`
}

// Settings holds layout-level values (margin, padding, background-color,
// text-align, cssClass, cssId and arbitrary extension keys).
type Settings map[string]any

// Props holds component-type specific values.
type Props map[string]any

// Clone returns a deep copy. A nil receiver yields an empty map.
func (s Settings) Clone() Settings { return Settings(cloneMap(s)) }

// Clone returns a deep copy. A nil receiver yields an empty map.
func (p Props) Clone() Props { return Props(cloneMap(p)) }

func (s Settings) String(key string) string { return stringValue(s[key]) }

func (p Props) String(key string) string { return stringValue(p[key]) }

func (p Props) Int(key string, def int) int {
	if f, ok := floatValue(p[key]); ok {
		return int(f)
	}
	return def
}

func (p Props) Float(key string, def float64) float64 {
	if f, ok := floatValue(p[key]); ok {
		return f
	}
	return def
}

func (p Props) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Strings reads a list prop. Non-string items are formatted with their
// JSON representation.
func (p Props) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringValue(item))
		}
		return out
	}
	return nil
}

// Items reads a list of objects (accordion entries, form fields).
func (p Props) Items(key string) []map[string]any {
	list, ok := p[key].([]any)
	if !ok {
		if typed, ok := p[key].([]map[string]any); ok {
			return typed
		}
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Settings:
		return Settings(cloneMap(t))
	case Props:
		return Props(cloneMap(t))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, item := range t {
			out[i] = cloneMap(item)
		}
		return out
	default:
		return v
	}
}

// ClampSize clamps a column size into [MinColumnSize, MaxColumnSize].
// NaN clamps to the minimum.
func ClampSize(size float64) float64 {
	if math.IsNaN(size) || size < MinColumnSize {
		return MinColumnSize
	}
	if size > MaxColumnSize {
		return MaxColumnSize
	}
	return size
}

// Clone returns a deep copy of the whole tree.
func (s PageSchema) Clone() PageSchema {
	out := PageSchema{Sections: make([]Section, len(s.Sections))}
	for i, sec := range s.Sections {
		out.Sections[i] = sec.Clone()
	}
	return out
}

func (s Section) Clone() Section {
	out := s
	out.Settings = s.Settings.Clone()
	out.Rows = make([]Row, len(s.Rows))
	for i, r := range s.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

func (r Row) Clone() Row {
	out := r
	out.Settings = r.Settings.Clone()
	out.Columns = make([]Column, len(r.Columns))
	for i, c := range r.Columns {
		out.Columns[i] = c.Clone()
	}
	return out
}

func (c Column) Clone() Column {
	out := c
	out.Settings = c.Settings.Clone()
	out.Components = make([]Component, len(c.Components))
	for i, comp := range c.Components {
		out.Components[i] = comp.Clone()
	}
	return out
}

func (c Component) Clone() Component {
	out := c
	out.Props = c.Props.Clone()
	out.Settings = c.Settings.Clone()
	return out
}

// Equal reports structural equality. Nil and empty sequences or maps are
// treated as equal.
func Equal(a, b PageSchema) bool {
	if len(a.Sections) != len(b.Sections) {
		return false
	}
	for i := range a.Sections {
		if !sectionEqual(a.Sections[i], b.Sections[i]) {
			return false
		}
	}
	return true
}

func sectionEqual(a, b Section) bool {
	if a.ID != b.ID || a.Kind != b.Kind || len(a.Rows) != len(b.Rows) {
		return false
	}
	if !valueEqual(map[string]any(a.Settings), map[string]any(b.Settings)) {
		return false
	}
	for i := range a.Rows {
		if !rowEqual(a.Rows[i], b.Rows[i]) {
			return false
		}
	}
	return true
}

func rowEqual(a, b Row) bool {
	if a.ID != b.ID || len(a.Columns) != len(b.Columns) {
		return false
	}
	if !valueEqual(map[string]any(a.Settings), map[string]any(b.Settings)) {
		return false
	}
	for i := range a.Columns {
		if !columnEqual(a.Columns[i], b.Columns[i]) {
			return false
		}
	}
	return true
}

func columnEqual(a, b Column) bool {
	if a.ID != b.ID || a.Size != b.Size || len(a.Components) != len(b.Components) {
		return false
	}
	if !valueEqual(map[string]any(a.Settings), map[string]any(b.Settings)) {
		return false
	}
	for i := range a.Components {
		ca, cb := a.Components[i], b.Components[i]
		if ca.ID != cb.ID || ca.Type != cb.Type {
			return false
		}
		if !valueEqual(map[string]any(ca.Props), map[string]any(cb.Props)) ||
			!valueEqual(map[string]any(ca.Settings), map[string]any(cb.Settings)) {
			return false
		}
	}
	return true
}

// valueEqual compares open-ended values, normalizing numbers so that a
// schema read back from JSON equals the one that was written.
func valueEqual(a, b any) bool {
	if isNumber(a) || isNumber(b) {
		fa, _ := floatValue(a)
		fb, _ := floatValue(b)
		return isNumber(a) && isNumber(b) && fa == fb
	}
	switch ta := a.(type) {
	case map[string]any:
		tb, ok := asMap(b)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, v := range ta {
			w, ok := tb[k]
			if !ok || !valueEqual(v, w) {
				return false
			}
		}
		return true
	case Settings:
		return valueEqual(map[string]any(ta), b)
	case Props:
		return valueEqual(map[string]any(ta), b)
	case []any, []string:
		la, _ := asList(ta)
		lb, ok := asList(b)
		if !ok || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !valueEqual(la[i], lb[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, uint64, json.Number:
		return true
	}
	return false
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Settings:
		return t, true
	case Props:
		return t, true
	case nil:
		return nil, false
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// Keys returns the map's keys in sorted order.
func (s Settings) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// ValueEqual compares two open-ended settings or props values the way Equal
// does: numbers by value, nil and empty maps alike.
func ValueEqual(a, b any) bool { return valueEqual(a, b) }
