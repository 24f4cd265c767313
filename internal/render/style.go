package render

import (
	"html/template"
	"math"
	"sort"
	"strconv"
	"strings"

	"pagebuilder/internal/domain"
)

// styleKeys maps accepted settings keys to the CSS property they set. Both
// the CSS spelling and the camelCase spelling the settings panel writes are
// accepted.
var styleKeys = map[string]string{
	"margin":           "margin",
	"padding":          "padding",
	"background-color": "background-color",
	"backgroundColor":  "background-color",
	"text-align":       "text-align",
	"textAlign":        "text-align",
}

// ColumnWidth maps a grid size to a percentage of the row width. The stored
// size is used as is; clamping belongs to the resize edit.
func ColumnWidth(size float64) string {
	pct := size / domain.GridUnits * 100
	return strconv.FormatFloat(roundTo(pct, 4), 'f', -1, 64) + "%"
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Style turns the layout settings of a node into an inline style value.
// Values are passed through verbatim; values that could escape the
// declaration are dropped. Properties are emitted in sorted order.
func Style(s domain.Settings) template.CSS {
	decls := map[string]string{}
	for key, prop := range styleKeys {
		v := strings.TrimSpace(s.String(key))
		if v == "" || !safeCSSValue(v) {
			continue
		}
		// The CSS spelling wins over camelCase when both are set.
		if _, seen := decls[prop]; seen && key != prop {
			continue
		}
		decls[prop] = v
	}
	return joinDecls(decls)
}

func joinDecls(decls map[string]string) template.CSS {
	props := make([]string, 0, len(decls))
	for p := range decls {
		props = append(props, p)
	}
	sort.Strings(props)
	var b strings.Builder
	for _, p := range props {
		b.WriteString(p)
		b.WriteString(": ")
		b.WriteString(decls[p])
		b.WriteString("; ")
	}
	return template.CSS(strings.TrimSpace(b.String()))
}

func columnStyle(c domain.Column) template.CSS {
	w := ColumnWidth(c.Size)
	base := "flex: 0 0 " + w + "; max-width: " + w + ";"
	if extra := Style(c.Settings); extra != "" {
		return template.CSS(base + " " + string(extra))
	}
	return template.CSS(base)
}

func safeCSSValue(v string) bool {
	if strings.ContainsAny(v, ";{}<>\"'\\") {
		return false
	}
	lower := strings.ToLower(v)
	return !strings.Contains(lower, "url(") && !strings.Contains(lower, "expression(")
}

// ClassNames returns the custom classes from the cssClass setting.
func ClassNames(s domain.Settings) string {
	return strings.Join(strings.Fields(s.String("cssClass")), " ")
}

// ElementID returns the cssId setting, used as the element id attribute.
func ElementID(s domain.Settings) string {
	return strings.TrimSpace(s.String("cssId"))
}

func classes(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
