package domain

// RowTemplate is a named list of column sizes offered by the "add row"
// palette. Every built-in template sums to GridUnits.
type RowTemplate struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Columns []float64 `json:"columns"`
}

var rowTemplates = []RowTemplate{
	{Name: "1", Label: "1 column", Columns: []float64{12}},
	{Name: "1-1", Label: "2 columns", Columns: []float64{6, 6}},
	{Name: "1-1-1", Label: "3 columns", Columns: []float64{4, 4, 4}},
	{Name: "1-1-1-1", Label: "4 columns", Columns: []float64{3, 3, 3, 3}},
	{Name: "1-2", Label: "1/3 + 2/3", Columns: []float64{4, 8}},
	{Name: "2-1", Label: "2/3 + 1/3", Columns: []float64{8, 4}},
	{Name: "1-2-1", Label: "1/4 + 1/2 + 1/4", Columns: []float64{3, 6, 3}},
	{Name: "1-1-1-1-1", Label: "5 columns", Columns: []float64{2.4, 2.4, 2.4, 2.4, 2.4}},
	{Name: "1-1-1-1-1-1", Label: "6 columns", Columns: []float64{2, 2, 2, 2, 2, 2}},
}

// RowTemplates returns a copy of the built-in templates in palette order.
func RowTemplates() []RowTemplate {
	out := make([]RowTemplate, len(rowTemplates))
	for i, t := range rowTemplates {
		out[i] = RowTemplate{Name: t.Name, Label: t.Label, Columns: append([]float64(nil), t.Columns...)}
	}
	return out
}

// LookupRowTemplate returns the column sizes for a template name.
func LookupRowTemplate(name string) ([]float64, bool) {
	for _, t := range rowTemplates {
		if t.Name == name {
			return append([]float64(nil), t.Columns...), true
		}
	}
	return nil, false
}
