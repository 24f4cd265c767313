package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalSchema encodes s as JSON. Empty sequences are written as [] and
// empty maps as {} so the stored content field is stable.
func MarshalSchema(s PageSchema) ([]byte, error) {
	return json.Marshal(Normalize(s))
}

// MarshalSchemaIndent is MarshalSchema with two-space indentation.
func MarshalSchemaIndent(s PageSchema) ([]byte, error) {
	return json.MarshalIndent(Normalize(s), "", "  ")
}

// UnmarshalSchema decodes a schema from JSON. Empty input yields an empty
// schema.
func UnmarshalSchema(data []byte) (PageSchema, error) {
	var s PageSchema
	if len(bytes.TrimSpace(data)) == 0 {
		return Normalize(s), nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return PageSchema{}, fmt.Errorf("decode page schema: %w", err)
	}
	return Normalize(s), nil
}

// Normalize returns a copy of s with every nil sequence or map replaced by
// an empty one and every missing section kind set to SectionContainer.
func Normalize(s PageSchema) PageSchema {
	out := PageSchema{Sections: make([]Section, len(s.Sections))}
	for i, sec := range s.Sections {
		if sec.Kind == "" {
			sec.Kind = SectionContainer
		}
		sec.Settings = orEmpty(sec.Settings)
		rows := make([]Row, len(sec.Rows))
		for j, row := range sec.Rows {
			row.Settings = orEmpty(row.Settings)
			cols := make([]Column, len(row.Columns))
			for k, col := range row.Columns {
				col.Settings = orEmpty(col.Settings)
				comps := make([]Component, len(col.Components))
				for l, comp := range col.Components {
					if comp.Props == nil {
						comp.Props = Props{}
					}
					comp.Settings = orEmpty(comp.Settings)
					comps[l] = comp
				}
				col.Components = comps
				cols[k] = col
			}
			row.Columns = cols
			rows[j] = row
		}
		sec.Rows = rows
		out.Sections[i] = sec
	}
	return out
}

func orEmpty(s Settings) Settings {
	if s == nil {
		return Settings{}
	}
	return s
}

// Validate reports schemas that break tree invariants: empty ids and ids
// used more than once anywhere in the tree.
func Validate(s PageSchema) error {
	seen := make(map[string]Path)
	var err error
	Walk(s, func(p Path, _ Node) bool {
		if err != nil {
			return false
		}
		id := p.ID()
		if id == "" {
			err = fmt.Errorf("%s under %s has an empty id", p.Kind, p.Parent())
			return false
		}
		if prev, dup := seen[id]; dup {
			err = fmt.Errorf("duplicate id %q at %s and %s", id, prev, p)
			return false
		}
		seen[id] = p
		return true
	})
	return err
}
