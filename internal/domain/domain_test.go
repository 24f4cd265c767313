package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/domain"
)

func sampleSchema() domain.PageSchema {
	return domain.PageSchema{Sections: []domain.Section{{
		ID:       "s1",
		Kind:     domain.SectionContainer,
		Settings: domain.Settings{"padding": "8px"},
		Rows: []domain.Row{{
			ID:       "r1",
			Settings: domain.Settings{},
			Columns: []domain.Column{
				{ID: "c1", Size: 6, Settings: domain.Settings{}, Components: []domain.Component{{
					ID: "k1", Type: "text", Props: domain.Props{"content": "hello"}, Settings: domain.Settings{},
				}}},
				{ID: "c2", Size: 6, Settings: domain.Settings{}, Components: []domain.Component{}},
			},
		}},
	}}}
}

// ─────────────────────────────────────────────────────────────
// Resolve
// ─────────────────────────────────────────────────────────────

func TestResolve_EachKind(t *testing.T) {
	s := sampleSchema()

	n, ok := domain.Resolve(s, domain.SectionPath("s1"))
	require.True(t, ok)
	assert.Equal(t, "s1", n.Section.ID)

	n, ok = domain.Resolve(s, domain.RowPath("s1", "r1"))
	require.True(t, ok)
	assert.Equal(t, "r1", n.Row.ID)
	assert.Equal(t, "s1", n.Section.ID)

	n, ok = domain.Resolve(s, domain.ColumnPath("s1", "r1", "c2"))
	require.True(t, ok)
	assert.Equal(t, 1, n.Index)

	n, ok = domain.Resolve(s, domain.ComponentPath("s1", "r1", "c1", "k1"))
	require.True(t, ok)
	assert.Equal(t, "hello", n.Component.Props.String("content"))
}

func TestResolve_MissingLinkIsNotFound(t *testing.T) {
	s := sampleSchema()
	cases := []domain.Path{
		domain.SectionPath("nope"),
		domain.RowPath("s1", "nope"),
		domain.ColumnPath("s1", "r1", "nope"),
		domain.ComponentPath("s1", "r1", "c2", "k1"), // component lives in c1
		{Kind: "bogus", SectionID: "s1"},
		{},
	}
	for _, p := range cases {
		_, ok := domain.Resolve(s, p)
		assert.False(t, ok, "path %v", p)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	s := sampleSchema()
	p := domain.ComponentPath("s1", "r1", "c1", "k1")
	a, okA := domain.Resolve(s, p)
	b, okB := domain.Resolve(s, p)
	assert.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}

func TestResolve_ReturnsCopies(t *testing.T) {
	s := sampleSchema()
	n, ok := domain.Resolve(s, domain.SectionPath("s1"))
	require.True(t, ok)
	n.Section.ID = "changed"
	assert.Equal(t, "s1", s.Sections[0].ID)
}

// ─────────────────────────────────────────────────────────────
// Path
// ─────────────────────────────────────────────────────────────

func TestPath_Contains(t *testing.T) {
	sec := domain.SectionPath("s1")
	comp := domain.ComponentPath("s1", "r1", "c1", "k1")

	assert.True(t, sec.Contains(comp))
	assert.True(t, comp.Contains(comp))
	assert.False(t, comp.Contains(sec))
	assert.False(t, domain.SectionPath("s2").Contains(comp))
	assert.True(t, domain.Path{}.Contains(comp))
}

func TestPath_ParentAndValid(t *testing.T) {
	comp := domain.ComponentPath("s1", "r1", "c1", "k1")
	assert.Equal(t, domain.ColumnPath("s1", "r1", "c1"), comp.Parent())
	assert.Equal(t, domain.Path{}, domain.SectionPath("s1").Parent())

	assert.True(t, comp.Valid())
	assert.False(t, domain.Path{Kind: domain.KindRow, SectionID: "s1"}.Valid())
	assert.False(t, domain.Path{Kind: domain.KindSection, SectionID: "s1", RowID: "r1"}.Valid())
}

func TestPath_StringRoundTrip(t *testing.T) {
	for _, p := range []domain.Path{
		{},
		domain.SectionPath("s1"),
		domain.ColumnPath("s1", "r1", "c1"),
		domain.ComponentPath("s1", "r1", "c1", "k1"),
	} {
		back, ok := domain.ParsePath(p.String())
		require.True(t, ok, p.String())
		assert.Equal(t, p, back)
	}
	_, ok := domain.ParsePath("row:s1")
	assert.False(t, ok)
}

// ─────────────────────────────────────────────────────────────
// Serialization
// ─────────────────────────────────────────────────────────────

func TestSchema_JSONRoundTrip(t *testing.T) {
	s := sampleSchema()
	data, err := domain.MarshalSchema(s)
	require.NoError(t, err)

	back, err := domain.UnmarshalSchema(data)
	require.NoError(t, err)
	assert.True(t, domain.Equal(s, back))
	assert.Equal(t, []float64{6, 6}, []float64{back.Sections[0].Rows[0].Columns[0].Size, back.Sections[0].Rows[0].Columns[1].Size})
	assert.Equal(t, "hello", back.Sections[0].Rows[0].Columns[0].Components[0].Props["content"])
}

func TestUnmarshalSchema_NormalizesMissingFields(t *testing.T) {
	s, err := domain.UnmarshalSchema([]byte(`{"sections":[{"id":"s1","rows":null}]}`))
	require.NoError(t, err)
	require.Len(t, s.Sections, 1)
	assert.Equal(t, domain.SectionContainer, s.Sections[0].Kind)
	assert.NotNil(t, s.Sections[0].Rows)
	assert.NotNil(t, s.Sections[0].Settings)

	empty, err := domain.UnmarshalSchema(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Sections)

	_, err = domain.UnmarshalSchema([]byte(`{`))
	assert.Error(t, err)
}

func TestEqual_NumbersAndNilMaps(t *testing.T) {
	a := domain.PageSchema{Sections: []domain.Section{{ID: "s1", Kind: "container", Settings: domain.Settings{"gap": 4}}}}
	b := domain.PageSchema{Sections: []domain.Section{{ID: "s1", Kind: "container", Settings: domain.Settings{"gap": float64(4)}, Rows: []domain.Row{}}}}
	assert.True(t, domain.Equal(a, b))

	b.Sections[0].Settings["gap"] = "4"
	assert.False(t, domain.Equal(a, b))
}

func TestClone_IsDeep(t *testing.T) {
	s := sampleSchema()
	c := s.Clone()
	c.Sections[0].Rows[0].Columns[0].Components[0].Props["content"] = "changed"
	c.Sections[0].Settings["padding"] = "0"
	assert.Equal(t, "hello", s.Sections[0].Rows[0].Columns[0].Components[0].Props["content"])
	assert.Equal(t, "8px", s.Sections[0].Settings["padding"])
}

func TestValidate_DuplicateIDs(t *testing.T) {
	s := sampleSchema()
	require.NoError(t, domain.Validate(s))

	s.Sections[0].Rows[0].Columns[1].ID = "c1"
	assert.ErrorContains(t, domain.Validate(s), "duplicate id")
}

func TestWalk_RenderOrder(t *testing.T) {
	assert.Equal(t, []string{"s1", "r1", "c1", "k1", "c2"}, domain.IDs(sampleSchema()))
}

// ─────────────────────────────────────────────────────────────
// Grid helpers
// ─────────────────────────────────────────────────────────────

func TestRowTemplates_SumToGrid(t *testing.T) {
	for _, tpl := range domain.RowTemplates() {
		sum := 0.0
		for _, c := range tpl.Columns {
			sum += c
		}
		assert.InDelta(t, domain.GridUnits, sum, 1e-9, tpl.Name)
	}
	cols, ok := domain.LookupRowTemplate("1-2-1")
	require.True(t, ok)
	assert.Equal(t, []float64{3, 6, 3}, cols)
	_, ok = domain.LookupRowTemplate("7-7")
	assert.False(t, ok)
}

func TestClampSize(t *testing.T) {
	assert.Equal(t, 1.0, domain.ClampSize(0))
	assert.Equal(t, 1.0, domain.ClampSize(-3))
	assert.Equal(t, 12.0, domain.ClampSize(20))
	assert.Equal(t, 2.4, domain.ClampSize(2.4))
}

func TestProps_Accessors(t *testing.T) {
	p := domain.Props{"level": float64(3), "on": "true", "items": []any{"a", 2.0}, "n": 7}
	assert.Equal(t, 3, p.Int("level", 1))
	assert.Equal(t, 1, p.Int("missing", 1))
	assert.True(t, p.Bool("on", false))
	assert.Equal(t, []string{"a", "2"}, p.Strings("items"))
	assert.Equal(t, "7", p.String("n"))
}
