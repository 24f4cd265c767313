package layout_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/layout"
)

func newMutator() *layout.Mutator {
	defaults := func(t string) domain.Props {
		if t == "text" {
			return domain.Props{"content": "Enter your text here"}
		}
		return domain.Props{}
	}
	return layout.New(layout.NewCounterSource(), defaults)
}

// fixture builds: section-1 > row-1 > [column-1, column-2, column-3] (4,4,4)
// with two text components in column-1.
func fixture(t *testing.T, m *layout.Mutator) (domain.PageSchema, domain.Path) {
	t.Helper()
	s, sec := m.AddSection(domain.PageSchema{}, "")
	s, row := m.AddRow(s, sec.SectionID, []float64{4, 4, 4})
	require.Equal(t, "row-1", row.RowID)
	col := domain.ColumnPath(sec.SectionID, row.RowID, "column-1")
	s, _ = m.AddComponent(s, col, -1, "text", domain.Props{"content": "A"})
	s, _ = m.AddComponent(s, col, -1, "text", domain.Props{"content": "B"})
	return s, col
}

func contents(t *testing.T, s domain.PageSchema, col domain.Path) []string {
	t.Helper()
	n, ok := domain.Resolve(s, col)
	require.True(t, ok)
	var out []string
	for _, c := range n.Column.Components {
		out = append(out, c.Props.String("content"))
	}
	return out
}

// ─────────────────────────────────────────────────────────────
// Ids
// ─────────────────────────────────────────────────────────────

func TestCounterSource_PerPrefix(t *testing.T) {
	c := layout.NewCounterSource()
	assert.Equal(t, "section-1", c.NewID("section"))
	assert.Equal(t, "row-1", c.NewID("row"))
	assert.Equal(t, "section-2", c.NewID("section"))
}

func TestUUIDSource_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := layout.UUIDSource{}.NewID("component")
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestMutator_SkipsIDsAlreadyInSchema(t *testing.T) {
	m := newMutator()
	s, _ := m.AddSectionWithID(domain.PageSchema{}, "section-1", "")
	s, p := m.AddSection(s, "")
	assert.Equal(t, "section-2", p.SectionID)
	assert.NoError(t, domain.Validate(s))
}

func TestMutator_GeneratedIDsAreGloballyUnique(t *testing.T) {
	// The second id per prefix collides with the first.
	calls := map[string]int{}
	m := layout.New(layout.IDSourceFunc(func(prefix string) string {
		calls[prefix]++
		n := calls[prefix]
		if n == 2 {
			n = 1
		}
		return fmt.Sprintf("%s-%d", prefix, n)
	}), nil)
	s, sec := m.AddSection(domain.PageSchema{}, "")
	s, _ = m.AddSection(s, "")
	s, _ = m.AddRow(s, sec.SectionID, []float64{6, 6})
	assert.NoError(t, domain.Validate(s))
	assert.Equal(t, []string{"section-1", "section-3"}, sectionIDs(s))
}

func TestMutator_RepeatingIDSourceStillUnique(t *testing.T) {
	tests := map[string]layout.IDSourceFunc{
		"constant": func(string) string { return "fixed" },
		"empty":    func(string) string { return "" },
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			m := layout.New(src, nil)
			s, sec := m.AddSection(domain.PageSchema{}, "")
			s, _ = m.AddSection(s, "")
			s, _ = m.AddSection(s, "")
			s, _ = m.AddRow(s, sec.SectionID, []float64{4, 4, 4})
			require.Len(t, s.Sections, 3)
			assert.NoError(t, domain.Validate(s))
		})
	}

	m := layout.New(layout.IDSourceFunc(func(string) string { return "fixed" }), nil)
	s, _ := m.AddSection(domain.PageSchema{}, "")
	s, _ = m.AddSection(s, "")
	s, _ = m.AddSection(s, "")
	assert.Equal(t, []string{"fixed", "fixed-2", "fixed-3"}, sectionIDs(s))
}

// ─────────────────────────────────────────────────────────────
// Sections
// ─────────────────────────────────────────────────────────────

func TestAddSection_AppendsEmpty(t *testing.T) {
	m := newMutator()
	s0 := domain.PageSchema{}
	s1, p := m.AddSection(s0, domain.SectionFullWidth)
	s2, _ := m.AddSection(s1, "")

	assert.Empty(t, s0.Sections)
	require.Len(t, s2.Sections, 2)
	assert.Equal(t, domain.SectionFullWidth, s2.Sections[0].Kind)
	assert.Equal(t, domain.SectionContainer, s2.Sections[1].Kind)
	assert.NotNil(t, s2.Sections[0].Rows)
	assert.NotNil(t, s2.Sections[0].Settings)

	_, ok := domain.Resolve(s1, p)
	assert.True(t, ok, "a node resolves right after the edit that created it")
}

func TestAddSectionWithID_RejectsDuplicates(t *testing.T) {
	m := newMutator()
	s, _ := m.AddSectionWithID(domain.PageSchema{}, "hero", "")
	again, p := m.AddSectionWithID(s, "hero", "")
	assert.Equal(t, s, again)
	assert.Equal(t, domain.Path{}, p)
	_, p = m.AddSectionWithID(s, "", "")
	assert.Equal(t, domain.Path{}, p)
}

func TestInsertSection_AtIndex(t *testing.T) {
	m := newMutator()
	s, _ := m.AddSectionWithID(domain.PageSchema{}, "a", "")
	s, _ = m.AddSectionWithID(s, "b", "")
	s, p := m.InsertSection(s, 1, "")
	assert.Equal(t, []string{"a", p.SectionID, "b"}, sectionIDs(s))
	s, p = m.InsertSection(s, 99, "")
	assert.Equal(t, p.SectionID, s.Sections[3].ID)
}

func TestDuplicateSection_FreshIDs(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	out, p := m.DuplicateSection(s, col.SectionID)

	require.Len(t, out.Sections, 2)
	assert.Equal(t, p.SectionID, out.Sections[1].ID)
	assert.NoError(t, domain.Validate(out))
	dup := out.Sections[1]
	assert.Equal(t, "A", dup.Rows[0].Columns[0].Components[0].Props["content"])

	// Editing the duplicate leaves the original alone.
	dup.Rows[0].Columns[0].Components[0].Props["content"] = "changed"
	assert.Equal(t, "A", out.Sections[0].Rows[0].Columns[0].Components[0].Props["content"])
}

func TestSetSectionKind(t *testing.T) {
	m := newMutator()
	s, p := m.AddSection(domain.PageSchema{}, "")
	out := m.SetSectionKind(s, p.SectionID, domain.SectionFullWidth)
	assert.Equal(t, domain.SectionFullWidth, out.Sections[0].Kind)
	assert.Equal(t, domain.SectionContainer, s.Sections[0].Kind)
}

// ─────────────────────────────────────────────────────────────
// Rows and columns
// ─────────────────────────────────────────────────────────────

func TestAddRow_FromTemplate(t *testing.T) {
	m := newMutator()
	s, sec := m.AddSection(domain.PageSchema{}, "")
	s, p := m.AddRowFromTemplate(s, sec.SectionID, "1-2-1")
	n, ok := domain.Resolve(s, p)
	require.True(t, ok)
	var sizes []float64
	for _, c := range n.Row.Columns {
		sizes = append(sizes, c.Size)
		assert.Empty(t, c.Components)
	}
	assert.Equal(t, []float64{3, 6, 3}, sizes)

	same, p := m.AddRowFromTemplate(s, sec.SectionID, "nope")
	assert.Equal(t, s, same)
	assert.Equal(t, domain.Path{}, p)
}

func TestAddRow_ClampsAndDefaults(t *testing.T) {
	m := newMutator()
	s, sec := m.AddSection(domain.PageSchema{}, "")
	s, p := m.AddRow(s, sec.SectionID, []float64{0, 30})
	n, _ := domain.Resolve(s, p)
	assert.Equal(t, 1.0, n.Row.Columns[0].Size)
	assert.Equal(t, 12.0, n.Row.Columns[1].Size)

	s, p = m.AddRow(s, sec.SectionID, nil)
	n, _ = domain.Resolve(s, p)
	require.Len(t, n.Row.Columns, 1)
	assert.Equal(t, 12.0, n.Row.Columns[0].Size)
}

func TestDeleteColumn_Redistributes(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	middle := domain.ColumnPath(col.SectionID, col.RowID, "column-2")

	out := m.DeleteColumn(s, middle)
	n, ok := domain.Resolve(out, domain.RowPath(col.SectionID, col.RowID))
	require.True(t, ok)
	require.Len(t, n.Row.Columns, 2)
	assert.Equal(t, 6.0, n.Row.Columns[0].Size)
	assert.Equal(t, 6.0, n.Row.Columns[1].Size)
	assert.Equal(t, []string{"column-1", "column-3"}, []string{n.Row.Columns[0].ID, n.Row.Columns[1].ID})

	// Input untouched.
	orig, _ := domain.Resolve(s, domain.RowPath(col.SectionID, col.RowID))
	assert.Len(t, orig.Row.Columns, 3)
	assert.Equal(t, 4.0, orig.Row.Columns[0].Size)
}

func TestDeleteColumn_LastLeavesEmptyRow(t *testing.T) {
	m := newMutator()
	s, sec := m.AddSection(domain.PageSchema{}, "")
	s, row := m.AddRow(s, sec.SectionID, []float64{12})
	n, _ := domain.Resolve(s, row)
	out := m.DeleteColumn(s, domain.ColumnPath(row.SectionID, row.RowID, n.Row.Columns[0].ID))
	n, ok := domain.Resolve(out, row)
	require.True(t, ok)
	assert.Empty(t, n.Row.Columns)
}

func TestResizeColumn_Clamps(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	size := func(s domain.PageSchema) float64 {
		n, _ := domain.Resolve(s, col)
		return n.Column.Size
	}
	assert.Equal(t, 12.0, size(m.ResizeColumn(s, col, 99)))
	assert.Equal(t, 1.0, size(m.ResizeColumn(s, col, -5)))
	assert.Equal(t, 7.5, size(m.ResizeColumn(s, col, 7.5)))

	// Siblings are not renormalized.
	out := m.ResizeColumn(s, col, 8)
	n, _ := domain.Resolve(out, col.Parent())
	assert.Equal(t, []float64{8, 4, 4}, []float64{n.Row.Columns[0].Size, n.Row.Columns[1].Size, n.Row.Columns[2].Size})
}

func TestAddColumn(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	out, p := m.AddColumn(s, col.Parent(), 3)
	n, ok := domain.Resolve(out, p)
	require.True(t, ok)
	assert.Equal(t, 3.0, n.Column.Size)
	assert.Equal(t, 3, n.Index)
}

// ─────────────────────────────────────────────────────────────
// Components
// ─────────────────────────────────────────────────────────────

func TestAddComponent_DefaultsAndIndex(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)

	out, p := m.AddComponent(s, col, 0, "text", nil)
	assert.Equal(t, []string{"Enter your text here", "A", "B"}, contents(t, out, col))
	n, ok := domain.Resolve(out, p)
	require.True(t, ok)
	assert.Equal(t, 0, n.Index)

	out, _ = m.AddComponent(s, col, 1, "text", domain.Props{"content": "mid"})
	assert.Equal(t, []string{"A", "mid", "B"}, contents(t, out, col))

	out, _ = m.AddComponent(s, col, 42, "text", domain.Props{"content": "end"})
	assert.Equal(t, []string{"A", "B", "end"}, contents(t, out, col))
}

func TestAddComponent_DoesNotAliasCallerProps(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	props := domain.Props{"content": "mine"}
	out, p := m.AddComponent(s, col, -1, "text", props)
	props["content"] = "changed later"
	n, _ := domain.Resolve(out, p)
	assert.Equal(t, "mine", n.Component.Props["content"])
}

func TestDuplicateComponent(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	first := domain.ComponentPath(col.SectionID, col.RowID, col.ColumnID, "component-1")
	out, p := m.DuplicateComponent(s, first)
	assert.Equal(t, []string{"A", "A", "B"}, contents(t, out, col))
	assert.NotEqual(t, first, p)
	assert.NoError(t, domain.Validate(out))
}

func TestMoveComponent_AcrossColumns(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	dst := domain.ColumnPath(col.SectionID, col.RowID, "column-3")
	from := domain.ComponentPath(col.SectionID, col.RowID, col.ColumnID, "component-1")

	out, p := m.MoveComponent(s, from, dst, 0)
	assert.Equal(t, []string{"B"}, contents(t, out, col))
	assert.Equal(t, []string{"A"}, contents(t, out, dst))
	assert.Equal(t, dst, p.Parent())
	assert.Equal(t, 1, countComponent(out, "component-1"))
	assert.NoError(t, domain.Validate(out))

	// Source schema still has it in the original column.
	assert.Equal(t, []string{"A", "B"}, contents(t, s, col))
}

func TestMoveComponent_SameColumnAdjustsIndex(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	s, _ = m.AddComponent(s, col, -1, "text", domain.Props{"content": "C"})
	a := domain.ComponentPath(col.SectionID, col.RowID, col.ColumnID, "component-1")

	// Dropping A before C (index 2 in the pre-move list) gives B, A, C.
	out, _ := m.MoveComponent(s, a, col, 2)
	assert.Equal(t, []string{"B", "A", "C"}, contents(t, out, col))

	// Dropping A at the end.
	out, _ = m.MoveComponent(s, a, col, 3)
	assert.Equal(t, []string{"B", "C", "A"}, contents(t, out, col))

	// Dropping A onto its own slot is a no-op.
	out, p := m.MoveComponent(s, a, col, 1)
	assert.Equal(t, s, out)
	assert.Equal(t, domain.Path{}, p)
}

func countComponent(s domain.PageSchema, id string) int {
	n := 0
	domain.Walk(s, func(p domain.Path, _ domain.Node) bool {
		if p.Kind == domain.KindComponent && p.ComponentID == id {
			n++
		}
		return true
	})
	return n
}

// ─────────────────────────────────────────────────────────────
// Reorder
// ─────────────────────────────────────────────────────────────

func sectionIDs(s domain.PageSchema) []string {
	var ids []string
	for _, sec := range s.Sections {
		ids = append(ids, sec.ID)
	}
	return ids
}

func TestReorder_Permutation(t *testing.T) {
	m := newMutator()
	var s domain.PageSchema
	for _, id := range []string{"A", "B", "C", "D"} {
		s, _ = m.AddSectionWithID(s, id, "")
	}
	out := m.Reorder(s, domain.Path{}, 0, 2)
	assert.Equal(t, []string{"B", "C", "A", "D"}, sectionIDs(out))
	out = m.Reorder(s, domain.Path{}, 3, 0)
	assert.Equal(t, []string{"D", "A", "B", "C"}, sectionIDs(out))
	assert.Equal(t, []string{"A", "B", "C", "D"}, sectionIDs(s))
}

func TestReorder_OutOfRangeIsNoop(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	for _, idx := range [][2]int{{-1, 0}, {0, 5}, {1, 1}, {9, 9}} {
		assert.Equal(t, s, m.Reorder(s, col, idx[0], idx[1]))
	}
}

func TestReorder_EachLevel(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	out := m.Reorder(s, col, 1, 0)
	assert.Equal(t, []string{"B", "A"}, contents(t, out, col))

	out = m.Reorder(s, col.Parent(), 0, 2)
	n, _ := domain.Resolve(out, col.Parent())
	assert.Equal(t, "column-1", n.Row.Columns[2].ID)

	s, _ = m.AddRow(s, col.SectionID, []float64{12})
	out = m.Reorder(s, domain.SectionPath(col.SectionID), 1, 0)
	n, _ = domain.Resolve(out, domain.SectionPath(col.SectionID))
	assert.Equal(t, "row-2", n.Section.Rows[0].ID)
}

func TestMoveUpDown(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	b := domain.ComponentPath(col.SectionID, col.RowID, col.ColumnID, "component-2")
	out := m.MoveUp(s, b)
	assert.Equal(t, []string{"B", "A"}, contents(t, out, col))
	assert.Equal(t, s, m.MoveDown(s, b), "last item cannot move down")
}

// ─────────────────────────────────────────────────────────────
// Settings and props
// ─────────────────────────────────────────────────────────────

func TestUpdateSetting_PersistentUpdate(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	s, _ = m.AddSection(s, "")
	target := domain.ComponentPath(col.SectionID, col.RowID, col.ColumnID, "component-1")
	s = m.UpdateSetting(s, target, "margin", "4px")

	out := m.UpdateSetting(s, target, "padding", "8px")
	require.True(t, layout.Changed(s, out))

	n, _ := domain.Resolve(out, target)
	assert.Equal(t, domain.Settings{"margin": "4px", "padding": "8px"}, n.Component.Settings)

	// Ancestors are new instances.
	assert.NotSame(t, &s.Sections[0], &out.Sections[0])
	assert.NotSame(t, &s.Sections[0].Rows[0], &out.Sections[0].Rows[0])
	assert.NotSame(t, &s.Sections[0].Rows[0].Columns[0], &out.Sections[0].Rows[0].Columns[0])
	// The sibling component's maps are shared, not copied.
	assert.Equal(t,
		reflect.ValueOf(s.Sections[0].Rows[0].Columns[0].Components[1].Props).Pointer(),
		reflect.ValueOf(out.Sections[0].Rows[0].Columns[0].Components[1].Props).Pointer())

	// Input untouched.
	orig, _ := domain.Resolve(s, target)
	assert.Equal(t, domain.Settings{"margin": "4px"}, orig.Component.Settings)
}

func TestUpdateSetting_SharesSiblingSections(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	s, other := m.AddSection(s, "")
	s, _ = m.AddRow(s, other.SectionID, []float64{12})

	out := m.UpdateSetting(s, domain.SectionPath(col.SectionID), "padding", "1rem")
	assert.Same(t, &s.Sections[1].Rows[0], &out.Sections[1].Rows[0])
}

func TestUpdateSetting_SameValueIsNoop(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	s = m.UpdateSetting(s, col, "padding", "8px")
	out := m.UpdateSetting(s, col, "padding", "8px")
	assert.False(t, layout.Changed(s, out))
}

func TestUpdateProp_OnlyComponents(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	target := domain.ComponentPath(col.SectionID, col.RowID, col.ColumnID, "component-2")
	out := m.UpdateProp(s, target, "content", "B2")
	assert.Equal(t, []string{"A", "B2"}, contents(t, out, col))
	assert.Equal(t, s, m.UpdateProp(s, col, "content", "x"))

	out = m.RemoveProp(out, target, "content")
	n, _ := domain.Resolve(out, target)
	assert.NotContains(t, n.Component.Props, "content")
}

func TestRemoveSetting(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	s = m.UpdateSetting(s, col, "padding", "8px")
	out := m.RemoveSetting(s, col, "padding")
	n, _ := domain.Resolve(out, col)
	assert.Empty(t, n.Column.Settings)
	assert.Equal(t, out, m.RemoveSetting(out, col, "padding"))
}

// ─────────────────────────────────────────────────────────────
// No-op on unresolvable ids
// ─────────────────────────────────────────────────────────────

func TestOperations_NoopOnBadID(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	before := s.Clone()

	badSection := domain.SectionPath("missing")
	badRow := domain.RowPath(col.SectionID, "missing")
	badCol := domain.ColumnPath(col.SectionID, col.RowID, "missing")
	badComp := domain.ComponentPath(col.SectionID, col.RowID, col.ColumnID, "missing")
	goodComp := domain.ComponentPath(col.SectionID, col.RowID, col.ColumnID, "component-1")

	ops := map[string]func() domain.PageSchema{
		"AddRow":           func() domain.PageSchema { out, _ := m.AddRow(s, "missing", []float64{6, 6}); return out },
		"AddRowFromTmpl":   func() domain.PageSchema { out, _ := m.AddRowFromTemplate(s, "missing", "1-1"); return out },
		"AddColumn":        func() domain.PageSchema { out, _ := m.AddColumn(s, badRow, 4); return out },
		"AddComponent":     func() domain.PageSchema { out, _ := m.AddComponent(s, badCol, 0, "text", nil); return out },
		"DuplicateSection": func() domain.PageSchema { out, _ := m.DuplicateSection(s, "missing"); return out },
		"DuplicateComp":    func() domain.PageSchema { out, _ := m.DuplicateComponent(s, badComp); return out },
		"DeleteSection":    func() domain.PageSchema { return m.DeleteSection(s, "missing") },
		"DeleteRow":        func() domain.PageSchema { return m.DeleteRow(s, badRow) },
		"DeleteColumn":     func() domain.PageSchema { return m.DeleteColumn(s, badCol) },
		"DeleteComponent":  func() domain.PageSchema { return m.DeleteComponent(s, badComp) },
		"Delete":           func() domain.PageSchema { return m.Delete(s, badSection) },
		"ResizeColumn":     func() domain.PageSchema { return m.ResizeColumn(s, badCol, 6) },
		"ReorderRows":      func() domain.PageSchema { return m.ReorderRows(s, "missing", 0, 1) },
		"ReorderColumns":   func() domain.PageSchema { return m.ReorderColumns(s, badRow, 0, 1) },
		"ReorderComps":     func() domain.PageSchema { return m.ReorderComponents(s, badCol, 0, 1) },
		"MoveUp":           func() domain.PageSchema { return m.MoveUp(s, badComp) },
		"MoveFromMissing":  func() domain.PageSchema { out, _ := m.MoveComponent(s, badComp, col, 0); return out },
		"MoveToMissing":    func() domain.PageSchema { out, _ := m.MoveComponent(s, goodComp, badCol, 0); return out },
		"UpdateSetting":    func() domain.PageSchema { return m.UpdateSetting(s, badRow, "k", "v") },
		"UpdateProp":       func() domain.PageSchema { return m.UpdateProp(s, badComp, "k", "v") },
		"RemoveSetting":    func() domain.PageSchema { return m.RemoveSetting(s, badSection, "k") },
		"SetSectionKind":   func() domain.PageSchema { return m.SetSectionKind(s, "missing", "full-width") },
	}
	for name, op := range ops {
		out := op()
		assert.True(t, domain.Equal(before, out), name)
		assert.False(t, layout.Changed(s, out), name)
	}
}

func TestDelete_DispatchesOnKind(t *testing.T) {
	m := newMutator()
	s, col := fixture(t, m)
	comp := domain.ComponentPath(col.SectionID, col.RowID, col.ColumnID, "component-1")

	assert.Equal(t, []string{"B"}, contents(t, m.Delete(s, comp), col))
	assert.False(t, domain.Exists(m.Delete(s, col), col))
	assert.False(t, domain.Exists(m.Delete(s, col.Parent()), col.Parent()))
	assert.Empty(t, m.Delete(s, domain.SectionPath(col.SectionID)).Sections)

	// A row path never deletes a section, even when the kind is mislabeled.
	assert.Equal(t, s, m.DeleteRow(s, domain.SectionPath(col.SectionID)))
}
