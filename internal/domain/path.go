package domain

import "strings"

// NodeKind discriminates the four levels of the layout tree.
type NodeKind string

const (
	KindSection   NodeKind = "section"
	KindRow       NodeKind = "row"
	KindColumn    NodeKind = "column"
	KindComponent NodeKind = "component"
)

// Path identifies a node by its chain of ancestor ids. It is a lookup key,
// not a pointer into the tree; a path whose ids no longer resolve simply
// fails to resolve. The zero Path identifies the schema root.
type Path struct {
	Kind        NodeKind `json:"kind"`
	SectionID   string   `json:"sectionId,omitempty"`
	RowID       string   `json:"rowId,omitempty"`
	ColumnID    string   `json:"columnId,omitempty"`
	ComponentID string   `json:"componentId,omitempty"`
}

func SectionPath(sectionID string) Path {
	return Path{Kind: KindSection, SectionID: sectionID}
}

func RowPath(sectionID, rowID string) Path {
	return Path{Kind: KindRow, SectionID: sectionID, RowID: rowID}
}

func ColumnPath(sectionID, rowID, columnID string) Path {
	return Path{Kind: KindColumn, SectionID: sectionID, RowID: rowID, ColumnID: columnID}
}

func ComponentPath(sectionID, rowID, columnID, componentID string) Path {
	return Path{Kind: KindComponent, SectionID: sectionID, RowID: rowID, ColumnID: columnID, ComponentID: componentID}
}

// IsRoot reports whether p is the zero path.
func (p Path) IsRoot() bool { return p == (Path{}) }

// Valid reports whether the ids required by Kind are present and no id
// below Kind is set. It says nothing about whether the path resolves.
func (p Path) Valid() bool {
	ids := [4]string{p.SectionID, p.RowID, p.ColumnID, p.ComponentID}
	depth := p.Kind.depth()
	if depth == 0 {
		return false
	}
	for i, id := range ids {
		if (i < depth) != (id != "") {
			return false
		}
	}
	return true
}

func (k NodeKind) depth() int {
	switch k {
	case KindSection:
		return 1
	case KindRow:
		return 2
	case KindColumn:
		return 3
	case KindComponent:
		return 4
	}
	return 0
}

// Parent returns the path of the enclosing node. The parent of a section
// is the root path.
func (p Path) Parent() Path {
	switch p.Kind {
	case KindComponent:
		return ColumnPath(p.SectionID, p.RowID, p.ColumnID)
	case KindColumn:
		return RowPath(p.SectionID, p.RowID)
	case KindRow:
		return SectionPath(p.SectionID)
	}
	return Path{}
}

// Contains reports whether other is p itself or one of its descendants.
// The root path contains every path.
func (p Path) Contains(other Path) bool {
	if p.IsRoot() {
		return true
	}
	if !p.Valid() || !other.Valid() || other.Kind.depth() < p.Kind.depth() {
		return false
	}
	mine := [4]string{p.SectionID, p.RowID, p.ColumnID, p.ComponentID}
	theirs := [4]string{other.SectionID, other.RowID, other.ColumnID, other.ComponentID}
	for i := 0; i < p.Kind.depth(); i++ {
		if mine[i] != theirs[i] {
			return false
		}
	}
	return true
}

// ID returns the id of the node the path points at.
func (p Path) ID() string {
	switch p.Kind {
	case KindSection:
		return p.SectionID
	case KindRow:
		return p.RowID
	case KindColumn:
		return p.ColumnID
	case KindComponent:
		return p.ComponentID
	}
	return ""
}

// String renders the path as "kind:id/id/...", used as a DOM attribute and
// as the drop-target key.
func (p Path) String() string {
	if p.IsRoot() {
		return "root"
	}
	ids := []string{p.SectionID, p.RowID, p.ColumnID, p.ComponentID}[:max(p.Kind.depth(), 1)]
	return string(p.Kind) + ":" + strings.Join(ids, "/")
}

// ParsePath is the inverse of String. It returns false for malformed input.
func ParsePath(s string) (Path, bool) {
	if s == "root" {
		return Path{}, true
	}
	kind, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Path{}, false
	}
	ids := strings.Split(rest, "/")
	var p Path
	p.Kind = NodeKind(kind)
	if p.Kind.depth() != len(ids) {
		return Path{}, false
	}
	fields := []*string{&p.SectionID, &p.RowID, &p.ColumnID, &p.ComponentID}
	for i, id := range ids {
		*fields[i] = id
	}
	return p, p.Valid()
}
