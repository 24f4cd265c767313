// Package dnd turns drag gesture events into layout edits.
//
// The pointer handling itself lives outside; this package only sees
// "started", "over target" and "ended over target" events and keeps the
// transient highlight state in between.
package dnd

import (
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/layout"
)

type PayloadKind string

const (
	// PayloadNewComponent is a component type dragged from the palette.
	PayloadNewComponent PayloadKind = "new-component"
	// PayloadExistingNode is a node dragged from within the canvas.
	PayloadExistingNode PayloadKind = "existing-node"
)

// Payload identifies what is being dragged.
type Payload struct {
	Kind          PayloadKind  `json:"kind"`
	ComponentType string       `json:"componentType,omitempty"`
	Path          *domain.Path `json:"path,omitempty"`
}

func NewComponent(componentType string) Payload {
	return Payload{Kind: PayloadNewComponent, ComponentType: componentType}
}

func ExistingNode(p domain.Path) Payload {
	return Payload{Kind: PayloadExistingNode, Path: &p}
}

// Valid reports whether the fields required by Kind are present.
func (p Payload) Valid() bool {
	switch p.Kind {
	case PayloadNewComponent:
		return p.ComponentType != ""
	case PayloadExistingNode:
		return p.Path != nil && p.Path.Valid()
	}
	return false
}

// Target is a drop position: a column for component payloads, or the parent
// of the dragged node for reorders, plus the index to drop at.
type Target struct {
	Path  domain.Path `json:"path"`
	Index int         `json:"index"`
}

// TargetID is the key the renderer uses to highlight the active target.
func (t Target) TargetID() string { return t.Path.String() }

type State int

const (
	Idle State = iota
	Dragging
	ResolvingDrop
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case ResolvingDrop:
		return "resolving-drop"
	}
	return "idle"
}

// ─────────────────────────────────────────────────────────────
// Coordinator: Idle -> Dragging -> ResolvingDrop -> Idle
// ─────────────────────────────────────────────────────────────

// Coordinator runs the drag state machine for one editor. It is not safe
// for concurrent use; events arrive on the editor's event loop.
type Coordinator struct {
	mutator *layout.Mutator
	log     *zap.SugaredLogger

	state   State
	payload Payload
	active  *Target
}

func New(m *layout.Mutator) *Coordinator {
	return &Coordinator{mutator: m, log: zap.S()}
}

func (c *Coordinator) State() State { return c.state }

// Payload returns the payload of the drag in progress.
func (c *Coordinator) Payload() (Payload, bool) {
	if c.state == Idle {
		return Payload{}, false
	}
	return c.payload, true
}

// DragStart begins a drag. Invalid payloads, and a start while a drag is
// already in progress, are ignored.
func (c *Coordinator) DragStart(p Payload) bool {
	if c.state != Idle || !p.Valid() {
		c.log.Debugw("dnd: drag start ignored", "state", c.state.String(), "payload", p.Kind)
		return false
	}
	if p.Path != nil {
		cp := *p.Path
		p.Path = &cp
	}
	c.state = Dragging
	c.payload = p
	c.active = nil
	return true
}

// DragOver marks t as the active drop target. The schema is not touched.
// Ignored unless a drag is in progress.
func (c *Coordinator) DragOver(t Target) {
	if c.state != Dragging {
		return
	}
	c.active = &t
}

// DragLeave clears the highlight when the pointer leaves every target.
func (c *Coordinator) DragLeave() {
	if c.state == Dragging {
		c.active = nil
	}
}

// DragEnd finishes the drag. With a valid target exactly one layout edit is
// applied; with a nil or unusable target the schema is returned unchanged.
// Either way the coordinator ends Idle with no active target. A DragEnd
// received while Idle returns s unchanged.
func (c *Coordinator) DragEnd(s domain.PageSchema, t *Target) (domain.PageSchema, bool) {
	out, _, changed := c.DragEndPath(s, t)
	return out, changed
}

// DragEndPath is DragEnd that also reports where the dropped node ended up:
// the new component, the moved component's new location, or the reordered
// node. The path is empty when nothing changed.
func (c *Coordinator) DragEndPath(s domain.PageSchema, t *Target) (domain.PageSchema, domain.Path, bool) {
	if c.state != Dragging {
		return s, domain.Path{}, false
	}
	c.state = ResolvingDrop
	payload := c.payload
	defer c.reset()

	if t == nil {
		return s, domain.Path{}, false
	}
	out, p := c.drop(s, payload, *t)
	if !layout.Changed(s, out) {
		return s, domain.Path{}, false
	}
	return out, p, true
}

// Cancel abandons the drag in progress.
func (c *Coordinator) Cancel() { c.reset() }

func (c *Coordinator) reset() {
	c.state = Idle
	c.payload = Payload{}
	c.active = nil
}

// ActiveTarget returns the highlighted drop target, if any.
func (c *Coordinator) ActiveTarget() (Target, bool) {
	if c.active == nil {
		return Target{}, false
	}
	return *c.active, true
}

// IsActive reports whether p is the highlighted drop target.
func (c *Coordinator) IsActive(p domain.Path) bool {
	return c.active != nil && c.active.Path == p
}

// IsDragging reports whether p is the node being dragged.
func (c *Coordinator) IsDragging(p domain.Path) bool {
	return c.state != Idle && c.payload.Path != nil && *c.payload.Path == p
}

// Invalidate drops any drag state referring to the deleted node or one of
// its descendants.
func (c *Coordinator) Invalidate(deleted domain.Path) {
	if c.payload.Path != nil && deleted.Contains(*c.payload.Path) {
		c.log.Debugw("dnd: drag cancelled, dragged node deleted", "path", deleted.String())
		c.reset()
		return
	}
	if c.active != nil && deleted.Contains(c.active.Path) {
		c.active = nil
	}
}

func (c *Coordinator) drop(s domain.PageSchema, p Payload, t Target) (domain.PageSchema, domain.Path) {
	switch p.Kind {
	case PayloadNewComponent:
		if t.Path.Kind != domain.KindColumn {
			return s, domain.Path{}
		}
		return c.mutator.AddComponent(s, t.Path, t.Index, p.ComponentType, nil)

	case PayloadExistingNode:
		src := *p.Path
		if src.Kind == domain.KindComponent && t.Path.Kind == domain.KindColumn {
			return c.mutator.MoveComponent(s, src, t.Path, t.Index)
		}
		// Sections, rows and columns reorder within their own parent only.
		if src.Parent() != t.Path {
			return s, domain.Path{}
		}
		n, ok := domain.Resolve(s, src)
		if !ok {
			return s, domain.Path{}
		}
		to := t.Index
		if to > n.Index {
			to--
		}
		return c.mutator.Reorder(s, t.Path, n.Index, to), src
	}
	return s, domain.Path{}
}
