package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
)

const pathHelp = `Node path, e.g. "section:sec-1", "row:sec-1/row-1", "column:sec-1/row-1/col-1" or "component:sec-1/row-1/col-1/cmp-1"`

func (s *Server) registerLayoutTools() {
	pageID := mcp.WithString("pageId",
		mcp.Description("ID or slug of the page (defaults to active page)"),
	)

	// ── add_section ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_section",
		mcp.WithDescription("Add a section to the page"),
		pageID,
		mcp.WithString("kind",
			mcp.Description("container (default, centered) or full-width"),
		),
		mcp.WithNumber("index",
			mcp.Description("Position among sections. Appends when omitted or out of range"),
		),
	), s.handleAddSection)

	// ── set_section_kind ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_section_kind",
		mcp.WithDescription("Switch a section between container and full-width"),
		pageID,
		mcp.WithString("sectionId", mcp.Description("Section id"), mcp.Required()),
		mcp.WithString("kind", mcp.Description("container or full-width"), mcp.Required()),
	), s.handleSetSectionKind)

	// ── add_row ────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_row",
		mcp.WithDescription("Append a row of columns to a section. Column sizes are in 12-unit grid units."),
		pageID,
		mcp.WithString("sectionId", mcp.Description("Section id"), mcp.Required()),
		mcp.WithString("template",
			mcp.Description(`Row template name (1, 1-1, 1-1-1, 1-1-1-1, 1-2, 2-1, 1-2-1, ...) or comma separated sizes such as "6,6". Defaults to one full-width column`),
		),
	), s.handleAddRow)

	// ── add_column ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_column",
		mcp.WithDescription("Append a column to a row"),
		pageID,
		mcp.WithString("row", mcp.Description(pathHelp), mcp.Required()),
		mcp.WithNumber("size", mcp.Description("Grid units 1-12 (default 12)")),
	), s.handleAddColumn)

	// ── resize_column ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_column",
		mcp.WithDescription("Set a column's width in grid units, clamped to 1-12"),
		pageID,
		mcp.WithString("column", mcp.Description(pathHelp), mcp.Required()),
		mcp.WithNumber("size", mcp.Description("Grid units"), mcp.Required()),
	), s.handleResizeColumn)

	// ── add_component ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_component",
		mcp.WithDescription("Insert a component into a column. Missing props are filled from the component's defaults (see list_components)."),
		pageID,
		mcp.WithString("column", mcp.Description(pathHelp), mcp.Required()),
		mcp.WithString("type", mcp.Description("Component type id, e.g. heading, text, image"), mcp.Required()),
		mcp.WithString("props", mcp.Description(`JSON object of props, e.g. {"text":"Welcome","level":1}`)),
		mcp.WithNumber("index", mcp.Description("Position in the column. Appends when omitted")),
	), s.handleAddComponent)

	// ── update_setting ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_setting",
		mcp.WithDescription("Set or remove a style setting (padding, margin, backgroundColor, textAlign, cssClass, cssId) on any node"),
		pageID,
		mcp.WithString("path", mcp.Description(pathHelp), mcp.Required()),
		mcp.WithString("key", mcp.Description("Setting name"), mcp.Required()),
		mcp.WithString("value", mcp.Description("New value. JSON is decoded, anything else is a string")),
		mcp.WithBoolean("remove", mcp.Description("Remove the setting instead of setting it")),
	), s.handleUpdateSetting)

	// ── update_prop ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_prop",
		mcp.WithDescription("Set or remove a prop on a component"),
		pageID,
		mcp.WithString("path", mcp.Description(pathHelp), mcp.Required()),
		mcp.WithString("key", mcp.Description("Prop name"), mcp.Required()),
		mcp.WithString("value", mcp.Description("New value. JSON is decoded, anything else is a string")),
		mcp.WithBoolean("remove", mcp.Description("Remove the prop instead of setting it")),
	), s.handleUpdateProp)

	// ── reorder ────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder",
		mcp.WithDescription(`Move a child of parent from one index to another. Use parent "root" to reorder sections.`),
		pageID,
		mcp.WithString("parent", mcp.Description(pathHelp+`, or "root"`), mcp.Required()),
		mcp.WithNumber("from", mcp.Description("Current index"), mcp.Required()),
		mcp.WithNumber("to", mcp.Description("Target index"), mcp.Required()),
	), s.handleReorder)

	// ── move_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move a component into another column (or elsewhere in its own)"),
		pageID,
		mcp.WithString("component", mcp.Description(pathHelp), mcp.Required()),
		mcp.WithString("column", mcp.Description("Destination column path"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Position in the destination column. Appends when omitted")),
	), s.handleMoveComponent)

	// ── duplicate_node ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_node",
		mcp.WithDescription("Duplicate a section, row, column or component next to the original, with fresh ids"),
		pageID,
		mcp.WithString("path", mcp.Description(pathHelp), mcp.Required()),
	), s.handleDuplicateNode)

	// ── delete_node ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("Delete a section, row, column or component and everything inside it. Requires user approval."),
		pageID,
		mcp.WithString("path", mcp.Description(pathHelp), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteNode)
}

func (s *Server) handleAddSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind := argString(args, "kind")
	index := argInt(args, "index", -1)
	return s.edit(ctx, args, "add section", func(e *editor.Editor) (any, error) {
		return e.InsertSection(index, kind).String(), nil
	})
}

func (s *Server) handleSetSectionKind(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, kind := argString(args, "sectionId"), argString(args, "kind")
	if kind != domain.SectionContainer && kind != domain.SectionFullWidth {
		return nil, fmt.Errorf("kind must be %q or %q", domain.SectionContainer, domain.SectionFullWidth)
	}
	return s.edit(ctx, args, "set section kind", func(e *editor.Editor) (any, error) {
		e.SetSectionKind(id, kind)
		return domain.SectionPath(id).String(), nil
	})
}

func (s *Server) handleAddRow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sectionID := argString(args, "sectionId")
	if sectionID == "" {
		return nil, errors.New("sectionId is required")
	}
	sizes, err := parseRowTemplate(argString(args, "template"))
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, args, "add row", func(e *editor.Editor) (any, error) {
		p, _ := e.AddRow(sectionID, sizes)
		return p.String(), nil
	})
}

// parseRowTemplate accepts a named row template or comma separated sizes.
func parseRowTemplate(value string) ([]float64, error) {
	if value == "" {
		return nil, nil
	}
	if sizes, ok := domain.LookupRowTemplate(value); ok {
		return sizes, nil
	}
	var sizes []float64
	for _, part := range strings.Split(value, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("template: %q is neither a row template nor a list of sizes", value)
		}
		sizes = append(sizes, v)
	}
	return sizes, nil
}

func (s *Server) handleAddColumn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	row, err := argPath(args, "row")
	if err != nil {
		return nil, err
	}
	size, ok := argFloat(args, "size")
	if !ok {
		size = domain.GridUnits
	}
	return s.edit(ctx, args, "add column", func(e *editor.Editor) (any, error) {
		p, _ := e.AddColumn(row, size)
		return p.String(), nil
	})
}

func (s *Server) handleResizeColumn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	col, err := argPath(args, "column")
	if err != nil {
		return nil, err
	}
	size, ok := argFloat(args, "size")
	if !ok {
		return nil, errors.New("size is required")
	}
	return s.edit(ctx, args, "resize column", func(e *editor.Editor) (any, error) {
		e.ResizeColumn(col, size)
		return col.String(), nil
	})
}

func (s *Server) handleAddComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	col, err := argPath(args, "column")
	if err != nil {
		return nil, err
	}
	typ := argString(args, "type")
	if typ == "" {
		return nil, errors.New("type is required")
	}
	props, err := argProps(args, "props")
	if err != nil {
		return nil, err
	}
	index := argInt(args, "index", -1)

	var warning string
	if !s.registry.Has(typ) {
		warning = fmt.Sprintf("component type %q is not registered; it renders as a placeholder", typ)
	}
	return s.edit(ctx, args, "add component", func(e *editor.Editor) (any, error) {
		p, ok := e.AddComponent(col, index, typ, props)
		if !ok {
			return nil, nil
		}
		if warning == "" {
			node, _ := e.Resolve(p)
			if verr := s.registry.Validate(typ, node.Component.Props); verr != nil {
				warning = verr.Error()
			}
		}
		return map[string]string{"path": p.String(), "warning": warning}, nil
	})
}

func argProps(args map[string]any, key string) (domain.Props, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return domain.Props(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var props domain.Props
		if err := json.Unmarshal([]byte(v), &props); err != nil {
			return nil, fmt.Errorf("%s must be a JSON object: %w", key, err)
		}
		return props, nil
	}
	return nil, fmt.Errorf("%s must be a JSON object", key)
}

func (s *Server) handleUpdateSetting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.updateValue(ctx, req, "setting", (*editor.Editor).UpdateSetting, (*editor.Editor).RemoveSetting)
}

func (s *Server) handleUpdateProp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.updateValue(ctx, req, "prop", (*editor.Editor).UpdateProp, (*editor.Editor).RemoveProp)
}

func (s *Server) updateValue(
	ctx context.Context,
	req mcp.CallToolRequest,
	what string,
	set func(*editor.Editor, domain.Path, string, any) bool,
	remove func(*editor.Editor, domain.Path, string) bool,
) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	p, err := argPath(args, "path")
	if err != nil {
		return nil, err
	}
	key := argString(args, "key")
	if key == "" {
		return nil, errors.New("key is required")
	}
	if del, _ := args["remove"].(bool); del {
		return s.edit(ctx, args, "remove "+what, func(e *editor.Editor) (any, error) {
			remove(e, p, key)
			return p.String(), nil
		})
	}
	value, err := argValue(args, "value")
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, args, "update "+what, func(e *editor.Editor) (any, error) {
		set(e, p, key, value)
		return p.String(), nil
	})
}

func (s *Server) handleReorder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	parent, err := argPath(args, "parent")
	if err != nil {
		return nil, err
	}
	from, to := argInt(args, "from", -1), argInt(args, "to", -1)
	return s.edit(ctx, args, "reorder", func(e *editor.Editor) (any, error) {
		e.Reorder(parent, from, to)
		return parent.String(), nil
	})
}

func (s *Server) handleMoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	from, err := argPath(args, "component")
	if err != nil {
		return nil, err
	}
	to, err := argPath(args, "column")
	if err != nil {
		return nil, err
	}
	index := argInt(args, "index", -1)
	return s.edit(ctx, args, "move component", func(e *editor.Editor) (any, error) {
		p, _ := e.MoveComponent(from, to, index)
		return p.String(), nil
	})
}

func (s *Server) handleDuplicateNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	p, err := argPath(args, "path")
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, args, "duplicate "+string(p.Kind), func(e *editor.Editor) (any, error) {
		dup, _ := e.Duplicate(p)
		return dup.String(), nil
	})
}

func (s *Server) handleDeleteNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	p, err := argPath(args, "path")
	if err != nil {
		return nil, err
	}
	page, err := s.resolvePage(args)
	if err != nil {
		return nil, err
	}
	if !domain.Exists(page.Schema, p) {
		return nil, fmt.Errorf("delete: %s not found on page %s", p, page.ID)
	}

	meta, _ := json.Marshal(map[string]string{"pageId": page.ID, "path": p.String()})
	desc := fmt.Sprintf("Delete %s %s from page %q", p.Kind, p.ID(), page.Title)
	if err := s.approval.Request(ctx, "delete_node", desc, string(meta)); err != nil {
		return nil, err
	}

	args["pageId"] = page.ID
	return s.edit(ctx, args, "delete "+string(p.Kind), func(e *editor.Editor) (any, error) {
		e.Delete(p)
		return p.String(), nil
	})
}
