package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/render"
)

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages, most recently edited first"),
	), s.handleListPages)

	// ── create_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new empty page and make it the active page"),
		mcp.WithString("title",
			mcp.Description("Title of the new page"),
			mcp.Required(),
		),
		mcp.WithString("slug",
			mcp.Description("URL slug. Derived from the title when omitted"),
		),
	), s.handleCreatePage)

	// ── set_active_page ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_page",
		mcp.WithDescription("Set the active page for subsequent tool calls. Tools that accept pageId default to it."),
		mcp.WithString("pageId",
			mcp.Description("ID or slug of the page"),
			mcp.Required(),
		),
	), s.handleSetActivePage)

	// ── get_schema ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Return the page schema (sections > rows > columns > components) as JSON. Node paths used by the layout tools are built from these ids."),
		mcp.WithString("pageId",
			mcp.Description("ID or slug of the page (defaults to active page)"),
		),
	), s.handleGetSchema)

	// ── list_components ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List registered component types with their default props and prop schema"),
		mcp.WithString("category",
			mcp.Description("Only list this palette category (layout, content, media, interactive)"),
		),
	), s.handleListComponents)

	// ── render_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render the page to HTML"),
		mcp.WithString("pageId",
			mcp.Description("ID or slug of the page (defaults to active page)"),
		),
		mcp.WithString("mode",
			mcp.Description("frontend (published output, default) or editor (with editing affordances)"),
		),
		mcp.WithBoolean("document",
			mcp.Description("Wrap the markup in a standalone HTML document"),
		),
	), s.handleRenderPage)

	// ── page_history ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("page_history",
		mcp.WithDescription("List the page's saved revisions and the current one"),
		mcp.WithString("pageId",
			mcp.Description("ID or slug of the page (defaults to active page)"),
		),
	), s.handlePageHistory)

	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Restore the revision before the current one"),
		mcp.WithString("pageId",
			mcp.Description("ID or slug of the page (defaults to active page)"),
		),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the most recent revision undone on this page"),
		mcp.WithString("pageId",
			mcp.Description("ID or slug of the page (defaults to active page)"),
		),
	), s.handleRedo)
}

type pageSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Sections int    `json:"sections"`
}

func summarizePage(p domain.Page) pageSummary {
	return pageSummary{ID: p.ID, Title: p.Title, Slug: p.Slug, Sections: len(p.Schema.Sections)}
}

func (s *Server) listPageSummaries() ([]pageSummary, error) {
	pages, err := s.pages.List()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	out := make([]pageSummary, len(pages))
	for i, p := range pages {
		out[i] = summarizePage(p)
	}
	return out, nil
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.listPageSummaries()
	if err != nil {
		return nil, err
	}
	return jsonResult(pages)
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	title := argString(args, "title")
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	page, err := s.pages.Create(ctx, title, argString(args, "slug"), domain.PageSchema{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.setActivePage(page.ID)
	return jsonResult(summarizePage(*page))
}

func (s *Server) handleSetActivePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := argString(req.GetArguments(), "pageId")
	if ref == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	page, err := s.pages.Lookup(ref)
	if err != nil {
		return nil, err
	}
	s.setActivePage(page.ID)
	return textResult(fmt.Sprintf("Active page set to %s (%s)", page.ID, page.Title)), nil
}

func (s *Server) handleGetSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req.GetArguments())
	if err != nil {
		return nil, err
	}
	data, err := domain.MarshalSchemaIndent(page.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return textResult(string(data)), nil
}

type componentSummary struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	DefaultProps domain.Props   `json:"defaultProps"`
	PropSchema   map[string]any `json:"propSchema,omitempty"`
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs := s.registry.GetAll()
	if category := argString(req.GetArguments(), "category"); category != "" {
		defs = s.registry.GetByCategory(category)
	}
	out := make([]componentSummary, len(defs))
	for i, d := range defs {
		out[i] = componentSummary{ID: d.ID, Name: d.Name, Category: d.Category, DefaultProps: d.DefaultProps, PropSchema: d.PropSchema}
	}
	return jsonResult(out)
}

func (s *Server) handleRenderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	page, err := s.resolvePage(args)
	if err != nil {
		return nil, err
	}
	mode := render.Frontend
	if m := argString(args, "mode"); m != "" {
		if mode, err = render.ParseMode(m); err != nil {
			return nil, err
		}
	}
	r := render.Renderer{Registry: s.registry, Mode: mode}
	html, err := r.RenderPage(page.Schema)
	if err != nil {
		return nil, err
	}
	if doc, _ := args["document"].(bool); doc {
		if html, err = render.Document(page.Title, html); err != nil {
			return nil, err
		}
	}
	return textResult(string(html)), nil
}

func (s *Server) handlePageHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req.GetArguments())
	if err != nil {
		return nil, err
	}
	tree, err := s.pages.History(page.ID)
	if err != nil {
		return nil, err
	}
	return jsonResult(tree)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req.GetArguments())
	if err != nil {
		return nil, err
	}
	restored, err := s.pages.Undo(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventSchemaChanged, map[string]string{"pageId": page.ID})
	return jsonResult(summarizePage(*restored))
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req.GetArguments())
	if err != nil {
		return nil, err
	}
	restored, err := s.pages.Redo(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventSchemaChanged, map[string]string{"pageId": page.ID})
	return jsonResult(summarizePage(*restored))
}
