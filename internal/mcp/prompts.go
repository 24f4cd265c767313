package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("landing_page",
		mcp.WithPromptDescription("Guide through building a landing page with a hero, feature columns and a call to action"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Product or topic the page is about"),
			mcp.RequiredArgument(),
		),
	), s.handleLandingPagePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("restyle_page",
		mcp.WithPromptDescription("Apply a consistent style (spacing, background colors, alignment) to every section of a page"),
		mcp.WithArgument("pageId",
			mcp.ArgumentDescription("ID or slug of the page"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("style",
			mcp.ArgumentDescription("Desired look, e.g. \"airy and minimal\" or \"dark with bold headings\""),
			mcp.RequiredArgument(),
		),
	), s.handleRestylePrompt)
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build a landing page for: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a landing page about "%s". Follow these steps:

1. create_page with a fitting title, then call list_components to see what is available
2. add_section (kind full-width) for the hero; add_row with template "1"; add a heading (level 1), a text and a button
3. add_section (kind container) for features; add_row with template "1-1-1"; put a heading and a text in each column
4. add_section for the call to action with a quote and a button
5. Use update_setting to give sections padding and background colors, and textAlign "center" on the hero
6. Call get_schema to check the structure, then render_page to review the HTML

Node paths come from get_schema ids: "section:<id>", "row:<section>/<row>", "column:<section>/<row>/<column>".`, topic),
				},
			},
		},
	}, nil
}

func (s *Server) handleRestylePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	pageID := req.Params.Arguments["pageId"]
	style := req.Params.Arguments["style"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Restyle page %s", pageID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Restyle page "%s" to look %s. Follow these steps:

1. set_active_page, then get_schema to see every section, row and column
2. For each section, update_setting padding, backgroundColor and textAlign so the sections read as one design
3. Adjust column widths with resize_column where the content is unbalanced
4. Do not add or delete components; only change settings
5. render_page when done, and use undo if a change looks wrong`, pageID, style),
				},
			},
		},
	}, nil
}
