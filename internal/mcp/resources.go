package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
)

const (
	pagesURI       = "pagebuilder://pages"
	componentsURI  = "pagebuilder://components"
	pageURIPrefix  = "pagebuilder://page/"
	pageURISuffix  = "/schema"
	schemaTemplate = pageURIPrefix + "{pageId}" + pageURISuffix
)

func (s *Server) registerResources() {
	// ── pagebuilder://pages ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		pagesURI,
		"All Pages",
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	// ── pagebuilder://components ───────────────────────
	s.mcp.AddResource(mcp.NewResource(
		componentsURI,
		"Component Palette",
		mcp.WithMIMEType("application/json"),
	), s.handleComponentsResource)

	// ── pagebuilder://page/{pageId}/schema ─────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			schemaTemplate,
			"Page Schema",
		),
		s.handlePageSchemaResource,
	)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	pages, err := s.listPageSummaries()
	if err != nil {
		return nil, err
	}
	return jsonContents(pagesURI, pages)
}

func (s *Server) handleComponentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	type paletteEntry struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Category string `json:"category"`
		Icon     string `json:"icon,omitempty"`
	}
	defs := s.registry.GetAll()
	out := make([]paletteEntry, len(defs))
	for i, d := range defs {
		out[i] = paletteEntry{ID: d.ID, Name: d.Name, Category: d.Category, Icon: d.Icon}
	}
	return jsonContents(componentsURI, out)
}

func (s *Server) handlePageSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := pageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}
	page, err := s.pages.Lookup(pageID)
	if err != nil {
		return nil, err
	}
	data, err := domain.MarshalSchemaIndent(page.Schema)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// pageIDFromURI extracts the id from "pagebuilder://page/{id}/schema".
func pageIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, pageURIPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, pageURISuffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
