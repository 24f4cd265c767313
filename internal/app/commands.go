package app

import (
	"context"
	"fmt"
	"os"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/registry"
	"pagebuilder/internal/render"
	"pagebuilder/internal/storage"
)

// RenderPage renders a page by id or slug. With document set the markup is
// wrapped in a standalone HTML document.
func (a *App) RenderPage(ref string, mode render.Mode, document bool) (string, error) {
	page, err := a.pageSvc.Lookup(ref)
	if err != nil {
		return "", err
	}
	r := render.Renderer{Registry: a.registry, Mode: mode}
	html, err := r.RenderPage(page.Schema)
	if err != nil {
		return "", err
	}
	if document {
		if html, err = render.Document(page.Title, html); err != nil {
			return "", err
		}
	}
	return string(html), nil
}

// ExportPage returns the page schema as indented JSON.
func (a *App) ExportPage(ref string) ([]byte, error) {
	page, err := a.pageSvc.Lookup(ref)
	if err != nil {
		return nil, err
	}
	return domain.MarshalSchemaIndent(page.Schema)
}

// ImportPage creates a page from a schema JSON file.
func (a *App) ImportPage(ctx context.Context, title, slug, path string) (*domain.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	schema, err := domain.UnmarshalSchema(data)
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return a.pageSvc.Create(ctx, title, slug, schema)
}

// Components lists registered components, optionally one category only.
func (a *App) Components(category string) []registry.Definition {
	if category != "" {
		return a.registry.GetByCategory(category)
	}
	return a.registry.GetAll()
}

// ResolveApproval approves or rejects a pending agent action.
func (a *App) ResolveApproval(id string, approved bool) error {
	if err := a.approvals.Resolve(id, approved); err != nil {
		return fmt.Errorf("approval %s is not pending: %w", id, err)
	}
	a.log.Infow("app: approval resolved", "id", id, "approved", approved)
	return nil
}

func (a *App) PendingApprovals() ([]storage.Approval, error) {
	return a.approvals.ListPending()
}
