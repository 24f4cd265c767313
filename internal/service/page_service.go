package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
)

// ErrPageNotFound is returned for unknown page ids and slugs. It wraps
// sql.ErrNoRows.
var ErrPageNotFound = fmt.Errorf("page not found: %w", sql.ErrNoRows)

// ErrNothingToUndo is returned when a page is at the root of its history.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrNothingToRedo is returned when the current revision has no children.
var ErrNothingToRedo = errors.New("nothing to redo")

// ─────────────────────────────────────────────────────────────
// Page Service: pages, their schemas and revision history
// ─────────────────────────────────────────────────────────────

// PageService owns page records and their revision trees. Every schema
// save pushes a revision so edits can be diffed and restored.
type PageService struct {
	pages     *storage.PageStore
	revisions *storage.RevisionStore
	emitter   EventEmitter
	log       *zap.SugaredLogger
}

func NewPageService(pages *storage.PageStore, revisions *storage.RevisionStore, emitter EventEmitter) *PageService {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	return &PageService{pages: pages, revisions: revisions, emitter: emitter, log: zap.S()}
}

// Create stores a new page and its first revision. An empty slug is
// derived from the title; taken slugs get a numeric suffix.
func (s *PageService) Create(ctx context.Context, title, slug string, schema domain.PageSchema) (*domain.Page, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("page title is required")
	}
	if err := domain.Validate(schema); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if slug == "" {
		slug = Slugify(title)
	}
	slug, err := s.uniqueSlug(Slugify(slug))
	if err != nil {
		return nil, err
	}

	p := &domain.Page{
		ID:     uuid.NewString(),
		Title:  title,
		Slug:   slug,
		Schema: domain.Normalize(schema),
	}
	if err := s.pages.CreatePage(p); err != nil {
		return nil, err
	}
	if _, _, err := s.revisions.Push(p.ID, "", "create page", p.Schema); err != nil {
		return nil, err
	}
	s.log.Infow("page created", "id", p.ID, "slug", p.Slug)
	s.emitter.Emit(ctx, EventPageCreated, p)
	return p, nil
}

func (s *PageService) uniqueSlug(base string) (string, error) {
	if base == "" {
		base = "page"
	}
	slug := base
	for i := 2; ; i++ {
		_, err := s.pages.GetPageBySlug(slug)
		if errors.Is(err, sql.ErrNoRows) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}

func (s *PageService) List() ([]domain.Page, error) {
	return s.pages.ListPages()
}

func (s *PageService) Get(id string) (*domain.Page, error) {
	p, err := s.pages.GetPage(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return p, err
}

// Lookup finds a page by id, falling back to slug.
func (s *PageService) Lookup(idOrSlug string) (*domain.Page, error) {
	p, err := s.pages.GetPage(idOrSlug)
	if errors.Is(err, sql.ErrNoRows) {
		p, err = s.pages.GetPageBySlug(idOrSlug)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, idOrSlug)
	}
	return p, err
}

func (s *PageService) Rename(ctx context.Context, id, title string) (*domain.Page, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("page title is required")
	}
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	p.Title = title
	if err := s.pages.UpdatePage(p); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventPageSaved, p)
	return p, nil
}

func (s *PageService) Delete(ctx context.Context, id string) error {
	if err := s.pages.DeletePage(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrPageNotFound, id)
		}
		return err
	}
	s.log.Infow("page deleted", "id", id)
	s.emitter.Emit(ctx, EventPageDeleted, id)
	return nil
}

// SaveSchema validates and stores a new schema for the page and records a
// revision labelled label. Saving a schema identical to the current
// revision stores nothing new; the returned bool reports whether a
// revision was created.
func (s *PageService) SaveSchema(ctx context.Context, pageID, label string, schema domain.PageSchema) (*domain.Revision, bool, error) {
	if err := domain.Validate(schema); err != nil {
		return nil, false, fmt.Errorf("invalid schema: %w", err)
	}
	p, err := s.Get(pageID)
	if err != nil {
		return nil, false, err
	}
	if label == "" {
		label = "edit"
	}
	rev, created, err := s.revisions.Push(pageID, "", label, schema)
	if err != nil {
		return nil, false, err
	}
	schema = domain.Normalize(schema)
	if !created && domain.Equal(p.Schema, schema) {
		return rev, false, nil
	}
	p.Schema = schema
	if err := s.pages.UpdatePage(p); err != nil {
		return nil, false, err
	}
	s.emitter.Emit(ctx, EventPageSaved, p)
	return rev, created, nil
}

// Restore makes an earlier revision current and writes its schema back to
// the page. Saving afterwards branches from the restored revision.
func (s *PageService) Restore(ctx context.Context, pageID, revisionID string) (*domain.Page, error) {
	p, err := s.Get(pageID)
	if err != nil {
		return nil, err
	}
	rev, schema, err := s.revisions.Load(revisionID)
	if err != nil {
		return nil, err
	}
	if rev.PageID != pageID {
		return nil, fmt.Errorf("revision %s does not belong to page %s", revisionID, pageID)
	}
	if err := s.revisions.GoTo(pageID, revisionID); err != nil {
		return nil, err
	}
	p.Schema = schema
	if err := s.pages.UpdatePage(p); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventPageRestored, map[string]string{"pageId": pageID, "revisionId": revisionID})
	return p, nil
}

// Undo restores the parent of the current revision.
func (s *PageService) Undo(ctx context.Context, pageID string) (*domain.Page, error) {
	tree, err := s.History(pageID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ErrNothingToUndo
	}
	for _, r := range tree.Revisions {
		if r.ID == tree.CurrentID {
			if r.ParentID == nil {
				return nil, ErrNothingToUndo
			}
			return s.Restore(ctx, pageID, *r.ParentID)
		}
	}
	return nil, ErrNothingToUndo
}

// Redo restores the most recent child of the current revision.
func (s *PageService) Redo(ctx context.Context, pageID string) (*domain.Page, error) {
	tree, err := s.History(pageID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ErrNothingToRedo
	}
	var next string
	for _, r := range tree.Revisions {
		if r.ParentID != nil && *r.ParentID == tree.CurrentID {
			next = r.ID
		}
	}
	if next == "" {
		return nil, ErrNothingToRedo
	}
	return s.Restore(ctx, pageID, next)
}

// History returns the page's revision tree, nil when it has none.
func (s *PageService) History(pageID string) (*domain.RevisionTree, error) {
	if _, err := s.Get(pageID); err != nil {
		return nil, err
	}
	return s.revisions.Tree(pageID)
}

// Diff returns a unified diff between two revisions.
func (s *PageService) Diff(fromID, toID string) (string, error) {
	return s.revisions.Diff(fromID, toID)
}

// PruneAll trims every page's history to keep revisions.
func (s *PageService) PruneAll(ctx context.Context, keep int) (int, error) {
	pages, err := s.pages.ListPages()
	if err != nil {
		return 0, err
	}
	total := 0
	var errs []error
	for _, p := range pages {
		n, err := s.revisions.Prune(p.ID, keep)
		if err != nil {
			errs = append(errs, fmt.Errorf("prune %s: %w", p.ID, err))
			continue
		}
		total += n
	}
	if total > 0 {
		s.emitter.Emit(ctx, EventRevisionsPruned, total)
	}
	return total, errors.Join(errs...)
}

// Slugify lowercases s and joins its letters and digits with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	return b.String()
}
