package storage

import (
	"database/sql"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// PageStore implements domain.PageStore using SQLite. The schema is stored
// as JSON, the same shape the content API exchanges.
type PageStore struct {
	db *DB
}

func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

const pageColumns = `id, title, slug, schema_json, created_at, updated_at`

func (s *PageStore) CreatePage(p *domain.Page) error {
	data, err := domain.MarshalSchema(p.Schema)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err = s.db.conn.Exec(
		`INSERT INTO pages (`+pageColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, string(data), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}

func (s *PageStore) GetPage(id string) (*domain.Page, error) {
	p, err := scanPage(s.db.conn.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return p, nil
}

func (s *PageStore) GetPageBySlug(slug string) (*domain.Page, error) {
	p, err := scanPage(s.db.conn.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE slug = ?`, slug))
	if err != nil {
		return nil, fmt.Errorf("get page by slug: %w", err)
	}
	return p, nil
}

// ListPages returns every page, most recently updated first.
func (s *PageStore) ListPages() ([]domain.Page, error) {
	rows, err := s.db.conn.Query(`SELECT ` + pageColumns + ` FROM pages ORDER BY updated_at DESC, title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// UpdatePage writes title, slug and schema. It returns sql.ErrNoRows when
// the page does not exist.
func (s *PageStore) UpdatePage(p *domain.Page) error {
	data, err := domain.MarshalSchema(p.Schema)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.conn.Exec(
		`UPDATE pages SET title = ?, slug = ?, schema_json = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Slug, string(data), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return requireAffected(res)
}

// DeletePage removes the page; revisions go with it.
func (s *PageStore) DeletePage(id string) error {
	res, err := s.db.conn.Exec(`DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return requireAffected(res)
}

// Fingerprint summarizes the pages table so pollers can detect changes
// without reading rows.
func (s *PageStore) Fingerprint() (string, error) {
	var count int
	var maxUpdated sql.NullString
	err := s.db.conn.QueryRow(`SELECT COUNT(*), CAST(MAX(updated_at) AS TEXT) FROM pages`).Scan(&count, &maxUpdated)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d:%s", count, maxUpdated.String), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*domain.Page, error) {
	var p domain.Page
	var schemaJSON string
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &schemaJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	schema, err := domain.UnmarshalSchema([]byte(schemaJSON))
	if err != nil {
		return nil, err
	}
	p.Schema = schema
	return &p, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
