package domain

import "time"

// Page is the content record that owns one schema. The schema round-trips
// through the record's JSON content field.
type Page struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Schema    PageSchema `json:"schema"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Revision is one saved snapshot of a page schema. Revisions form a tree
// per page through ParentID; restoring an old revision and saving again
// branches from it.
type Revision struct {
	ID          string    `json:"id"`
	PageID      string    `json:"pageId"`
	ParentID    *string   `json:"parentId"`
	Label       string    `json:"label"`
	Fingerprint string    `json:"fingerprint"`
	Snapshot    []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RevisionTree is the full history of a page.
type RevisionTree struct {
	Revisions []Revision `json:"revisions"`
	CurrentID string     `json:"currentId"`
	RootID    string     `json:"rootId"`
}

type PageStore interface {
	CreatePage(p *Page) error
	GetPage(id string) (*Page, error)
	GetPageBySlug(slug string) (*Page, error)
	ListPages() ([]Page, error)
	UpdatePage(p *Page) error
	DeletePage(id string) error
}

type RevisionStore interface {
	Push(pageID, parentID, label string, schema PageSchema) (*Revision, bool, error)
	Load(id string) (*Revision, PageSchema, error)
	Tree(pageID string) (*RevisionTree, error)
	Current(pageID string) (string, error)
	GoTo(pageID, revisionID string) error
	Prune(pageID string, keep int) (int, error)
	ClearPage(pageID string) error
	Diff(fromID, toID string) (string, error)
}
