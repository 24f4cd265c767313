package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"pagebuilder/internal/codec"
	"pagebuilder/internal/domain"
)

// RevisionStore keeps the revision tree of each page in SQLite. Snapshots
// are deterministic CBOR; the blake3 fingerprint of the snapshot detects
// saves that changed nothing.
type RevisionStore struct {
	db    *DB
	limit int
}

// NewRevisionStore returns a store that prunes a page's oldest revisions
// once it has more than limit. A limit of zero disables pruning on push.
func NewRevisionStore(db *DB, limit int) *RevisionStore {
	return &RevisionStore{db: db, limit: limit}
}

const revisionColumns = `id, page_id, parent_id, label, fingerprint, snapshot, created_at`

// Push records schema as a child of parentID, or of the page's current
// revision when parentID is empty, and makes it current. When the snapshot
// is identical to the parent's, nothing is written and the parent is
// returned with false.
func (s *RevisionStore) Push(pageID, parentID, label string, schema domain.PageSchema) (*domain.Revision, bool, error) {
	snapshot, err := codec.Encode(schema)
	if err != nil {
		return nil, false, err
	}
	fingerprint := codec.Sum(snapshot)

	if parentID == "" {
		if parentID, err = s.Current(pageID); err != nil {
			return nil, false, err
		}
	}
	if parentID != "" {
		parent, err := s.get(parentID)
		if err != nil {
			return nil, false, fmt.Errorf("load parent revision: %w", err)
		}
		if parent.PageID != pageID {
			return nil, false, fmt.Errorf("revision %s belongs to page %s", parentID, parent.PageID)
		}
		if parent.Fingerprint == fingerprint {
			return parent, false, s.GoTo(pageID, parent.ID)
		}
	}

	rev := &domain.Revision{
		ID:          uuid.NewString(),
		PageID:      pageID,
		Label:       label,
		Fingerprint: fingerprint,
		Snapshot:    snapshot,
		CreatedAt:   time.Now().UTC(),
	}
	if parentID != "" {
		rev.ParentID = &parentID
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO revisions (`+revisionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rev.ID, rev.PageID, rev.ParentID, rev.Label, rev.Fingerprint, rev.Snapshot, rev.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert revision: %w", err)
	}
	if err := setCurrent(tx, pageID, rev.ID); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	if s.limit > 0 {
		if _, err := s.Prune(pageID, s.limit); err != nil {
			return rev, true, fmt.Errorf("prune revisions: %w", err)
		}
	}
	return rev, true, nil
}

// Load returns a revision with its decoded schema.
func (s *RevisionStore) Load(id string) (*domain.Revision, domain.PageSchema, error) {
	rev, err := s.get(id)
	if err != nil {
		return nil, domain.PageSchema{}, fmt.Errorf("load revision: %w", err)
	}
	schema, err := codec.Decode(rev.Snapshot)
	if err != nil {
		return nil, domain.PageSchema{}, err
	}
	return rev, schema, nil
}

func (s *RevisionStore) get(id string) (*domain.Revision, error) {
	var rev domain.Revision
	err := s.db.conn.QueryRow(`SELECT `+revisionColumns+` FROM revisions WHERE id = ?`, id).
		Scan(&rev.ID, &rev.PageID, &rev.ParentID, &rev.Label, &rev.Fingerprint, &rev.Snapshot, &rev.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// Tree returns every revision of a page, oldest first. It returns nil when
// the page has no revisions yet.
func (s *RevisionStore) Tree(pageID string) (*domain.RevisionTree, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, page_id, parent_id, label, fingerprint, created_at
		 FROM revisions WHERE page_id = ? ORDER BY created_at ASC, rowid ASC`, pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("load revisions: %w", err)
	}
	defer rows.Close()

	var revs []domain.Revision
	var rootID string
	for rows.Next() {
		var r domain.Revision
		if err := rows.Scan(&r.ID, &r.PageID, &r.ParentID, &r.Label, &r.Fingerprint, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		if r.ParentID == nil && rootID == "" {
			rootID = r.ID
		}
		revs = append(revs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, nil
	}

	currentID, err := s.Current(pageID)
	if err != nil {
		return nil, err
	}
	if currentID == "" {
		currentID = revs[len(revs)-1].ID
	}
	return &domain.RevisionTree{Revisions: revs, CurrentID: currentID, RootID: rootID}, nil
}

// Current returns the page's current revision id, or "" when it has none.
func (s *RevisionStore) Current(pageID string) (string, error) {
	var id string
	err := s.db.conn.QueryRow(`SELECT current_revision_id FROM revision_state WHERE page_id = ?`, pageID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load current revision: %w", err)
	}
	return id, nil
}

// GoTo moves the page's current pointer to revisionID.
func (s *RevisionStore) GoTo(pageID, revisionID string) error {
	var owner string
	err := s.db.conn.QueryRow(`SELECT page_id FROM revisions WHERE id = ?`, revisionID).Scan(&owner)
	if err != nil {
		return fmt.Errorf("go to revision: %w", err)
	}
	if owner != pageID {
		return fmt.Errorf("revision %s belongs to page %s", revisionID, owner)
	}
	return setCurrent(s.db.conn, pageID, revisionID)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setCurrent(db execer, pageID, revisionID string) error {
	_, err := db.Exec(
		`INSERT INTO revision_state (page_id, current_revision_id) VALUES (?, ?)
		 ON CONFLICT(page_id) DO UPDATE SET current_revision_id = excluded.current_revision_id`,
		pageID, revisionID,
	)
	if err != nil {
		return fmt.Errorf("update revision state: %w", err)
	}
	return nil
}

// Prune deletes the oldest revisions of a page until at most keep remain.
// The current revision is never deleted; children of a deleted revision
// are re-parented to its parent so the tree stays connected.
func (s *RevisionStore) Prune(pageID string, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	var count int
	if err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM revisions WHERE page_id = ?`, pageID).Scan(&count); err != nil {
		return 0, err
	}
	if count <= keep {
		return 0, nil
	}

	currentID, err := s.Current(pageID)
	if err != nil {
		return 0, err
	}

	// Collect ids before any write; the single connection cannot interleave
	// an open cursor with updates.
	rows, err := s.db.conn.Query(
		`SELECT id, parent_id FROM revisions WHERE page_id = ?
		 ORDER BY created_at ASC, rowid ASC LIMIT ?`, pageID, count-keep+1,
	)
	if err != nil {
		return 0, err
	}
	type victim struct {
		id     string
		parent sql.NullString
	}
	var victims []victim
	for rows.Next() {
		var v victim
		if err := rows.Scan(&v.id, &v.parent); err != nil {
			rows.Close()
			return 0, err
		}
		if v.id != currentID {
			victims = append(victims, v)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(victims) > count-keep {
		victims = victims[:count-keep]
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, v := range victims {
		// The parent may itself have been deleted earlier in this loop;
		// read it inside the transaction.
		var parent sql.NullString
		if err := tx.QueryRow(`SELECT parent_id FROM revisions WHERE id = ?`, v.id).Scan(&parent); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`UPDATE revisions SET parent_id = ? WHERE parent_id = ?`, parent, v.id); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`DELETE FROM revisions WHERE id = ?`, v.id); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(victims), nil
}

// ClearPage removes all revision data for a page.
func (s *RevisionStore) ClearPage(pageID string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM revision_state WHERE page_id = ?`, pageID); err != nil {
		return err
	}
	_, err := s.db.conn.Exec(`DELETE FROM revisions WHERE page_id = ?`, pageID)
	return err
}

// Diff returns a unified diff of the indented JSON of two revisions.
func (s *RevisionStore) Diff(fromID, toID string) (string, error) {
	_, from, err := s.Load(fromID)
	if err != nil {
		return "", err
	}
	_, to, err := s.Load(toID)
	if err != nil {
		return "", err
	}
	a, err := domain.MarshalSchemaIndent(from)
	if err != nil {
		return "", err
	}
	b, err := domain.MarshalSchemaIndent(to)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "revision/" + fromID,
		ToFile:   "revision/" + toID,
		Context:  3,
	})
}
