// Package search maintains a best-effort full-text index over items
// and resolves external activity identifiers back to items for
// deep-linking. The index lives in its own database so losing or
// lagging it can never corrupt the primary store.
package search

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/garrow/portfolio/internal/logger"
	"github.com/garrow/portfolio/internal/model"
	"github.com/garrow/portfolio/internal/store"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const identifierPrefix = "portfolio://item/"

// ActivityIdentifier returns the opaque identifier published for an
// item, e.g. to the system search surface.
func ActivityIdentifier(itemID string) string {
	return identifierPrefix + itemID
}

// Entry is one indexed item.
type Entry struct {
	ItemID   string
	DomainID string // owning project id; used for bulk removal
	Title    string
	Detail   string
}

// Index is the search-index coordinator.
type Index struct {
	db *sql.DB
}

// Open opens or creates the index database at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	return open(path)
}

// OpenMemory opens a volatile index for tests.
func OpenMemory() (*Index, error) {
	return open(":memory:")
}

func open(dsn string) (*Index, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(migrationCreateEntries); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate index: %w", err)
	}
	return &Index{db: db}, nil
}

const migrationCreateEntries = `
CREATE TABLE IF NOT EXISTS entries (
    item_id TEXT PRIMARY KEY,
    domain_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_domain ON entries(domain_id);
`

// Close closes the index database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// UpsertItem indexes an item under its project's domain key.
func (ix *Index) UpsertItem(it model.Item) error {
	_, err := ix.db.Exec(`
		INSERT INTO entries (item_id, domain_id, title, detail)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			domain_id = excluded.domain_id,
			title = excluded.title,
			detail = excluded.detail`,
		it.ID, it.ProjectID, it.DisplayTitle(), it.Detail)
	return err
}

// DeleteItem removes one entry by item id. Unknown ids are a no-op.
func (ix *Index) DeleteItem(itemID string) error {
	_, err := ix.db.Exec(`DELETE FROM entries WHERE item_id = ?`, itemID)
	return err
}

// DeleteDomain removes every entry indexed under a project.
func (ix *Index) DeleteDomain(projectID string) error {
	_, err := ix.db.Exec(`DELETE FROM entries WHERE domain_id = ?`, projectID)
	return err
}

// DeleteAll wipes the index.
func (ix *Index) DeleteAll() error {
	_, err := ix.db.Exec(`DELETE FROM entries`)
	return err
}

// Search returns entries whose title or detail contains term.
func (ix *Index) Search(term string) ([]Entry, error) {
	pattern := "%" + escapeLike(term) + "%"
	rows, err := ix.db.Query(`
		SELECT item_id, domain_id, title, detail FROM entries
		WHERE title LIKE ? ESCAPE '\' OR detail LIKE ? ESCAPE '\'
		ORDER BY title, item_id`,
		pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ItemID, &e.DomainID, &e.Title, &e.Detail); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// LookupIdentifier resolves an activity identifier (or a bare item id)
// to the item id it names. Malformed or unknown identifiers return
// store.ErrNotFound rather than an internal error, so a stale deep
// link degrades to "not found".
func (ix *Index) LookupIdentifier(identifier string) (string, error) {
	id := strings.TrimPrefix(identifier, identifierPrefix)
	if _, err := uuid.Parse(id); err != nil {
		return "", store.ErrNotFound
	}

	var itemID string
	err := ix.db.QueryRow(`SELECT item_id FROM entries WHERE item_id = ?`, id).Scan(&itemID)
	if err == sql.ErrNoRows {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return itemID, nil
}

// HandleCommit reconciles the index with a committed batch. Failures
// are logged and swallowed; a stale index entry is acceptable, a
// blocked mutation is not.
func (ix *Index) HandleCommit(c store.Commit) {
	if !c.Touches(store.KindItem) && !c.Touches(store.KindProject) {
		return
	}
	if c.Wiped {
		if err := ix.DeleteAll(); err != nil {
			logger.Warn("search index wipe failed", logger.F("error", err))
		}
	}
	for _, id := range c.DeletedProjects {
		if err := ix.DeleteDomain(id); err != nil {
			logger.Warn("search index domain removal failed",
				logger.F("project", id), logger.F("error", err))
		}
	}
	for _, id := range c.DeletedItems {
		if err := ix.DeleteItem(id); err != nil {
			logger.Warn("search index removal failed",
				logger.F("item", id), logger.F("error", err))
		}
	}
	for _, it := range c.SavedItems {
		if err := ix.UpsertItem(it); err != nil {
			logger.Warn("search index upsert failed",
				logger.F("item", it.ID), logger.F("error", err))
		}
	}
}
