package store

import (
	"database/sql"
	"fmt"
)

// migrate runs all schema migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		migrationCreateProjects,
		migrationCreateItems,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateProjects = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT 'Light Blue',
    closed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    reminder_enabled INTEGER NOT NULL DEFAULT 0,
    reminder_time TEXT
);
`

const migrationCreateItems = `
CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    title TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    completed INTEGER NOT NULL DEFAULT 0,
    priority INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_project ON items(project_id);
CREATE INDEX IF NOT EXISTS idx_items_completed ON items(completed);
`
