package server

import "fmt"

// migrate runs all database migrations
func (s *Server) migrate() error {
	migrations := []string{
		migrationCreateRecords,
	}

	for i, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// The parent reference is deferrable because a batch lists child
// records before their parent; the constraint is checked when the
// batch transaction commits. ON DELETE CASCADE implements the
// delete-children-with-parent propagation rule.
const migrationCreateRecords = `
CREATE TABLE IF NOT EXISTS records (
    id TEXT PRIMARY KEY,
    record_type TEXT NOT NULL,
    parent_id TEXT REFERENCES records(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
    position INTEGER NOT NULL DEFAULT 0,
    payload JSONB NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_records_parent ON records(parent_id);
CREATE INDEX IF NOT EXISTS idx_records_type ON records(record_type);
`
