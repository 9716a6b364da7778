package store

import (
	"database/sql"

	"github.com/garrow/portfolio/internal/logger"
	"github.com/garrow/portfolio/internal/model"
)

// Commit durably persists all buffered mutations in one transaction.
// On success the committed snapshot absorbs the buffer and subscribers
// are notified; on failure nothing becomes visible and the buffer is
// retained for a later retry. A commit with no pending changes is a
// no-op.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &CommitError{Op: "begin", Err: err}
	}
	for _, o := range s.pending {
		if err := applyOp(tx, o); err != nil {
			tx.Rollback()
			return &CommitError{Op: "apply", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &CommitError{Op: "commit", Err: err}
	}

	ev := buildCommit(s.pending)
	s.pending = nil

	s.stateMu.Lock()
	s.projects = make(map[string]model.Project, len(s.work.projects))
	for id, p := range s.work.projects {
		s.projects[id] = cloneProject(p)
	}
	s.items = make(map[string]model.Item, len(s.work.items))
	for id, it := range s.work.items {
		s.items[id] = it
	}
	s.stateMu.Unlock()

	// Delivered in commit order; the dispatcher only ever takes read
	// locks, so a full channel cannot deadlock the write path.
	s.commits <- ev
	return nil
}

// Save is the best-effort convenience path: it commits buffered
// changes and swallows any failure after logging it. Use Commit when
// the caller needs the durability guarantee.
func (s *Store) Save() {
	if err := s.Commit(); err != nil {
		logger.Warn("best-effort save failed", logger.F("error", err))
	}
}

func applyOp(tx *sql.Tx, o op) error {
	switch o.kind {
	case opPutProject:
		p := o.project
		var reminder sql.NullString
		if p.ReminderTime != nil {
			reminder = sql.NullString{String: formatClock(*p.ReminderTime), Valid: true}
		}
		_, err := tx.Exec(`
			INSERT INTO projects (id, title, detail, color, closed, created_at, reminder_enabled, reminder_time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				detail = excluded.detail,
				color = excluded.color,
				closed = excluded.closed,
				reminder_enabled = excluded.reminder_enabled,
				reminder_time = excluded.reminder_time`,
			p.ID, p.Title, p.Detail, p.Color, boolInt(p.Closed), formatTime(p.CreatedAt),
			boolInt(p.ReminderEnabled), reminder)
		return err

	case opDeleteProject:
		if _, err := tx.Exec(`DELETE FROM items WHERE project_id = ?`, o.id); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM projects WHERE id = ?`, o.id)
		return err

	case opPutItem:
		it := o.item
		_, err := tx.Exec(`
			INSERT INTO items (id, project_id, title, detail, completed, priority, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				detail = excluded.detail,
				completed = excluded.completed,
				priority = excluded.priority`,
			it.ID, it.ProjectID, it.Title, it.Detail, boolInt(it.Completed), it.Priority,
			formatTime(it.CreatedAt))
		return err

	case opDeleteItem:
		_, err := tx.Exec(`DELETE FROM items WHERE id = ?`, o.id)
		return err

	case opWipe:
		if _, err := tx.Exec(`DELETE FROM items`); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM projects`)
		return err
	}
	return nil
}

// buildCommit collapses the op buffer into one Commit event. Later ops
// win over earlier ones for the same entity.
func buildCommit(ops []op) Commit {
	savedProjects := make(map[string]model.Project)
	deletedProjects := make(map[string]bool)
	savedItems := make(map[string]model.Item)
	deletedItems := make(map[string]bool)
	var kinds Kind
	wiped := false

	for _, o := range ops {
		switch o.kind {
		case opPutProject:
			savedProjects[o.project.ID] = o.project
			delete(deletedProjects, o.project.ID)
			kinds |= KindProject
		case opDeleteProject:
			delete(savedProjects, o.id)
			deletedProjects[o.id] = true
			for _, itemID := range o.itemIDs {
				delete(savedItems, itemID)
				deletedItems[itemID] = true
			}
			kinds |= KindProject | KindItem
		case opPutItem:
			savedItems[o.item.ID] = o.item
			delete(deletedItems, o.item.ID)
			kinds |= KindItem
		case opDeleteItem:
			delete(savedItems, o.id)
			deletedItems[o.id] = true
			kinds |= KindItem
		case opWipe:
			savedProjects = make(map[string]model.Project)
			deletedProjects = make(map[string]bool)
			savedItems = make(map[string]model.Item)
			deletedItems = make(map[string]bool)
			wiped = true
			kinds |= KindProject | KindItem
		}
	}

	ev := Commit{Kinds: kinds, Wiped: wiped}
	for _, p := range savedProjects {
		ev.SavedProjects = append(ev.SavedProjects, cloneProject(p))
	}
	for id := range deletedProjects {
		ev.DeletedProjects = append(ev.DeletedProjects, id)
	}
	for _, it := range savedItems {
		ev.SavedItems = append(ev.SavedItems, it)
	}
	for id := range deletedItems {
		ev.DeletedItems = append(ev.DeletedItems, id)
	}
	return ev
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
