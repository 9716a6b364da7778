package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/garrow/portfolio/internal/model"
	_ "modernc.org/sqlite"
)

// Kind identifies an entity kind touched by a commit. Live queries use
// it to skip re-evaluation for commits that cannot affect them.
type Kind uint8

const (
	KindProject Kind = 1 << iota
	KindItem
)

// Commit describes one successfully committed batch of mutations. All
// slices hold copies taken at commit time; subscribers never share
// mutable state with the write path.
type Commit struct {
	Kinds           Kind
	SavedProjects   []model.Project
	DeletedProjects []string
	SavedItems      []model.Item
	DeletedItems    []string
	Wiped           bool
}

// Touches reports whether the commit touched the given kind.
func (c Commit) Touches(k Kind) bool {
	return c.Kinds&k != 0
}

// Subscriber receives committed batches in commit order.
type Subscriber func(Commit)

// Store owns the durable Project/Item graph.
//
// Mutations are buffered against an in-memory working copy and become
// visible to queries only after Commit writes them to SQLite in one
// transaction. All mutations serialize through a single lock; queries
// read the last committed snapshot.
type Store struct {
	db *sql.DB

	// mu serializes mutations and commits (single logical writer);
	// stateMu guards the committed snapshot read by queries.
	mu      sync.Mutex
	stateMu sync.RWMutex

	projects map[string]model.Project // committed snapshot
	items    map[string]model.Item
	work     workingCopy // committed snapshot with buffered ops applied
	pending  []op

	commits chan Commit
	done    chan struct{}
	subs    *subscriberList
	closed  bool
}

// DefaultPath returns the default database path (~/.portfolio/portfolio.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".portfolio", "portfolio.db"), nil
}

// Open opens or creates the store at path. The whole object graph is
// loaded into memory; a load failure is returned to the caller and is
// fatal for the process (queries over a partially loaded graph are
// undefined).
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return open(path)
}

// OpenMemory opens a volatile store that never persists to disk, for
// tests and previews.
func OpenMemory() (*Store, error) {
	return open(":memory:")
}

func open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection also
	// keeps the :memory: variant on one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Store{
		db:      db,
		commits: make(chan Commit, 64),
		done:    make(chan struct{}),
		subs:    newSubscriberList(),
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	go s.dispatch()
	return s, nil
}

// load reads the full graph from SQLite into the committed snapshot.
func (s *Store) load() error {
	projects := make(map[string]model.Project)
	items := make(map[string]model.Item)

	rows, err := s.db.Query(`SELECT id, title, detail, color, closed, created_at, reminder_enabled, reminder_time FROM projects`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Project
		var closed, reminderEnabled int
		var createdAt string
		var reminderTime sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Detail, &p.Color, &closed, &createdAt, &reminderEnabled, &reminderTime); err != nil {
			return err
		}
		p.Closed = closed != 0
		p.ReminderEnabled = reminderEnabled != 0
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("project %s: %w", p.ID, err)
		}
		if reminderTime.Valid {
			t, err := parseClock(reminderTime.String)
			if err != nil {
				return fmt.Errorf("project %s: %w", p.ID, err)
			}
			p.ReminderTime = &t
		}
		projects[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return err
	}

	itemRows, err := s.db.Query(`SELECT id, project_id, title, detail, completed, priority, created_at FROM items`)
	if err != nil {
		return err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it model.Item
		var completed int
		var createdAt string
		if err := itemRows.Scan(&it.ID, &it.ProjectID, &it.Title, &it.Detail, &completed, &it.Priority, &createdAt); err != nil {
			return err
		}
		it.Completed = completed != 0
		if it.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("item %s: %w", it.ID, err)
		}
		items[it.ID] = it
	}
	if err := itemRows.Err(); err != nil {
		return err
	}

	s.projects = projects
	s.items = items
	s.work = newWorkingCopy(projects, items)
	return nil
}

// OnCommit registers fn to receive every subsequent commit, in commit
// order. The returned function deregisters; calling it more than once
// is a no-op.
func (s *Store) OnCommit(fn Subscriber) (cancel func()) {
	return s.subs.add(fn)
}

// dispatch delivers commits to subscribers on its own goroutine so the
// write path never waits on them.
func (s *Store) dispatch() {
	defer close(s.done)
	for c := range s.commits {
		for _, fn := range s.subs.snapshot() {
			fn(c)
		}
	}
}

// Close stops commit delivery and closes the database. Pending
// uncommitted changes are discarded.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.commits)
	s.mu.Unlock()

	<-s.done
	return s.db.Close()
}

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}

// Reminder times are date-independent; only the clock is stored.
const clockFormat = "15:04"

func formatClock(t time.Time) string {
	return t.Format(clockFormat)
}

func parseClock(s string) (time.Time, error) {
	t, err := time.Parse(clockFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad reminder time %q: %w", s, err)
	}
	return t, nil
}
