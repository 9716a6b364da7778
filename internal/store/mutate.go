package store

import (
	"time"

	"github.com/garrow/portfolio/internal/model"
	"github.com/google/uuid"
)

// workingCopy is the committed snapshot with all buffered ops applied.
// Mutations validate and stage against it; queries never see it.
type workingCopy struct {
	projects map[string]model.Project
	items    map[string]model.Item
}

func newWorkingCopy(projects map[string]model.Project, items map[string]model.Item) workingCopy {
	w := workingCopy{
		projects: make(map[string]model.Project, len(projects)),
		items:    make(map[string]model.Item, len(items)),
	}
	for id, p := range projects {
		w.projects[id] = cloneProject(p)
	}
	for id, it := range items {
		w.items[id] = it
	}
	return w
}

func cloneProject(p model.Project) model.Project {
	if p.ReminderTime != nil {
		t := *p.ReminderTime
		p.ReminderTime = &t
	}
	return p
}

// op is one buffered mutation, applied to SQLite at commit time.
type opKind int

const (
	opPutProject opKind = iota
	opDeleteProject
	opPutItem
	opDeleteItem
	opWipe
)

type op struct {
	kind    opKind
	project model.Project
	item    model.Item
	id      string
	itemIDs []string // cascade-deleted item ids, for opDeleteProject
}

func (s *Store) stage(o op) {
	s.pending = append(s.pending, o)
}

// CreateProject stages a new project and returns it. An empty or
// unknown color resolves to the default.
func (s *Store) CreateProject(title, detail, color string) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Project{}, ErrClosed
	}

	if !model.ValidColor(color) {
		color = model.DefaultColor
	}
	p := model.Project{
		ID:        uuid.New().String(),
		Title:     title,
		Detail:    detail,
		Color:     color,
		CreatedAt: time.Now(),
	}
	s.work.projects[p.ID] = p
	s.stage(op{kind: opPutProject, project: p})
	return p, nil
}

// ProjectPatch carries optional field changes for a project. Nil
// fields are left untouched.
type ProjectPatch struct {
	Title  *string
	Detail *string
	Color  *string
	Closed *bool
}

// UpdateProject stages field changes to an existing project. Identity
// and creation date never change.
func (s *Store) UpdateProject(id string, patch ProjectPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	p, ok := s.work.projects[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Detail != nil {
		p.Detail = *patch.Detail
	}
	if patch.Color != nil {
		if model.ValidColor(*patch.Color) {
			p.Color = *patch.Color
		} else {
			p.Color = model.DefaultColor
		}
	}
	if patch.Closed != nil {
		p.Closed = *patch.Closed
	}
	s.work.projects[id] = p
	s.stage(op{kind: opPutProject, project: cloneProject(p)})
	return nil
}

// ToggleProjectClosed stages flipping the closed flag.
func (s *Store) ToggleProjectClosed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	p, ok := s.work.projects[id]
	if !ok {
		return ErrNotFound
	}
	p.Closed = !p.Closed
	s.work.projects[id] = p
	s.stage(op{kind: opPutProject, project: cloneProject(p)})
	return nil
}

// SetReminder stages the project's reminder state. When enabled, only
// the clock part of at is kept; when disabled the reminder time is
// cleared, so reminder time is set exactly when reminders are enabled.
func (s *Store) SetReminder(id string, enabled bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	p, ok := s.work.projects[id]
	if !ok {
		return ErrNotFound
	}
	p.ReminderEnabled = enabled
	if enabled {
		clock := time.Date(0, time.January, 1, at.Hour(), at.Minute(), 0, 0, time.UTC)
		p.ReminderTime = &clock
	} else {
		p.ReminderTime = nil
	}
	s.work.projects[id] = p
	s.stage(op{kind: opPutProject, project: cloneProject(p)})
	return nil
}

// DeleteProject stages deletion of a project and, in the same atomic
// unit, every item it owns.
func (s *Store) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.work.projects[id]; !ok {
		return ErrNotFound
	}
	var itemIDs []string
	for itemID, it := range s.work.items {
		if it.ProjectID == id {
			itemIDs = append(itemIDs, itemID)
			delete(s.work.items, itemID)
		}
	}
	delete(s.work.projects, id)
	s.stage(op{kind: opDeleteProject, id: id, itemIDs: itemIDs})
	return nil
}

// CreateItem stages a new item inside an existing project.
func (s *Store) CreateItem(projectID, title, detail string, priority int) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Item{}, ErrClosed
	}

	if _, ok := s.work.projects[projectID]; !ok {
		return model.Item{}, ErrNotFound
	}
	if priority < model.PriorityLow || priority > model.PriorityHigh {
		return model.Item{}, ErrInvalidPriority
	}
	it := model.Item{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     title,
		Detail:    detail,
		Priority:  priority,
		CreatedAt: time.Now(),
	}
	s.work.items[it.ID] = it
	s.stage(op{kind: opPutItem, item: it})
	return it, nil
}

// ItemPatch carries optional field changes for an item. Nil fields are
// left untouched. The owning project cannot change.
type ItemPatch struct {
	Title     *string
	Detail    *string
	Completed *bool
	Priority  *int
}

// UpdateItem stages field changes to an existing item.
func (s *Store) UpdateItem(id string, patch ItemPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	it, ok := s.work.items[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Title != nil {
		it.Title = *patch.Title
	}
	if patch.Detail != nil {
		it.Detail = *patch.Detail
	}
	if patch.Completed != nil {
		it.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		if *patch.Priority < model.PriorityLow || *patch.Priority > model.PriorityHigh {
			return ErrInvalidPriority
		}
		it.Priority = *patch.Priority
	}
	s.work.items[id] = it
	s.stage(op{kind: opPutItem, item: it})
	return nil
}

// ToggleItemCompleted stages flipping the completed flag.
func (s *Store) ToggleItemCompleted(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	it, ok := s.work.items[id]
	if !ok {
		return ErrNotFound
	}
	it.Completed = !it.Completed
	s.work.items[id] = it
	s.stage(op{kind: opPutItem, item: it})
	return nil
}

// DeleteItem stages deletion of a single item. The owning project is
// unaffected.
func (s *Store) DeleteItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.work.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.work.items, id)
	s.stage(op{kind: opDeleteItem, id: id})
	return nil
}

// DeleteAll stages a wipe of every project and item.
func (s *Store) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.work.projects = make(map[string]model.Project)
	s.work.items = make(map[string]model.Item)
	s.stage(op{kind: opWipe})
	return nil
}
