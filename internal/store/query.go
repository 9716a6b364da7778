package store

import (
	"sort"

	"github.com/garrow/portfolio/internal/model"
)

// ProjectQuery selects and orders projects. A nil Where matches all.
// Projects are ordered by title ascending, ties broken by creation
// date then id so the ordering is total.
type ProjectQuery struct {
	Where func(*model.Project) bool
	Limit int
}

// ItemQuery selects and orders items. The predicate also receives the
// item's owning project so queries can filter on the relationship.
// A nil Where matches all.
type ItemQuery struct {
	Where func(it *model.Item, owner *model.Project) bool
	Order model.SortOrder
	Limit int
}

// OpenProjects matches projects that are not closed.
func OpenProjects() ProjectQuery {
	return ProjectQuery{Where: func(p *model.Project) bool { return !p.Closed }}
}

// ClosedProjects matches projects that are closed.
func ClosedProjects() ProjectQuery {
	return ProjectQuery{Where: func(p *model.Project) bool { return p.Closed }}
}

// TopItems matches the n highest-ranked incomplete items in open
// projects, in optimized order.
func TopItems(n int) ItemQuery {
	return ItemQuery{
		Where: func(it *model.Item, owner *model.Project) bool {
			return !it.Completed && owner != nil && !owner.Closed
		},
		Order: model.SortOptimized,
		Limit: n,
	}
}

// FetchProjects returns the committed projects matching q, ordered.
func (s *Store) FetchProjects(q ProjectQuery) []model.Project {
	s.stateMu.RLock()
	out := make([]model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if q.Where == nil || q.Where(&p) {
			out = append(out, cloneProject(p))
		}
	}
	s.stateMu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// CountProjects returns the number of committed projects matching q.
func (s *Store) CountProjects(q ProjectQuery) int {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	n := 0
	for _, p := range s.projects {
		if q.Where == nil || q.Where(&p) {
			n++
		}
	}
	return n
}

// FetchItems returns the committed items matching q, ordered.
func (s *Store) FetchItems(q ItemQuery) []model.Item {
	s.stateMu.RLock()
	out := make([]model.Item, 0, len(s.items))
	for _, it := range s.items {
		if q.Where == nil {
			out = append(out, it)
			continue
		}
		var owner *model.Project
		if p, ok := s.projects[it.ProjectID]; ok {
			owner = &p
		}
		if q.Where(&it, owner) {
			out = append(out, it)
		}
	}
	s.stateMu.RUnlock()

	model.SortItems(out, q.Order)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// CountItems returns the number of committed items matching q.
func (s *Store) CountItems(q ItemQuery) int {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	n := 0
	for _, it := range s.items {
		if q.Where == nil {
			n++
			continue
		}
		var owner *model.Project
		if p, ok := s.projects[it.ProjectID]; ok {
			owner = &p
		}
		if q.Where(&it, owner) {
			n++
		}
	}
	return n
}

// ItemsForProject returns the committed items owned by projectID in
// the given order.
func (s *Store) ItemsForProject(projectID string, order model.SortOrder) []model.Item {
	q := ItemQuery{
		Where: func(it *model.Item, _ *model.Project) bool { return it.ProjectID == projectID },
		Order: order,
	}
	return s.FetchItems(q)
}

// ProjectByID returns the committed project with the given id.
func (s *Store) ProjectByID(id string) (model.Project, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return cloneProject(p), nil
}

// ItemByID returns the committed item with the given id.
func (s *Store) ItemByID(id string) (model.Item, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return model.Item{}, ErrNotFound
	}
	return it, nil
}

// Totals holds the aggregate counts the award criteria evaluate
// against, computed in a single pass over the item set.
type Totals struct {
	Items     int
	Completed int
}

// Totals returns aggregate item counts from the committed snapshot.
func (s *Store) Totals() Totals {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	t := Totals{Items: len(s.items)}
	for _, it := range s.items {
		if it.Completed {
			t.Completed++
		}
	}
	return t
}
