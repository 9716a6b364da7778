package model

import (
	"sort"
	"time"
)

// Priority levels for items
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Item represents a single piece of work inside a project
type Item struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail"`
	Completed bool      `json:"completed"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayTitle returns the title, falling back to a placeholder for
// items saved without one.
func (i *Item) DisplayTitle() string {
	if i.Title == "" {
		return "New Item"
	}
	return i.Title
}

// SortOrder selects how a list of items is ordered.
type SortOrder int

const (
	// SortOptimized ranks incomplete before complete, then priority
	// descending, then creation date ascending.
	SortOptimized SortOrder = iota
	// SortTitle orders by title ascending.
	SortTitle
	// SortCreationDate orders by creation date ascending.
	SortCreationDate
)

// OptimizedLess is the canonical item comparator: incomplete items
// first, then higher priority, then earlier creation date. The final
// id tie-break keeps the ordering total for items created in the same
// instant.
func OptimizedLess(a, b *Item) bool {
	if a.Completed != b.Completed {
		return !a.Completed
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortItems sorts items in place according to order.
func SortItems(items []Item, order SortOrder) {
	switch order {
	case SortTitle:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Title != items[j].Title {
				return items[i].Title < items[j].Title
			}
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	case SortCreationDate:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return OptimizedLess(&items[i], &items[j])
		})
	}
}
