package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func itemAt(completed bool, priority int, created time.Time, id string) Item {
	return Item{ID: id, Completed: completed, Priority: priority, CreatedAt: created}
}

func TestOptimizedLess_CompletedBeatsPriority(t *testing.T) {
	now := time.Now()
	incomplete := itemAt(false, PriorityLow, now, "a")
	complete := itemAt(true, PriorityHigh, now.Add(-time.Hour), "b")

	assert.True(t, OptimizedLess(&incomplete, &complete),
		"an incomplete item sorts before a complete one regardless of priority")
	assert.False(t, OptimizedLess(&complete, &incomplete))
}

func TestOptimizedLess_PriorityDescending(t *testing.T) {
	now := time.Now()
	high := itemAt(false, PriorityHigh, now, "a")
	low := itemAt(false, PriorityLow, now.Add(-time.Hour), "b")

	assert.True(t, OptimizedLess(&high, &low))
	assert.False(t, OptimizedLess(&low, &high))
}

func TestOptimizedLess_CreationDateAscending(t *testing.T) {
	now := time.Now()
	older := itemAt(false, PriorityMedium, now.Add(-time.Hour), "a")
	newer := itemAt(false, PriorityMedium, now, "b")

	assert.True(t, OptimizedLess(&older, &newer))
	assert.False(t, OptimizedLess(&newer, &older))
}

func TestOptimizedLess_StrictWeakOrdering(t *testing.T) {
	now := time.Now()
	items := []Item{
		itemAt(true, PriorityHigh, now, "a"),
		itemAt(false, PriorityLow, now.Add(time.Minute), "b"),
		itemAt(false, PriorityHigh, now.Add(2*time.Minute), "c"),
		itemAt(true, PriorityLow, now.Add(-time.Minute), "d"),
		itemAt(false, PriorityHigh, now.Add(time.Minute), "e"),
	}

	// Irreflexive and asymmetric over every pair.
	for i := range items {
		assert.False(t, OptimizedLess(&items[i], &items[i]))
		for j := range items {
			if OptimizedLess(&items[i], &items[j]) {
				assert.False(t, OptimizedLess(&items[j], &items[i]),
					"ordering must be asymmetric")
			}
		}
	}

	SortItems(items, SortOptimized)
	assert.Equal(t, []string{"e", "c", "b", "a", "d"}, []string{
		items[0].ID, items[1].ID, items[2].ID, items[3].ID, items[4].ID,
	})
}

func TestSortItems_ByTitle(t *testing.T) {
	now := time.Now()
	items := []Item{
		{ID: "1", Title: "banana", CreatedAt: now},
		{ID: "2", Title: "apple", CreatedAt: now},
		{ID: "3", Title: "cherry", CreatedAt: now},
	}
	SortItems(items, SortTitle)
	assert.Equal(t, "apple", items[0].Title)
	assert.Equal(t, "cherry", items[2].Title)
}

func TestDisplayTitleFallbacks(t *testing.T) {
	p := Project{}
	assert.Equal(t, "New Project", p.DisplayTitle())
	p.Title = "Renovation"
	assert.Equal(t, "Renovation", p.DisplayTitle())

	it := Item{}
	assert.Equal(t, "New Item", it.DisplayTitle())
	it.Title = "Paint the wall"
	assert.Equal(t, "Paint the wall", it.DisplayTitle())
}

func TestDisplayColor(t *testing.T) {
	p := Project{}
	assert.Equal(t, DefaultColor, p.DisplayColor())

	p.Color = "nonsense"
	assert.Equal(t, DefaultColor, p.DisplayColor())

	p.Color = "Midnight"
	assert.Equal(t, "Midnight", p.DisplayColor())
}

func TestCompletionAmount(t *testing.T) {
	assert.Equal(t, 0.0, CompletionAmount(nil))

	items := []Item{
		{Completed: true},
		{Completed: false},
		{Completed: true},
		{Completed: false},
	}
	assert.Equal(t, 0.5, CompletionAmount(items))
}
