package awards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garrow/portfolio/internal/store"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog()
	require.NoError(t, err)
	require.NotEmpty(t, catalog)

	seen := map[string]bool{}
	for _, a := range catalog {
		assert.NotEmpty(t, a.Name)
		assert.NotEmpty(t, a.Criterion)
		assert.Positive(t, a.Value)
		assert.False(t, seen[a.ID()], "award ids must be unique: %s", a.ID())
		seen[a.ID()] = true
	}
}

func TestEarned_ItemsCriterion(t *testing.T) {
	a := Award{Name: "First Steps", Criterion: "items", Value: 10}

	assert.False(t, Earned(a, store.Totals{Items: 9}))
	assert.True(t, Earned(a, store.Totals{Items: 10}))
	assert.True(t, Earned(a, store.Totals{Items: 11}))
}

func TestEarned_CompleteCriterion(t *testing.T) {
	a := Award{Name: "Finisher", Criterion: "complete", Value: 5}

	// Only completed items count, not the overall total.
	assert.False(t, Earned(a, store.Totals{Items: 100, Completed: 4}))
	assert.True(t, Earned(a, store.Totals{Items: 5, Completed: 5}))
}

func TestEarned_UnknownCriterionNeverEarned(t *testing.T) {
	a := Award{Name: "Chatty", Criterion: "chat", Value: 1}

	assert.False(t, Earned(a, store.Totals{Items: 1000, Completed: 1000}))
}

func TestEvaluateAll_Deterministic(t *testing.T) {
	catalog, err := LoadCatalog()
	require.NoError(t, err)

	totals := store.Totals{Items: 50, Completed: 10}
	first := EvaluateAll(catalog, totals)
	second := EvaluateAll(catalog, totals)

	// Same aggregates, same earned set, in catalog order.
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID(), second[i].ID())
	}
}

func TestEvaluateAll_ThresholdsAgainstCatalog(t *testing.T) {
	catalog, err := LoadCatalog()
	require.NoError(t, err)

	totals := store.Totals{Items: 50, Completed: 10}
	earned := map[string]bool{}
	for _, a := range EvaluateAll(catalog, totals) {
		earned[a.ID()] = true
	}

	for _, a := range catalog {
		switch a.Criterion {
		case "items":
			assert.Equal(t, a.Value <= 50, earned[a.ID()], "award %s", a.ID())
		case "complete":
			assert.Equal(t, a.Value <= 10, earned[a.ID()], "award %s", a.ID())
		default:
			assert.False(t, earned[a.ID()], "unknown criterion must not earn: %s", a.ID())
		}
	}
}

func TestEvaluateAll_LargeCatalogSingleAggregate(t *testing.T) {
	base, err := LoadCatalog()
	require.NoError(t, err)

	// Evaluation cost must not depend on item scans per award, so a
	// much larger catalog is evaluated against one Totals snapshot.
	catalog := make([]Award, 0, len(base)*25)
	for i := 0; i < 25; i++ {
		catalog = append(catalog, base...)
	}

	s, err := store.OpenMemory()
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.ResetSampleData())

	totals := s.Totals()
	assert.Equal(t, 50, totals.Items)

	earned := EvaluateAll(catalog, totals)
	assert.Len(t, earned, 25*countEarnable(base, totals))
	for i := range earned {
		require.Contains(t, []string{"items", "complete"}, earned[i].Criterion)
	}
}

// countEarnable returns how many catalog entries the given aggregates
// satisfy.
func countEarnable(catalog []Award, totals store.Totals) int {
	n := 0
	for _, a := range catalog {
		switch a.Criterion {
		case "items":
			if totals.Items >= a.Value {
				n++
			}
		case "complete":
			if totals.Completed >= a.Value {
				n++
			}
		}
	}
	return n
}
