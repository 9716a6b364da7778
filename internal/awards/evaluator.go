package awards

import "github.com/garrow/portfolio/internal/store"

// criterionFunc extracts the count an award threshold is compared
// against. Criteria are data-driven: new ones are added here without
// touching evaluation.
type criterionFunc func(store.Totals) int

var criteria = map[string]criterionFunc{
	"items":    func(t store.Totals) int { return t.Items },
	"complete": func(t store.Totals) int { return t.Completed },
}

// Earned reports whether the award's criterion is satisfied by the
// given aggregates. Awards with a criterion this build does not know
// are never earned; the catalog anticipates more criteria than are
// implemented and an unknown tag must not break evaluation of the
// rest.
func Earned(a Award, totals store.Totals) bool {
	count, ok := criteria[a.Criterion]
	if !ok {
		return false
	}
	return count(totals) >= a.Value
}

// EvaluateAll returns the subset of catalog that is earned. The
// aggregates are computed once by the caller and reused for the whole
// batch, so catalog size does not multiply item scans.
func EvaluateAll(catalog []Award, totals store.Totals) []Award {
	var earned []Award
	for _, a := range catalog {
		if Earned(a, totals) {
			earned = append(earned, a)
		}
	}
	return earned
}
