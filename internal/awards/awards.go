// Package awards loads the static award catalog and evaluates which
// awards have been earned against store aggregates.
package awards

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed awards.json
var catalogJSON []byte

// Award is one entry of the bundled, read-only award catalog.
type Award struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Criterion   string `json:"criterion"`
	Value       int    `json:"value"`
	Image       string `json:"image"`
}

// ID returns the award's stable identifier. Catalog names are unique.
func (a Award) ID() string {
	return a.Name
}

// LoadCatalog decodes the bundled award catalog. Gamification is a
// primary feature surface, so callers should treat a failure here as
// fatal at startup.
func LoadCatalog() ([]Award, error) {
	var catalog []Award
	if err := json.Unmarshal(catalogJSON, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode award catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("award catalog is empty")
	}
	return catalog, nil
}
