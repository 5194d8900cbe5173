package model

import (
	"fmt"
	"math"
	"strings"
)

// MaxRating is the highest rating a review can carry.
const MaxRating = 5

// FilterState selects the visible slice of the catalog. Empty sets match everything.
type FilterState struct {
	SearchQuery   string
	Categories    []Category
	PricingModels []PricingModel
	MinRating     float64
}

// Validate rejects unknown enum values and ratings outside 0-5 or off the half-point grid.
func (f FilterState) Validate() error {
	if f.MinRating < 0 || f.MinRating > MaxRating {
		return fmt.Errorf("minimum rating %.1f must be between 0 and %d", f.MinRating, MaxRating)
	}
	if doubled := f.MinRating * 2; doubled != math.Trunc(doubled) {
		return fmt.Errorf("minimum rating %v must be a multiple of 0.5", f.MinRating)
	}
	for _, c := range f.Categories {
		if !c.IsValid() {
			return fmt.Errorf("unknown category %q", c)
		}
	}
	for _, p := range f.PricingModels {
		if !p.IsValid() {
			return fmt.Errorf("unknown pricing model %q", p)
		}
	}
	return nil
}

// Query returns the trimmed, lower-cased search text.
func (f FilterState) Query() string {
	return strings.ToLower(strings.TrimSpace(f.SearchQuery))
}

// IsZero reports whether the filter lets every tool through.
func (f FilterState) IsZero() bool {
	return len(f.Categories) == 0 && len(f.PricingModels) == 0 && f.MinRating == 0 && f.Query() == ""
}
