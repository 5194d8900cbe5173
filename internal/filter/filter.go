// Package filter derives the visible slice of the catalog from a FilterState.
package filter

import (
	"slices"
	"strings"

	"github.com/Veraticus/toolshed/internal/model"
)

// Apply returns the tools that satisfy every active predicate of f, in input order.
// The input slice is never modified.
func Apply(tools []model.Tool, f model.FilterState) []model.Tool {
	query := f.Query()
	out := make([]model.Tool, 0, len(tools))
	for _, t := range tools {
		if matches(t, f, query) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether a single tool passes f.
func Matches(t model.Tool, f model.FilterState) bool {
	return matches(t, f, f.Query())
}

func matches(t model.Tool, f model.FilterState, query string) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, t.Category) {
		return false
	}
	if len(f.PricingModels) > 0 && !slices.Contains(f.PricingModels, t.PricingModel) {
		return false
	}
	if t.AverageRating < f.MinRating {
		return false
	}

	// Search runs last and only when a query is present.
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), query) ||
		strings.Contains(strings.ToLower(t.Description), query) ||
		strings.Contains(strings.ToLower(t.UseCase), query)
}
