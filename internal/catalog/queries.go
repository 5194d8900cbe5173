package catalog

import (
	"slices"

	"github.com/Veraticus/toolshed/internal/filter"
	"github.com/Veraticus/toolshed/internal/model"
)

// Tool returns the tool with id.
func (s *Store) Tool(id string) (model.Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.toolIndexLocked(id)
	if idx < 0 {
		return model.Tool{}, false
	}
	return s.tools[idx], true
}

// Tools returns a snapshot of the catalog in load order.
func (s *Store) Tools() []model.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tools)
}

// Reviews returns a snapshot of every known review.
func (s *Store) Reviews() []model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.reviews)
}

// ReviewsForTool returns the reviews of toolID, any status.
func (s *Store) ReviewsForTool(toolID string) []model.Review {
	return s.reviewsWhere(func(r model.Review) bool { return r.ToolID == toolID })
}

// ApprovedReviewsForTool returns the public reviews of toolID.
func (s *Store) ApprovedReviewsForTool(toolID string) []model.Review {
	return s.reviewsWhere(func(r model.Review) bool {
		return r.ToolID == toolID && r.Status == model.ReviewApproved
	})
}

// PendingReviews returns the moderation queue.
func (s *Store) PendingReviews() []model.Review {
	return s.reviewsWhere(func(r model.Review) bool { return r.Status == model.ReviewPending })
}

func (s *Store) reviewsWhere(keep func(model.Review) bool) []model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Review
	for _, r := range s.reviews {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Filters returns the active filter state.
func (s *Store) Filters() model.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.filters
	f.Categories = slices.Clone(f.Categories)
	f.PricingModels = slices.Clone(f.PricingModels)
	return f
}

// SetFilters replaces the filter state after validating it.
func (s *Store) SetFilters(f model.FilterState) error {
	if err := f.Validate(); err != nil {
		return err
	}
	f.Categories = slices.Clone(f.Categories)
	f.PricingModels = slices.Clone(f.PricingModels)

	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
	return nil
}

// FilteredTools applies the active filters to the catalog.
func (s *Store) FilteredTools() []model.Tool {
	s.mu.Lock()
	tools := slices.Clone(s.tools)
	f := s.filters
	s.mu.Unlock()
	return filter.Apply(tools, f)
}
