package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/model"
	"github.com/Veraticus/toolshed/internal/service"
)

// Bootstrap loads the catalog, then every tool's approved reviews concurrently,
// then the moderation queue when the session is privileged.
// A failed tool listing leaves both collections empty and is returned.
// When a newer listing was applied meanwhile, only the reviews are merged in.
// Failed review fetches degrade to empty results and are only logged.
func (s *Store) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	tools, err := s.gw.ListTools(ctx, service.ToolQuery{})
	if err != nil {
		s.mu.Lock()
		if seq >= s.appliedSeq {
			s.tools = nil
			s.reviews = nil
			s.appliedSeq = seq
		}
		s.mu.Unlock()
		return fmt.Errorf("failed to load tools: %w", err)
	}

	perTool := s.fetchApproved(ctx, tools)

	var reviews []model.Review
	seen := make(map[string]struct{})
	add := func(r model.Review) {
		if _, dup := seen[r.ID]; dup {
			return
		}
		seen[r.ID] = struct{}{}
		reviews = append(reviews, r)
	}
	for _, rs := range perTool {
		for _, r := range rs {
			add(r)
		}
	}

	if token, ok := s.canPersist(); ok {
		pending, err := s.gw.PendingReviews(ctx, token)
		if err != nil {
			common.LogDebug(ctx, err, "Failed to load pending reviews", nil)
		}
		for _, r := range pending {
			add(r)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.appliedSeq {
		// A newer tool listing already landed; keep it and merge the reviews.
		s.reviews = mergeReviews(s.reviews, reviews)
		slog.Debug("Catalog reviews merged after a newer listing", "reviews", len(reviews))
		return nil
	}
	s.tools = tools
	s.reviews = reviews
	s.appliedSeq = seq

	slog.Debug("Catalog loaded", "tools", len(tools), "reviews", len(reviews))
	return nil
}

// mergeReviews overlays fetched onto current by id. Reviews only known
// locally are kept after the fetched ones.
func mergeReviews(current, fetched []model.Review) []model.Review {
	merged := make([]model.Review, 0, len(current)+len(fetched))
	seen := make(map[string]struct{}, len(fetched))
	for _, r := range fetched {
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range current {
		if _, ok := seen[r.ID]; !ok {
			merged = append(merged, r)
		}
	}
	return merged
}

// fetchApproved returns the approved reviews of each tool, in tool order.
func (s *Store) fetchApproved(ctx context.Context, tools []model.Tool) [][]model.Review {
	perTool := make([][]model.Review, len(tools))
	if len(tools) == 0 {
		return perTool
	}

	if s.progress != nil {
		s.progress.Start(len(tools))
		defer s.progress.Finish()
	}

	var g errgroup.Group
	g.SetLimit(s.fanOut)
	for i, tool := range tools {
		g.Go(func() error {
			rs, err := s.gw.ApprovedReviews(ctx, tool.ID)
			if err != nil {
				common.LogDebug(ctx, err, "Failed to load reviews", common.Fields{"tool_id": tool.ID})
				rs = nil
			}
			perTool[i] = rs
			if s.progress != nil {
				s.progress.Advance()
			}
			return nil
		})
	}
	_ = g.Wait()
	return perTool
}
