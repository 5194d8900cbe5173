package catalog

import (
	"context"
	"fmt"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/model"
	"github.com/Veraticus/toolshed/internal/service"
)

// Submission is the outcome of SubmitReview.
type Submission struct {
	// RemoteErr is set when the server could not be reached or refused the
	// review; the review is kept locally either way.
	RemoteErr error
	Review    model.Review
	Remote    bool
}

// SubmitReview adds a pending review for an existing tool. With a credential
// the server is tried first so its id can be adopted; otherwise, or on
// failure, the review is kept locally under a provisional id.
// Aggregates are unaffected until the review is approved.
func (s *Store) SubmitReview(ctx context.Context, draft model.ReviewDraft) (Submission, error) {
	draft = draft.Normalize()
	if err := model.ValidateReviewDraft(draft); err != nil {
		return Submission{}, err
	}

	s.mu.Lock()
	known := s.toolIndexLocked(draft.ToolID) >= 0
	s.mu.Unlock()
	if !known {
		return Submission{}, fmt.Errorf("tool %q: %w", draft.ToolID, common.ErrNotFound)
	}

	review := model.Review{
		ToolID:    draft.ToolID,
		UserID:    draft.UserID,
		UserName:  draft.UserName,
		Rating:    draft.Rating,
		Comment:   draft.Comment,
		Status:    model.ReviewPending,
		CreatedAt: s.now(),
	}

	var sub Submission
	if token := s.session.Token(); token != "" {
		res, err := s.gw.SubmitReview(ctx, draft.ToolID, service.ReviewPayload{
			Comment: draft.Comment,
			Rating:  draft.Rating,
		}, token)
		if err != nil {
			common.LogDebug(ctx, err, "Review submission failed; keeping it locally", common.Fields{"tool_id": draft.ToolID})
			sub.RemoteErr = err
		} else {
			sub.Remote = true
			review.ID = res.ID
		}
	}
	if review.ID == "" {
		review.ID = s.newID("review")
	}

	s.mu.Lock()
	s.reviews = append(s.reviews, review)
	s.mu.Unlock()

	sub.Review = review
	return sub, nil
}

// ApproveReview marks a pending review approved and recomputes its tool's
// aggregate before returning. Approving an approved review changes nothing.
// An unknown id is a no-op: both return values are nil.
func (s *Store) ApproveReview(ctx context.Context, id string) (*Task, error) {
	return s.moderate(ctx, id, model.ReviewApproved)
}

// RejectReview marks a pending review rejected. Aggregates are unaffected.
func (s *Store) RejectReview(ctx context.Context, id string) (*Task, error) {
	return s.moderate(ctx, id, model.ReviewRejected)
}

func (s *Store) moderate(ctx context.Context, id string, status model.ReviewStatus) (*Task, error) {
	s.mu.Lock()
	idx := s.reviewIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, nil
	}
	changed, err := s.reviews[idx].Status.Transition(status)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("review %q: %w", id, err)
	}
	if changed {
		s.reviews[idx].Status = status
	}
	if status == model.ReviewApproved {
		s.recomputeLocked(s.reviews[idx].ToolID)
	}
	s.mu.Unlock()

	if !changed {
		return nil, nil
	}
	token, ok := s.canPersist()
	if !ok {
		return nil, nil
	}

	return s.spawn(ctx, "set review status", common.Fields{"review_id": id, "status": string(status)}, func(ctx context.Context) error {
		return s.gw.SetReviewStatus(ctx, id, status, token)
	}), nil
}
