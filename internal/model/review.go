package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

const (
	// ReviewPending is the initial state of every submitted review.
	ReviewPending ReviewStatus = "pending"
	// ReviewApproved counts toward the tool's aggregate rating.
	ReviewApproved ReviewStatus = "approved"
	// ReviewRejected is hidden from the public catalog.
	ReviewRejected ReviewStatus = "rejected"
)

// ErrInvalidTransition is returned when a review leaves a terminal status.
var ErrInvalidTransition = errors.New("invalid review status transition")

// IsValid reports whether s is a known status.
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s ReviewStatus) IsTerminal() bool {
	return s == ReviewApproved || s == ReviewRejected
}

// ParseReviewStatus matches s against the known statuses, ignoring case.
func ParseReviewStatus(s string) (ReviewStatus, bool) {
	status := ReviewStatus(strings.ToLower(strings.TrimSpace(s)))
	return status, status.IsValid()
}

// Transition validates a move from s to next.
// It returns changed=false when next equals the current status.
func (s ReviewStatus) Transition(next ReviewStatus) (changed bool, err error) {
	if !next.IsValid() {
		return false, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	if s == next {
		return false, nil
	}
	if s != ReviewPending || next == ReviewPending {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return true, nil
}

// MaxCommentLength bounds the comment text of a review, in runes.
const MaxCommentLength = 500

// Review is one user rating of a tool.
type Review struct {
	CreatedAt time.Time
	ID        string
	ToolID    string
	UserID    string
	UserName  string
	Comment   string
	Status    ReviewStatus
	Rating    int
}

// ReviewDraft is what a user submits; status and id are assigned by the store.
type ReviewDraft struct {
	ToolID   string `validate:"required"`
	UserID   string
	UserName string `validate:"required,max=50"`
	Comment  string `validate:"max=500"`
	Rating   int    `validate:"required,min=1,max=5"`
}

// Normalize trims the free-text fields.
func (d ReviewDraft) Normalize() ReviewDraft {
	d.ToolID = strings.TrimSpace(d.ToolID)
	d.UserName = strings.TrimSpace(d.UserName)
	d.Comment = strings.TrimSpace(d.Comment)
	return d
}

// Aggregate is the derived rating summary of a tool.
type Aggregate struct {
	AverageRating float64
	TotalReviews  int
}

// AggregateFor computes the rating summary of toolID from the approved reviews in reviews.
func AggregateFor(toolID string, reviews []Review) Aggregate {
	sum, count := 0, 0
	for _, r := range reviews {
		if r.ToolID != toolID || r.Status != ReviewApproved {
			continue
		}
		sum += r.Rating
		count++
	}
	if count == 0 {
		return Aggregate{}
	}
	return Aggregate{
		AverageRating: RoundRating(float64(sum) / float64(count)),
		TotalReviews:  count,
	}
}
