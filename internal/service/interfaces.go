// Package service defines the contracts between the toolshed layers.
package service

import (
	"context"

	"github.com/Veraticus/toolshed/internal/model"
)

// ToolQuery narrows the server-side tool listing. Zero values are omitted from the request.
type ToolQuery struct {
	Category  model.Category
	Pricing   model.PricingModel
	MinRating float64
}

// ToolPayload is the body the API expects for tool create and update.
type ToolPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UseCase     string `json:"useCase"`
	Category    string `json:"category"`
	Pricing     string `json:"pricing"`
	Website     string `json:"website,omitempty"`
}

// ToolPayloadFrom builds the wire body for t.
func ToolPayloadFrom(t model.Tool) ToolPayload {
	return ToolPayload{
		Name:        t.Name,
		Description: t.Description,
		UseCase:     t.UseCase,
		Category:    string(t.Category),
		Pricing:     string(t.PricingModel),
		Website:     t.Website,
	}
}

// ReviewPayload is the body of a review submission.
type ReviewPayload struct {
	Comment string `json:"comment,omitempty"`
	Rating  int    `json:"rating"`
}

// SubmitResult is the server acknowledgement of a review submission.
// ID is empty when the server did not return one.
type SubmitResult struct {
	ID      string
	Message string
}

// Stats holds the admin dashboard counters.
type Stats struct {
	Users   int `json:"users"`
	Tools   int `json:"tools"`
	Reviews int `json:"reviews"`
}

// Gateway is the catalog and review surface of the remote API.
// Privileged methods fail with common.ErrMissingCredential when token is empty.
type Gateway interface {
	ListTools(ctx context.Context, query ToolQuery) ([]model.Tool, error)
	GetTool(ctx context.Context, id string) (*model.Tool, error)
	ApprovedReviews(ctx context.Context, toolID string) ([]model.Review, error)
	PendingReviews(ctx context.Context, token string) ([]model.Review, error)
	SubmitReview(ctx context.Context, toolID string, payload ReviewPayload, token string) (SubmitResult, error)
	SetReviewStatus(ctx context.Context, reviewID string, status model.ReviewStatus, token string) error
	CreateTool(ctx context.Context, payload ToolPayload, token string) error
	UpdateTool(ctx context.Context, id string, payload ToolPayload, token string) error
	DeleteTool(ctx context.Context, id string, token string) error
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, username, password string, role model.Role) (string, error)
}

// CredentialStore persists the bearer token across runs.
// GetCredential returns common.ErrNotFound when key has no value.
type CredentialStore interface {
	GetCredential(ctx context.Context, key string) (string, error)
	SaveCredential(ctx context.Context, key, value string) error
	DeleteCredential(ctx context.Context, key string) error
}
