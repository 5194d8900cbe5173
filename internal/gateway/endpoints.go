package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cast"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/model"
	"github.com/Veraticus/toolshed/internal/service"
)

var (
	_ service.Gateway       = (*Client)(nil)
	_ service.Authenticator = (*Client)(nil)
)

// ListTools fetches the catalog. Records that cannot be decoded are skipped and logged.
func (c *Client) ListTools(ctx context.Context, query service.ToolQuery) ([]model.Tool, error) {
	params := url.Values{}
	if query.Category != "" {
		params.Set("category", string(query.Category))
	}
	if query.Pricing != "" {
		params.Set("pricing", string(query.Pricing))
	}
	if query.MinRating > 0 {
		params.Set("minRating", strconv.FormatFloat(query.MinRating, 'f', -1, 64))
	}

	var records []map[string]any
	if err := c.get(ctx, request{op: "list tools", path: "/api/tools", query: params, out: &records}); err != nil {
		return nil, err
	}

	now := c.now()
	tools := make([]model.Tool, 0, len(records))
	for i, rec := range records {
		tool, err := DecodeTool(rec, now)
		if err != nil {
			slog.Warn("Skipping undecodable tool record", "index", i, "error", err)
			continue
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

// GetTool fetches a single tool.
func (c *Client) GetTool(ctx context.Context, id string) (*model.Tool, error) {
	var rec map[string]any
	if err := c.get(ctx, request{op: "get tool", path: "/api/tools/" + escape(id), out: &rec}); err != nil {
		return nil, err
	}

	tool, err := DecodeTool(rec, c.now())
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// ApprovedReviews fetches the public reviews of a tool.
func (c *Client) ApprovedReviews(ctx context.Context, toolID string) ([]model.Review, error) {
	var records []map[string]any
	if err := c.get(ctx, request{op: "approved reviews", path: "/api/reviews/" + escape(toolID), out: &records}); err != nil {
		return nil, err
	}
	return c.decodeReviews(records, toolID, model.ReviewApproved), nil
}

// PendingReviews fetches the moderation queue across all tools.
func (c *Client) PendingReviews(ctx context.Context, token string) ([]model.Review, error) {
	const op = "pending reviews"
	if err := requireToken(op, token); err != nil {
		return nil, err
	}

	var records []map[string]any
	if err := c.get(ctx, request{op: op, path: "/api/admin/reviews/pending", token: token, out: &records}); err != nil {
		return nil, err
	}
	return c.decodeReviews(records, "", model.ReviewPending), nil
}

func (c *Client) decodeReviews(records []map[string]any, toolID string, status model.ReviewStatus) []model.Review {
	now := c.now()
	reviews := make([]model.Review, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			continue
		}
		if toolID != "" {
			if _, ok := rec["toolId"]; !ok {
				rec["toolId"] = toolID
			}
		}
		review, err := DecodeReview(rec, status, now)
		if err != nil {
			slog.Warn("Skipping undecodable review record", "index", i, "error", err)
			continue
		}
		reviews = append(reviews, review)
	}
	return reviews
}

// SubmitReview posts a review for moderation. The token is optional.
func (c *Client) SubmitReview(ctx context.Context, toolID string, payload service.ReviewPayload, token string) (service.SubmitResult, error) {
	var rec map[string]any
	err := c.do(ctx, request{
		op:     "submit review",
		method: http.MethodPost,
		path:   "/api/reviews/" + escape(toolID),
		body:   payload,
		token:  token,
		out:    &rec,
	})
	if err != nil {
		return service.SubmitResult{}, err
	}

	result := service.SubmitResult{Message: cast.ToString(rec["message"])}
	if id, ok := rec["id"]; ok && id != nil {
		result.ID = cast.ToString(id)
	}
	return result, nil
}

// SetReviewStatus records a moderation decision.
func (c *Client) SetReviewStatus(ctx context.Context, reviewID string, status model.ReviewStatus, token string) error {
	const op = "set review status"
	if err := requireToken(op, token); err != nil {
		return err
	}
	return c.do(ctx, request{
		op:     op,
		method: http.MethodPut,
		path:   "/api/admin/reviews/" + escape(reviewID),
		query:  url.Values{"status": []string{string(status)}},
		token:  token,
	})
}

// CreateTool adds a catalog entry.
func (c *Client) CreateTool(ctx context.Context, payload service.ToolPayload, token string) error {
	const op = "create tool"
	if err := requireToken(op, token); err != nil {
		return err
	}
	return c.do(ctx, request{op: op, method: http.MethodPost, path: "/api/tools", body: payload, token: token})
}

// UpdateTool replaces the editable fields of a catalog entry.
func (c *Client) UpdateTool(ctx context.Context, id string, payload service.ToolPayload, token string) error {
	const op = "update tool"
	if err := requireToken(op, token); err != nil {
		return err
	}
	return c.do(ctx, request{op: op, method: http.MethodPut, path: "/api/tools/" + escape(id), body: payload, token: token})
}

// DeleteTool removes a catalog entry; the server drops its reviews too.
func (c *Client) DeleteTool(ctx context.Context, id string, token string) error {
	const op = "delete tool"
	if err := requireToken(op, token); err != nil {
		return err
	}
	return c.do(ctx, request{op: op, method: http.MethodDelete, path: "/api/tools/" + escape(id), token: token})
}

// Stats fetches the admin dashboard counters.
func (c *Client) Stats(ctx context.Context, token string) (service.Stats, error) {
	const op = "stats"
	if err := requireToken(op, token); err != nil {
		return service.Stats{}, err
	}

	var rec map[string]any
	if err := c.get(ctx, request{op: op, path: "/api/admin/stats", token: token, out: &rec}); err != nil {
		return service.Stats{}, err
	}

	var stats service.Stats
	for field, dst := range map[string]*int{"users": &stats.Users, "tools": &stats.Tools, "reviews": &stats.Reviews} {
		n, err := cast.ToIntE(rec[field])
		if err != nil {
			return service.Stats{}, &common.DecodeError{Resource: "stats", Field: field, Err: err}
		}
		*dst = n
	}
	return stats, nil
}

// Login exchanges credentials for a bearer token. An empty token means the server sent none.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "login", "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
}

// Signup registers an account and returns its bearer token.
func (c *Client) Signup(ctx context.Context, username, password string, role model.Role) (string, error) {
	if role == "" {
		role = model.RoleUser
	}
	return c.authenticate(ctx, "signup", "/api/auth/signup", map[string]string{
		"username": username,
		"password": password,
		"role":     string(role),
	})
}

func (c *Client) authenticate(ctx context.Context, op, path string, body map[string]string) (string, error) {
	var rec map[string]any
	if err := c.do(ctx, request{op: op, method: http.MethodPost, path: path, body: body, out: &rec}); err != nil {
		return "", err
	}
	return cast.ToString(rec["token"]), nil
}
