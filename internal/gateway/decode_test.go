package gateway

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/model"
)

var decodeNow = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestDecodeTool(t *testing.T) {
	tests := []struct {
		raw       map[string]any
		name      string
		wantField string
		want      model.Tool
	}{
		{
			name: "primary field names",
			raw: map[string]any{
				"id": "1", "name": "Seer", "description": "Tags images", "useCase": "Retail",
				"category": "Computer Vision", "pricing": "Paid", "avgRating": 4.25, "reviewCount": 3,
				"website": "https://seer.example.com", "createdAt": "2024-01-02T03:04:05Z",
			},
			want: model.Tool{
				ID: "1", Name: "Seer", Description: "Tags images", UseCase: "Retail",
				Category: model.CategoryComputerVision, PricingModel: model.PricingPaid,
				AverageRating: 4.3, TotalReviews: 3, Website: "https://seer.example.com",
				CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), UpdatedAt: decodeNow,
			},
		},
		{
			name: "fallback field names",
			raw: map[string]any{
				"_id": 12.0, "name": "Writer", "pricingModel": "subscription",
				"averageRating": 2, "totalReviews": 1, "category": "nlp",
			},
			want: model.Tool{
				ID: "12", Name: "Writer", Category: model.CategoryNLP, PricingModel: model.PricingSubscription,
				AverageRating: 2, TotalReviews: 1, CreatedAt: decodeNow, UpdatedAt: decodeNow,
			},
		},
		{
			name: "defaults",
			raw:  map[string]any{"id": "9", "name": "  "},
			want: model.Tool{
				ID: "9", Name: "Unnamed Tool", Category: model.CategoryDevTools, PricingModel: model.PricingFree,
				CreatedAt: decodeNow, UpdatedAt: decodeNow,
			},
		},
		{
			name: "rating clamped",
			raw:  map[string]any{"id": "9", "avgRating": 7, "reviewCount": -2},
			want: model.Tool{
				ID: "9", Name: "Unnamed Tool", Category: model.CategoryDevTools, PricingModel: model.PricingFree,
				AverageRating: 5, CreatedAt: decodeNow, UpdatedAt: decodeNow,
			},
		},
		{name: "missing id", raw: map[string]any{"name": "x"}, wantField: "id"},
		{name: "null id", raw: map[string]any{"id": nil}, wantField: "id"},
		{name: "unknown category", raw: map[string]any{"id": "1", "category": "Robotics"}, wantField: "category"},
		{name: "unknown pricing", raw: map[string]any{"id": "1", "pricing": "Freemium"}, wantField: "pricing"},
		{name: "bad rating", raw: map[string]any{"id": "1", "avgRating": "lots"}, wantField: "avgRating"},
		{name: "NaN rating", raw: map[string]any{"id": "1", "avgRating": "NaN"}, wantField: "avgRating"},
		{name: "infinite rating", raw: map[string]any{"id": "1", "averageRating": math.Inf(1)}, wantField: "avgRating"},
		{name: "NaN review count", raw: map[string]any{"id": "1", "reviewCount": math.NaN()}, wantField: "reviewCount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTool(tt.raw, decodeNow)
			if tt.wantField != "" {
				var decodeErr *common.DecodeError
				require.ErrorAs(t, err, &decodeErr)
				assert.Equal(t, tt.wantField, decodeErr.Field)
				assert.Equal(t, "tool", decodeErr.Resource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeReview(t *testing.T) {
	tests := []struct {
		raw       map[string]any
		name      string
		wantField string
		want      model.Review
	}{
		{
			name: "full record",
			raw: map[string]any{
				"id": 5, "toolId": "1", "userId": 3, "username": "ana", "rating": 4,
				"comment": "Good", "status": "Pending",
			},
			want: model.Review{
				ID: "5", ToolID: "1", UserID: "3", UserName: "ana", Rating: 4, Comment: "Good",
				Status: model.ReviewPending, CreatedAt: decodeNow,
			},
		},
		{
			name: "default status and fallback name",
			raw:  map[string]any{"_id": "a", "toolId": 1, "userName": "bo", "rating": "5"},
			want: model.Review{
				ID: "a", ToolID: "1", UserName: "bo", Rating: 5, Status: model.ReviewApproved, CreatedAt: decodeNow,
			},
		},
		{
			name: "rating clamped into range",
			raw:  map[string]any{"id": "a", "toolId": "1", "rating": 9},
			want: model.Review{ID: "a", ToolID: "1", Rating: 5, Status: model.ReviewApproved, CreatedAt: decodeNow},
		},
		{name: "missing tool", raw: map[string]any{"id": "a", "rating": 3}, wantField: "toolId"},
		{name: "missing rating", raw: map[string]any{"id": "a", "toolId": "1"}, wantField: "rating"},
		{name: "bad rating", raw: map[string]any{"id": "a", "toolId": "1", "rating": "great"}, wantField: "rating"},
		{name: "NaN rating", raw: map[string]any{"id": "a", "toolId": "1", "rating": "NaN"}, wantField: "rating"},
		{name: "unknown status", raw: map[string]any{"id": "a", "toolId": "1", "rating": 3, "status": "hidden"}, wantField: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeReview(tt.raw, model.ReviewApproved, decodeNow)
			if tt.wantField != "" {
				var decodeErr *common.DecodeError
				require.ErrorAs(t, err, &decodeErr)
				assert.Equal(t, tt.wantField, decodeErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
