package gateway

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/model"
)

const defaultToolName = "Unnamed Tool"

// record is a semi-structured API object.
type record map[string]any

// lookup returns the first present, non-null value among keys.
func (r record) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r record) requiredString(resource string, keys ...string) (string, error) {
	v, ok := r.lookup(keys...)
	if !ok {
		return "", &common.DecodeError{Resource: resource, Field: keys[0]}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", &common.DecodeError{Resource: resource, Field: keys[0], Err: err}
	}
	if s = strings.TrimSpace(s); s == "" {
		return "", &common.DecodeError{Resource: resource, Field: keys[0], Err: errors.New("empty value")}
	}
	return s, nil
}

func (r record) stringOr(def string, keys ...string) string {
	v, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

func (r record) floatOr(resource string, def float64, keys ...string) (float64, error) {
	v, ok := r.lookup(keys...)
	if !ok {
		return def, nil
	}
	return finiteFloat(resource, keys[0], v)
}

// finiteFloat converts v, rejecting NaN and infinities.
func finiteFloat(resource, field string, v any) (float64, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &common.DecodeError{Resource: resource, Field: field, Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &common.DecodeError{Resource: resource, Field: field, Err: fmt.Errorf("non-finite value %v", f)}
	}
	return f, nil
}

func (r record) timeOr(def time.Time, keys ...string) time.Time {
	v, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return def
	}
	return t
}

// DecodeTool maps an API tool object onto model.Tool.
// The id is required; every other field has a named fallback or a default.
func DecodeTool(raw map[string]any, now time.Time) (model.Tool, error) {
	const resource = "tool"
	rec := record(raw)

	id, err := rec.requiredString(resource, "id", "_id")
	if err != nil {
		return model.Tool{}, err
	}

	category := model.CategoryDevTools
	if s := rec.stringOr("", "category"); s != "" {
		parsed, ok := model.ParseCategory(s)
		if !ok {
			return model.Tool{}, &common.DecodeError{Resource: resource, Field: "category", Err: fmt.Errorf("unknown category %q", s)}
		}
		category = parsed
	}

	pricing := model.PricingFree
	if s := rec.stringOr("", "pricing", "pricingModel"); s != "" {
		parsed, ok := model.ParsePricingModel(s)
		if !ok {
			return model.Tool{}, &common.DecodeError{Resource: resource, Field: "pricing", Err: fmt.Errorf("unknown pricing model %q", s)}
		}
		pricing = parsed
	}

	avg, err := rec.floatOr(resource, 0, "avgRating", "averageRating")
	if err != nil {
		return model.Tool{}, err
	}
	count, err := rec.floatOr(resource, 0, "reviewCount", "totalReviews")
	if err != nil {
		return model.Tool{}, err
	}

	name := rec.stringOr(defaultToolName, "name")
	if strings.TrimSpace(name) == "" {
		name = defaultToolName
	}

	return model.Tool{
		ID:            id,
		Name:          name,
		Description:   rec.stringOr("", "description"),
		UseCase:       rec.stringOr("", "useCase"),
		Category:      category,
		PricingModel:  pricing,
		AverageRating: model.RoundRating(clamp(avg, 0, model.MaxRating)),
		TotalReviews:  int(math.Max(0, count)),
		Website:       rec.stringOr("", "website"),
		CreatedAt:     rec.timeOr(now, "createdAt"),
		UpdatedAt:     rec.timeOr(now, "updatedAt"),
	}, nil
}

// DecodeReview maps an API review object onto model.Review.
// The id, tool id and rating are required; status falls back to defaultStatus.
func DecodeReview(raw map[string]any, defaultStatus model.ReviewStatus, now time.Time) (model.Review, error) {
	const resource = "review"
	rec := record(raw)

	id, err := rec.requiredString(resource, "id", "_id")
	if err != nil {
		return model.Review{}, err
	}
	toolID, err := rec.requiredString(resource, "toolId")
	if err != nil {
		return model.Review{}, err
	}

	ratingValue, ok := rec.lookup("rating")
	if !ok {
		return model.Review{}, &common.DecodeError{Resource: resource, Field: "rating"}
	}
	rating, err := finiteFloat(resource, "rating", ratingValue)
	if err != nil {
		return model.Review{}, err
	}

	status := defaultStatus
	if s := rec.stringOr("", "status"); s != "" {
		parsed, ok := model.ParseReviewStatus(s)
		if !ok {
			return model.Review{}, &common.DecodeError{Resource: resource, Field: "status", Err: fmt.Errorf("unknown status %q", s)}
		}
		status = parsed
	}

	return model.Review{
		ID:        id,
		ToolID:    toolID,
		UserID:    rec.stringOr("", "userId"),
		UserName:  rec.stringOr("", "username", "userName"),
		Rating:    int(math.Round(clamp(rating, 1, model.MaxRating))),
		Comment:   rec.stringOr("", "comment"),
		Status:    status,
		CreatedAt: rec.timeOr(now, "createdAt"),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
