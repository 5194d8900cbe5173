// Package model defines the catalog types shared by every layer of toolshed.
package model

import (
	"math"
	"strings"
	"time"
)

// Category classifies what kind of AI tool an entry is.
type Category string

const (
	CategoryNLP            Category = "NLP"
	CategoryComputerVision Category = "Computer Vision"
	CategoryDevTools       Category = "Dev Tools"
	CategoryAnalytics      Category = "Analytics"
	CategoryAutomation     Category = "Automation"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryNLP,
	CategoryComputerVision,
	CategoryDevTools,
	CategoryAnalytics,
	CategoryAutomation,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s against the known categories, ignoring case.
func ParseCategory(s string) (Category, bool) {
	for _, known := range Categories {
		if strings.EqualFold(string(known), strings.TrimSpace(s)) {
			return known, true
		}
	}
	return "", false
}

// PricingModel describes how a tool is paid for.
type PricingModel string

const (
	PricingFree         PricingModel = "Free"
	PricingPaid         PricingModel = "Paid"
	PricingSubscription PricingModel = "Subscription"
)

// PricingModels lists every pricing model in display order.
var PricingModels = []PricingModel{PricingFree, PricingPaid, PricingSubscription}

// IsValid reports whether p is one of the known pricing models.
func (p PricingModel) IsValid() bool {
	for _, known := range PricingModels {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePricingModel matches s against the known pricing models, ignoring case.
func ParsePricingModel(s string) (PricingModel, bool) {
	for _, known := range PricingModels {
		if strings.EqualFold(string(known), strings.TrimSpace(s)) {
			return known, true
		}
	}
	return "", false
}

// Tool is one catalog entry.
// AverageRating and TotalReviews cache the approved review set and are never edited directly.
type Tool struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ID            string
	Name          string
	Description   string
	UseCase       string
	Category      Category
	PricingModel  PricingModel
	Website       string
	AverageRating float64
	TotalReviews  int
}

// ToolDraft holds the admin-supplied fields of a new tool.
type ToolDraft struct {
	Name         string       `validate:"required,max=100"`
	Description  string       `validate:"required,max=500"`
	UseCase      string       `validate:"required,max=200"`
	Category     Category     `validate:"required,category"`
	PricingModel PricingModel `validate:"required,pricing"`
	Website      string       `validate:"omitempty,url"`
}

// Normalize trims every free-text field.
func (d ToolDraft) Normalize() ToolDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.UseCase = strings.TrimSpace(d.UseCase)
	d.Website = strings.TrimSpace(d.Website)
	return d
}

// ToolPatch is a partial update; nil fields are left unchanged.
type ToolPatch struct {
	Name         *string       `validate:"omitempty,max=100"`
	Description  *string       `validate:"omitempty,max=500"`
	UseCase      *string       `validate:"omitempty,max=200"`
	Category     *Category     `validate:"omitempty,category"`
	PricingModel *PricingModel `validate:"omitempty,pricing"`
	Website      *string       `validate:"omitempty,url"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ToolPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.UseCase == nil &&
		p.Category == nil && p.PricingModel == nil && p.Website == nil
}

// Normalize trims every free-text field that is present.
func (p ToolPatch) Normalize() ToolPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	p.Name = trim(p.Name)
	p.Description = trim(p.Description)
	p.UseCase = trim(p.UseCase)
	p.Website = trim(p.Website)
	return p
}

// Apply returns a copy of t with the patch applied.
func (p ToolPatch) Apply(t Tool) Tool {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.UseCase != nil {
		t.UseCase = *p.UseCase
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.PricingModel != nil {
		t.PricingModel = *p.PricingModel
	}
	if p.Website != nil {
		t.Website = *p.Website
	}
	return t
}

// RoundRating rounds to one decimal place, halves away from zero.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
