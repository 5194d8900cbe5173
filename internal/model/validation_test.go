package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/toolshed/internal/common"
)

func draft() ToolDraft {
	return ToolDraft{
		Name:         "Seer",
		Description:  "Image tagging",
		UseCase:      "Retail shelves",
		Category:     CategoryComputerVision,
		PricingModel: PricingPaid,
	}
}

func TestValidateToolDraft(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ToolDraft)
		wantMsg   string
		wantField string
	}{
		{name: "valid", mutate: func(*ToolDraft) {}},
		{name: "valid with website", mutate: func(d *ToolDraft) { d.Website = "https://seer.example.com" }},
		{
			name:      "missing name",
			mutate:    func(d *ToolDraft) { d.Name = "" },
			wantMsg:   "Please fill in all required fields",
			wantField: "Name",
		},
		{
			name:      "missing use case",
			mutate:    func(d *ToolDraft) { d.UseCase = "" },
			wantMsg:   "Please fill in all required fields",
			wantField: "UseCase",
		},
		{
			name:    "missing category",
			mutate:  func(d *ToolDraft) { d.Category = "" },
			wantMsg: "Please select category and pricing model",
		},
		{
			name:    "missing pricing",
			mutate:  func(d *ToolDraft) { d.PricingModel = "" },
			wantMsg: "Please select category and pricing model",
		},
		{
			name:      "unknown category",
			mutate:    func(d *ToolDraft) { d.Category = "Robotics" },
			wantMsg:   "Category must be a known category",
			wantField: "Category",
		},
		{
			name:      "bad website",
			mutate:    func(d *ToolDraft) { d.Website = "not a url" },
			wantMsg:   "Website must be a valid URL",
			wantField: "Website",
		},
		{
			name:      "name too long",
			mutate:    func(d *ToolDraft) { d.Name = strings.Repeat("x", 101) },
			wantMsg:   "Name must be at most 100 characters",
			wantField: "Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := draft()
			tt.mutate(&d)
			err := ValidateToolDraft(d)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
			if tt.wantField != "" {
				assert.Contains(t, verr.Fields, tt.wantField)
			}
		})
	}
}

func TestValidateToolPatch(t *testing.T) {
	empty := ""
	bad := Category("Robotics")
	ok := CategoryNLP

	assert.NoError(t, ValidateToolPatch(ToolPatch{Category: &ok}))

	var verr *common.ValidationError
	require.ErrorAs(t, ValidateToolPatch(ToolPatch{Name: &empty}), &verr)
	assert.Equal(t, "Please fill in all required fields", verr.Message)

	require.ErrorAs(t, ValidateToolPatch(ToolPatch{Category: &bad}), &verr)
	assert.Contains(t, verr.Fields, "Category")

	// Several blank fields always report the first in form order.
	for range 20 {
		require.ErrorAs(t, ValidateToolPatch(ToolPatch{UseCase: &empty, Description: &empty, Name: &empty}), &verr)
		assert.Equal(t, map[string]string{"Name": "is required"}, verr.Fields)

		require.ErrorAs(t, ValidateToolPatch(ToolPatch{UseCase: &empty, Description: &empty}), &verr)
		assert.Equal(t, map[string]string{"Description": "is required"}, verr.Fields)
	}
}

func TestValidateReviewDraft(t *testing.T) {
	valid := ReviewDraft{ToolID: "1", UserName: "ana", Rating: 4, Comment: "Solid"}

	tests := []struct {
		name    string
		mutate  func(*ReviewDraft)
		wantMsg string
	}{
		{name: "valid", mutate: func(*ReviewDraft) {}},
		{name: "no comment is fine", mutate: func(d *ReviewDraft) { d.Comment = "" }},
		{name: "no rating", mutate: func(d *ReviewDraft) { d.Rating = 0 }, wantMsg: "Please select a rating"},
		{name: "no name", mutate: func(d *ReviewDraft) { d.UserName = "" }, wantMsg: "Please enter your name"},
		{name: "rating above range", mutate: func(d *ReviewDraft) { d.Rating = 6 }, wantMsg: "Rating must be at most 5"},
		{
			name:    "comment too long",
			mutate:  func(d *ReviewDraft) { d.Comment = strings.Repeat("é", MaxCommentLength+1) },
			wantMsg: "Comments are limited to 500 characters",
		},
		{
			name:   "multibyte comment at the limit",
			mutate: func(d *ReviewDraft) { d.Comment = strings.Repeat("é", MaxCommentLength) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := ValidateReviewDraft(d)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
		})
	}
}

func TestFilterState_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filter  FilterState
		wantErr bool
	}{
		{name: "zero", filter: FilterState{}},
		{name: "half step", filter: FilterState{MinRating: 3.5}},
		{name: "upper bound", filter: FilterState{MinRating: 5}},
		{name: "negative", filter: FilterState{MinRating: -1}, wantErr: true},
		{name: "above five", filter: FilterState{MinRating: 5.5}, wantErr: true},
		{name: "off grid", filter: FilterState{MinRating: 2.3}, wantErr: true},
		{name: "unknown category", filter: FilterState{Categories: []Category{"Robotics"}}, wantErr: true},
		{name: "unknown pricing", filter: FilterState{PricingModels: []PricingModel{"Freemium"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilterState_QueryAndIsZero(t *testing.T) {
	f := FilterState{SearchQuery: "  ViSion "}
	assert.Equal(t, "vision", f.Query())
	assert.False(t, f.IsZero())
	assert.True(t, FilterState{SearchQuery: "   "}.IsZero())
}
