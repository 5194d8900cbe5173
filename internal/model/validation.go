package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Veraticus/toolshed/internal/common"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("pricing", func(fl validator.FieldLevel) bool {
		return PricingModel(fl.Field().String()).IsValid()
	})
	return v
}

// ValidateToolDraft checks a new tool the way the admin form does.
func ValidateToolDraft(d ToolDraft) error {
	if d.Name == "" || d.Description == "" || d.UseCase == "" {
		return common.NewValidationError("Please fill in all required fields", firstEmpty(map[string]string{
			"Name": d.Name, "Description": d.Description, "UseCase": d.UseCase,
		}), "is required")
	}
	if d.Category == "" || d.PricingModel == "" {
		return common.NewValidationError("Please select category and pricing model", "", "")
	}
	return toValidationError(validate.Struct(d))
}

// ValidateToolPatch checks the fields present in a partial update.
func ValidateToolPatch(p ToolPatch) error {
	present := map[string]*string{"Name": p.Name, "Description": p.Description, "UseCase": p.UseCase}
	for _, field := range requiredText {
		if v := present[field]; v != nil && *v == "" {
			return common.NewValidationError("Please fill in all required fields", field, "is required")
		}
	}
	return toValidationError(validate.Struct(p))
}

// ValidateReviewDraft checks a review submission the way the review form does.
func ValidateReviewDraft(d ReviewDraft) error {
	if d.Rating == 0 {
		return common.NewValidationError("Please select a rating", "Rating", "is required")
	}
	if d.UserName == "" {
		return common.NewValidationError("Please enter your name", "UserName", "is required")
	}
	if len([]rune(d.Comment)) > MaxCommentLength {
		return common.NewValidationError(
			fmt.Sprintf("Comments are limited to %d characters", MaxCommentLength), "Comment", "is too long")
	}
	return toValidationError(validate.Struct(d))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	ve := &common.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		ve.Fields[fe.Field()] = msgForTag(fe)
	}
	first := fieldErrs[0]
	ve.Message = fmt.Sprintf("%s %s", first.Field(), msgForTag(first))
	return ve
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind().String() == "int" {
			return fmt.Sprintf("must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "category":
		return "must be a known category"
	case "pricing":
		return "must be a known pricing model"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// requiredText is the order in which blank required fields are reported.
var requiredText = []string{"Name", "Description", "UseCase"}

func firstEmpty(fields map[string]string) string {
	for _, name := range requiredText {
		if fields[name] == "" {
			return name
		}
	}
	return ""
}
