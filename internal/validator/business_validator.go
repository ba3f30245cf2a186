package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
)

const (
	maxToolNameLength = 50

	MinSampleCount     = 1
	MaxSampleCount     = 50
	DefaultSampleCount = 4
)

// BusinessValidator handles rules that need more than struct tags
type BusinessValidator struct {
	validate *validator.Validate
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	return ToValidationErrors(bv.validate.Struct(s))
}

// ValidateSurveySubmit checks the survey form. Errors come back in field
// order, which is the order the form asks them.
func (bv *BusinessValidator) ValidateSurveySubmit(req *SurveySubmitRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateFeedbackUpdate keeps edits within the schema of the stored entry
func (bv *BusinessValidator) ValidateFeedbackUpdate(req *FeedbackUpdateRequest, existing *models.FeedbackEntry) ValidationErrors {
	errs := bv.Validate(req)

	if existing == nil {
		return errs
	}

	type fieldSet struct {
		name string
		set  bool
	}
	var disallowed []fieldSet
	switch existing.Kind {
	case models.FeedbackRating:
		disallowed = []fieldSet{{"title", req.Title != nil}, {"body", req.Body != nil}, {"type", req.Type != nil}}
	case models.FeedbackGeneral:
		disallowed = []fieldSet{{"rating", req.Rating != nil}, {"category", req.Category != nil}, {"comments", req.Comments != nil}}
	}
	for _, f := range disallowed {
		if f.set {
			errs = append(errs, ValidationError{
				Field:   f.name,
				Message: fmt.Sprintf("%s cannot be set on %s feedback", f.name, existing.Kind),
				Rule:    "feedback_kind",
			})
		}
	}

	return errs
}

// ValidateSampleCount checks the requested number of questions
func (bv *BusinessValidator) ValidateSampleCount(count int) ValidationErrors {
	if count < MinSampleCount || count > MaxSampleCount {
		return ValidationErrors{{
			Field:   "count",
			Message: fmt.Sprintf("count must be between %d and %d", MinSampleCount, MaxSampleCount),
			Value:   count,
			Rule:    "range",
		}}
	}
	return nil
}

// ValidateSubject checks a content subject taken from the path
func (bv *BusinessValidator) ValidateSubject(subject string) ValidationErrors {
	if !slices.Contains(models.SurveySubjects, subject) {
		return ValidationErrors{{
			Field:   "subject",
			Message: fmt.Sprintf("subject must be one of: %s", strings.Join(models.SurveySubjects, ", ")),
			Value:   subject,
			Rule:    "subject",
		}}
	}
	return nil
}

// registerRules adds the custom tags used across request structs
func registerRules(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	_ = v.RegisterValidation("survey_tool", func(fl validator.FieldLevel) bool {
		tool := strings.TrimSpace(fl.Field().String())
		return tool != "" && len(tool) <= maxToolNameLength
	})

	_ = v.RegisterValidation("survey_subject", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.SurveySubjects, fl.Field().String())
	})

	_ = v.RegisterValidation("subject", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.SurveySubjects, strings.ToLower(fl.Field().String()))
	})

	_ = v.RegisterValidation("feedback_type", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.FeedbackTypes, fl.Field().String())
	})

	_ = v.RegisterValidation("feedback_category", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.FeedbackCategories, fl.Field().String())
	})

	_ = v.RegisterValidation("prompt_type", func(fl validator.FieldLevel) bool {
		_, ok := NormalizePromptType(fl.Field().String())
		return ok
	})

	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
}

// NormalizePromptType accepts good/bad in any case
func NormalizePromptType(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "good":
		return models.PromptGood, true
	case "bad":
		return models.PromptBad, true
	}
	return "", false
}
