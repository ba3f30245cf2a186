package validator

import (
	"errors"
	"testing"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func fullSurvey() *SurveySubmitRequest {
	return &SurveySubmitRequest{
		English: strPtr("ChatGPT"),
		Math:    strPtr("Claude"),
		Science: strPtr("Gemini"),
		CS:      strPtr("Copilot"),
		History: strPtr("ChatGPT"),
		UseAI:   strPtr("Yes"),
		FRQ:     strPtr("test opinion"),
	}
}

func TestValidateSurveySubmit(t *testing.T) {
	v := New()

	t.Run("complete", func(t *testing.T) {
		if errs := v.GetBusinessValidator().ValidateSurveySubmit(fullSurvey()); len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
	})

	tests := []struct {
		name    string
		mutate  func(r *SurveySubmitRequest)
		message string
	}{
		{"missing english", func(r *SurveySubmitRequest) { r.English = nil }, "Missing required field: english"},
		{"missing history", func(r *SurveySubmitRequest) { r.History = nil }, "Missing required field: history"},
		{"blank cs", func(r *SurveySubmitRequest) { r.CS = strPtr("  ") }, "Missing required field: cs"},
		{"missing useAI", func(r *SurveySubmitRequest) { r.UseAI = nil }, "Missing required field: useAI"},
		{"missing frq", func(r *SurveySubmitRequest) { r.FRQ = nil }, "Missing required field: frq"},
		{"empty frq", func(r *SurveySubmitRequest) { r.FRQ = strPtr("") }, "Missing required field: frq"},
		{"blank frq", func(r *SurveySubmitRequest) { r.FRQ = strPtr(" \t ") }, "Missing required field: frq"},
		{"bad useAI", func(r *SurveySubmitRequest) { r.UseAI = strPtr("Maybe") }, "useAI must be one of: Yes, No"},
		{"first missing wins", func(r *SurveySubmitRequest) { r.Math = nil; r.FRQ = nil }, "Missing required field: math"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := fullSurvey()
			tt.mutate(req)
			errs := v.GetBusinessValidator().ValidateSurveySubmit(req)
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if errs[0].Message != tt.message {
				t.Fatalf("message = %q, want %q", errs[0].Message, tt.message)
			}
		})
	}
}

func TestValidateRating(t *testing.T) {
	v := New()
	for _, rating := range []int{0, 6, 7, -1} {
		err := v.Validate(&RatingFeedbackRequest{Rating: intPtr(rating), Category: "submodule2"})
		var ve ValidationErrors
		if !errors.As(err, &ve) {
			t.Fatalf("rating %d: expected ValidationErrors, got %v", rating, err)
		}
		if ve[0].Field != "rating" {
			t.Fatalf("rating %d: field = %q", rating, ve[0].Field)
		}
	}
	for rating := 1; rating <= 5; rating++ {
		if err := v.Validate(&RatingFeedbackRequest{Rating: intPtr(rating), Category: "submodule3"}); err != nil {
			t.Fatalf("rating %d rejected: %v", rating, err)
		}
	}
	if err := v.Validate(&RatingFeedbackRequest{Rating: intPtr(3), Category: "submodule9"}); err == nil {
		t.Fatal("expected unknown category to fail")
	}
	if err := v.Validate(&RatingFeedbackRequest{Category: "submodule2"}); err == nil {
		t.Fatal("expected missing rating to fail")
	}
}

func TestValidateGeneralFeedback(t *testing.T) {
	v := New()
	tests := []struct {
		name  string
		req   GeneralFeedbackRequest
		valid bool
	}{
		{"ok", GeneralFeedbackRequest{Title: "Hi", Body: "Nice"}, true},
		{"typed", GeneralFeedbackRequest{Title: "Hi", Body: "Nice", Type: "Feature Request"}, true},
		{"blank title", GeneralFeedbackRequest{Title: "   ", Body: "Nice"}, false},
		{"missing body", GeneralFeedbackRequest{Title: "Hi"}, false},
		{"bad type", GeneralFeedbackRequest{Title: "Hi", Body: "Nice", Type: "Rant"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if (err == nil) != tt.valid {
				t.Fatalf("Validate() error = %v, valid = %v", err, tt.valid)
			}
		})
	}
}

func TestValidateFeedbackUpdate(t *testing.T) {
	bv := New().GetBusinessValidator()
	rating := &models.FeedbackEntry{Kind: models.FeedbackRating}
	general := &models.FeedbackEntry{Kind: models.FeedbackGeneral}

	if errs := bv.ValidateFeedbackUpdate(&FeedbackUpdateRequest{Rating: intPtr(4)}, rating); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if errs := bv.ValidateFeedbackUpdate(&FeedbackUpdateRequest{Title: strPtr("x")}, rating); len(errs) != 1 || errs[0].Field != "title" {
		t.Fatalf("expected title rejection, got %v", errs)
	}
	if errs := bv.ValidateFeedbackUpdate(&FeedbackUpdateRequest{Rating: intPtr(2)}, general); len(errs) != 1 || errs[0].Field != "rating" {
		t.Fatalf("expected rating rejection, got %v", errs)
	}
	if errs := bv.ValidateFeedbackUpdate(&FeedbackUpdateRequest{Rating: intPtr(9)}, rating); len(errs) == 0 {
		t.Fatal("expected out of range rating to fail")
	}
}

func TestValidateSurveyUpdate(t *testing.T) {
	v := New()
	if err := v.Validate(&SurveyUpdateRequest{Tools: map[string]string{"math": "Claude"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(&SurveyUpdateRequest{Tools: map[string]string{"art": "Claude"}}); err == nil {
		t.Fatal("expected unknown subject to fail")
	}
	if err := v.Validate(&SurveyUpdateRequest{UsesAISchoolwork: strPtr("Sometimes")}); err == nil {
		t.Fatal("expected bad flag to fail")
	}
}

func TestSampleCountAndSubject(t *testing.T) {
	bv := New().GetBusinessValidator()
	for _, c := range []int{0, 51, -3} {
		if errs := bv.ValidateSampleCount(c); len(errs) == 0 {
			t.Fatalf("count %d accepted", c)
		}
	}
	for _, c := range []int{1, 4, 50} {
		if errs := bv.ValidateSampleCount(c); len(errs) != 0 {
			t.Fatalf("count %d rejected", c)
		}
	}
	if errs := bv.ValidateSubject("math"); len(errs) != 0 {
		t.Fatalf("math rejected: %v", errs)
	}
	if errs := bv.ValidateSubject("art"); len(errs) == 0 {
		t.Fatal("art accepted")
	}
}

func TestPromptTypeAndRole(t *testing.T) {
	v := New()
	if err := v.Validate(&PromptExampleRequest{PromptType: "good", Prompt: "Write a Python loop"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(&PromptExampleRequest{PromptType: "meh", Prompt: "Write a Python loop"}); err == nil {
		t.Fatal("expected bad prompt type to fail")
	}
	if err := v.Validate(&UserUpdateRequest{Role: strPtr("Admin")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(&UserUpdateRequest{Role: strPtr("Root")}); err == nil {
		t.Fatal("expected bad role to fail")
	}
	if err := v.Validate(&ResetRequest{Confirm: "reset"}); err == nil {
		t.Fatal("expected lowercase confirm to fail")
	}

	if got, ok := NormalizePromptType(" BAD "); !ok || got != models.PromptBad {
		t.Fatalf("NormalizePromptType = %q, %v", got, ok)
	}
}
