package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/events"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

func newSurveyRequest(useAI, frq string) *SurveySubmitRequest {
	return &SurveySubmitRequest{
		English: strPtr("ChatGPT"),
		Math:    strPtr("Gemini"),
		Science: strPtr("ChatGPT"),
		CS:      strPtr(" Copilot "),
		History: strPtr("Claude"),
		UseAI:   strPtr(useAI),
		FRQ:     strPtr(frq),
	}
}

func TestSurveyService_AnonymousSubmit(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSurveyService(env.repo, env.db, env.logger, env.validator, env.badges, env.publisher)
	ctx := context.Background()

	res, err := svc.Submit(ctx, nil, newSurveyRequest("Yes", "Helpful but risky"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.ResponseID == 0 {
		t.Fatal("ResponseID = 0")
	}
	if res.BadgeAwarded {
		t.Fatal("anonymous submission awarded a badge")
	}

	if n := env.count(t, &models.SurveyResponse{}); n != 1 {
		t.Fatalf("%d responses stored, want 1", n)
	}
	if n := env.count(t, &models.AIToolPreference{}); n != 5 {
		t.Fatalf("%d preferences stored, want 5", n)
	}
	if n := env.count(t, &models.UserBadge{}); n != 0 {
		t.Fatalf("ledger has %d rows, want 0", n)
	}

	snap := res.Results
	if snap.TotalResponses != 1 || snap.UseAI[models.UsesAIYes] != 1 || snap.UseAI[models.UsesAINo] != 0 {
		t.Fatalf("snapshot totals = %+v", snap)
	}
	if snap.Subjects["cs"]["Copilot"] != 1 {
		t.Fatalf("cs counts = %v, want trimmed Copilot", snap.Subjects["cs"])
	}
	if snap.Subjects["history"]["ChatGPT"] != 0 {
		t.Fatal("known tools should be zero-filled")
	}
	if len(snap.Opinions) != 1 || snap.Opinions[0].Text != "Helpful but risky" {
		t.Fatalf("Opinions = %+v", snap.Opinions)
	}
	if len(env.publisher.EventsOfType(events.SurveySubmitted)) != 1 {
		t.Fatal("expected one survey.submitted event")
	}
}

func TestSurveyService_MissingFieldStoresNothing(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSurveyService(env.repo, env.db, env.logger, env.validator, env.badges, env.publisher)
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(r *SurveySubmitRequest)
		field string
	}{
		{"missing history", func(r *SurveySubmitRequest) { r.History = nil }, "history"},
		{"blank tool", func(r *SurveySubmitRequest) { r.Math = strPtr("  ") }, "math"},
		{"bad useAI", func(r *SurveySubmitRequest) { r.UseAI = strPtr("Maybe") }, "useAI"},
		{"missing frq", func(r *SurveySubmitRequest) { r.FRQ = nil }, "frq"},
		{"empty frq", func(r *SurveySubmitRequest) { r.FRQ = strPtr("") }, "frq"},
		{"blank frq", func(r *SurveySubmitRequest) { r.FRQ = strPtr("   ") }, "frq"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newSurveyRequest("No", "an opinion")
			tt.edit(req)

			_, err := svc.Submit(ctx, nil, req)
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("error = %v, want ValidationErrors", err)
			}
			if verrs[0].Field != tt.field {
				t.Fatalf("field = %q, want %q", verrs[0].Field, tt.field)
			}
		})
	}

	if n := env.count(t, &models.SurveyResponse{}); n != 0 {
		t.Fatalf("%d responses stored, want 0", n)
	}
	if n := env.count(t, &models.AIToolPreference{}); n != 0 {
		t.Fatalf("%d preferences stored, want 0", n)
	}
}

func TestSurveyService_IdentifiedUserEarnsBadgeOnce(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSurveyService(env.repo, env.db, env.logger, env.validator, env.badges, env.publisher)
	ctx := context.Background()
	user := env.createUser(t, "alice", models.RoleStudent)

	first, err := svc.Submit(ctx, user, newSurveyRequest("Yes", "first"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !first.BadgeAwarded {
		t.Fatal("first submission did not award the badge")
	}

	second, err := svc.Submit(ctx, user, newSurveyRequest("No", "second"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if second.BadgeAwarded {
		t.Fatal("second submission reported a new badge")
	}

	stored, err := svc.Get(ctx, first.ResponseID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !stored.BadgeAwarded {
		t.Fatal("first response not flagged badge_awarded")
	}
	stored, _ = svc.Get(ctx, second.ResponseID)
	if stored.BadgeAwarded {
		t.Fatal("second response flagged badge_awarded")
	}

	if n := env.count(t, &models.UserBadge{}); n != 1 {
		t.Fatalf("ledger has %d rows, want 1", n)
	}
	if second.Results.TotalResponses != 2 || second.Results.UseAI[models.UsesAINo] != 1 {
		t.Fatalf("snapshot = %+v", second.Results)
	}
	if second.Results.Opinions[0].Text != "second" {
		t.Fatalf("newest opinion = %q, want second", second.Results.Opinions[0].Text)
	}
}

func TestSurveyService_EmptySnapshot(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSurveyService(env.repo, env.db, env.logger, env.validator, env.badges, env.publisher)

	snap, err := svc.Snapshot(context.Background(), 0)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.TotalResponses != 0 || snap.Opinions == nil || len(snap.Subjects) != len(models.SurveySubjects) {
		t.Fatalf("Snapshot() = %+v", snap)
	}
	if _, ok := snap.UseAI[models.UsesAIYes]; !ok {
		t.Fatal("Yes bucket missing")
	}
}

func TestSurveyService_AdminUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSurveyService(env.repo, env.db, env.logger, env.validator, env.badges, env.publisher)
	ctx := context.Background()

	res, err := svc.Submit(ctx, nil, newSurveyRequest("Yes", "orig"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	t.Run("empty update rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, res.ResponseID, &SurveyUpdateRequest{})
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("error = %v, want ValidationErrors", err)
		}
	})

	t.Run("unknown subject rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, res.ResponseID, &SurveyUpdateRequest{Tools: map[string]string{"art": "Claude"}})
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("error = %v, want ValidationErrors", err)
		}
	})

	t.Run("update fields and tool", func(t *testing.T) {
		updated, err := svc.Update(ctx, res.ResponseID, &SurveyUpdateRequest{
			UsesAISchoolwork: strPtr("No"),
			Tools:            map[string]string{"math": "Claude"},
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.UsesAISchoolwork != "No" || updated.Tools()["math"] != "Claude" || updated.AIPolicyOpinion != "orig" {
			t.Fatalf("Update() = %+v", updated)
		}
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, &SurveyUpdateRequest{UsesAISchoolwork: strPtr("No")})
		if !errors.Is(err, ErrSurveyNotFound) {
			t.Fatalf("error = %v, want ErrSurveyNotFound", err)
		}
	})

	list, err := svc.List(ctx, 10, 0)
	if err != nil || list.Total != 1 || len(list.Responses) != 1 {
		t.Fatalf("List() = %+v, %v", list, err)
	}

	if err := svc.Delete(ctx, res.ResponseID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n := env.count(t, &models.AIToolPreference{}); n != 0 {
		t.Fatalf("%d preferences left, want 0", n)
	}
	if err := svc.Delete(ctx, res.ResponseID); !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("second Delete() error = %v, want ErrSurveyNotFound", err)
	}
}

// hookedRepo swaps the survey repository, inside transactions too
type hookedRepo struct {
	repositories.Repository
	wrap func(repositories.SurveyRepository) repositories.SurveyRepository
}

func (r *hookedRepo) Survey() repositories.SurveyRepository {
	return r.wrap(r.Repository.Survey())
}

func (r *hookedRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.Repository.WithTransaction(ctx, func(tx repositories.Repository) error {
		return fn(&hookedRepo{Repository: tx, wrap: r.wrap})
	})
}

// failAfterCreate writes the response and its preferences, then fails
type failAfterCreate struct {
	repositories.SurveyRepository
}

func (r failAfterCreate) Create(ctx context.Context, tx *gorm.DB, response *models.SurveyResponse) error {
	if err := r.SurveyRepository.Create(ctx, tx, response); err != nil {
		return err
	}
	return errors.New("preference insert failed")
}

type failingOpinions struct {
	repositories.SurveyRepository
}

func (r failingOpinions) RecentOpinions(context.Context, *gorm.DB, int) ([]models.Opinion, error) {
	return nil, errors.New("read replica unavailable")
}

func TestSurveyService_FailedWriteLeavesNoRows(t *testing.T) {
	env := newTestEnv(t)
	repo := &hookedRepo{Repository: env.repo, wrap: func(s repositories.SurveyRepository) repositories.SurveyRepository {
		return failAfterCreate{s}
	}}
	svc := NewSurveyService(repo, env.db, env.logger, env.validator, env.badges, env.publisher)
	user := env.createUser(t, "carol", models.RoleStudent)

	if _, err := svc.Submit(context.Background(), user, newSurveyRequest("Yes", "rolled back")); err == nil {
		t.Fatal("Submit() expected error")
	}
	if n := env.count(t, &models.SurveyResponse{}); n != 0 {
		t.Fatalf("%d responses left after failed write, want 0", n)
	}
	if n := env.count(t, &models.AIToolPreference{}); n != 0 {
		t.Fatalf("%d preferences left after failed write, want 0", n)
	}
	if n := env.count(t, &models.UserBadge{}); n != 0 {
		t.Fatalf("failed write awarded %d badges", n)
	}
	if len(env.publisher.EventsOfType(events.SurveySubmitted)) != 0 {
		t.Fatal("failed write published an event")
	}
}

func TestSurveyService_SnapshotFailureAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	repo := &hookedRepo{Repository: env.repo, wrap: func(s repositories.SurveyRepository) repositories.SurveyRepository {
		return failingOpinions{s}
	}}
	svc := NewSurveyService(repo, env.db, env.logger, env.validator, env.badges, env.publisher)
	user := env.createUser(t, "dave", models.RoleStudent)

	res, err := svc.Submit(context.Background(), user, newSurveyRequest("No", "kept"))
	if err != nil {
		t.Fatalf("Submit() error = %v, want success once committed", err)
	}
	if res.ResponseID == 0 || !res.BadgeAwarded {
		t.Fatalf("Submit() = %+v", res)
	}
	if res.Results != nil {
		t.Fatalf("Results = %+v, want nil when the aggregate read fails", res.Results)
	}
	if n := env.count(t, &models.SurveyResponse{}); n != 1 {
		t.Fatalf("%d responses stored, want 1", n)
	}
}
