package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/study-buddy-service/internal/events"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

func TestBadgeService_AwardIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "alice", models.RoleStudent)

	first, err := env.badges.Award(ctx, user.ID, models.BadgeDataScientist)
	if err != nil {
		t.Fatalf("first Award() error = %v", err)
	}
	if !first.NewBadge {
		t.Fatal("first Award() NewBadge = false, want true")
	}

	second, err := env.badges.Award(ctx, user.ID, models.BadgeDataScientist)
	if err != nil {
		t.Fatalf("second Award() error = %v", err)
	}
	if second.NewBadge {
		t.Fatal("second Award() NewBadge = true, want false")
	}

	if n := env.count(t, &models.UserBadge{}); n != 1 {
		t.Fatalf("ledger has %d rows, want 1", n)
	}
	if got := len(env.publisher.EventsOfType(events.BadgeAwarded)); got != 1 {
		t.Fatalf("published %d badge.awarded events, want 1", got)
	}
}

func TestBadgeService_AwardUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "bob", models.RoleStudent)

	t.Run("unknown badge", func(t *testing.T) {
		_, err := env.badges.Award(ctx, user.ID, "no_such_badge")
		if !errors.Is(err, ErrBadgeNotFound) {
			t.Fatalf("error = %v, want ErrBadgeNotFound", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.badges.Award(ctx, 9999, models.BadgeSurveyor)
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("error = %v, want ErrUserNotFound", err)
		}
	})

	if n := env.count(t, &models.UserBadge{}); n != 0 {
		t.Fatalf("ledger has %d rows, want 0", n)
	}
}

func TestBadgeService_CompositeBadge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "carol", models.RoleStudent)

	for _, id := range models.CompositePrerequisites[:2] {
		res, err := env.badges.Award(ctx, user.ID, id)
		if err != nil {
			t.Fatalf("Award(%s) error = %v", id, err)
		}
		if len(res.Derived) != 0 {
			t.Fatalf("composite derived after only %s", id)
		}
	}

	held, _ := env.repo.Badge().CountHeld(ctx, nil, user.ID, []string{models.BadgeResponsibleAI})
	if held != 0 {
		t.Fatal("composite badge granted with two prerequisites")
	}

	res, err := env.badges.Award(ctx, user.ID, models.CompositePrerequisites[2])
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if len(res.Derived) != 1 || res.Derived[0].BadgeID != models.BadgeResponsibleAI {
		t.Fatalf("Derived = %+v, want %s", res.Derived, models.BadgeResponsibleAI)
	}

	// re-awarding a prerequisite must not derive again
	res, err = env.badges.Award(ctx, user.ID, models.CompositePrerequisites[0])
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if len(res.Derived) != 0 {
		t.Fatal("composite derived twice")
	}

	if n := env.count(t, &models.UserBadge{}); n != 4 {
		t.Fatalf("ledger has %d rows, want 4", n)
	}

	derived := 0
	for _, e := range env.publisher.EventsOfType(events.BadgeAwarded) {
		if data, ok := e.Data.(events.BadgeAwardedData); ok && data.Derived {
			derived++
		}
	}
	if derived != 1 {
		t.Fatalf("published %d derived events, want 1", derived)
	}
}

func TestBadgeService_CompleteSubmodule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "dan", models.RoleStudent)

	if _, err := env.badges.CompleteSubmodule(ctx, user.ID, 4); err == nil {
		t.Fatal("CompleteSubmodule(4) succeeded, want validation error")
	} else {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("error = %v, want ValidationErrors", err)
		}
	}

	res, err := env.badges.CompleteSubmodule(ctx, user.ID, 2)
	if err != nil {
		t.Fatalf("CompleteSubmodule(2) error = %v", err)
	}
	if res.Badge.BadgeID != models.BadgePromptEngineer || !res.NewBadge {
		t.Fatalf("CompleteSubmodule(2) = %+v", res)
	}
}

func TestBadgeService_BadgesForUID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "erin", models.RoleStudent)
	other := env.createUser(t, "frank", models.RoleStudent)
	admin := env.createUser(t, "root", models.RoleAdmin)

	if _, err := env.badges.Award(ctx, owner.ID, models.BadgeSurveyor); err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	tests := []struct {
		name      string
		requester *models.User
		uid       string
		check     func(t *testing.T, got []*models.EarnedBadge, err error)
	}{
		{"anonymous", nil, "erin", func(t *testing.T, _ []*models.EarnedBadge, err error) {
			if !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("error = %v, want ErrUnauthorized", err)
			}
		}},
		{"other student", other, "erin", func(t *testing.T, _ []*models.EarnedBadge, err error) {
			var perr *PermissionError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want PermissionError", err)
			}
		}},
		{"self", owner, "erin", func(t *testing.T, got []*models.EarnedBadge, err error) {
			if err != nil || len(got) != 1 || got[0].BadgeID != models.BadgeSurveyor {
				t.Fatalf("got %+v, %v", got, err)
			}
		}},
		{"admin", admin, "erin", func(t *testing.T, got []*models.EarnedBadge, err error) {
			if err != nil || len(got) != 1 {
				t.Fatalf("got %+v, %v", got, err)
			}
		}},
		{"admin unknown uid", admin, "nobody", func(t *testing.T, _ []*models.EarnedBadge, err error) {
			if !errors.Is(err, ErrUserNotFound) {
				t.Fatalf("error = %v, want ErrUserNotFound", err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.badges.BadgesForUID(ctx, tt.requester, tt.uid)
			tt.check(t, got, err)
		})
	}
}

func TestBadgeService_ProgressAndLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.createUser(t, "gina", models.RoleStudent)
	b := env.createUser(t, "hank", models.RoleStudent)

	for _, id := range []string{models.BadgeSurveyor, models.BadgeSuperSmart} {
		if _, err := env.badges.Award(ctx, b.ID, id); err != nil {
			t.Fatalf("Award() error = %v", err)
		}
	}
	if _, err := env.badges.Award(ctx, a.ID, models.BadgeSurveyor); err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	progress, err := env.badges.Progress(ctx, b.ID)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if progress.TotalBadges != 7 || progress.EarnedBadges != 2 {
		t.Fatalf("Progress() = %d/%d, want 2/7", progress.EarnedBadges, progress.TotalBadges)
	}

	board, err := env.badges.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(board) != 2 || board[0].UID != "hank" || board[0].BadgeCount != 2 || board[1].BadgeCount != 1 {
		t.Fatalf("Leaderboard() = %+v", board)
	}
}

func TestBadgeService_Revoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ivy", models.RoleStudent)

	if _, err := env.badges.Award(ctx, user.ID, models.BadgeInstructor); err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if err := env.badges.Revoke(ctx, "ivy", models.BadgeInstructor); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if err := env.badges.Revoke(ctx, "ivy", models.BadgeInstructor); !IsNotFound(err) {
		t.Fatalf("second Revoke() error = %v, want not found", err)
	}
	if len(env.publisher.EventsOfType(events.BadgeRevoked)) != 1 {
		t.Fatal("expected one badge.revoked event")
	}

	// revoked badges can be earned again
	res, err := env.badges.Award(ctx, user.ID, models.BadgeInstructor)
	if err != nil || !res.NewBadge {
		t.Fatalf("re-award = %+v, %v", res, err)
	}
}

func TestBadgeService_PublishFailureDoesNotFailAward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "jack", models.RoleStudent)

	env.publisher.FailWith(errors.New("broker down"))
	res, err := env.badges.Award(ctx, user.ID, models.BadgeSurveyor)
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if !res.NewBadge {
		t.Fatal("Award() NewBadge = false, want true")
	}
}
