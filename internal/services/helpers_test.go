package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/events"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/study-buddy-service/internal/seed"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
	"github.com/SAP-F-2025/study-buddy-service/pkg"
)

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher *events.MockEventPublisher
	badges    BadgeService
}

// newTestEnv opens a private in-memory database with the schema migrated and
// the badge catalog loaded
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := pkg.OpenSQLite("file::memory:", nil)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	ctx := context.Background()
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	catalog, err := seed.Badges()
	if err != nil {
		t.Fatalf("seed.Badges() error = %v", err)
	}
	if err := repo.Badge().CreateBatch(ctx, nil, catalog); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	publisher := events.NewMockEventPublisher(logger)

	return &testEnv{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
		badges:    NewBadgeService(repo, logger, publisher),
	}
}

func (e *testEnv) createUser(t *testing.T, uid string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{UID: uid, Name: "User " + uid, Role: role}
	if err := e.repo.User().Create(context.Background(), nil, user); err != nil {
		t.Fatalf("create user %s: %v", uid, err)
	}
	return user
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
