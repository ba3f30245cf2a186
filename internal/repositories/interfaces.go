package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"gorm.io/gorm"
)

// ===== BADGE CATALOG & AWARD LEDGER =====

// BadgeRepository covers the catalog and the (user, badge) ledger
type BadgeRepository interface {
	// Catalog
	List(ctx context.Context, tx *gorm.DB) ([]*models.Badge, error)
	GetByBadgeID(ctx context.Context, tx *gorm.DB, badgeID string) (*models.Badge, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, badges []*models.Badge) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	// Ledger. Award inserts at most one row per (user, badge) and reports
	// whether a row was inserted.
	Award(ctx context.Context, tx *gorm.DB, userID uint, badgeID string, at time.Time) (bool, error)
	Revoke(ctx context.Context, tx *gorm.DB, userID uint, badgeID string) (bool, error)
	GetUserBadges(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.UserBadge, error)
	CountHeld(ctx context.Context, tx *gorm.DB, userID uint, badgeIDs []string) (int64, error)
	BadgeCounts(ctx context.Context, tx *gorm.DB, limit int) ([]models.BadgeCount, error)
}

// ===== SURVEY =====

type SurveyRepository interface {
	// Create inserts the response and its preferences
	Create(ctx context.Context, tx *gorm.DB, response *models.SurveyResponse) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SurveyResponse, error)
	List(ctx context.Context, tx *gorm.DB, filters SurveyFilters) ([]*models.SurveyResponse, int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	SetPreference(ctx context.Context, tx *gorm.DB, responseID uint, subject, tool string) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	// Read-side aggregation
	CountBySubjectTool(ctx context.Context, tx *gorm.DB) ([]models.ToolCount, error)
	CountByUsesAI(ctx context.Context, tx *gorm.DB) ([]models.FlagCount, error)
	RecentOpinions(ctx context.Context, tx *gorm.DB, limit int) ([]models.Opinion, error)
}

type SurveyFilters struct {
	UserID *uint
	Limit  int
	Offset int
}

// ===== LEADERBOARD =====

type LeaderboardRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.LeaderboardEntry) error
	CreateBatch(ctx context.Context, tx *gorm.DB, entries []*models.LeaderboardEntry) error

	// Top orders by score desc, created_at asc, id asc
	Top(ctx context.Context, tx *gorm.DB, limit int) ([]*models.LeaderboardEntry, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.LeaderboardEntry, error)
	Stats(ctx context.Context, tx *gorm.DB) (*models.LeaderboardStats, error)
	Clear(ctx context.Context, tx *gorm.DB) (int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

// ===== FEEDBACK =====

type FeedbackRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.FeedbackEntry) error
	CreateBatch(ctx context.Context, tx *gorm.DB, entries []*models.FeedbackEntry) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.FeedbackEntry, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters FeedbackFilters) ([]*models.FeedbackEntry, int64, error)
	AverageRating(ctx context.Context, tx *gorm.DB, category string) (float64, int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type FeedbackFilters struct {
	Kind     models.FeedbackKind
	Category string
	Limit    int
	Offset   int
}

// ===== PROMPT EXAMPLES =====

type PromptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, example *models.PromptExample) error
	CreateBatch(ctx context.Context, tx *gorm.DB, examples []*models.PromptExample) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PromptExample, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	Recent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.PromptExample, error)
	GetByType(ctx context.Context, tx *gorm.DB, promptType string, limit int) ([]*models.PromptExample, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.PromptExample, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}
