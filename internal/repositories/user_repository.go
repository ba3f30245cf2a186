package repositories

import (
	"context"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for the local user directory
type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUID(ctx context.Context, tx *gorm.DB, uid string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	// Legacy badge migration
	ListWithLegacyBadges(ctx context.Context, tx *gorm.DB) ([]*models.User, error)
	ClearLegacyBadges(ctx context.Context, tx *gorm.DB, id uint) error
}

type UserFilters struct {
	Role   *models.UserRole
	Search string
	Limit  int
	Offset int
}
