package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/study-buddy-service/internal/cache"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
)

type BadgePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewBadgePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.BadgeRepository {
	return &BadgePostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (b *BadgePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(b.db, tx)
}

// ===== CATALOG =====

// List returns the catalog ordered by insertion, served from cache when warm
func (b *BadgePostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Badge, error) {
	db := b.getDB(tx)
	var badges []*models.Badge

	err := b.cacheManager.Badge.CacheOrExecute(ctx, cache.BadgeCatalogKey, &badges, cache.BadgeCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.Badge
		if err := db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to list badges: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return badges, nil
}

func (b *BadgePostgreSQL) GetByBadgeID(ctx context.Context, tx *gorm.DB, badgeID string) (*models.Badge, error) {
	var badge models.Badge
	if err := b.getDB(tx).WithContext(ctx).Where("badge_id = ?", badgeID).First(&badge).Error; err != nil {
		return nil, wrapNotFound(err, "badge", badgeID)
	}
	return &badge, nil
}

func (b *BadgePostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, badges []*models.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	if err := b.getDB(tx).WithContext(ctx).Create(&badges).Error; err != nil {
		return fmt.Errorf("failed to create badges: %w", err)
	}
	cache.InvalidateBadgeCatalog(ctx, b.cacheManager)
	return nil
}

func (b *BadgePostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := b.getDB(tx).WithContext(ctx).Model(&models.Badge{}).Count(&count).Error
	return count, err
}

// ===== LEDGER =====

// Award relies on the (user_id, badge_id) unique index; a conflicting insert
// affects zero rows and is not an error.
func (b *BadgePostgreSQL) Award(ctx context.Context, tx *gorm.DB, userID uint, badgeID string, at time.Time) (bool, error) {
	row := &models.UserBadge{
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedAt: at,
	}
	result := b.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		if repositories.IsDuplicateError(result.Error) {
			return false, nil
		}
		return false, fmt.Errorf("failed to award badge: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (b *BadgePostgreSQL) Revoke(ctx context.Context, tx *gorm.DB, userID uint, badgeID string) (bool, error) {
	result := b.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Delete(&models.UserBadge{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to revoke badge: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (b *BadgePostgreSQL) GetUserBadges(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.UserBadge, error) {
	var awards []*models.UserBadge
	err := b.getDB(tx).WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Order("id ASC").
		Find(&awards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}
	return awards, nil
}

// CountHeld counts how many of badgeIDs the user holds
func (b *BadgePostgreSQL) CountHeld(ctx context.Context, tx *gorm.DB, userID uint, badgeIDs []string) (int64, error) {
	if len(badgeIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := b.getDB(tx).WithContext(ctx).
		Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id IN ?", userID, badgeIDs).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count held badges: %w", err)
	}
	return count, nil
}

func (b *BadgePostgreSQL) BadgeCounts(ctx context.Context, tx *gorm.DB, limit int) ([]models.BadgeCount, error) {
	if limit <= 0 {
		limit = models.LeaderboardSize
	}
	var rows []models.BadgeCount
	err := b.getDB(tx).WithContext(ctx).
		Table("user_badges").
		Select("users.id AS user_id, users.uid AS uid, users.name AS name, COUNT(user_badges.id) AS badge_count").
		Joins("JOIN users ON users.id = user_badges.user_id").
		Group("users.id, users.uid, users.name").
		Order("badge_count DESC").
		Order("users.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count badges per user: %w", err)
	}
	return rows, nil
}
