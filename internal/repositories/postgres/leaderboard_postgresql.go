package postgres

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
)

type LeaderboardPostgreSQL struct {
	db *gorm.DB
}

func NewLeaderboardPostgreSQL(db *gorm.DB) repositories.LeaderboardRepository {
	return &LeaderboardPostgreSQL{db: db}
}

func (l *LeaderboardPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(l.db, tx)
}

func (l *LeaderboardPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.LeaderboardEntry) error {
	if err := l.getDB(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create leaderboard entry: %w", err)
	}
	return nil
}

func (l *LeaderboardPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, entries []*models.LeaderboardEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := l.getDB(tx).WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to create leaderboard entries: %w", err)
	}
	return nil
}

// Top ranks by score desc; earlier attempts win ties, then lower ids
func (l *LeaderboardPostgreSQL) Top(ctx context.Context, tx *gorm.DB, limit int) ([]*models.LeaderboardEntry, error) {
	var entries []*models.LeaderboardEntry
	err := l.getDB(tx).WithContext(ctx).
		Order("score DESC").
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

func (l *LeaderboardPostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.LeaderboardEntry, error) {
	var entries []*models.LeaderboardEntry
	err := paginate(l.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC"), limit, 0).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user entries: %w", err)
	}
	return entries, nil
}

func (l *LeaderboardPostgreSQL) Stats(ctx context.Context, tx *gorm.DB) (*models.LeaderboardStats, error) {
	var row struct {
		Total   int64
		Highest *int
		Lowest  *int
		Average *float64
	}
	err := l.getDB(tx).WithContext(ctx).
		Model(&models.LeaderboardEntry{}).
		Select("COUNT(*) AS total, MAX(score) AS highest, MIN(score) AS lowest, CAST(AVG(score) AS FLOAT) AS average").
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute leaderboard stats: %w", err)
	}

	stats := &models.LeaderboardStats{TotalEntries: row.Total}
	if row.Highest != nil {
		stats.Highest = *row.Highest
	}
	if row.Lowest != nil {
		stats.Lowest = *row.Lowest
	}
	if row.Average != nil {
		stats.Average = math.Round(*row.Average*100) / 100
	}
	return stats, nil
}

// Clear deletes every entry; only the explicit admin operation calls it
func (l *LeaderboardPostgreSQL) Clear(ctx context.Context, tx *gorm.DB) (int64, error) {
	result := l.getDB(tx).WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.LeaderboardEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear leaderboard: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (l *LeaderboardPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := l.getDB(tx).WithContext(ctx).Model(&models.LeaderboardEntry{}).Count(&count).Error
	return count, err
}
