package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
)

type FeedbackPostgreSQL struct {
	db *gorm.DB
}

func NewFeedbackPostgreSQL(db *gorm.DB) repositories.FeedbackRepository {
	return &FeedbackPostgreSQL{db: db}
}

func (f *FeedbackPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(f.db, tx)
}

func (f *FeedbackPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.FeedbackEntry) error {
	if err := f.getDB(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (f *FeedbackPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, entries []*models.FeedbackEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := f.getDB(tx).WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to create feedback batch: %w", err)
	}
	return nil
}

func (f *FeedbackPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.FeedbackEntry, error) {
	var entry models.FeedbackEntry
	if err := f.getDB(tx).WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, wrapNotFound(err, "feedback", id)
	}
	return &entry, nil
}

func (f *FeedbackPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := f.getDB(tx).WithContext(ctx).
		Model(&models.FeedbackEntry{}).
		Where("id = ?", id).
		Updates(fields)
	return checkAffected(result, "feedback", id)
}

func (f *FeedbackPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return checkAffected(f.getDB(tx).WithContext(ctx).Delete(&models.FeedbackEntry{}, id), "feedback", id)
}

func (f *FeedbackPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.FeedbackFilters) ([]*models.FeedbackEntry, int64, error) {
	query := f.getDB(tx).WithContext(ctx).Model(&models.FeedbackEntry{})
	if filters.Kind != "" {
		query = query.Where("kind = ?", filters.Kind)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	var entries []*models.FeedbackEntry
	if err := paginate(query.Order("created_at DESC").Order("id DESC"), filters.Limit, filters.Offset).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}
	return entries, total, nil
}

// AverageRating averages rating rows, optionally for one category
func (f *FeedbackPostgreSQL) AverageRating(ctx context.Context, tx *gorm.DB, category string) (float64, int64, error) {
	query := f.getDB(tx).WithContext(ctx).
		Model(&models.FeedbackEntry{}).
		Where("kind = ? AND rating IS NOT NULL", models.FeedbackRating)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var row struct {
		Average *float64
		Total   int64
	}
	if err := query.Select("CAST(AVG(rating) AS FLOAT) AS average, COUNT(*) AS total").Scan(&row).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to average ratings: %w", err)
	}
	if row.Average == nil {
		return 0, row.Total, nil
	}
	return *row.Average, row.Total, nil
}

func (f *FeedbackPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := f.getDB(tx).WithContext(ctx).Model(&models.FeedbackEntry{}).Count(&count).Error
	return count, err
}
