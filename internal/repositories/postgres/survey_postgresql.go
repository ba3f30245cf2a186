package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
)

type SurveyPostgreSQL struct {
	db *gorm.DB
}

func NewSurveyPostgreSQL(db *gorm.DB) repositories.SurveyRepository {
	return &SurveyPostgreSQL{db: db}
}

func (s *SurveyPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(s.db, tx)
}

// Create inserts the response together with its preference rows
func (s *SurveyPostgreSQL) Create(ctx context.Context, tx *gorm.DB, response *models.SurveyResponse) error {
	if err := s.getDB(tx).WithContext(ctx).Create(response).Error; err != nil {
		return fmt.Errorf("failed to create survey response: %w", err)
	}
	return nil
}

func (s *SurveyPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	err := s.getDB(tx).WithContext(ctx).
		Preload("Preferences", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&response, id).Error
	if err != nil {
		return nil, wrapNotFound(err, "survey response", id)
	}
	return &response, nil
}

func (s *SurveyPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SurveyFilters) ([]*models.SurveyResponse, int64, error) {
	query := s.getDB(tx).WithContext(ctx).Model(&models.SurveyResponse{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count survey responses: %w", err)
	}

	var responses []*models.SurveyResponse
	err := paginate(query.Order("completed_at DESC").Order("id DESC"), filters.Limit, filters.Offset).
		Preload("Preferences", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Find(&responses).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list survey responses: %w", err)
	}
	return responses, total, nil
}

func (s *SurveyPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := s.getDB(tx).WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("id = ?", id).
		Updates(fields)
	return checkAffected(result, "survey response", id)
}

// SetPreference upserts the tool for one subject of a response
func (s *SurveyPostgreSQL) SetPreference(ctx context.Context, tx *gorm.DB, responseID uint, subject, tool string) error {
	pref := &models.AIToolPreference{
		ResponseID: responseID,
		Subject:    subject,
		ToolName:   tool,
	}
	err := s.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "response_id"}, {Name: "subject"}},
			DoUpdates: clause.AssignmentColumns([]string{"tool_name"}),
		}).
		Create(pref).Error
	if err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}
	return nil
}

// Delete removes the response and its preferences
func (s *SurveyPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx).WithContext(ctx)
	if err := db.Where("response_id = ?", id).Delete(&models.AIToolPreference{}).Error; err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}
	return checkAffected(db.Delete(&models.SurveyResponse{}, id), "survey response", id)
}

func (s *SurveyPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := s.getDB(tx).WithContext(ctx).Model(&models.SurveyResponse{}).Count(&count).Error
	return count, err
}

// ===== AGGREGATION =====

func (s *SurveyPostgreSQL) CountBySubjectTool(ctx context.Context, tx *gorm.DB) ([]models.ToolCount, error) {
	var rows []models.ToolCount
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.AIToolPreference{}).
		Select("subject, tool_name, COUNT(*) AS count").
		Group("subject, tool_name").
		Order("subject ASC").
		Order("tool_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tool preferences: %w", err)
	}
	return rows, nil
}

func (s *SurveyPostgreSQL) CountByUsesAI(ctx context.Context, tx *gorm.DB) ([]models.FlagCount, error) {
	var rows []models.FlagCount
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Select("uses_ai_schoolwork, COUNT(*) AS count").
		Group("uses_ai_schoolwork").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate uses-AI flag: %w", err)
	}
	return rows, nil
}

// RecentOpinions returns non-empty opinions newest first
func (s *SurveyPostgreSQL) RecentOpinions(ctx context.Context, tx *gorm.DB, limit int) ([]models.Opinion, error) {
	var rows []models.Opinion
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Select("id, ai_policy_opinion AS text, completed_at").
		Where("ai_policy_opinion IS NOT NULL AND ai_policy_opinion <> ''").
		Order("completed_at DESC").
		Order("id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent opinions: %w", err)
	}
	return rows, nil
}
