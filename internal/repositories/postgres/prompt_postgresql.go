package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
)

type PromptPostgreSQL struct {
	db *gorm.DB
}

func NewPromptPostgreSQL(db *gorm.DB) repositories.PromptRepository {
	return &PromptPostgreSQL{db: db}
}

func (p *PromptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(p.db, tx)
}

func (p *PromptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, example *models.PromptExample) error {
	if err := p.getDB(tx).WithContext(ctx).Create(example).Error; err != nil {
		return fmt.Errorf("failed to create prompt example: %w", err)
	}
	return nil
}

func (p *PromptPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, examples []*models.PromptExample) error {
	if len(examples) == 0 {
		return nil
	}
	if err := p.getDB(tx).WithContext(ctx).Create(&examples).Error; err != nil {
		return fmt.Errorf("failed to create prompt examples: %w", err)
	}
	return nil
}

func (p *PromptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PromptExample, error) {
	var example models.PromptExample
	if err := p.getDB(tx).WithContext(ctx).First(&example, id).Error; err != nil {
		return nil, wrapNotFound(err, "prompt example", id)
	}
	return &example, nil
}

func (p *PromptPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return checkAffected(p.getDB(tx).WithContext(ctx).Delete(&models.PromptExample{}, id), "prompt example", id)
}

func (p *PromptPostgreSQL) Recent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.PromptExample, error) {
	return p.find(p.getDB(tx).WithContext(ctx), limit)
}

func (p *PromptPostgreSQL) GetByType(ctx context.Context, tx *gorm.DB, promptType string, limit int) ([]*models.PromptExample, error) {
	return p.find(p.getDB(tx).WithContext(ctx).Where("prompt_type = ?", promptType), limit)
}

func (p *PromptPostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.PromptExample, error) {
	return p.find(p.getDB(tx).WithContext(ctx).Where("user_id = ?", userID), limit)
}

func (p *PromptPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := p.getDB(tx).WithContext(ctx).Model(&models.PromptExample{}).Count(&count).Error
	return count, err
}

func (p *PromptPostgreSQL) find(query *gorm.DB, limit int) ([]*models.PromptExample, error) {
	var examples []*models.PromptExample
	err := paginate(query.Order("created_at DESC").Order("id DESC"), limit, 0).Find(&examples).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt examples: %w", err)
	}
	return examples, nil
}
