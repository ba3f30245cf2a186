package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/cache"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(q.db, tx)
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new question and invalidates cached categories
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if err := q.getDB(tx).WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	cache.InvalidateQuestionCategories(ctx, q.cacheManager, question.Subject)
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.getDB(tx).WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, wrapNotFound(err, "question", id)
	}
	return &question, nil
}

// Update saves all columns; the subject may change so every subject's
// categories are dropped
func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	result := q.getDB(tx).WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", question.ID).
		Updates(map[string]interface{}{
			"subject":         question.Subject,
			"category":        question.Category,
			"question":        question.Question,
			"answer":          question.Answer,
			"prompt_template": question.PromptTemplate,
		})
	if err := checkAffected(result, "question", question.ID); err != nil {
		return err
	}
	cache.InvalidateQuestionCategories(ctx, q.cacheManager, "")
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := q.getDB(tx).WithContext(ctx).Delete(&models.Question{}, id)
	if err := checkAffected(result, "question", id); err != nil {
		return err
	}
	cache.InvalidateQuestionCategories(ctx, q.cacheManager, "")
	return nil
}

// ===== BULK OPERATIONS =====

func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	if err := q.getDB(tx).WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to create questions batch: %w", err)
	}
	cache.InvalidateQuestionCategories(ctx, q.cacheManager, "")
	return nil
}

// ===== QUERY OPERATIONS =====

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	query := q.applyFilters(q.getDB(tx).WithContext(ctx).Model(&models.Question{}), filters.Subject, filters.Category)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	var questions []*models.Question
	if err := paginate(query.Order("id ASC"), filters.Limit, filters.Offset).Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}

// GetRandomQuestions samples without replacement; fewer matches than Count
// returns every match
func (q *QuestionPostgreSQL) GetRandomQuestions(ctx context.Context, tx *gorm.DB, filters repositories.RandomQuestionFilters) ([]*models.Question, error) {
	query := q.applyFilters(q.getDB(tx).WithContext(ctx).Model(&models.Question{}), filters.Subject, filters.Category)

	var questions []*models.Question
	if err := query.Order("RANDOM()").Limit(filters.Count).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to sample questions: %w", err)
	}
	return questions, nil
}

// GetCategories returns the sorted distinct categories of a subject
func (q *QuestionPostgreSQL) GetCategories(ctx context.Context, tx *gorm.DB, subject string) ([]string, error) {
	db := q.getDB(tx)
	var categories []string

	err := q.cacheManager.Question.CacheOrExecute(ctx, cache.CategoriesKey(subject), &categories, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		rows := []string{}
		err := db.WithContext(ctx).
			Model(&models.Question{}).
			Where("subject = ?", subject).
			Distinct("category").
			Order("category ASC").
			Pluck("category", &rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (q *QuestionPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := q.getDB(tx).WithContext(ctx).Model(&models.Question{}).Count(&count).Error
	return count, err
}

func (q *QuestionPostgreSQL) applyFilters(query *gorm.DB, subject, category string) *gorm.DB {
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	return query
}
