package repositories

import (
	"context"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for the content bank
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Bulk operations
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	GetRandomQuestions(ctx context.Context, tx *gorm.DB, filters RandomQuestionFilters) ([]*models.Question, error)
	GetCategories(ctx context.Context, tx *gorm.DB, subject string) ([]string, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type QuestionFilters struct {
	Subject  string
	Category string
	Limit    int
	Offset   int
}

type RandomQuestionFilters struct {
	Subject  string
	Category string
	Count    int
}
