package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
	"gorm.io/gorm"
)

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== READS =====

// Sample draws up to count questions at random without replacement. A zero
// count means the default and counts above the cap are clamped to it.
func (s *questionService) Sample(ctx context.Context, subject, category string, count int) (*QuestionSample, error) {
	subject = normalizeSubject(subject)
	category = strings.TrimSpace(category)

	if errs := s.validator.GetBusinessValidator().ValidateSubject(subject); len(errs) > 0 {
		return nil, errs
	}
	if count == 0 {
		count = validator.DefaultSampleCount
	}
	if count > validator.MaxSampleCount {
		count = validator.MaxSampleCount
	}
	if errs := s.validator.GetBusinessValidator().ValidateSampleCount(count); len(errs) > 0 {
		return nil, errs
	}

	questions, err := s.repo.Question().GetRandomQuestions(ctx, nil, repositories.RandomQuestionFilters{
		Subject:  subject,
		Category: category,
		Count:    count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sample questions: %w", err)
	}
	if questions == nil {
		questions = []*models.Question{}
	}

	s.logger.Debug("Sampled questions", "subject", subject, "category", category, "requested", count, "returned", len(questions))
	return &QuestionSample{Subject: subject, Category: category, Questions: questions}, nil
}

func (s *questionService) Categories(ctx context.Context, subject string) ([]string, error) {
	subject = normalizeSubject(subject)
	if errs := s.validator.GetBusinessValidator().ValidateSubject(subject); len(errs) > 0 {
		return nil, errs
	}

	categories, err := s.repo.Question().GetCategories(ctx, nil, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Get returns the question only when it belongs to subject
func (s *questionService) Get(ctx context.Context, subject string, id uint) (*models.Question, error) {
	subject = normalizeSubject(subject)
	if errs := s.validator.GetBusinessValidator().ValidateSubject(subject); len(errs) > 0 {
		return nil, errs
	}

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if question.Subject != subject {
		return nil, NewNotFoundError("question", id)
	}
	return question, nil
}

// ===== ADMIN =====

func (s *questionService) Create(ctx context.Context, req *QuestionCreateRequest) (*models.Question, error) {
	req.Subject = normalizeSubject(req.Subject)
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	question := &models.Question{
		Subject:        req.Subject,
		Category:       strings.TrimSpace(req.Category),
		Question:       strings.TrimSpace(req.Question),
		Answer:         strings.TrimSpace(req.Answer),
		PromptTemplate: strings.TrimSpace(req.PromptTemplate),
	}
	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "question_id", question.ID, "subject", question.Subject, "category", question.Category)
	return question, nil
}

// Update applies only the fields present in req
func (s *questionService) Update(ctx context.Context, id uint, req *QuestionUpdateRequest) (*models.Question, error) {
	if req.Subject != nil {
		normalized := normalizeSubject(*req.Subject)
		req.Subject = &normalized
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
			changed = true
		}
	}
	apply(&question.Subject, req.Subject)
	apply(&question.Category, req.Category)
	apply(&question.Question, req.Question)
	apply(&question.Answer, req.Answer)
	apply(&question.PromptTemplate, req.PromptTemplate)
	if !changed {
		return nil, validationFailed("body", "At least one field is required", nil)
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("question", id)
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated", "question_id", id)
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("question", id)
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	s.logger.Info("Question deleted", "question_id", id)
	return nil
}

func (s *questionService) getQuestion(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("question", id)
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func normalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}
