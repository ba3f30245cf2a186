package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/SAP-F-2025/study-buddy-service/internal/events"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
	"gorm.io/gorm"
)

type feedbackService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewFeedbackService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) FeedbackService {
	return &feedbackService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

// ===== SUBMISSION =====

func (s *feedbackService) SubmitRating(ctx context.Context, user *models.User, req *RatingFeedbackRequest) (*models.FeedbackEntry, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	rating := *req.Rating
	entry := &models.FeedbackEntry{
		UserID:   userIDOf(user),
		Kind:     models.FeedbackRating,
		Rating:   &rating,
		Category: req.Category,
		Comments: strings.TrimSpace(req.Comments),
	}
	return s.create(ctx, entry)
}

func (s *feedbackService) SubmitGeneral(ctx context.Context, user *models.User, req *GeneralFeedbackRequest) (*models.FeedbackEntry, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	feedbackType := req.Type
	if feedbackType == "" {
		feedbackType = models.DefaultFeedbackType
	}
	entry := &models.FeedbackEntry{
		UserID:       userIDOf(user),
		Kind:         models.FeedbackGeneral,
		Title:        strings.TrimSpace(req.Title),
		Body:         strings.TrimSpace(req.Body),
		FeedbackType: feedbackType,
	}
	return s.create(ctx, entry)
}

func (s *feedbackService) create(ctx context.Context, entry *models.FeedbackEntry) (*models.FeedbackEntry, error) {
	if err := s.repo.Feedback().Create(ctx, nil, entry); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	s.logger.Info("Feedback recorded", "feedback_id", entry.ID, "kind", entry.Kind, "anonymous", entry.UserID == nil)

	publishEvent(ctx, s.eventPublisher, s.logger, events.NewEvent(events.FeedbackSubmitted, events.FeedbackSubmittedData{
		FeedbackID: entry.ID,
		Kind:       string(entry.Kind),
		Category:   entry.Category,
		Rating:     entry.Rating,
	}))
	return entry, nil
}

// ===== READS =====

func (s *feedbackService) List(ctx context.Context, filters repositories.FeedbackFilters) (*FeedbackListResponse, error) {
	switch filters.Kind {
	case "", models.FeedbackGeneral, models.FeedbackRating:
	default:
		return nil, validationFailed("kind", "kind must be one of: general, rating", filters.Kind)
	}
	if filters.Category != "" && !slices.Contains(models.FeedbackCategories, filters.Category) {
		return nil, validationFailed("category", "category must be one of: "+strings.Join(models.FeedbackCategories, ", "), filters.Category)
	}

	entries, total, err := s.repo.Feedback().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	if entries == nil {
		entries = []*models.FeedbackEntry{}
	}
	return &FeedbackListResponse{Entries: entries, Total: total}, nil
}

// AverageRating is computed from the stored ratings on every call
func (s *feedbackService) AverageRating(ctx context.Context, category string) (*models.RatingSummary, error) {
	if category != "" && !slices.Contains(models.FeedbackCategories, category) {
		return nil, validationFailed("category", "category must be one of: "+strings.Join(models.FeedbackCategories, ", "), category)
	}

	avg, count, err := s.repo.Feedback().AverageRating(ctx, nil, category)
	if err != nil {
		return nil, fmt.Errorf("failed to compute average rating: %w", err)
	}
	return &models.RatingSummary{
		Category: category,
		Average:  math.Round(avg*100) / 100,
		Count:    count,
	}, nil
}

// ===== ADMIN =====

// Update edits only fields that belong to the entry's kind
func (s *feedbackService) Update(ctx context.Context, id uint, req *FeedbackUpdateRequest) (*models.FeedbackEntry, error) {
	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateFeedbackUpdate(req, existing); len(errs) > 0 {
		return nil, errs
	}

	fields := make(map[string]interface{})
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		fields["body"] = strings.TrimSpace(*req.Body)
	}
	if req.Type != nil {
		fields["feedback_type"] = *req.Type
	}
	if req.Rating != nil {
		fields["rating"] = *req.Rating
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Comments != nil {
		fields["comments"] = strings.TrimSpace(*req.Comments)
	}
	if len(fields) == 0 {
		return nil, validationFailed("body", "At least one field is required", nil)
	}

	if err := s.repo.Feedback().UpdateFields(ctx, nil, id, fields); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("feedback", id)
		}
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}

	s.logger.Info("Feedback updated", "feedback_id", id)
	return s.get(ctx, id)
}

func (s *feedbackService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Feedback().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("feedback", id)
		}
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	s.logger.Info("Feedback deleted", "feedback_id", id)
	return nil
}

func (s *feedbackService) get(ctx context.Context, id uint) (*models.FeedbackEntry, error) {
	entry, err := s.repo.Feedback().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("feedback", id)
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return entry, nil
}

func userIDOf(user *models.User) *uint {
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}
