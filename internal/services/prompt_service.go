package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/study-buddy-service/internal/config"
	"github.com/SAP-F-2025/study-buddy-service/internal/gemini"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
	"gorm.io/gorm"
)

const (
	defaultRecentExamples = 3
	defaultExamplesByType = 10
	defaultMyExamples     = 20
	maxExamples           = 50
)

type promptService struct {
	repo        repositories.Repository
	db          *gorm.DB
	logger      *slog.Logger
	validator   *validator.Validator
	client      gemini.Client
	badges      BadgeService
	testTimeout time.Duration
	askTimeout  time.Duration
}

func NewPromptService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, client gemini.Client, cfg config.GeminiConfig, badges BadgeService) PromptService {
	testTimeout, askTimeout := cfg.TestTimeout, cfg.AskTimeout
	if testTimeout <= 0 {
		testTimeout = 30 * time.Second
	}
	if askTimeout <= 0 {
		askTimeout = 90 * time.Second
	}
	return &promptService{
		repo:        repo,
		db:          db,
		logger:      logger,
		validator:   validator,
		client:      client,
		badges:      badges,
		testTimeout: testTimeout,
		askTimeout:  askTimeout,
	}
}

// ===== WORKSHOP =====

func (s *promptService) Analyze(prompt string) *models.PromptAnalysis {
	return AnalyzePrompt(prompt)
}

func (s *promptService) Improve(prompt string) string {
	return ImprovePrompt(prompt)
}

// Test runs a student's prompt against the model. Identified users who
// submit a prompt they marked as good earn the instructor badge.
func (s *promptService) Test(ctx context.Context, user *models.User, req *PromptTestRequest) (*models.PromptTestResult, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	text, err := s.generate(ctx, s.testTimeout, req.Prompt)
	if err != nil {
		return nil, err
	}
	result := &models.PromptTestResult{Response: text}

	promptType, _ := validator.NormalizePromptType(req.PromptType)
	if user != nil && promptType == models.PromptGood {
		award, err := s.badges.Award(ctx, user.ID, models.BadgeInstructor)
		if err != nil {
			s.logger.Error("Failed to award prompt badge", "user_id", user.ID, "error", err)
		} else {
			result.Award = award
		}
	}
	return result, nil
}

func (s *promptService) Ask(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", validationFailed("prompt", "Missing required field: prompt", nil)
	}
	return s.generate(ctx, s.askTimeout, prompt)
}

func (s *promptService) generate(ctx context.Context, timeout time.Duration, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.client.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Text generation failed", "error", err, "elapsed", time.Since(start))
		return "", toUpstreamError(err)
	}
	s.logger.Debug("Text generated", "elapsed", time.Since(start), "chars", len(raw))
	return gemini.MarkdownToPlainText(raw), nil
}

// toUpstreamError maps client failures to client-safe messages. A 503 from
// the model stays 503; timeouts are 504; everything else is 502.
func toUpstreamError(err error) *UpstreamError {
	if errors.Is(err, gemini.ErrNotConfigured) {
		return &UpstreamError{Status: http.StatusServiceUnavailable, Message: "AI service not configured", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Status: http.StatusGatewayTimeout, Message: "The AI service took too long to respond. Please try again.", Err: err}
	}

	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		upstream := &UpstreamError{Status: http.StatusBadGateway, Body: apiErr.Body, Err: err}
		switch apiErr.StatusCode {
		case http.StatusServiceUnavailable:
			upstream.Status = http.StatusServiceUnavailable
			upstream.Message = "Gemini API is temporarily unavailable (503). Please try again later."
		case http.StatusTooManyRequests:
			upstream.Message = "Rate limit exceeded. Please try again later."
		case http.StatusBadRequest:
			upstream.Message = "Bad request to Gemini API. Please check your input."
		default:
			upstream.Message = fmt.Sprintf("Gemini API returned status %d", apiErr.StatusCode)
		}
		return upstream
	}

	return &UpstreamError{Status: http.StatusBadGateway, Message: "Could not generate a response", Err: err}
}

// ===== SHARED EXAMPLES =====

func (s *promptService) RecentExamples(ctx context.Context, limit int) ([]*models.PromptExample, error) {
	examples, err := s.repo.Prompt().Recent(ctx, nil, clampLimit(limit, defaultRecentExamples, maxExamples))
	if err != nil {
		return nil, fmt.Errorf("failed to load recent prompts: %w", err)
	}
	return nonNilExamples(examples), nil
}

func (s *promptService) ExamplesByType(ctx context.Context, promptType string, limit int) ([]*models.PromptExample, error) {
	normalized, ok := validator.NormalizePromptType(promptType)
	if !ok {
		return nil, validationFailed("type", "type must be one of: Good, Bad", promptType)
	}
	examples, err := s.repo.Prompt().GetByType(ctx, nil, normalized, clampLimit(limit, defaultExamplesByType, maxExamples))
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	return nonNilExamples(examples), nil
}

func (s *promptService) CreateExample(ctx context.Context, user *models.User, req *PromptExampleRequest) (*models.PromptExample, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}
	promptType, _ := validator.NormalizePromptType(req.PromptType)

	example := &models.PromptExample{
		UserID:      userIDOf(user),
		AuthorName:  playerName(user, ""),
		PromptType:  promptType,
		Prompt:      strings.TrimSpace(req.Prompt),
		Explanation: strings.TrimSpace(req.Explanation),
	}
	if err := s.repo.Prompt().Create(ctx, nil, example); err != nil {
		return nil, fmt.Errorf("failed to save prompt: %w", err)
	}

	s.logger.Info("Prompt example shared", "prompt_id", example.ID, "type", example.PromptType, "anonymous", user == nil)
	return example, nil
}

func (s *promptService) MyExamples(ctx context.Context, user *models.User, limit int) ([]*models.PromptExample, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	examples, err := s.repo.Prompt().GetByUser(ctx, nil, user.ID, clampLimit(limit, defaultMyExamples, maxExamples))
	if err != nil {
		return nil, fmt.Errorf("failed to load user prompts: %w", err)
	}
	return nonNilExamples(examples), nil
}

// DeleteExample is allowed for the author or an admin
func (s *promptService) DeleteExample(ctx context.Context, user *models.User, id uint) error {
	if user == nil {
		return ErrUnauthorized
	}

	example, err := s.repo.Prompt().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("prompt example", id)
		}
		return fmt.Errorf("failed to get prompt: %w", err)
	}

	owner := example.UserID != nil && *example.UserID == user.ID
	if !owner && !user.IsAdmin() {
		return NewPermissionError(user.UID, id, "prompt example", "delete", "only the author or an admin may delete this prompt")
	}

	if err := s.repo.Prompt().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("prompt example", id)
		}
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	s.logger.Info("Prompt example deleted", "prompt_id", id, "by", user.UID)
	return nil
}

func nonNilExamples(examples []*models.PromptExample) []*models.PromptExample {
	if examples == nil {
		return []*models.PromptExample{}
	}
	return examples
}
