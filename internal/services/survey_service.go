package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/events"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

const (
	DefaultRecentOpinions = 3
	MaxRecentOpinions     = 20
)

type surveyService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	badges         BadgeService
	eventPublisher events.EventPublisher
	now            func() time.Time
}

func NewSurveyService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, badges BadgeService, publisher events.EventPublisher) SurveyService {
	return &surveyService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		badges:         badges,
		eventPublisher: publisher,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores one response with a preference row per subject in a single
// transaction, then awards the survey badge to identified users.
func (s *surveyService) Submit(ctx context.Context, user *models.User, req *SurveySubmitRequest) (*SurveySubmitResult, error) {
	if errs := s.validator.GetBusinessValidator().ValidateSurveySubmit(req); len(errs) > 0 {
		return nil, errs
	}

	response := &models.SurveyResponse{
		UsesAISchoolwork: *req.UseAI,
		AIPolicyOpinion:  strings.TrimSpace(*req.FRQ),
		CompletedAt:      s.now(),
	}
	if user != nil {
		response.UserID = &user.ID
	}

	tools := req.ToolsBySubject()
	for _, subject := range models.SurveySubjects {
		response.Preferences = append(response.Preferences, models.AIToolPreference{
			Subject:  subject,
			ToolName: strings.TrimSpace(tools[subject]),
		})
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Survey().Create(ctx, nil, response)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save survey response: %w", err)
	}
	s.logger.Info("Survey response recorded", "response_id", response.ID, "anonymous", user == nil)

	result := &SurveySubmitResult{ResponseID: response.ID}
	if user != nil {
		result.BadgeAwarded = s.awardSurveyor(ctx, user, response.ID)
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.NewEvent(events.SurveySubmitted, events.SurveySubmittedData{
		ResponseID: response.ID,
		UserID:     response.UserID,
		UsesAI:     response.UsesAISchoolwork,
		Tools:      response.Tools(),
	}))

	// The response is committed; a failed aggregate read only drops the results
	snapshot, err := s.Snapshot(ctx, DefaultRecentOpinions)
	if err != nil {
		s.logger.Error("Failed to load survey results after submit", "response_id", response.ID, "error", err)
		return result, nil
	}
	result.Results = snapshot
	return result, nil
}

// awardSurveyor runs after commit; the response stands even if it fails
func (s *surveyService) awardSurveyor(ctx context.Context, user *models.User, responseID uint) bool {
	award, err := s.badges.Award(ctx, user.ID, models.BadgeSurveyor)
	if err != nil {
		s.logger.Error("Failed to award survey badge", "user_id", user.ID, "error", err)
		return false
	}
	if !award.NewBadge {
		return false
	}
	if err := s.repo.Survey().UpdateFields(ctx, nil, responseID, map[string]interface{}{"badge_awarded": true}); err != nil {
		s.logger.Error("Failed to flag survey badge", "response_id", responseID, "error", err)
	}
	return true
}

// Snapshot aggregates every stored response. The reads are independent and
// run concurrently.
func (s *surveyService) Snapshot(ctx context.Context, opinions int) (*models.SurveySnapshot, error) {
	opinions = clampLimit(opinions, DefaultRecentOpinions, MaxRecentOpinions)

	var (
		total    int64
		tools    []models.ToolCount
		flags    []models.FlagCount
		comments []models.Opinion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Survey().Count(gctx, nil)
		if err != nil {
			return fmt.Errorf("failed to count responses: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.Survey().CountBySubjectTool(gctx, nil)
		tools = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.Survey().CountByUsesAI(gctx, nil)
		flags = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.Survey().RecentOpinions(gctx, nil, opinions)
		comments = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build survey snapshot: %w", err)
	}

	snapshot := &models.SurveySnapshot{
		TotalResponses: total,
		Subjects:       make(map[string]map[string]int64, len(models.SurveySubjects)),
		UseAI:          map[string]int64{models.UsesAIYes: 0, models.UsesAINo: 0},
		Opinions:       comments,
	}
	for _, subject := range models.SurveySubjects {
		counts := make(map[string]int64, len(models.KnownAITools))
		for _, tool := range models.KnownAITools {
			counts[tool] = 0
		}
		snapshot.Subjects[subject] = counts
	}
	for _, row := range tools {
		if _, ok := snapshot.Subjects[row.Subject]; !ok {
			snapshot.Subjects[row.Subject] = map[string]int64{}
		}
		snapshot.Subjects[row.Subject][row.ToolName] = row.Count
	}
	for _, row := range flags {
		snapshot.UseAI[row.UsesAISchoolwork] = row.Count
	}
	if snapshot.Opinions == nil {
		snapshot.Opinions = []models.Opinion{}
	}
	return snapshot, nil
}

// ===== ADMIN =====

func (s *surveyService) List(ctx context.Context, limit, offset int) (*SurveyListResponse, error) {
	responses, total, err := s.repo.Survey().List(ctx, nil, repositories.SurveyFilters{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list survey responses: %w", err)
	}
	return &SurveyListResponse{Responses: responses, Total: total}, nil
}

func (s *surveyService) Get(ctx context.Context, id uint) (*models.SurveyResponse, error) {
	response, err := s.repo.Survey().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("survey response", id)
		}
		return nil, fmt.Errorf("failed to get survey response: %w", err)
	}
	return response, nil
}

// Update applies only the allow-listed fields
func (s *surveyService) Update(ctx context.Context, id uint, req *SurveyUpdateRequest) (*models.SurveyResponse, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	fields := make(map[string]interface{})
	if req.UsesAISchoolwork != nil {
		fields["uses_ai_schoolwork"] = *req.UsesAISchoolwork
	}
	if req.AIPolicyOpinion != nil {
		fields["ai_policy_opinion"] = strings.TrimSpace(*req.AIPolicyOpinion)
	}
	if len(fields) == 0 && len(req.Tools) == 0 {
		return nil, validationFailed("body", "At least one field is required", nil)
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Survey().GetByID(ctx, nil, id); err != nil {
			return err
		}
		if err := tx.Survey().UpdateFields(ctx, nil, id, fields); err != nil {
			return err
		}
		for _, subject := range models.SurveySubjects {
			tool, ok := req.Tools[subject]
			if !ok {
				continue
			}
			if err := tx.Survey().SetPreference(ctx, nil, id, subject, strings.TrimSpace(tool)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("survey response", id)
		}
		return nil, fmt.Errorf("failed to update survey response: %w", err)
	}

	s.logger.Info("Survey response updated", "response_id", id)
	return s.Get(ctx, id)
}

func (s *surveyService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Survey().Delete(ctx, nil, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("survey response", id)
		}
		return fmt.Errorf("failed to delete survey response: %w", err)
	}
	s.logger.Info("Survey response deleted", "response_id", id)
	return nil
}
