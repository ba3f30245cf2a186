package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/study-buddy-service/internal/events"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
	"gorm.io/gorm"
)

const (
	maxLeaderboardLimit = 100
	defaultMyEntries    = 20
)

type leaderboardService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	badges         BadgeService
	eventPublisher events.EventPublisher
	now            func() time.Time
}

func NewLeaderboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, badges BadgeService, publisher events.EventPublisher) LeaderboardService {
	return &leaderboardService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		badges:         badges,
		eventPublisher: publisher,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Submit records one attempt. Every call inserts a new row; an identified
// user who appears in the top ten afterwards earns the leaderboard badge.
func (s *leaderboardService) Submit(ctx context.Context, user *models.User, req *LeaderboardSubmitRequest) (*models.SubmitAttemptResult, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	entry := &models.LeaderboardEntry{
		PlayerName:     playerName(user, req.Username),
		Score:          *req.Score,
		CorrectAnswers: *req.CorrectAnswers,
		CreatedAt:      s.now(),
	}
	if user != nil {
		entry.UserID = &user.ID
	}

	if err := s.repo.Leaderboard().Create(ctx, nil, entry); err != nil {
		return nil, fmt.Errorf("failed to save leaderboard entry: %w", err)
	}
	s.logger.Info("Leaderboard attempt recorded", "entry_id", entry.ID, "score", entry.Score, "anonymous", user == nil)

	top, err := s.repo.Leaderboard().Top(ctx, nil, models.LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	result := &models.SubmitAttemptResult{Entry: entry}
	userInTop := false
	for i, e := range top {
		if e.ID == entry.ID {
			result.MadeTop = true
			result.Rank = i + 1
		}
		if user != nil && e.UserID != nil && *e.UserID == user.ID {
			userInTop = true
		}
	}

	if userInTop {
		award, err := s.badges.Award(ctx, user.ID, models.BadgeSuperSmart)
		if err != nil {
			// the attempt is already stored; a failed award must not hide it
			s.logger.Error("Failed to award leaderboard badge", "user_id", user.ID, "error", err)
		} else {
			result.Award = award
		}
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.NewEvent(events.LeaderboardSubmitted, events.LeaderboardSubmittedData{
		EntryID: entry.ID,
		UserID:  entry.UserID,
		Player:  entry.PlayerName,
		Score:   entry.Score,
		MadeTop: result.MadeTop,
	}))

	return result, nil
}

func (s *leaderboardService) Top(ctx context.Context, limit int) ([]*models.RankedEntry, error) {
	limit = clampLimit(limit, models.LeaderboardSize, maxLeaderboardLimit)

	entries, err := s.repo.Leaderboard().Top(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	ranked := make([]*models.RankedEntry, 0, len(entries))
	for i, e := range entries {
		ranked = append(ranked, &models.RankedEntry{Rank: i + 1, LeaderboardEntry: *e})
	}
	return ranked, nil
}

func (s *leaderboardService) Stats(ctx context.Context) (*models.LeaderboardStats, error) {
	stats, err := s.repo.Leaderboard().Stats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compute leaderboard stats: %w", err)
	}
	return stats, nil
}

func (s *leaderboardService) MyEntries(ctx context.Context, user *models.User, limit int) ([]*models.LeaderboardEntry, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	limit = clampLimit(limit, defaultMyEntries, maxLeaderboardLimit)

	entries, err := s.repo.Leaderboard().GetByUser(ctx, nil, user.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load user entries: %w", err)
	}
	return entries, nil
}

func (s *leaderboardService) Clear(ctx context.Context) (int64, error) {
	removed, err := s.repo.Leaderboard().Clear(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to clear leaderboard: %w", err)
	}
	s.logger.Warn("Leaderboard cleared", "removed", removed)
	return removed, nil
}

// playerName prefers the account name; anonymous players may pick one
func playerName(user *models.User, requested string) string {
	if user != nil && strings.TrimSpace(user.Name) != "" {
		return user.Name
	}
	if name := strings.TrimSpace(requested); name != "" {
		return name
	}
	return models.AnonymousPlayer
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
