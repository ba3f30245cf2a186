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
)

const maxBadgeLeaderboard = 100

type badgeService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	eventPublisher events.EventPublisher
	now            func() time.Time
}

func NewBadgeService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher) BadgeService {
	return &badgeService{
		repo:           repo,
		logger:         logger,
		eventPublisher: publisher,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ===== CATALOG =====

func (s *badgeService) Definitions(ctx context.Context) ([]*models.Badge, error) {
	badges, err := s.repo.Badge().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

// ===== AWARDING =====

// Award grants badgeID to the user at most once, then re-evaluates the
// composite badge. Awarding a badge the user already holds is not an error.
func (s *badgeService) Award(ctx context.Context, userID uint, badgeID string) (*models.AwardResult, error) {
	badgeID = strings.TrimSpace(badgeID)
	s.logger.Info("Awarding badge", "user_id", userID, "badge_id", badgeID)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	badge, err := s.repo.Badge().GetByBadgeID(ctx, nil, badgeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("badge", badgeID)
		}
		return nil, fmt.Errorf("failed to get badge: %w", err)
	}

	awardedAt := s.now()
	inserted, err := s.repo.Badge().Award(ctx, nil, user.ID, badge.BadgeID, awardedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to award badge: %w", err)
	}

	result := &models.AwardResult{Badge: badge, NewBadge: inserted}
	if inserted {
		s.publishAwarded(ctx, user, badge, false, awardedAt)
	} else {
		s.logger.Debug("Badge already held", "user_id", user.ID, "badge_id", badge.BadgeID)
	}

	derived, err := s.checkComposite(ctx, user)
	if err != nil {
		return nil, err
	}
	if derived != nil {
		result.Derived = append(result.Derived, derived)
	}

	return result, nil
}

// checkComposite awards the program-completion badge once every prerequisite
// is held. It returns the badge only when this call inserted it.
func (s *badgeService) checkComposite(ctx context.Context, user *models.User) (*models.Badge, error) {
	held, err := s.repo.Badge().CountHeld(ctx, nil, user.ID, models.CompositePrerequisites)
	if err != nil {
		return nil, fmt.Errorf("failed to check composite badge: %w", err)
	}
	if held < int64(len(models.CompositePrerequisites)) {
		return nil, nil
	}

	badge, err := s.repo.Badge().GetByBadgeID(ctx, nil, models.BadgeResponsibleAI)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Warn("Composite badge missing from catalog", "badge_id", models.BadgeResponsibleAI)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get composite badge: %w", err)
	}

	awardedAt := s.now()
	inserted, err := s.repo.Badge().Award(ctx, nil, user.ID, badge.BadgeID, awardedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to award composite badge: %w", err)
	}
	if !inserted {
		return nil, nil
	}

	s.logger.Info("Composite badge derived", "user_id", user.ID, "badge_id", badge.BadgeID)
	s.publishAwarded(ctx, user, badge, true, awardedAt)
	return badge, nil
}

func (s *badgeService) CompleteSubmodule(ctx context.Context, userID uint, submodule int) (*models.AwardResult, error) {
	badgeID, ok := models.SubmoduleBadges[submodule]
	if !ok {
		return nil, validationFailed("submodule", "submodule must be 1, 2 or 3", submodule)
	}
	return s.Award(ctx, userID, badgeID)
}

func (s *badgeService) Revoke(ctx context.Context, uid, badgeID string) error {
	user, err := s.repo.User().GetByUID(ctx, nil, uid)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("user", uid)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	removed, err := s.repo.Badge().Revoke(ctx, nil, user.ID, badgeID)
	if err != nil {
		return fmt.Errorf("failed to revoke badge: %w", err)
	}
	if !removed {
		return NewNotFoundError("badge award", uid+"/"+badgeID)
	}

	s.logger.Info("Badge revoked", "user_id", user.ID, "badge_id", badgeID)
	publishEvent(ctx, s.eventPublisher, s.logger, events.NewEvent(events.BadgeRevoked, events.BadgeRevokedData{
		UserID:  user.ID,
		BadgeID: badgeID,
	}))
	return nil
}

// ===== READS =====

func (s *badgeService) UserBadges(ctx context.Context, userID uint) ([]*models.EarnedBadge, error) {
	awards, err := s.repo.Badge().GetUserBadges(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}

	earned := make([]*models.EarnedBadge, 0, len(awards))
	for _, a := range awards {
		item := &models.EarnedBadge{AwardedAt: a.AwardedAt}
		if a.Badge != nil {
			item.Badge = *a.Badge
		} else {
			item.Badge = models.Badge{BadgeID: a.BadgeID, Name: a.BadgeID}
		}
		earned = append(earned, item)
	}
	return earned, nil
}

func (s *badgeService) Progress(ctx context.Context, userID uint) (*models.BadgeProgress, error) {
	catalog, err := s.Definitions(ctx)
	if err != nil {
		return nil, err
	}
	awards, err := s.repo.Badge().GetUserBadges(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}

	held := make(map[string]bool, len(awards))
	for _, a := range awards {
		held[a.BadgeID] = true
	}

	progress := &models.BadgeProgress{
		Progress:    make([]models.BadgeProgressItem, 0, len(catalog)),
		TotalBadges: len(catalog),
	}
	for _, b := range catalog {
		item := models.BadgeProgressItem{
			ID:          b.BadgeID,
			Name:        b.Name,
			Description: b.Description,
			Requirement: b.Requirement,
			Earned:      held[b.BadgeID],
		}
		if item.Earned {
			progress.EarnedBadges++
		}
		progress.Progress = append(progress.Progress, item)
	}
	return progress, nil
}

// BadgesForUID lets a user read their own badges; admins may read anyone's
func (s *badgeService) BadgesForUID(ctx context.Context, requester *models.User, uid string) ([]*models.EarnedBadge, error) {
	if requester == nil {
		return nil, ErrUnauthorized
	}
	if !requester.IsAdmin() && requester.UID != uid {
		return nil, NewPermissionError(requester.UID, uid, "badges", "read", "only the owner or an admin may view these badges")
	}

	user, err := s.repo.User().GetByUID(ctx, nil, uid)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("user", uid)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.UserBadges(ctx, user.ID)
}

func (s *badgeService) Leaderboard(ctx context.Context, limit int) ([]models.BadgeCount, error) {
	if limit <= 0 {
		limit = models.LeaderboardSize
	}
	if limit > maxBadgeLeaderboard {
		limit = maxBadgeLeaderboard
	}
	rows, err := s.repo.Badge().BadgeCounts(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge leaderboard: %w", err)
	}
	if rows == nil {
		rows = []models.BadgeCount{}
	}
	return rows, nil
}

// ===== HELPERS =====

func (s *badgeService) getUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("user", userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *badgeService) publishAwarded(ctx context.Context, user *models.User, badge *models.Badge, derived bool, at time.Time) {
	publishEvent(ctx, s.eventPublisher, s.logger, events.NewEvent(events.BadgeAwarded, events.BadgeAwardedData{
		UserID:    user.ID,
		UID:       user.UID,
		BadgeID:   badge.BadgeID,
		BadgeName: badge.Name,
		Derived:   derived,
		AwardedAt: at,
	}))
}

// publishEvent never fails the caller; a broken broker only costs the event
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish event", "event_type", event.Type, "event_id", event.ID, "error", err)
	}
}
