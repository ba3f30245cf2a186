package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type SurveySubmitRequest = validator.SurveySubmitRequest
type SurveyUpdateRequest = validator.SurveyUpdateRequest
type LeaderboardSubmitRequest = validator.LeaderboardSubmitRequest
type RatingFeedbackRequest = validator.RatingFeedbackRequest
type GeneralFeedbackRequest = validator.GeneralFeedbackRequest
type FeedbackUpdateRequest = validator.FeedbackUpdateRequest
type QuestionCreateRequest = validator.QuestionCreateRequest
type QuestionUpdateRequest = validator.QuestionUpdateRequest
type PromptTestRequest = validator.PromptTestRequest
type PromptExampleRequest = validator.PromptExampleRequest
type SignupRequest = validator.SignupRequest
type LoginRequest = validator.LoginRequest
type UserUpdateRequest = validator.UserUpdateRequest

type SurveySubmitResult struct {
	ResponseID   uint                   `json:"response_id"`
	BadgeAwarded bool                   `json:"badge_awarded"`
	Results      *models.SurveySnapshot `json:"results"`
}

type SurveyListResponse struct {
	Responses []*models.SurveyResponse `json:"responses"`
	Total     int64                    `json:"total"`
}

type FeedbackListResponse struct {
	Entries []*models.FeedbackEntry `json:"entries"`
	Total   int64                   `json:"total"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

type QuestionSample struct {
	Subject   string             `json:"subject"`
	Category  string             `json:"category,omitempty"`
	Questions []*models.Question `json:"questions"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// SeedReport counts the rows inserted per table; tables that already had
// data are reported as skipped
type SeedReport struct {
	Inserted map[string]int `json:"inserted"`
	Skipped  []string       `json:"skipped"`
}

type MigrationReport struct {
	Users   int `json:"users"`
	Awarded int `json:"awarded"`
	Unknown int `json:"unknown_badges"`
}

// ===== SERVICE INTERFACES =====

type BadgeService interface {
	Definitions(ctx context.Context) ([]*models.Badge, error)
	Award(ctx context.Context, userID uint, badgeID string) (*models.AwardResult, error)
	UserBadges(ctx context.Context, userID uint) ([]*models.EarnedBadge, error)
	Progress(ctx context.Context, userID uint) (*models.BadgeProgress, error)
	BadgesForUID(ctx context.Context, requester *models.User, uid string) ([]*models.EarnedBadge, error)
	Leaderboard(ctx context.Context, limit int) ([]models.BadgeCount, error)
	CompleteSubmodule(ctx context.Context, userID uint, submodule int) (*models.AwardResult, error)
	Revoke(ctx context.Context, uid, badgeID string) error
}

type LeaderboardService interface {
	Submit(ctx context.Context, user *models.User, req *LeaderboardSubmitRequest) (*models.SubmitAttemptResult, error)
	Top(ctx context.Context, limit int) ([]*models.RankedEntry, error)
	Stats(ctx context.Context) (*models.LeaderboardStats, error)
	MyEntries(ctx context.Context, user *models.User, limit int) ([]*models.LeaderboardEntry, error)
	Clear(ctx context.Context) (int64, error)
}

type SurveyService interface {
	Submit(ctx context.Context, user *models.User, req *SurveySubmitRequest) (*SurveySubmitResult, error)
	Snapshot(ctx context.Context, opinions int) (*models.SurveySnapshot, error)

	// Admin
	List(ctx context.Context, limit, offset int) (*SurveyListResponse, error)
	Get(ctx context.Context, id uint) (*models.SurveyResponse, error)
	Update(ctx context.Context, id uint, req *SurveyUpdateRequest) (*models.SurveyResponse, error)
	Delete(ctx context.Context, id uint) error
}

type QuestionService interface {
	Sample(ctx context.Context, subject, category string, count int) (*QuestionSample, error)
	Categories(ctx context.Context, subject string) ([]string, error)
	Get(ctx context.Context, subject string, id uint) (*models.Question, error)

	// Admin
	Create(ctx context.Context, req *QuestionCreateRequest) (*models.Question, error)
	Update(ctx context.Context, id uint, req *QuestionUpdateRequest) (*models.Question, error)
	Delete(ctx context.Context, id uint) error
}

type FeedbackService interface {
	SubmitRating(ctx context.Context, user *models.User, req *RatingFeedbackRequest) (*models.FeedbackEntry, error)
	SubmitGeneral(ctx context.Context, user *models.User, req *GeneralFeedbackRequest) (*models.FeedbackEntry, error)
	List(ctx context.Context, filters repositories.FeedbackFilters) (*FeedbackListResponse, error)
	AverageRating(ctx context.Context, category string) (*models.RatingSummary, error)

	// Admin
	Update(ctx context.Context, id uint, req *FeedbackUpdateRequest) (*models.FeedbackEntry, error)
	Delete(ctx context.Context, id uint) error
}

type PromptService interface {
	Analyze(prompt string) *models.PromptAnalysis
	Improve(prompt string) string
	Test(ctx context.Context, user *models.User, req *PromptTestRequest) (*models.PromptTestResult, error)
	Ask(ctx context.Context, prompt string) (string, error)

	// Shared examples
	RecentExamples(ctx context.Context, limit int) ([]*models.PromptExample, error)
	ExamplesByType(ctx context.Context, promptType string, limit int) ([]*models.PromptExample, error)
	CreateExample(ctx context.Context, user *models.User, req *PromptExampleRequest) (*models.PromptExample, error)
	MyExamples(ctx context.Context, user *models.User, limit int) ([]*models.PromptExample, error)
	DeleteExample(ctx context.Context, user *models.User, id uint) error
}

type UserService interface {
	Signup(ctx context.Context, req *SignupRequest) (*LoginResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)

	// Admin
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, id uint, req *UserUpdateRequest) (*models.User, error)
	Delete(ctx context.Context, requester *models.User, id uint) error
	EnsureAdmin(ctx context.Context, uid, password string) (*models.User, bool, error)
}

type AdminService interface {
	Seed(ctx context.Context) (*SeedReport, error)
	Reset(ctx context.Context) (*SeedReport, error)
	Export(ctx context.Context, w io.Writer) error
	MigrateLegacyBadges(ctx context.Context) (*MigrationReport, error)
}

// TokenIssuer signs session tokens for local accounts
type TokenIssuer interface {
	IssueToken(user *models.User) (string, time.Time, error)
}

// ServiceManager manages all services and their dependencies
type ServiceManager interface {
	// Core service getters
	Badge() BadgeService
	Leaderboard() LeaderboardService
	Survey() SurveyService
	Question() QuestionService
	Feedback() FeedbackService
	Prompt() PromptService
	User() UserService
	Admin() AdminService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
