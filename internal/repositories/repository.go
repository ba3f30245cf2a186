package repositories

import "context"

// Repository aggregates every entity repository behind one handle
type Repository interface {
	// Identity
	User() UserRepository

	// Gamification
	Badge() BadgeRepository
	Leaderboard() LeaderboardRepository

	// Survey, content and feedback
	Survey() SurveyRepository
	Question() QuestionRepository
	Feedback() FeedbackRepository
	Prompt() PromptRepository

	// Schema management, used only by explicit admin maintenance
	Migrate(ctx context.Context) error
	DropData(ctx context.Context) error

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
