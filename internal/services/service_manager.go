package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/study-buddy-service/internal/config"
	"github.com/SAP-F-2025/study-buddy-service/internal/events"
	"github.com/SAP-F-2025/study-buddy-service/internal/gemini"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
	"gorm.io/gorm"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Service-specific configurations; badges are always on
	Leaderboard ServiceConfig
	Survey      ServiceConfig
	Question    ServiceConfig
	Feedback    ServiceConfig
	Prompt      ServiceConfig

	Gemini config.GeminiConfig

	// Global settings
	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	Enabled bool
}

// Integrations are the optional collaborators outside the database
type Integrations struct {
	Publisher events.EventPublisher
	Gemini    gemini.Client
	Tokens    TokenIssuer
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db           *gorm.DB
	repo         repositories.Repository
	logger       *slog.Logger
	validator    *validator.Validator
	integrations Integrations
	config       ServiceManagerConfig

	// Service instances
	badgeService       BadgeService
	leaderboardService LeaderboardService
	surveyService      SurveyService
	questionService    QuestionService
	feedbackService    FeedbackService
	promptService      PromptService
	userService        UserService
	adminService       AdminService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, integrations Integrations, cfg ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:           db,
		repo:         repo,
		logger:       logger,
		validator:    validator,
		integrations: integrations,
		config:       cfg,
	}
}

// NewDefaultServiceManager enables every service
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, integrations Integrations, geminiCfg config.GeminiConfig) ServiceManager {
	enabled := ServiceConfig{Enabled: true}
	cfg := ServiceManagerConfig{
		Leaderboard:    enabled,
		Survey:         enabled,
		Question:       enabled,
		Feedback:       enabled,
		Prompt:         enabled,
		Gemini:         geminiCfg,
		DefaultTimeout: 30 * time.Second,
	}
	return NewServiceManager(db, repo, logger, validator, integrations, cfg)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.config.Validate(); err != nil {
		return err
	}

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices(ctx context.Context) error {
	publisher := sm.integrations.Publisher

	// The badge service backs every award path, so it is always built
	sm.badgeService = NewBadgeService(sm.repo, sm.logger, publisher)
	sm.logger.Info("Badge service initialized")

	if sm.config.Leaderboard.Enabled {
		sm.leaderboardService = NewLeaderboardService(sm.repo, sm.db, sm.logger, sm.validator, sm.badgeService, publisher)
		sm.logger.Info("Leaderboard service initialized")
	}

	if sm.config.Survey.Enabled {
		sm.surveyService = NewSurveyService(sm.repo, sm.db, sm.logger, sm.validator, sm.badgeService, publisher)
		sm.logger.Info("Survey service initialized")
	}

	if sm.config.Question.Enabled {
		sm.questionService = NewQuestionService(sm.repo, sm.db, sm.logger, sm.validator)
		sm.logger.Info("Question service initialized")
	}

	if sm.config.Feedback.Enabled {
		sm.feedbackService = NewFeedbackService(sm.repo, sm.db, sm.logger, sm.validator, publisher)
		sm.logger.Info("Feedback service initialized")
	}

	if sm.config.Prompt.Enabled {
		if sm.integrations.Gemini == nil {
			return fmt.Errorf("prompt service requires a gemini client")
		}
		if !sm.integrations.Gemini.Configured() {
			sm.logger.Warn("GEMINI_API_KEY not set; AI endpoints will report 503")
		}
		sm.promptService = NewPromptService(sm.repo, sm.db, sm.logger, sm.validator, sm.integrations.Gemini, sm.config.Gemini, sm.badgeService)
		sm.logger.Info("Prompt service initialized")
	}

	sm.userService = NewUserService(sm.repo, sm.db, sm.logger, sm.validator, sm.integrations.Tokens)
	sm.logger.Info("User service initialized")

	sm.adminService = NewAdminService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Admin service initialized")

	return nil
}

// Service getters
func (sm *serviceManager) Badge() BadgeService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.badgeService
}

func (sm *serviceManager) Leaderboard() LeaderboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Leaderboard.Enabled && sm.leaderboardService != nil {
		return sm.leaderboardService
	}

	panic("leaderboard service not enabled or not initialized")
}

func (sm *serviceManager) Survey() SurveyService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Survey.Enabled && sm.surveyService != nil {
		return sm.surveyService
	}

	panic("survey service not enabled or not initialized")
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Question.Enabled && sm.questionService != nil {
		return sm.questionService
	}

	panic("question service not enabled or not initialized")
}

func (sm *serviceManager) Feedback() FeedbackService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Feedback.Enabled && sm.feedbackService != nil {
		return sm.feedbackService
	}

	panic("feedback service not enabled or not initialized")
}

func (sm *serviceManager) Prompt() PromptService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Prompt.Enabled && sm.promptService != nil {
		return sm.promptService
	}

	panic("prompt service not enabled or not initialized")
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.adminService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.integrations.Publisher != nil {
		if err := sm.integrations.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// ===== CONFIGURATION VALIDATION =====

// Validate validates the service manager configuration
func (c *ServiceManagerConfig) Validate() error {
	if c.DefaultTimeout <= 0 {
		return fmt.Errorf("configuration validation failed: default timeout must be positive")
	}
	return nil
}
