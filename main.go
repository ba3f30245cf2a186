package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/study-buddy-service/internal/auth"
	"github.com/SAP-F-2025/study-buddy-service/internal/config"
	"github.com/SAP-F-2025/study-buddy-service/internal/events"
	"github.com/SAP-F-2025/study-buddy-service/internal/gemini"
	"github.com/SAP-F-2025/study-buddy-service/internal/handlers"
	"github.com/SAP-F-2025/study-buddy-service/internal/observability"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
	"github.com/SAP-F-2025/study-buddy-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)
	if cfg.LogBackend == "zap" {
		zapLogger, sync, err := utils.NewZapLogger(cfg.Environment)
		if err != nil {
			log.Fatalf("Failed to initialize zap logger: %v", err)
		}
		defer sync()
		logger = zapLogger
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing, err := observability.InitTracing(rootCtx, slogLogger, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		AutoMigrate: true,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	// Event publisher: Kafka when brokers are configured, otherwise in-process
	var publisher events.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
		publisher = kafkaPublisher
	} else {
		inProcess, ch := events.NewInProcessEventPublisher(cfg.Kafka.Topic, slogLogger)
		if err := events.LogEvents(rootCtx, ch, cfg.Kafka.Topic, slogLogger); err != nil {
			log.Fatalf("Failed to subscribe event log: %v", err)
		}
		publisher = inProcess
	}

	geminiClient := gemini.NewClient(cfg.Gemini, &http.Client{}, slogLogger)

	// Authentication
	var (
		authenticator auth.Authenticator
		tokens        services.TokenIssuer
	)
	switch cfg.Auth.Provider {
	case config.AuthProviderLocal:
		local := auth.NewLocalAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, repo.User())
		authenticator = local
		tokens = local
	default:
		authenticator = auth.NewCasdoorAuthenticator(cfg.Casdoor, repo.User(), slogLogger)
	}

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewDefaultServiceManager(db, repo, slogLogger, validator, services.Integrations{
		Publisher: publisher,
		Gemini:    geminiClient,
		Tokens:    tokens,
	}, cfg.Gemini)
	if err := serviceManager.Initialize(rootCtx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	if tokens != nil && cfg.AdminPassword != "" {
		admin, created, err := serviceManager.User().EnsureAdmin(rootCtx, cfg.AdminUID, cfg.AdminPassword)
		if err != nil {
			log.Fatalf("Failed to ensure admin account: %v", err)
		}
		logger.Info("Admin account ready", "uid", admin.UID, "created", created)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger, authenticator)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger, cfg.CORSOrigins)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"auth_provider", cfg.Auth.Provider,
			"database", cfg.Database.Driver,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown services (closes the event publisher)
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	stop()

	if err := shutdownTracing(ctx); err != nil {
		logger.Error("Failed to flush traces", "error", err)
	}

	// Close database and Redis connections
	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close repositories", "error", err)
	}

	logger.Info("Server exited")
}
