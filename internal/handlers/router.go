package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-buddy-service/internal/auth"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/observability"
	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

type HandlerManager struct {
	badgeHandler       *BadgeHandler
	leaderboardHandler *LeaderboardHandler
	surveyHandler      *SurveyHandler
	contentHandler     *ContentHandler
	feedbackHandler    *FeedbackHandler
	promptHandler      *PromptHandler
	userHandler        *UserHandler
	adminHandler       *AdminHandler
	authMiddleware     *AuthMiddleware

	serviceManager services.ServiceManager
	logger         utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	authenticator auth.Authenticator,
) *HandlerManager {
	return &HandlerManager{
		badgeHandler:       NewBadgeHandler(serviceManager.Badge(), validator, logger),
		leaderboardHandler: NewLeaderboardHandler(serviceManager.Leaderboard(), logger),
		surveyHandler:      NewSurveyHandler(serviceManager.Survey(), logger),
		contentHandler:     NewContentHandler(serviceManager.Question(), logger),
		feedbackHandler:    NewFeedbackHandler(serviceManager.Feedback(), logger),
		promptHandler:      NewPromptHandler(serviceManager.Prompt(), validator, logger),
		userHandler:        NewUserHandler(serviceManager.User(), logger),
		adminHandler:       NewAdminHandler(serviceManager.Admin(), validator, logger),
		authMiddleware:     NewAuthMiddleware(authenticator, logger),
		serviceManager:     serviceManager,
		logger:             logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	required := hm.authMiddleware.Required()
	optional := hm.authMiddleware.Optional()

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", hm.userHandler.Signup)
			authRoutes.POST("/login", hm.userHandler.Login)
		}

		api.GET("/users/me", required, hm.userHandler.Me)

		badges := api.Group("/badges")
		{
			badges.GET("/definitions", hm.badgeHandler.GetDefinitions)
			badges.GET("/leaderboard", hm.badgeHandler.GetLeaderboard)

			badges.GET("/my-badges", required, hm.badgeHandler.GetMyBadges)
			badges.POST("/award", required, hm.badgeHandler.AwardBadge)
			badges.GET("/check-progress", required, hm.badgeHandler.CheckProgress)
			badges.GET("/user/:uid", required, hm.badgeHandler.GetUserBadges)
			badges.POST("/submodule/:n/complete", required, hm.badgeHandler.CompleteSubmodule)
		}

		survey := api.Group("/survey")
		{
			survey.POST("", optional, hm.surveyHandler.Submit)
			survey.GET("/results", hm.surveyHandler.Results)
		}

		leaderboard := api.Group("/leaderboard")
		{
			leaderboard.POST("", optional, hm.leaderboardHandler.SubmitAttempt)
			leaderboard.GET("", hm.leaderboardHandler.GetTop)
			leaderboard.GET("/stats", hm.leaderboardHandler.GetStats)
			leaderboard.GET("/me", required, hm.leaderboardHandler.GetMine)
		}

		content := api.Group("/content/:subject")
		{
			content.GET("/questions", hm.contentHandler.SampleQuestions)
			content.GET("/questions/:id", hm.contentHandler.GetQuestion)
			content.GET("/categories", hm.contentHandler.GetCategories)
		}

		feedback := api.Group("/feedback")
		{
			feedback.POST("", optional, hm.feedbackHandler.SubmitGeneral)
			feedback.POST("/rating", optional, hm.feedbackHandler.SubmitRating)
			feedback.GET("", hm.feedbackHandler.List)
			feedback.GET("/average", hm.feedbackHandler.Average)
		}

		prompts := api.Group("/prompts")
		{
			prompts.POST("/analyze", hm.promptHandler.Analyze)
			prompts.POST("/improve", hm.promptHandler.Improve)
			prompts.POST("/test", optional, hm.promptHandler.Test)
			prompts.POST("/ask", hm.promptHandler.Ask)

			prompts.GET("/examples/recent", hm.promptHandler.RecentExamples)
			prompts.GET("/examples", hm.promptHandler.ExamplesByType)
			prompts.POST("/examples", optional, hm.promptHandler.CreateExample)
			prompts.GET("/examples/mine", required, hm.promptHandler.MyExamples)
			prompts.DELETE("/examples/:id", required, hm.promptHandler.DeleteExample)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(required, hm.authMiddleware.RequireRole(models.RoleAdmin))
		{
			admin.DELETE("/badges/:uid/:badge_id", hm.badgeHandler.RevokeBadge)

			admin.GET("/survey", hm.surveyHandler.List)
			admin.GET("/survey/:id", hm.surveyHandler.Get)
			admin.PUT("/survey/:id", hm.surveyHandler.Update)
			admin.DELETE("/survey/:id", hm.surveyHandler.Delete)

			admin.DELETE("/leaderboard", hm.leaderboardHandler.Clear)

			admin.POST("/content/questions", hm.contentHandler.CreateQuestion)
			admin.PUT("/content/questions/:id", hm.contentHandler.UpdateQuestion)
			admin.DELETE("/content/questions/:id", hm.contentHandler.DeleteQuestion)

			admin.PUT("/feedback/:id", hm.feedbackHandler.Update)
			admin.DELETE("/feedback/:id", hm.feedbackHandler.Delete)

			admin.GET("/users", hm.userHandler.ListUsers)
			admin.GET("/users/:id", hm.userHandler.GetUser)
			admin.PUT("/users/:id", hm.userHandler.UpdateUser)
			admin.DELETE("/users/:id", hm.userHandler.DeleteUser)

			admin.POST("/seed", hm.adminHandler.Seed)
			admin.POST("/reset", hm.adminHandler.Reset)
			admin.POST("/migrate-badges", hm.adminHandler.MigrateBadges)
			admin.GET("/export", hm.adminHandler.Export)
		}
	}

	router.GET("/health", hm.health)

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, CodeNotFound, "Route not found", c.Request.URL.Path)
	})
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": observability.ServiceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   observability.ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
