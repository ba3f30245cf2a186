package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
)

type LeaderboardHandler struct {
	BaseHandler
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService, logger utils.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		BaseHandler:        NewBaseHandler(logger),
		leaderboardService: leaderboardService,
	}
}

// SubmitAttempt records a quiz attempt
// @Summary Submit quiz attempt
// @Description Anonymous attempts are stored under the given username or "Anonymous". Signed-in users earn the top-ten badge once.
// @Tags leaderboard
// @Accept json
// @Produce json
// @Param request body validator.LeaderboardSubmitRequest true "Attempt"
// @Success 201 {object} models.SubmitAttemptResult
// @Failure 400 {object} ErrorResponse
// @Router /leaderboard [post]
func (h *LeaderboardHandler) SubmitAttempt(c *gin.Context) {
	var req services.LeaderboardSubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.leaderboardService.Submit(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"entry":            result.Entry,
		"made_leaderboard": result.MadeTop,
		"rank":             result.Rank,
		"award":            result.Award,
	})
}

// GetTop returns the highest scores
// @Summary Top scores
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Rows (default 10)"
// @Success 200 {object} map[string]interface{}
// @Router /leaderboard [get]
func (h *LeaderboardHandler) GetTop(c *gin.Context) {
	entries, err := h.leaderboardService.Top(c.Request.Context(), h.parseIntQuery(c, "limit", models.LeaderboardSize))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": entries})
}

// GetStats summarises all scores
// @Summary Leaderboard stats
// @Tags leaderboard
// @Produce json
// @Success 200 {object} models.LeaderboardStats
// @Router /leaderboard/stats [get]
func (h *LeaderboardHandler) GetStats(c *gin.Context) {
	stats, err := h.leaderboardService.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetMine lists the caller's own attempts, newest first
// @Summary My attempts
// @Tags leaderboard
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Rows"
// @Success 200 {object} map[string]interface{}
// @Router /leaderboard/me [get]
func (h *LeaderboardHandler) GetMine(c *gin.Context) {
	entries, err := h.leaderboardService.MyEntries(c.Request.Context(), currentUser(c), h.parseIntQuery(c, "limit", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}

// Clear removes every leaderboard entry
// @Summary Clear leaderboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /admin/leaderboard [delete]
func (h *LeaderboardHandler) Clear(c *gin.Context) {
	deleted, err := h.leaderboardService.Clear(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	utils.GetLogger(c, h.logger).Info("Leaderboard cleared", "deleted", deleted)
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}
