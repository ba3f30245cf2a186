package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

type BadgeHandler struct {
	BaseHandler
	badgeService services.BadgeService
	validator    *validator.Validator
}

func NewBadgeHandler(badgeService services.BadgeService, validator *validator.Validator, logger utils.Logger) *BadgeHandler {
	return &BadgeHandler{
		BaseHandler:  NewBaseHandler(logger),
		badgeService: badgeService,
		validator:    validator,
	}
}

// GetDefinitions returns the badge catalog keyed by badge id
// @Summary Badge catalog
// @Tags badges
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /badges/definitions [get]
func (h *BadgeHandler) GetDefinitions(c *gin.Context) {
	badges, err := h.badgeService.Definitions(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	byID := make(map[string]*models.Badge, len(badges))
	for _, b := range badges {
		byID[b.BadgeID] = b
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "badges": byID})
}

// GetMyBadges lists the caller's badges
// @Summary Current user's badges
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Router /badges/my-badges [get]
func (h *BadgeHandler) GetMyBadges(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	badges, err := h.badgeService.UserBadges(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "badges": badges, "badge_count": len(badges)})
}

// AwardBadge awards a badge to the caller. Awarding an owned badge succeeds
// with new_badge=false.
// @Summary Award badge
// @Tags badges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body validator.AwardRequest true "Badge to award"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /badges/award [post]
func (h *BadgeHandler) AwardBadge(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req validator.AwardRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Awarding badge", "user_id", user.ID, "badge_id", req.BadgeID)

	result, err := h.badgeService.Award(c.Request.Context(), user.ID, req.BadgeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, awardResponse(result))
}

// CheckProgress reports earned and unearned badges
// @Summary Badge progress
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /badges/check-progress [get]
func (h *BadgeHandler) CheckProgress(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	progress, err := h.badgeService.Progress(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"progress":      progress.Progress,
		"total_badges":  progress.TotalBadges,
		"earned_badges": progress.EarnedBadges,
	})
}

// GetUserBadges lists another user's badges; admins or the user only
// @Summary Badges for a user
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User uid"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /badges/user/{uid} [get]
func (h *BadgeHandler) GetUserBadges(c *gin.Context) {
	uid := c.Param("uid")
	badges, err := h.badgeService.BadgesForUID(c.Request.Context(), currentUser(c), uid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "uid": uid, "badges": badges, "badge_count": len(badges)})
}

// GetLeaderboard ranks users by number of badges
// @Summary Badge-count leaderboard
// @Tags badges
// @Produce json
// @Param limit query int false "Rows (default 10)"
// @Success 200 {object} map[string]interface{}
// @Router /badges/leaderboard [get]
func (h *BadgeHandler) GetLeaderboard(c *gin.Context) {
	rows, err := h.badgeService.Leaderboard(c.Request.Context(), h.parseIntQuery(c, "limit", models.LeaderboardSize))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": rows})
}

// CompleteSubmodule awards the badge tied to a finished submodule
// @Summary Complete submodule
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param n path int true "Submodule number (1-3)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /badges/submodule/{n}/complete [post]
func (h *BadgeHandler) CompleteSubmodule(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, CodeBadRequest, "Invalid submodule", c.Param("n"))
		return
	}

	result, err := h.badgeService.CompleteSubmodule(c.Request.Context(), user.ID, n)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, awardResponse(result))
}

// RevokeBadge removes a badge from a user
// @Summary Revoke badge
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User uid"
// @Param badge_id path string true "Badge id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/badges/{uid}/{badge_id} [delete]
func (h *BadgeHandler) RevokeBadge(c *gin.Context) {
	uid, badgeID := c.Param("uid"), c.Param("badge_id")
	if err := h.badgeService.Revoke(c.Request.Context(), uid, badgeID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: fmt.Sprintf("Badge %s revoked from %s", badgeID, uid)})
}

func awardResponse(result *models.AwardResult) gin.H {
	msg := "Badge already earned"
	if result.NewBadge {
		msg = fmt.Sprintf("Badge %q awarded!", result.Badge.Name)
	}
	resp := gin.H{
		"success":   true,
		"message":   msg,
		"badge":     result.Badge,
		"new_badge": result.NewBadge,
	}
	if len(result.Derived) > 0 {
		resp["derived"] = result.Derived
	}
	return resp
}
