package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
)

type FeedbackHandler struct {
	BaseHandler
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService, logger utils.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler:     NewBaseHandler(logger),
		feedbackService: feedbackService,
	}
}

// SubmitGeneral stores free-form feedback
// @Summary Submit feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body validator.GeneralFeedbackRequest true "Feedback"
// @Success 201 {object} models.FeedbackEntry
// @Failure 400 {object} ErrorResponse
// @Router /feedback [post]
func (h *FeedbackHandler) SubmitGeneral(c *gin.Context) {
	var req services.GeneralFeedbackRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.feedbackService.SubmitGeneral(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// SubmitRating stores a 1-5 submodule rating
// @Summary Submit rating
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body validator.RatingFeedbackRequest true "Rating"
// @Success 201 {object} models.FeedbackEntry
// @Failure 400 {object} ErrorResponse
// @Router /feedback/rating [post]
func (h *FeedbackHandler) SubmitRating(c *gin.Context) {
	var req services.RatingFeedbackRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.feedbackService.SubmitRating(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// List returns feedback, newest first
// @Summary List feedback
// @Tags feedback
// @Produce json
// @Param kind query string false "general or rating"
// @Param category query string false "Rating category"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.FeedbackListResponse
// @Failure 400 {object} ErrorResponse
// @Router /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	filters := repositories.FeedbackFilters{
		Kind:     models.FeedbackKind(strings.ToLower(c.Query("kind"))),
		Category: c.Query("category"),
		Limit:    h.parseIntQuery(c, "limit", 50),
		Offset:   h.parseIntQuery(c, "offset", 0),
	}
	list, err := h.feedbackService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Average returns the mean rating, rounded to two decimals
// @Summary Average rating
// @Tags feedback
// @Produce json
// @Param category query string false "Rating category; all ratings when empty"
// @Success 200 {object} models.RatingSummary
// @Failure 400 {object} ErrorResponse
// @Router /feedback/average [get]
func (h *FeedbackHandler) Average(c *gin.Context) {
	summary, err := h.feedbackService.AverageRating(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Update edits the allow-listed fields matching the entry's kind
// @Summary Update feedback
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Param request body validator.FeedbackUpdateRequest true "Fields to change"
// @Success 200 {object} models.FeedbackEntry
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/feedback/{id} [put]
func (h *FeedbackHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.FeedbackUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.feedbackService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Delete
// @Summary Delete feedback
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/feedback/{id} [delete]
func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.feedbackService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Feedback deleted"})
}
