package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
)

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
}

func NewSurveyHandler(surveyService services.SurveyService, logger utils.Logger) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
	}
}

// Submit stores one survey response and returns the refreshed results
// @Summary Submit survey
// @Description All seven fields are required. Signed-in users earn the surveyor badge on their first submission.
// @Tags survey
// @Accept json
// @Produce json
// @Param request body validator.SurveySubmitRequest true "Survey answers"
// @Success 201 {object} services.SurveySubmitResult
// @Failure 400 {object} ErrorResponse
// @Router /survey [post]
func (h *SurveyHandler) Submit(c *gin.Context) {
	var req services.SurveySubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.surveyService.Submit(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"message":       "Survey submitted",
		"response_id":   result.ResponseID,
		"badge_awarded": result.BadgeAwarded,
		"results":       result.Results,
	})
}

// Results returns the aggregated snapshot
// @Summary Survey results
// @Tags survey
// @Produce json
// @Param opinions query int false "Recent opinions to include (default 3, max 20)"
// @Success 200 {object} models.SurveySnapshot
// @Router /survey/results [get]
func (h *SurveyHandler) Results(c *gin.Context) {
	snapshot, err := h.surveyService.Snapshot(c.Request.Context(), h.parseIntQuery(c, "opinions", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// List pages through raw responses
// @Summary List survey responses
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.SurveyListResponse
// @Router /admin/survey [get]
func (h *SurveyHandler) List(c *gin.Context) {
	list, err := h.surveyService.List(c.Request.Context(), h.parseIntQuery(c, "limit", 50), h.parseIntQuery(c, "offset", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get returns one response with its tool preferences
// @Summary Get survey response
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Response ID"
// @Success 200 {object} models.SurveyResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/survey/{id} [get]
func (h *SurveyHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	response, err := h.surveyService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Update edits the allow-listed fields of a response
// @Summary Update survey response
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Response ID"
// @Param request body validator.SurveyUpdateRequest true "Fields to change"
// @Success 200 {object} models.SurveyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/survey/{id} [put]
func (h *SurveyHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.SurveyUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	response, err := h.surveyService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Delete removes a response and its preferences
// @Summary Delete survey response
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Response ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/survey/{id} [delete]
func (h *SurveyHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.surveyService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Survey response deleted"})
}
