package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
)

// ContentHandler serves the per-subject question bank
type ContentHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewContentHandler(questionService services.QuestionService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// SampleQuestions returns up to count distinct random questions
// @Summary Sample questions
// @Tags content
// @Produce json
// @Param subject path string true "Subject (english, math, science, cs, history)"
// @Param category query string false "Category filter"
// @Param count query int false "Number of questions (0 means the default of 4, capped at 50)"
// @Success 200 {object} services.QuestionSample
// @Failure 400 {object} ErrorResponse
// @Router /content/{subject}/questions [get]
func (h *ContentHandler) SampleQuestions(c *gin.Context) {
	sample, err := h.questionService.Sample(
		c.Request.Context(),
		c.Param("subject"),
		c.Query("category"),
		h.parseIntQuery(c, "count", 0),
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sample)
}

// GetQuestion returns one question of a subject
// @Summary Get question
// @Tags content
// @Produce json
// @Param subject path string true "Subject"
// @Param id path int true "Question ID"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse
// @Router /content/{subject}/questions/{id} [get]
func (h *ContentHandler) GetQuestion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	question, err := h.questionService.Get(c.Request.Context(), c.Param("subject"), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// GetCategories lists the distinct categories of a subject
// @Summary Subject categories
// @Tags content
// @Produce json
// @Param subject path string true "Subject"
// @Success 200 {object} map[string]interface{}
// @Router /content/{subject}/categories [get]
func (h *ContentHandler) GetCategories(c *gin.Context) {
	subject := c.Param("subject")
	categories, err := h.questionService.Categories(c.Request.Context(), subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": subject, "categories": categories})
}

// CreateQuestion
// @Summary Create question
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body validator.QuestionCreateRequest true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Router /admin/content/questions [post]
func (h *ContentHandler) CreateQuestion(c *gin.Context) {
	var req services.QuestionCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	question, err := h.questionService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion
// @Summary Update question
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body validator.QuestionUpdateRequest true "Fields to change"
// @Success 200 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/content/questions/{id} [put]
func (h *ContentHandler) UpdateQuestion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.QuestionUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	question, err := h.questionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion
// @Summary Delete question
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/content/questions/{id} [delete]
func (h *ContentHandler) DeleteQuestion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Question deleted"})
}
