package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

// PromptHandler serves the prompt workshop: local analysis, Gemini calls
// and the shared example wall
type PromptHandler struct {
	BaseHandler
	promptService services.PromptService
	validator     *validator.Validator
}

func NewPromptHandler(promptService services.PromptService, validator *validator.Validator, logger utils.Logger) *PromptHandler {
	return &PromptHandler{
		BaseHandler:   NewBaseHandler(logger),
		promptService: promptService,
		validator:     validator,
	}
}

func (h *PromptHandler) bindPrompt(c *gin.Context) (string, bool) {
	var req validator.PromptRequest
	if !h.bindJSON(c, &req) {
		return "", false
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return "", false
	}
	return req.Prompt, true
}

// Analyze scores a prompt against the four-point checklist
// @Summary Analyze prompt
// @Tags prompts
// @Accept json
// @Produce json
// @Param request body validator.PromptRequest true "Prompt"
// @Success 200 {object} models.PromptAnalysis
// @Failure 400 {object} ErrorResponse
// @Router /prompts/analyze [post]
func (h *PromptHandler) Analyze(c *gin.Context) {
	prompt, ok := h.bindPrompt(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.promptService.Analyze(prompt))
}

// Improve rewrites a prompt to satisfy the checklist
// @Summary Improve prompt
// @Tags prompts
// @Accept json
// @Produce json
// @Param request body validator.PromptRequest true "Prompt"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /prompts/improve [post]
func (h *PromptHandler) Improve(c *gin.Context) {
	prompt, ok := h.bindPrompt(c)
	if !ok {
		return
	}
	improved := h.promptService.Improve(prompt)
	c.JSON(http.StatusOK, gin.H{
		"original": prompt,
		"improved": improved,
		"analysis": h.promptService.Analyze(improved),
	})
}

// Test sends a prompt to Gemini. A successful "good" prompt earns the
// instructor badge for signed-in users.
// @Summary Test prompt
// @Tags prompts
// @Accept json
// @Produce json
// @Param request body validator.PromptTestRequest true "Prompt"
// @Success 200 {object} models.PromptTestResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /prompts/test [post]
func (h *PromptHandler) Test(c *gin.Context) {
	var req services.PromptTestRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.promptService.Test(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Ask forwards a free-form question to Gemini
// @Summary Ask Gemini
// @Tags prompts
// @Accept json
// @Produce json
// @Param request body validator.PromptRequest true "Prompt"
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /prompts/ask [post]
func (h *PromptHandler) Ask(c *gin.Context) {
	prompt, ok := h.bindPrompt(c)
	if !ok {
		return
	}
	text, err := h.promptService.Ask(c.Request.Context(), prompt)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": text})
}

// RecentExamples
// @Summary Recent prompt examples
// @Tags prompts
// @Produce json
// @Param limit query int false "Rows"
// @Success 200 {object} map[string]interface{}
// @Router /prompts/examples/recent [get]
func (h *PromptHandler) RecentExamples(c *gin.Context) {
	examples, err := h.promptService.RecentExamples(c.Request.Context(), h.parseIntQuery(c, "limit", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"examples": examples})
}

// ExamplesByType lists good or bad examples
// @Summary Prompt examples by type
// @Tags prompts
// @Produce json
// @Param type query string true "Good or Bad"
// @Param limit query int false "Rows"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /prompts/examples [get]
func (h *PromptHandler) ExamplesByType(c *gin.Context) {
	promptType := c.Query("type")
	examples, err := h.promptService.ExamplesByType(c.Request.Context(), promptType, h.parseIntQuery(c, "limit", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": promptType, "examples": examples})
}

// CreateExample shares a prompt on the example wall
// @Summary Share prompt example
// @Tags prompts
// @Accept json
// @Produce json
// @Param request body validator.PromptExampleRequest true "Example"
// @Success 201 {object} models.PromptExample
// @Failure 400 {object} ErrorResponse
// @Router /prompts/examples [post]
func (h *PromptHandler) CreateExample(c *gin.Context) {
	var req services.PromptExampleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	example, err := h.promptService.CreateExample(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, example)
}

// MyExamples
// @Summary My prompt examples
// @Tags prompts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /prompts/examples/mine [get]
func (h *PromptHandler) MyExamples(c *gin.Context) {
	examples, err := h.promptService.MyExamples(c.Request.Context(), currentUser(c), h.parseIntQuery(c, "limit", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"examples": examples})
}

// DeleteExample removes an example; the author or an admin only
// @Summary Delete prompt example
// @Tags prompts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Example ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /prompts/examples/{id} [delete]
func (h *PromptHandler) DeleteExample(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.promptService.DeleteExample(c.Request.Context(), currentUser(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Prompt example deleted"})
}
