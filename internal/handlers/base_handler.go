package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

// Context keys set by the auth middleware
const (
	ctxUserKey   = "user"
	ctxUserIDKey = "user_id"
	ctxRoleKey   = "user_role"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalidCredential = "INVALID_CREDENTIALS"
	CodeLocalAuthDisabled = "LOCAL_AUTH_DISABLED"
	CodeConflict          = "CONFLICT"
	CodeUpstream          = "UPSTREAM_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps plain acknowledgements
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the logger shared by every handler
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h BaseHandler) LogRequest(c *gin.Context, msg string, kv ...interface{}) {
	utils.GetLogger(c, h.logger).Debug(msg, append(kv, "path", c.FullPath())...)
}

func (h BaseHandler) LogError(c *gin.Context, err error, msg string, kv ...interface{}) {
	utils.GetLogger(c, h.logger).Error(msg, append(kv, "error", err)...)
}

func abortWithError(c *gin.Context, status int, code, msg string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Code: code, Details: details})
}

// handleServiceError maps service errors onto status codes. Anything not
// recognised is logged and reported as an opaque 500.
func (h BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		msg := "Validation failed"
		if len(validationErrs) > 0 {
			msg = validationErrs[0].Message
		}
		abortWithError(c, http.StatusBadRequest, CodeValidation, msg, validationErrs)
		return
	}

	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		abortWithError(c, http.StatusNotFound, CodeNotFound, notFound.Error(), nil)
		return
	}

	var permissionErr *services.PermissionError
	if errors.As(err, &permissionErr) {
		abortWithError(c, http.StatusForbidden, CodeForbidden, "Permission denied", map[string]interface{}{
			"resource": permissionErr.Resource,
			"action":   permissionErr.Action,
			"reason":   permissionErr.Reason,
		})
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		abortWithError(c, http.StatusConflict, CodeConflict, conflictErr.Message, nil)
		return
	}

	var upstreamErr *services.UpstreamError
	if errors.As(err, &upstreamErr) {
		h.LogError(c, err, "Upstream call failed", "status", upstreamErr.Status)
		var details interface{}
		if upstreamErr.Body != "" {
			details = upstreamErr.Body
		}
		abortWithError(c, upstreamErr.Status, CodeUpstream, upstreamErr.Message, details)
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		abortWithError(c, http.StatusUnauthorized, CodeInvalidCredential, "Invalid uid or password", nil)
	case errors.Is(err, services.ErrLocalAuthDisabled):
		abortWithError(c, http.StatusNotFound, CodeLocalAuthDisabled, "Local accounts are disabled", nil)
	default:
		h.LogError(c, err, "Unhandled service error")
		abortWithError(c, http.StatusInternalServerError, CodeInternal, "Internal server error", nil)
	}
}

// bindJSON decodes the body and writes a 400 on failure
func (h BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, http.StatusBadRequest, CodeBadRequest, "Invalid request payload", err.Error())
		return false
	}
	return true
}

func (h BaseHandler) parseIDParam(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		abortWithError(c, http.StatusBadRequest, CodeBadRequest, "Invalid "+param, c.Param(param))
		return 0, false
	}
	return uint(id), true
}

func (h BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// currentUser returns the authenticated user, or nil for anonymous requests
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// requireUser writes a 401 when the request is anonymous
func (h BaseHandler) requireUser(c *gin.Context) (*models.User, bool) {
	user := currentUser(c)
	if user == nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required", nil)
		return nil, false
	}
	return user, true
}
