package handlers

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-buddy-service/internal/auth"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
)

// AuthMiddleware resolves bearer tokens through the configured provider
type AuthMiddleware struct {
	authenticator auth.Authenticator
	logger        utils.Logger
}

func NewAuthMiddleware(authenticator auth.Authenticator, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator, logger: logger}
}

// Required rejects requests without a valid token
func (m *AuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error(), nil)
			return
		}

		user, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				utils.GetLogger(c, m.logger).Warn("Token rejected", "error", err)
			}
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token", nil)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// Optional attaches the user when a valid token is present; a missing or
// bad token leaves the request anonymous
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.Next()
			return
		}

		if user, err := m.authenticator.Authenticate(c.Request.Context(), token); err == nil {
			setUser(c, user)
		} else {
			utils.GetLogger(c, m.logger).Debug("Optional auth ignored token", "error", err)
		}
		c.Next()
	}
}

// RequireRole must run after Required. Admins pass every role check.
func (m *AuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required", nil)
			return
		}
		if !user.IsAdmin() && !slices.Contains(roles, user.Role) {
			abortWithError(c, http.StatusForbidden, CodeForbidden, "Insufficient permissions", map[string]interface{}{
				"required": roles,
			})
			return
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(ctxUserKey, user)
	c.Set(ctxUserIDKey, user.ID)
	c.Set(ctxRoleKey, user.Role)
}
