package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
)

var (
	ErrMissingToken = errors.New("authorization header missing")
	ErrInvalidToken = errors.New("invalid token")
)

// Authenticator resolves a bearer token to a local user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}
