package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/study-buddy-service/internal/config"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
)

// CasdoorAuthenticator verifies Casdoor-issued JWTs and maps them onto the
// local user directory, creating the user on first sight
type CasdoorAuthenticator struct {
	client *casdoorsdk.Client
	users  repositories.UserRepository
	logger *slog.Logger
}

func NewCasdoorAuthenticator(cfg config.CasdoorConfig, users repositories.UserRepository, logger *slog.Logger) *CasdoorAuthenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorAuthenticator{
		client: client,
		users:  users,
		logger: logger.With("component", "CasdoorAuthenticator"),
	}
}

func (a *CasdoorAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	uid := claims.User.Name
	if uid == "" {
		uid = claims.User.Id
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: no user in claims", ErrInvalidToken)
	}

	user, err := a.users.GetByUID(ctx, nil, uid)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	name := claims.User.DisplayName
	if name == "" {
		name = uid
	}
	user = &models.User{
		UID:  uid,
		Name: name,
		Role: mapCasdoorRole(claims.User.Type, claims.User.IsAdmin),
	}
	if err := a.users.Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			// created concurrently by another request
			return a.users.GetByUID(ctx, nil, uid)
		}
		return nil, err
	}

	a.logger.Info("Provisioned user from Casdoor", "uid", uid, "role", user.Role)
	return user, nil
}

func mapCasdoorRole(userType string, isAdmin bool) models.UserRole {
	if isAdmin {
		return models.RoleAdmin
	}
	switch strings.ToLower(userType) {
	case "admin", "administrator":
		return models.RoleAdmin
	default:
		return models.RoleStudent
	}
}
