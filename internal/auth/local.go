package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
)

const localIssuer = "study-buddy-service"

type localClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// LocalAuthenticator issues and verifies HS256 tokens for password logins
type LocalAuthenticator struct {
	secret []byte
	ttl    time.Duration
	users  repositories.UserRepository
	now    func() time.Time
}

func NewLocalAuthenticator(secret string, ttl time.Duration, users repositories.UserRepository) *LocalAuthenticator {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &LocalAuthenticator{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
}

// IssueToken signs a token whose subject is the user's uid
func (a *LocalAuthenticator) IssueToken(user *models.User) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := localClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Authenticate verifies the token and loads the current user record, so
// deleted users and role changes take effect immediately
func (a *LocalAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	var claims localClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := a.users.GetByUID(ctx, nil, claims.Subject)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}
		return nil, err
	}
	return user, nil
}
