package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

const minAdminPassword = 8

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	tokens    TokenIssuer
}

// NewUserService builds the user directory service. tokens may be nil when
// accounts are managed by an external identity provider.
func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, tokens TokenIssuer) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		tokens:    tokens,
	}
}

// ===== LOCAL ACCOUNTS =====

func (s *userService) Signup(ctx context.Context, req *SignupRequest) (*LoginResponse, error) {
	if s.tokens == nil {
		return nil, ErrLocalAuthDisabled
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UID:          strings.TrimSpace(req.UID),
		Name:         strings.TrimSpace(req.Name),
		Role:         models.RoleStudent,
		PasswordHash: hash,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("user", "uid is already taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User signed up", "user_id", user.ID, "uid", user.UID)
	return s.issue(user)
}

func (s *userService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if s.tokens == nil {
		return nil, ErrLocalAuthDisabled
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByUID(ctx, nil, strings.TrimSpace(req.UID))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return s.issue(user)
}

func (s *userService) issue(user *models.User) (*LoginResponse, error) {
	token, expiresAt, err := s.tokens.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ===== ADMIN =====

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return &UserListResponse{Users: users, Total: total}, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("user", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Update changes only name and role
func (s *userService) Update(ctx context.Context, id uint, req *UserUpdateRequest) (*models.User, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if req.Name == nil && req.Role == nil {
		return nil, validationFailed("body", "At least one field is required", nil)
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("user", id)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated", "user_id", id, "role", user.Role)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, requester *models.User, id uint) error {
	if requester != nil && requester.ID == id {
		return NewPermissionError(requester.UID, id, "user", "delete", "admins cannot delete their own account")
	}
	if err := s.repo.User().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("user", id)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("User deleted", "user_id", id)
	return nil
}

// EnsureAdmin creates the admin account or resets its role and password.
// The bool reports whether a new account was created.
func (s *userService) EnsureAdmin(ctx context.Context, uid, password string) (*models.User, bool, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, false, validationFailed("uid", "Missing required field: uid", nil)
	}
	if len(password) < minAdminPassword {
		return nil, false, validationFailed("password", fmt.Sprintf("password must be at least %d characters", minAdminPassword), nil)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, false, err
	}

	user, err := s.repo.User().GetByUID(ctx, nil, uid)
	switch {
	case err == nil:
		user.Role = models.RoleAdmin
		user.PasswordHash = hash
		if err := s.repo.User().Update(ctx, nil, user); err != nil {
			return nil, false, fmt.Errorf("failed to reset admin: %w", err)
		}
		s.logger.Info("Admin account reset", "uid", uid)
		return user, false, nil
	case repositories.IsNotFoundError(err):
		user = &models.User{UID: uid, Name: "Administrator", Role: models.RoleAdmin, PasswordHash: hash}
		if err := s.repo.User().Create(ctx, nil, user); err != nil {
			return nil, false, fmt.Errorf("failed to create admin: %w", err)
		}
		s.logger.Info("Admin account created", "uid", uid)
		return user, true, nil
	default:
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
