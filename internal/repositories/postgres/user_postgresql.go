package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(u.db, tx)
}

// Create inserts a user; a taken uid yields ErrDuplicate
func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("user %q: %w", user.UID, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrapNotFound(err, "user", id)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByUID(ctx context.Context, tx *gorm.DB, uid string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
		return nil, wrapNotFound(err, "user", uid)
	}
	return &user, nil
}

// Update persists name, role and password hash
func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	result := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":          user.Name,
			"role":          user.Role,
			"password_hash": user.PasswordHash,
		})
	return checkAffected(result, "user", user.ID)
}

// Delete removes the user and their awards
func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := u.getDB(tx).WithContext(ctx)
	if err := db.Where("user_id = ?", id).Delete(&models.UserBadge{}).Error; err != nil {
		return fmt.Errorf("failed to delete user badges: %w", err)
	}
	return checkAffected(db.Delete(&models.User{}, id), "user", id)
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.getDB(tx).WithContext(ctx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if s := strings.TrimSpace(filters.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(uid) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []*models.User
	if err := paginate(query.Order("id ASC"), filters.Limit, filters.Offset).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (u *UserPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (u *UserPostgreSQL) ListWithLegacyBadges(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	var users []*models.User
	err := u.getDB(tx).WithContext(ctx).
		Where("legacy_badges IS NOT NULL").
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy badge holders: %w", err)
	}
	return users, nil
}

func (u *UserPostgreSQL) ClearLegacyBadges(ctx context.Context, tx *gorm.DB, id uint) error {
	result := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("legacy_badges", gorm.Expr("NULL"))
	return checkAffected(result, "user", id)
}
