package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleStudent UserRole = "Student"
	RoleAdmin   UserRole = "Admin"
)

func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	UID          string   `json:"uid" gorm:"uniqueIndex;not null;size:255"`
	Name         string   `json:"name" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null;size:20;default:Student"`
	PasswordHash string   `json:"-" gorm:"size:255"`

	// LegacyBadges holds the pre-ledger JSON badge list; only the one-time
	// migration reads it.
	LegacyBadges datatypes.JSON `json:"-" gorm:"column:legacy_badges"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
