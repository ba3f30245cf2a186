package models

import "time"

// Badge keys referenced by the award rules
const (
	BadgeDataScientist  = "delightful_data_scientist"
	BadgePromptEngineer = "perfect_prompt_engineer"
	BadgeProblemSolver  = "prodigy_problem_solver"
	BadgeResponsibleAI  = "responsible_ai_master"
	BadgeSuperSmart     = "super_smart_genius"
	BadgeInstructor     = "intelligent_instructor"
	BadgeSurveyor       = "sensational_surveyor"
)

// CompositePrerequisites are the badges that together grant BadgeResponsibleAI
var CompositePrerequisites = []string{
	BadgeDataScientist,
	BadgePromptEngineer,
	BadgeProblemSolver,
}

// SubmoduleBadges maps a completed submodule number to its badge
var SubmoduleBadges = map[int]string{
	1: BadgeDataScientist,
	2: BadgePromptEngineer,
	3: BadgeProblemSolver,
}

type Badge struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	BadgeID     string `json:"id" gorm:"column:badge_id;uniqueIndex;not null;size:100"`
	Name        string `json:"name" gorm:"not null;size:255"`
	Description string `json:"description" gorm:"type:text"`
	Requirement string `json:"requirement" gorm:"type:text"`
	Image       string `json:"image" gorm:"size:255"`
	Icon        string `json:"icon" gorm:"size:16"`
	Color       string `json:"color" gorm:"size:16"`
}

func (Badge) TableName() string {
	return "badges"
}

type UserBadge struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_badge"`
	BadgeID   string    `json:"badge_id" gorm:"column:badge_id;not null;size:100;uniqueIndex:idx_user_badge"`
	AwardedAt time.Time `json:"awarded_at" gorm:"not null"`

	Badge *Badge `json:"badge,omitempty" gorm:"foreignKey:BadgeID;references:BadgeID"`
	User  *User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}

// BadgeCount is one row of the badge-count leaderboard
type BadgeCount struct {
	UserID     uint   `json:"user_id"`
	UID        string `json:"uid"`
	Name       string `json:"name"`
	BadgeCount int64  `json:"badge_count"`
}
