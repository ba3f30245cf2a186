package models

import "time"

const (
	PromptGood = "Good"
	PromptBad  = "Bad"
)

// PromptExample is a shared good/bad coding prompt from the CS workshop
type PromptExample struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      *uint     `json:"user_id" gorm:"index"`
	AuthorName  string    `json:"author" gorm:"not null;size:255"`
	PromptType  string    `json:"prompt_type" gorm:"not null;size:8;index"`
	Prompt      string    `json:"prompt" gorm:"type:text;not null"`
	Explanation string    `json:"explanation" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (PromptExample) TableName() string {
	return "cs_prompts"
}
