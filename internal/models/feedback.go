package models

import "time"

type FeedbackKind string

const (
	FeedbackGeneral FeedbackKind = "general"
	FeedbackRating  FeedbackKind = "rating"
)

var (
	FeedbackTypes      = []string{"General", "Bug", "Feature Request", "Inquiry", "Other"}
	FeedbackCategories = []string{"submodule2", "submodule3"}
)

const DefaultFeedbackType = "General"

// FeedbackEntry stores both schemas: title/body/type for general feedback,
// rating/category/comments for submodule ratings.
type FeedbackEntry struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	UserID *uint        `json:"user_id" gorm:"index"`
	Kind   FeedbackKind `json:"kind" gorm:"not null;size:16;index"`

	Title        string `json:"title,omitempty" gorm:"size:255"`
	Body         string `json:"body,omitempty" gorm:"type:text"`
	FeedbackType string `json:"type,omitempty" gorm:"column:feedback_type;size:32"`

	Rating   *int   `json:"rating,omitempty"`
	Category string `json:"category,omitempty" gorm:"size:32;index"`
	Comments string `json:"comments,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FeedbackEntry) TableName() string {
	return "feedback_entries"
}

type RatingSummary struct {
	Category string  `json:"category,omitempty"`
	Average  float64 `json:"average_rating"`
	Count    int64   `json:"count"`
}
