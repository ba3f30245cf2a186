package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "study-buddy-service"
	EventVersion = "1.0"
)

type EventType string

const (
	BadgeAwarded         EventType = "badge.awarded"
	BadgeRevoked         EventType = "badge.revoked"
	SurveySubmitted      EventType = "survey.submitted"
	LeaderboardSubmitted EventType = "leaderboard.submitted"
	FeedbackSubmitted    EventType = "feedback.submitted"
)

// Event is the envelope published for every domain event
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent stamps an envelope around data
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type BadgeAwardedData struct {
	UserID    uint      `json:"user_id"`
	UID       string    `json:"uid,omitempty"`
	BadgeID   string    `json:"badge_id"`
	BadgeName string    `json:"badge_name"`
	Derived   bool      `json:"derived"`
	AwardedAt time.Time `json:"awarded_at"`
}

type BadgeRevokedData struct {
	UserID  uint   `json:"user_id"`
	BadgeID string `json:"badge_id"`
}

type SurveySubmittedData struct {
	ResponseID uint              `json:"response_id"`
	UserID     *uint             `json:"user_id,omitempty"`
	UsesAI     string            `json:"uses_ai"`
	Tools      map[string]string `json:"tools"`
}

type LeaderboardSubmittedData struct {
	EntryID uint   `json:"entry_id"`
	UserID  *uint  `json:"user_id,omitempty"`
	Player  string `json:"player"`
	Score   int    `json:"score"`
	MadeTop bool   `json:"made_top"`
}

type FeedbackSubmittedData struct {
	FeedbackID uint   `json:"feedback_id"`
	Kind       string `json:"kind"`
	Category   string `json:"category,omitempty"`
	Rating     *int   `json:"rating,omitempty"`
}

// EventPublisher publishes domain events; implementations must be safe for
// concurrent use
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
