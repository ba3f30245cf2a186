package models

import "time"

const (
	LeaderboardSize = 10
	AnonymousPlayer = "Anonymous"
)

type LeaderboardEntry struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         *uint     `json:"user_id" gorm:"index"`
	PlayerName     string    `json:"username" gorm:"not null;size:255"`
	Score          int       `json:"score" gorm:"not null;index:idx_leaderboard_rank,priority:1"`
	CorrectAnswers int       `json:"correct_answers" gorm:"not null"`
	CreatedAt      time.Time `json:"timestamp" gorm:"not null;index:idx_leaderboard_rank,priority:2"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}

type LeaderboardStats struct {
	TotalEntries int64   `json:"total_entries"`
	Highest      int     `json:"highest"`
	Lowest       int     `json:"lowest"`
	Average      float64 `json:"average"`
}
