package models

import "time"

// ===== BADGE RESPONSES =====

type AwardResult struct {
	Badge    *Badge   `json:"badge"`
	NewBadge bool     `json:"new_badge"`
	Derived  []*Badge `json:"derived,omitempty"`
}

type BadgeProgressItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Requirement string `json:"requirement"`
	Earned      bool   `json:"earned"`
}

type BadgeProgress struct {
	Progress     []BadgeProgressItem `json:"progress"`
	TotalBadges  int                 `json:"total_badges"`
	EarnedBadges int                 `json:"earned_badges"`
}

type EarnedBadge struct {
	Badge
	AwardedAt time.Time `json:"awarded_at"`
}

// ===== SURVEY RESPONSES =====

type Opinion struct {
	ID          uint      `json:"id"`
	Text        string    `json:"text"`
	CompletedAt time.Time `json:"completed_at"`
}

// SurveySnapshot is the read-side projection over all survey rows
type SurveySnapshot struct {
	TotalResponses int64                       `json:"total_responses"`
	Subjects       map[string]map[string]int64 `json:"subjects"`
	UseAI          map[string]int64            `json:"useAI"`
	Opinions       []Opinion                   `json:"frqs"`
}

// ===== LEADERBOARD RESPONSES =====

type RankedEntry struct {
	Rank int `json:"rank"`
	LeaderboardEntry
}

type SubmitAttemptResult struct {
	Entry   *LeaderboardEntry `json:"entry"`
	MadeTop bool              `json:"made_leaderboard"`
	Rank    int               `json:"rank,omitempty"`
	Award   *AwardResult      `json:"award,omitempty"`
}

// ===== PROMPT RESPONSES =====

type PromptCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Points int    `json:"points"`
}

type PromptAnalysis struct {
	Score       int           `json:"score"`
	Total       int           `json:"total"`
	Checks      []PromptCheck `json:"checks"`
	Suggestions []string      `json:"suggestions"`
}

type PromptTestResult struct {
	Response string       `json:"response"`
	Award    *AwardResult `json:"award,omitempty"`
}
