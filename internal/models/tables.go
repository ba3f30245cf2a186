package models

// AllModels lists every table in migration order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Badge{},
		&UserBadge{},
		&SurveyResponse{},
		&AIToolPreference{},
		&Question{},
		&LeaderboardEntry{},
		&FeedbackEntry{},
		&PromptExample{},
	}
}
