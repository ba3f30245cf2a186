package models

import "time"

// Survey subjects, in the order they are asked
const (
	SubjectEnglish = "english"
	SubjectMath    = "math"
	SubjectScience = "science"
	SubjectCS      = "cs"
	SubjectHistory = "history"
)

var SurveySubjects = []string{SubjectEnglish, SubjectMath, SubjectScience, SubjectCS, SubjectHistory}

// KnownAITools are the options offered on the survey form
var KnownAITools = []string{"ChatGPT", "Claude", "Gemini", "Copilot"}

const (
	UsesAIYes = "Yes"
	UsesAINo  = "No"
)

type SurveyResponse struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           *uint     `json:"user_id" gorm:"index"`
	UsesAISchoolwork string    `json:"uses_ai_schoolwork" gorm:"column:uses_ai_schoolwork;not null;size:3"`
	AIPolicyOpinion  string    `json:"ai_policy_opinion" gorm:"column:ai_policy_opinion;type:text"`
	BadgeAwarded     bool      `json:"badge_awarded" gorm:"default:false"`
	CompletedAt      time.Time `json:"completed_at" gorm:"not null;index"`

	Preferences []AIToolPreference `json:"preferences" gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}

// Tools returns the per-subject choices keyed by subject
func (r *SurveyResponse) Tools() map[string]string {
	out := make(map[string]string, len(r.Preferences))
	for _, p := range r.Preferences {
		out[p.Subject] = p.ToolName
	}
	return out
}

type AIToolPreference struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ResponseID uint   `json:"response_id" gorm:"not null;uniqueIndex:idx_response_subject"`
	Subject    string `json:"subject" gorm:"not null;size:20;uniqueIndex:idx_response_subject"`
	ToolName   string `json:"tool_name" gorm:"not null;size:50"`
}

func (AIToolPreference) TableName() string {
	return "ai_tool_preferences"
}

// ToolCount is one (subject, tool) aggregation row
type ToolCount struct {
	Subject  string `json:"subject"`
	ToolName string `json:"tool_name"`
	Count    int64  `json:"count"`
}

// FlagCount is one uses-AI aggregation row
type FlagCount struct {
	UsesAISchoolwork string `json:"uses_ai_schoolwork" gorm:"column:uses_ai_schoolwork"`
	Count            int64  `json:"count"`
}
