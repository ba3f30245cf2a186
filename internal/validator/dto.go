package validator

// ===== SURVEY =====

// SurveySubmitRequest uses pointers so an absent key is distinguishable
// from an empty value
type SurveySubmitRequest struct {
	English *string `json:"english" validate:"required,survey_tool"`
	Math    *string `json:"math" validate:"required,survey_tool"`
	Science *string `json:"science" validate:"required,survey_tool"`
	CS      *string `json:"cs" validate:"required,survey_tool"`
	History *string `json:"history" validate:"required,survey_tool"`
	UseAI   *string `json:"useAI" validate:"required,oneof=Yes No"`
	FRQ     *string `json:"frq" validate:"required,notblank,max=2000"`
}

// ToolsBySubject returns the per-subject choices keyed by subject
func (r *SurveySubmitRequest) ToolsBySubject() map[string]string {
	return map[string]string{
		"english": deref(r.English),
		"math":    deref(r.Math),
		"science": deref(r.Science),
		"cs":      deref(r.CS),
		"history": deref(r.History),
	}
}

// SurveyUpdateRequest is the admin allow-list for survey edits
type SurveyUpdateRequest struct {
	UsesAISchoolwork *string           `json:"uses_ai_schoolwork" validate:"omitempty,oneof=Yes No"`
	AIPolicyOpinion  *string           `json:"ai_policy_opinion" validate:"omitempty,max=2000"`
	Tools            map[string]string `json:"tools" validate:"omitempty,dive,keys,survey_subject,endkeys,survey_tool"`
}

// ===== LEADERBOARD =====

type LeaderboardSubmitRequest struct {
	Score          *int   `json:"score" validate:"required,min=0,max=100"`
	CorrectAnswers *int   `json:"correctAnswers" validate:"required,min=0,max=100"`
	Username       string `json:"username" validate:"omitempty,max=255"`
}

// ===== FEEDBACK =====

type RatingFeedbackRequest struct {
	Rating   *int   `json:"rating" validate:"required,min=1,max=5"`
	Category string `json:"category" validate:"required,feedback_category"`
	Comments string `json:"comments" validate:"omitempty,max=5000"`
}

type GeneralFeedbackRequest struct {
	Title string `json:"title" validate:"required,notblank,max=255"`
	Body  string `json:"body" validate:"required,notblank,max=5000"`
	Type  string `json:"type" validate:"omitempty,feedback_type"`
}

// FeedbackUpdateRequest is the admin allow-list for feedback edits
type FeedbackUpdateRequest struct {
	Title    *string `json:"title" validate:"omitempty,notblank,max=255"`
	Body     *string `json:"body" validate:"omitempty,notblank,max=5000"`
	Type     *string `json:"type" validate:"omitempty,feedback_type"`
	Rating   *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Category *string `json:"category" validate:"omitempty,feedback_category"`
	Comments *string `json:"comments" validate:"omitempty,max=5000"`
}

// ===== CONTENT =====

type QuestionCreateRequest struct {
	Subject        string `json:"subject" validate:"required,subject"`
	Category       string `json:"category" validate:"required,notblank,max=50"`
	Question       string `json:"question" validate:"required,notblank,max=4000"`
	Answer         string `json:"answer" validate:"required,notblank,max=4000"`
	PromptTemplate string `json:"prompt_template" validate:"required,notblank,max=4000"`
}

type QuestionUpdateRequest struct {
	Subject        *string `json:"subject" validate:"omitempty,subject"`
	Category       *string `json:"category" validate:"omitempty,notblank,max=50"`
	Question       *string `json:"question" validate:"omitempty,notblank,max=4000"`
	Answer         *string `json:"answer" validate:"omitempty,notblank,max=4000"`
	PromptTemplate *string `json:"prompt_template" validate:"omitempty,notblank,max=4000"`
}

// ===== BADGES =====

type AwardRequest struct {
	BadgeID string `json:"badge_id" validate:"required,notblank,max=100"`
}

// ===== PROMPTS =====

type PromptRequest struct {
	Prompt string `json:"prompt" validate:"required,notblank,max=4000"`
}

type PromptTestRequest struct {
	Prompt     string `json:"prompt" validate:"required,notblank,max=4000"`
	PromptType string `json:"prompt_type" validate:"omitempty,prompt_type"`
}

type PromptExampleRequest struct {
	PromptType  string `json:"prompt_type" validate:"required,prompt_type"`
	Prompt      string `json:"prompt" validate:"required,notblank,max=4000"`
	Explanation string `json:"explanation" validate:"omitempty,max=2000"`
}

// ===== USERS =====

type SignupRequest struct {
	UID      string `json:"uid" validate:"required,notblank,min=3,max=64"`
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	UID      string `json:"uid" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

// UserUpdateRequest is the admin allow-list for user edits
type UserUpdateRequest struct {
	Name *string `json:"name" validate:"omitempty,notblank,max=255"`
	Role *string `json:"role" validate:"omitempty,user_role"`
}

type ResetRequest struct {
	Confirm string `json:"confirm" validate:"required,eq=RESET"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
