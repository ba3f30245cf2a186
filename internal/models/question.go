package models

type Question struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	Subject        string `json:"subject" gorm:"not null;size:50;index:idx_subject_category"`
	Category       string `json:"category" gorm:"not null;size:50;index:idx_subject_category"`
	Question       string `json:"question" gorm:"type:text;not null"`
	Answer         string `json:"answer" gorm:"type:text;not null"`
	PromptTemplate string `json:"prompt_template" gorm:"type:text"`
}

func (Question) TableName() string {
	return "questions"
}
