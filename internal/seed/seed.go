package seed

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
)

//go:embed data/*.yaml
var files embed.FS

type badgeFile struct {
	Badges []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Requirement string `yaml:"requirement"`
		Image       string `yaml:"image"`
		Icon        string `yaml:"icon"`
		Color       string `yaml:"color"`
	} `yaml:"badges"`
}

type questionFile struct {
	Questions []struct {
		Subject        string `yaml:"subject"`
		Category       string `yaml:"category"`
		Question       string `yaml:"question"`
		Answer         string `yaml:"answer"`
		PromptTemplate string `yaml:"prompt_template"`
	} `yaml:"questions"`
}

type sampleFile struct {
	Leaderboard []struct {
		Player string `yaml:"player"`
		Score  int    `yaml:"score"`
	} `yaml:"leaderboard"`
	Feedback []struct {
		Title string `yaml:"title"`
		Body  string `yaml:"body"`
		Type  string `yaml:"type"`
	} `yaml:"feedback"`
	Ratings []struct {
		Category string `yaml:"category"`
		Rating   int    `yaml:"rating"`
		Comments string `yaml:"comments"`
	} `yaml:"ratings"`
	Surveys []struct {
		UsesAI  string            `yaml:"uses_ai"`
		Opinion string            `yaml:"opinion"`
		Tools   map[string]string `yaml:"tools"`
	} `yaml:"surveys"`
	Prompts []struct {
		Type        string `yaml:"type"`
		Prompt      string `yaml:"prompt"`
		Explanation string `yaml:"explanation"`
	} `yaml:"prompts"`
}

// Data is the compiled-in seed set. Rows are fresh on every Load so callers
// can insert them directly.
type Data struct {
	Badges      []*models.Badge
	Questions   []*models.Question
	Leaderboard []*models.LeaderboardEntry
	Feedback    []*models.FeedbackEntry
	Surveys     []*models.SurveyResponse
	Prompts     []*models.PromptExample
}

// Load parses the embedded seed files
func Load() (*Data, error) {
	var bf badgeFile
	if err := decode("data/badges.yaml", &bf); err != nil {
		return nil, err
	}
	var qf questionFile
	if err := decode("data/questions.yaml", &qf); err != nil {
		return nil, err
	}
	var sf sampleFile
	if err := decode("data/samples.yaml", &sf); err != nil {
		return nil, err
	}

	d := &Data{}
	for _, b := range bf.Badges {
		d.Badges = append(d.Badges, &models.Badge{
			BadgeID:     b.ID,
			Name:        b.Name,
			Description: b.Description,
			Requirement: b.Requirement,
			Image:       b.Image,
			Icon:        b.Icon,
			Color:       b.Color,
		})
	}
	for _, q := range qf.Questions {
		d.Questions = append(d.Questions, &models.Question{
			Subject:        q.Subject,
			Category:       q.Category,
			Question:       q.Question,
			Answer:         q.Answer,
			PromptTemplate: q.PromptTemplate,
		})
	}
	for _, l := range sf.Leaderboard {
		d.Leaderboard = append(d.Leaderboard, &models.LeaderboardEntry{
			PlayerName:     l.Player,
			Score:          l.Score,
			CorrectAnswers: l.Score / 10,
		})
	}
	for _, f := range sf.Feedback {
		d.Feedback = append(d.Feedback, &models.FeedbackEntry{
			Kind:         models.FeedbackGeneral,
			Title:        f.Title,
			Body:         f.Body,
			FeedbackType: f.Type,
		})
	}
	for _, r := range sf.Ratings {
		rating := r.Rating
		d.Feedback = append(d.Feedback, &models.FeedbackEntry{
			Kind:     models.FeedbackRating,
			Rating:   &rating,
			Category: r.Category,
			Comments: r.Comments,
		})
	}
	for _, s := range sf.Surveys {
		resp := &models.SurveyResponse{
			UsesAISchoolwork: s.UsesAI,
			AIPolicyOpinion:  s.Opinion,
		}
		for _, subject := range models.SurveySubjects {
			if tool, ok := s.Tools[subject]; ok {
				resp.Preferences = append(resp.Preferences, models.AIToolPreference{Subject: subject, ToolName: tool})
			}
		}
		d.Surveys = append(d.Surveys, resp)
	}
	for _, p := range sf.Prompts {
		d.Prompts = append(d.Prompts, &models.PromptExample{
			AuthorName:  models.AnonymousPlayer,
			PromptType:  p.Type,
			Prompt:      p.Prompt,
			Explanation: p.Explanation,
		})
	}
	return d, nil
}

// Badges returns only the badge catalog
func Badges() ([]*models.Badge, error) {
	d, err := Load()
	if err != nil {
		return nil, err
	}
	return d.Badges, nil
}

func decode(name string, out interface{}) error {
	raw, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read seed file %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse seed file %s: %w", name, err)
	}
	return nil
}
