package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
)

const (
	pointsPerCheck = 25
	minDetailChars = 20
	shortPrompt    = 30
)

var (
	analyzerLanguages = []string{"python", "javascript", "java", "c++", "c#", "ruby", "go", "rust", "html", "css"}
	analyzerActions   = []string{"explain", "debug", "create", "write", "help", "show", "fix", "build", "implement"}
	analyzerContext   = []string{"beginner", "simple", "step-by-step", "example", "comments", "for", "with"}

	improverLanguages = []string{"python", "javascript", "java", "c++"}
	improverContext   = []string{"beginner", "simple", "example"}
)

type promptCheck struct {
	name       string
	suggestion string
	passed     func(prompt, lower string) bool
}

var promptChecks = []promptCheck{
	{
		name:       "Specifies programming language",
		suggestion: "Name the programming language you want the answer in.",
		passed:     func(_, lower string) bool { return containsAny(lower, analyzerLanguages) },
	},
	{
		name:       "Uses clear action verb",
		suggestion: "Start with a clear action such as explain, write, debug or fix.",
		passed:     func(_, lower string) bool { return containsAny(lower, analyzerActions) },
	},
	{
		name:       "Includes sufficient detail",
		suggestion: "Add more detail about what the code should do.",
		passed:     func(prompt, _ string) bool { return utf8.RuneCountInString(prompt) > minDetailChars },
	},
	{
		name:       "Provides context or level",
		suggestion: "Say who the answer is for, for example a beginner, or ask for examples.",
		passed:     func(_, lower string) bool { return containsAny(lower, analyzerContext) },
	},
}

// AnalyzePrompt scores a coding prompt against the workshop checklist
func AnalyzePrompt(prompt string) *models.PromptAnalysis {
	lower := strings.ToLower(prompt)
	analysis := &models.PromptAnalysis{
		Total:       pointsPerCheck * len(promptChecks),
		Checks:      make([]models.PromptCheck, 0, len(promptChecks)),
		Suggestions: []string{},
	}

	for _, c := range promptChecks {
		check := models.PromptCheck{Name: c.name}
		if c.passed(prompt, lower) {
			check.Passed = true
			check.Points = pointsPerCheck
			analysis.Score += pointsPerCheck
		} else {
			analysis.Suggestions = append(analysis.Suggestions, c.suggestion)
		}
		analysis.Checks = append(analysis.Checks, check)
	}
	return analysis
}

// ImprovePrompt rewrites a prompt with the fixed workshop rules
func ImprovePrompt(prompt string) string {
	improved := strings.TrimSpace(prompt)
	if improved == "" {
		return ""
	}

	if !containsAny(strings.ToLower(improved), improverLanguages) {
		improved = "In Python, " + strings.ToLower(improved)
	}
	if utf8.RuneCountInString(improved) < shortPrompt {
		improved += " with step-by-step explanation and examples"
	}
	if !containsAny(strings.ToLower(improved), improverContext) {
		improved += ". Explain it in simple terms for beginners."
	}

	r, size := utf8.DecodeRuneInString(improved)
	improved = string(unicode.ToUpper(r)) + improved[size:]

	if !strings.HasSuffix(improved, ".") {
		improved += "."
	}
	return improved
}

// containsAny is plain substring matching, so "go" also matches "good"
func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
