package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/seed"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

const (
	sheetSurvey      = "Survey"
	sheetLeaderboard = "Leaderboard"
	sheetFeedback    = "Feedback"

	exportPageSize = 200
)

type adminService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAdminService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) AdminService {
	return &adminService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ===== SEED / RESET =====

// Seed fills each table from the compiled-in data, but only tables that are
// still empty
func (s *adminService) Seed(ctx context.Context) (*SeedReport, error) {
	var report *SeedReport
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		report, err = s.seedInto(ctx, tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	s.logger.Info("Database seeded", "inserted", report.Inserted, "skipped", report.Skipped)
	return report, nil
}

// Reset drops all content tables, recreates the schema and reseeds in one
// transaction. User accounts are kept; their badge awards are not.
func (s *adminService) Reset(ctx context.Context) (*SeedReport, error) {
	s.logger.Warn("Resetting database")

	var report *SeedReport
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.DropData(ctx); err != nil {
			return err
		}
		if err := tx.Migrate(ctx); err != nil {
			return err
		}
		var err error
		report, err = s.seedInto(ctx, tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset database: %w", err)
	}
	s.logger.Warn("Database reset completed", "inserted", report.Inserted)
	return report, nil
}

func (s *adminService) seedInto(ctx context.Context, tx repositories.Repository) (*SeedReport, error) {
	data, err := seed.Load()
	if err != nil {
		return nil, err
	}
	report := &SeedReport{Inserted: map[string]int{}, Skipped: []string{}}

	type step struct {
		table string
		count func() (int64, error)
		fill  func() (int, error)
	}
	now := s.now()

	steps := []step{
		{
			table: "badges",
			count: func() (int64, error) { return tx.Badge().Count(ctx, nil) },
			fill: func() (int, error) {
				return len(data.Badges), tx.Badge().CreateBatch(ctx, nil, data.Badges)
			},
		},
		{
			table: "questions",
			count: func() (int64, error) { return tx.Question().Count(ctx, nil) },
			fill: func() (int, error) {
				return len(data.Questions), tx.Question().CreateBatch(ctx, nil, data.Questions)
			},
		},
		{
			table: "leaderboard_entries",
			count: func() (int64, error) { return tx.Leaderboard().Count(ctx, nil) },
			fill: func() (int, error) {
				for i, e := range data.Leaderboard {
					e.CreatedAt = now.Add(-time.Duration(len(data.Leaderboard)-i) * time.Minute)
				}
				return len(data.Leaderboard), tx.Leaderboard().CreateBatch(ctx, nil, data.Leaderboard)
			},
		},
		{
			table: "feedback_entries",
			count: func() (int64, error) { return tx.Feedback().Count(ctx, nil) },
			fill: func() (int, error) {
				return len(data.Feedback), tx.Feedback().CreateBatch(ctx, nil, data.Feedback)
			},
		},
		{
			table: "survey_responses",
			count: func() (int64, error) { return tx.Survey().Count(ctx, nil) },
			fill: func() (int, error) {
				for i, r := range data.Surveys {
					r.CompletedAt = now.Add(-time.Duration(len(data.Surveys)-i) * time.Hour)
					if err := tx.Survey().Create(ctx, nil, r); err != nil {
						return i, err
					}
				}
				return len(data.Surveys), nil
			},
		},
		{
			table: "cs_prompts",
			count: func() (int64, error) { return tx.Prompt().Count(ctx, nil) },
			fill: func() (int, error) {
				for i, p := range data.Prompts {
					p.CreatedAt = now.Add(-time.Duration(len(data.Prompts)-i) * time.Minute)
				}
				return len(data.Prompts), tx.Prompt().CreateBatch(ctx, nil, data.Prompts)
			},
		},
	}

	for _, st := range steps {
		n, err := st.count()
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", st.table, err)
		}
		if n > 0 {
			report.Skipped = append(report.Skipped, st.table)
			continue
		}
		inserted, err := st.fill()
		if err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", st.table, err)
		}
		report.Inserted[st.table] = inserted
	}
	return report, nil
}

// ===== EXPORT =====

// Export writes survey, leaderboard and feedback rows as an xlsx workbook
func (s *adminService) Export(ctx context.Context, w io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetSurvey); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{sheetLeaderboard, sheetFeedback} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := s.exportSurveys(ctx, f, header); err != nil {
		return err
	}
	if err := s.exportLeaderboard(ctx, f, header); err != nil {
		return err
	}
	if err := s.exportFeedback(ctx, f, header); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (s *adminService) exportSurveys(ctx context.Context, f *excelize.File, header int) error {
	columns := []interface{}{"ID", "User ID", "Uses AI", "Opinion", "Badge Awarded", "Completed At"}
	for _, subject := range models.SurveySubjects {
		columns = append(columns, strings.ToUpper(subject[:1])+subject[1:])
	}
	if err := writeHeader(f, sheetSurvey, columns, header); err != nil {
		return err
	}

	row := 2
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.repo.Survey().List(ctx, nil, repositories.SurveyFilters{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return fmt.Errorf("failed to export surveys: %w", err)
		}
		for _, r := range page {
			tools := r.Tools()
			values := []interface{}{r.ID, optionalID(r.UserID), r.UsesAISchoolwork, r.AIPolicyOpinion, r.BadgeAwarded, r.CompletedAt.Format(time.RFC3339)}
			for _, subject := range models.SurveySubjects {
				values = append(values, tools[subject])
			}
			if err := writeRow(f, sheetSurvey, row, values); err != nil {
				return err
			}
			row++
		}
		if len(page) == 0 || int64(offset+len(page)) >= total {
			return nil
		}
	}
}

func (s *adminService) exportLeaderboard(ctx context.Context, f *excelize.File, header int) error {
	if err := writeHeader(f, sheetLeaderboard, []interface{}{"Rank", "ID", "User ID", "Player", "Score", "Correct Answers", "Timestamp"}, header); err != nil {
		return err
	}

	count, err := s.repo.Leaderboard().Count(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to count leaderboard: %w", err)
	}
	entries, err := s.repo.Leaderboard().Top(ctx, nil, int(count))
	if err != nil {
		return fmt.Errorf("failed to export leaderboard: %w", err)
	}
	for i, e := range entries {
		values := []interface{}{i + 1, e.ID, optionalID(e.UserID), e.PlayerName, e.Score, e.CorrectAnswers, e.CreatedAt.Format(time.RFC3339)}
		if err := writeRow(f, sheetLeaderboard, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func (s *adminService) exportFeedback(ctx context.Context, f *excelize.File, header int) error {
	columns := []interface{}{"ID", "User ID", "Kind", "Title", "Body", "Type", "Rating", "Category", "Comments", "Created At"}
	if err := writeHeader(f, sheetFeedback, columns, header); err != nil {
		return err
	}

	row := 2
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.repo.Feedback().List(ctx, nil, repositories.FeedbackFilters{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return fmt.Errorf("failed to export feedback: %w", err)
		}
		for _, e := range page {
			var rating interface{}
			if e.Rating != nil {
				rating = *e.Rating
			}
			values := []interface{}{e.ID, optionalID(e.UserID), string(e.Kind), e.Title, e.Body, e.FeedbackType, rating, e.Category, e.Comments, e.CreatedAt.Format(time.RFC3339)}
			if err := writeRow(f, sheetFeedback, row, values); err != nil {
				return err
			}
			row++
		}
		if len(page) == 0 || int64(offset+len(page)) >= total {
			return nil
		}
	}
}

func writeHeader(f *excelize.File, sheet string, columns []interface{}, style int) error {
	if err := writeRow(f, sheet, 1, columns); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func optionalID(id *uint) interface{} {
	if id == nil {
		return ""
	}
	return *id
}

// ===== LEGACY BADGES =====

// MigrateLegacyBadges copies each user's JSON badge list into the award
// ledger and clears the column. Rerunning it is harmless: awards are
// idempotent and cleared users are not listed again.
func (s *adminService) MigrateLegacyBadges(ctx context.Context) (*MigrationReport, error) {
	report := &MigrationReport{}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		users, err := tx.User().ListWithLegacyBadges(ctx, nil)
		if err != nil {
			return err
		}

		catalog, err := tx.Badge().List(ctx, nil)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(catalog))
		for _, b := range catalog {
			known[b.BadgeID] = true
		}

		now := s.now()
		for _, u := range users {
			ids, err := parseLegacyBadges(u.LegacyBadges)
			if err != nil {
				s.logger.Warn("Unreadable legacy badge list", "user_id", u.ID, "error", err)
			}
			for _, id := range ids {
				if !known[id] {
					report.Unknown++
					continue
				}
				inserted, err := tx.Badge().Award(ctx, nil, u.ID, id, now)
				if err != nil {
					return err
				}
				if inserted {
					report.Awarded++
				}
			}
			if err := tx.User().ClearLegacyBadges(ctx, nil, u.ID); err != nil {
				return err
			}
			report.Users++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to migrate legacy badges: %w", err)
	}

	s.logger.Info("Legacy badges migrated", "users", report.Users, "awarded", report.Awarded, "unknown", report.Unknown)
	return report, nil
}

// parseLegacyBadges accepts a list of badge keys or a list of objects with
// an "id" field
func parseLegacyBadges(raw []byte) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var keys []string
	if err := json.Unmarshal(raw, &keys); err == nil {
		return trimKeys(keys), nil
	}

	var objects []struct {
		ID      string `json:"id"`
		BadgeID string `json:"badge_id"`
	}
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, err
	}
	keys = keys[:0]
	for _, o := range objects {
		if o.ID != "" {
			keys = append(keys, o.ID)
		} else {
			keys = append(keys, o.BadgeID)
		}
	}
	return trimKeys(keys), nil
}

func trimKeys(keys []string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
