// Command studybuddyctl runs one-off maintenance tasks against the study buddy
// database: admin bootstrap, seeding, reset, legacy badge migration and export.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/config"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
	"github.com/SAP-F-2025/study-buddy-service/pkg"
)

const usage = `usage: studybuddyctl <command> [flags]

commands:
  ensure-admin    create or reset the admin account (-uid, -password)
  seed            insert default data into empty tables
  reset           drop all data except accounts and reseed (-yes to confirm)
  migrate-badges  copy legacy per-user badge lists into the badge ledger
  export          write surveys, leaderboard and feedback to xlsx (-out)
`

type app struct {
	cfg    *config.Config
	db     *gorm.DB
	repo   repositories.Repository
	logger *slog.Logger
	v      *validator.Validator
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(context.Background(), os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "studybuddyctl %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, out io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch command {
	case "ensure-admin":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		uid := fs.String("uid", cfg.AdminUID, "admin uid")
		password := fs.String("password", cfg.AdminPassword, "admin password")
		_ = fs.Parse(args)

		return withApp(cfg, func(a *app) error {
			users := services.NewUserService(a.repo, a.db, a.logger, a.v, nil)
			user, created, err := users.EnsureAdmin(ctx, *uid, *password)
			if err != nil {
				return err
			}
			return printYAML(out, map[string]interface{}{"uid": user.UID, "id": user.ID, "created": created})
		})

	case "seed":
		return withApp(cfg, func(a *app) error {
			report, err := a.admin().Seed(ctx)
			if err != nil {
				return err
			}
			return printYAML(out, report)
		})

	case "reset":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		yes := fs.Bool("yes", false, "confirm that all data will be deleted")
		_ = fs.Parse(args)
		if !*yes {
			return errors.New("refusing to reset without -yes")
		}

		return withApp(cfg, func(a *app) error {
			report, err := a.admin().Reset(ctx)
			if err != nil {
				return err
			}
			return printYAML(out, report)
		})

	case "migrate-badges":
		return withApp(cfg, func(a *app) error {
			report, err := a.admin().MigrateLegacyBadges(ctx)
			if err != nil {
				return err
			}
			return printYAML(out, report)
		})

	case "export":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		path := fs.String("out", fmt.Sprintf("study-buddy-export-%s.xlsx", time.Now().Format("20060102-150405")), "output file")
		_ = fs.Parse(args)

		return withApp(cfg, func(a *app) error {
			f, err := os.Create(*path)
			if err != nil {
				return fmt.Errorf("create %s: %w", *path, err)
			}
			if err := a.admin().Export(ctx, f); err != nil {
				_ = f.Close()
				_ = os.Remove(*path)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", *path)
			return nil
		})

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

// withApp opens the database, migrates it and hands fn the wiring it needs
func withApp(cfg *config.Config, fn func(a *app) error) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	manager := postgres.NewRepositoryManager(postgres.RepositoryConfig{DB: db, AutoMigrate: true})
	if err := manager.Initialize(); err != nil {
		return fmt.Errorf("initialize repositories: %w", err)
	}
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}()

	return fn(&app{
		cfg:    cfg,
		db:     db,
		repo:   manager.GetRepository(),
		logger: logger,
		v:      validator.New(),
	})
}

func (a *app) admin() services.AdminService {
	return services.NewAdminService(a.repo, a.db, a.logger, a.v)
}

func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
