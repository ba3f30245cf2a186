package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "ctl.db"))
	t.Setenv("AUTH_PROVIDER", "casdoor")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestRun_SeedAndEnsureAdmin(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := run(ctx, "seed", nil, &out); err != nil {
		t.Fatalf("seed error = %v", err)
	}
	var report struct {
		Inserted map[string]int `yaml:"inserted"`
		Skipped  []string       `yaml:"skipped"`
	}
	if err := yaml.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("seed output %q: %v", out.String(), err)
	}
	if report.Inserted["badges"] != 7 {
		t.Fatalf("seed report = %+v", report)
	}

	out.Reset()
	if err := run(ctx, "ensure-admin", []string{"-uid", "ops", "-password", "correct-horse"}, &out); err != nil {
		t.Fatalf("ensure-admin error = %v", err)
	}
	if !strings.Contains(out.String(), "created: true") {
		t.Fatalf("ensure-admin output = %q", out.String())
	}

	out.Reset()
	if err := run(ctx, "ensure-admin", []string{"-uid", "ops", "-password", "correct-horse"}, &out); err != nil {
		t.Fatalf("second ensure-admin error = %v", err)
	}
	if !strings.Contains(out.String(), "created: false") {
		t.Fatalf("second ensure-admin output = %q", out.String())
	}

	if err := run(ctx, "ensure-admin", []string{"-uid", "ops", "-password", "short"}, &out); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestRun_ResetNeedsConfirmation(t *testing.T) {
	setupEnv(t)
	if err := run(context.Background(), "reset", nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected reset without -yes to fail")
	}
	if err := run(context.Background(), "reset", []string{"-yes"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("reset -yes error = %v", err)
	}
}

func TestRun_Export(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "out.xlsx")

	if err := run(context.Background(), "export", []string{"-out", path}, &bytes.Buffer{}); err != nil {
		t.Fatalf("export error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()
	if len(f.GetSheetList()) != 3 {
		t.Fatalf("sheets = %v", f.GetSheetList())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	setupEnv(t)
	if err := run(context.Background(), "frobnicate", nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected unknown command error")
	}
}
