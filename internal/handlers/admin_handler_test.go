package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/study-buddy-service/internal/auth"
	"github.com/SAP-F-2025/study-buddy-service/internal/config"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
)

func TestAdminHandler_ResetRequiresConfirmation(t *testing.T) {
	s := newTestServer(t, config.GeminiConfig{})
	token, _ := s.login(t, "root", models.RoleAdmin)

	tests := []struct {
		name string
		body interface{}
	}{
		{"empty body", map[string]interface{}{}},
		{"wrong phrase", map[string]interface{}{"confirm": "reset"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, s.do(t, http.MethodPost, "/api/admin/reset", tt.body, token), http.StatusBadRequest, CodeValidation)
		})
	}
	if n := s.count(t, &models.User{}); n != 1 {
		t.Fatalf("%d users after rejected reset, want 1", n)
	}

	body := expectStatus(t, s.do(t, http.MethodPost, "/api/admin/reset", map[string]interface{}{"confirm": "RESET"}, token), http.StatusOK)
	if body["success"] != true {
		t.Fatalf("reset = %v", body)
	}
	if n := s.count(t, &models.LeaderboardEntry{}); n != models.LeaderboardSize {
		t.Fatalf("%d leaderboard rows after reset, want %d", n, models.LeaderboardSize)
	}
}

func TestAdminHandler_ResetKeepsSignedInAdmin(t *testing.T) {
	s := newTestServer(t, config.GeminiConfig{})
	local := auth.NewLocalAuthenticator("reset-secret", time.Hour, s.repo.User())
	s.route(local)

	admin := &models.User{UID: "root", Name: "Root", Role: models.RoleAdmin}
	if err := s.repo.User().Create(context.Background(), nil, admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	token, _, err := local.IssueToken(admin)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	expectStatus(t, s.do(t, http.MethodPost, "/api/admin/reset", map[string]interface{}{"confirm": "RESET"}, token), http.StatusOK)

	body := expectStatus(t, s.do(t, http.MethodGet, "/api/admin/users", nil, token), http.StatusOK)
	if body["total"].(float64) != 1 {
		t.Fatalf("users after reset = %v", body)
	}
	me := expectStatus(t, s.do(t, http.MethodGet, "/api/users/me", nil, token), http.StatusOK)
	if me["uid"] != "root" {
		t.Fatalf("me after reset = %v", me)
	}
}

func TestAdminHandler_SeedAndExport(t *testing.T) {
	s := newTestServer(t, config.GeminiConfig{})
	token, _ := s.login(t, "root", models.RoleAdmin)

	body := expectStatus(t, s.do(t, http.MethodPost, "/api/admin/seed", nil, token), http.StatusOK)
	skipped := body["skipped"].([]interface{})
	if len(skipped) != 1 || skipped[0] != "badges" {
		t.Fatalf("skipped = %v, want only badges", skipped)
	}

	w := s.do(t, http.MethodGet, "/api/admin/export", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d (%s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, ".xlsx") {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	if len(f.GetSheetList()) != 3 {
		t.Fatalf("sheets = %v", f.GetSheetList())
	}
}

func TestAdminHandler_ManageContent(t *testing.T) {
	s := newTestServer(t, config.GeminiConfig{})
	token, _ := s.login(t, "root", models.RoleAdmin)

	created := expectStatus(t, s.do(t, http.MethodPost, "/api/admin/content/questions", map[string]interface{}{
		"subject":         "history",
		"category":        "ancient",
		"question":        "Who built the pyramids?",
		"answer":          "Egyptian workers",
		"prompt_template": "Explain who built the pyramids",
	}, token), http.StatusCreated)
	path := "/api/admin/content/questions/" + formatID(created["id"].(float64))

	cats := expectStatus(t, s.do(t, http.MethodGet, "/api/content/history/categories", nil, ""), http.StatusOK)
	if got := cats["categories"].([]interface{}); len(got) != 1 || got[0] != "ancient" {
		t.Fatalf("categories = %v", got)
	}

	expectError(t, s.do(t, http.MethodPut, path, map[string]interface{}{"subject": "art"}, token), http.StatusBadRequest, CodeValidation)
	updated := expectStatus(t, s.do(t, http.MethodPut, path, map[string]interface{}{"answer": "Skilled laborers"}, token), http.StatusOK)
	if updated["answer"] != "Skilled laborers" {
		t.Fatalf("updated = %v", updated)
	}

	sample := expectStatus(t, s.do(t, http.MethodGet, "/api/content/history/questions?count=5", nil, ""), http.StatusOK)
	if len(sample["questions"].([]interface{})) != 1 {
		t.Fatalf("sample = %v", sample)
	}

	expectStatus(t, s.do(t, http.MethodDelete, path, nil, token), http.StatusOK)
	expectError(t, s.do(t, http.MethodDelete, path, nil, token), http.StatusNotFound, CodeNotFound)
}

func TestAdminHandler_Users(t *testing.T) {
	s := newTestServer(t, config.GeminiConfig{})
	adminToken, admin := s.login(t, "root", models.RoleAdmin)
	_, student := s.login(t, "kim", models.RoleStudent)

	list := expectStatus(t, s.do(t, http.MethodGet, "/api/admin/users?role=Student", nil, adminToken), http.StatusOK)
	if list["total"].(float64) != 1 {
		t.Fatalf("students = %v", list)
	}
	expectError(t, s.do(t, http.MethodGet, "/api/admin/users?role=Teacher", nil, adminToken), http.StatusBadRequest, CodeValidation)

	studentPath := "/api/admin/users/" + formatID(float64(student.ID))
	updated := expectStatus(t, s.do(t, http.MethodPut, studentPath, map[string]interface{}{"role": "Admin"}, adminToken), http.StatusOK)
	if updated["role"] != "Admin" {
		t.Fatalf("updated = %v", updated)
	}

	expectError(t, s.do(t, http.MethodDelete, "/api/admin/users/"+formatID(float64(admin.ID)), nil, adminToken), http.StatusForbidden, CodeForbidden)
	expectStatus(t, s.do(t, http.MethodDelete, studentPath, nil, adminToken), http.StatusOK)
	expectError(t, s.do(t, http.MethodGet, studentPath, nil, adminToken), http.StatusNotFound, CodeNotFound)
}
