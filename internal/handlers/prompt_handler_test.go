package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/study-buddy-service/internal/config"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
)

func fakeGeminiServer(t *testing.T, status int, body string) config.GeminiConfig {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return config.GeminiConfig{Server: srv.URL, APIKey: "test-key", TestTimeout: 2 * time.Second, AskTimeout: 2 * time.Second}
}

func TestPromptHandler_TestAwardsGoodPrompt(t *testing.T) {
	cfg := fakeGeminiServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"## Loops\n**for** repeats"}]}}]}`)
	s := newTestServer(t, cfg)
	token, _ := s.login(t, "alice", models.RoleStudent)

	body := expectStatus(t, s.do(t, http.MethodPost, "/api/prompts/test", map[string]interface{}{
		"prompt":      "Explain for loops in Python with an example",
		"prompt_type": "good",
	}, token), http.StatusOK)
	if body["response"] != "Loops\nfor repeats" {
		t.Fatalf("response = %q", body["response"])
	}
	award, ok := body["award"].(map[string]interface{})
	if !ok || award["new_badge"] != true {
		t.Fatalf("award = %v", body["award"])
	}

	body = expectStatus(t, s.do(t, http.MethodPost, "/api/prompts/ask", map[string]interface{}{"prompt": "hi"}, ""), http.StatusOK)
	if body["response"] == "" {
		t.Fatal("empty ask response")
	}
}

func TestPromptHandler_UpstreamErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t, config.GeminiConfig{})
		body := expectError(t, s.do(t, http.MethodPost, "/api/prompts/ask", map[string]interface{}{"prompt": "hi"}, ""), http.StatusServiceUnavailable, CodeUpstream)
		if body["error"] != "AI service not configured" {
			t.Fatalf("error = %v", body["error"])
		}
	})

	t.Run("model overloaded", func(t *testing.T) {
		s := newTestServer(t, fakeGeminiServer(t, http.StatusServiceUnavailable, `{"error":"overloaded"}`))
		body := expectError(t, s.do(t, http.MethodPost, "/api/prompts/ask", map[string]interface{}{"prompt": "hi"}, ""), http.StatusServiceUnavailable, CodeUpstream)
		if body["details"] == nil {
			t.Fatal("upstream body not passed through")
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		s := newTestServer(t, fakeGeminiServer(t, http.StatusTooManyRequests, `{}`))
		token, _ := s.login(t, "bob", models.RoleStudent)
		w := s.do(t, http.MethodPost, "/api/prompts/test", map[string]interface{}{"prompt": "Explain maps", "prompt_type": "good"}, token)
		expectError(t, w, http.StatusBadGateway, CodeUpstream)
		if n := s.count(t, &models.UserBadge{}); n != 0 {
			t.Fatalf("failed generation awarded %d badges", n)
		}
	})
}

func TestPromptHandler_AnalyzeAndImprove(t *testing.T) {
	s := newTestServer(t, config.GeminiConfig{})

	body := expectStatus(t, s.do(t, http.MethodPost, "/api/prompts/analyze", map[string]interface{}{"prompt": "sort"}, ""), http.StatusOK)
	if body["score"].(float64) != 0 || body["total"].(float64) != 100 {
		t.Fatalf("analysis = %v", body)
	}

	body = expectStatus(t, s.do(t, http.MethodPost, "/api/prompts/improve", map[string]interface{}{"prompt": "sort a list"}, ""), http.StatusOK)
	if body["improved"] != "In Python, sort a list with step-by-step explanation and examples." {
		t.Fatalf("improved = %v", body["improved"])
	}

	expectError(t, s.do(t, http.MethodPost, "/api/prompts/analyze", map[string]interface{}{"prompt": "   "}, ""), http.StatusBadRequest, CodeValidation)
}

func TestPromptHandler_Examples(t *testing.T) {
	s := newTestServer(t, config.GeminiConfig{})
	aliceToken, _ := s.login(t, "alice", models.RoleStudent)
	bobToken, _ := s.login(t, "bob", models.RoleStudent)

	created := expectStatus(t, s.do(t, http.MethodPost, "/api/prompts/examples", map[string]interface{}{
		"prompt_type": "Good",
		"prompt":      "Explain slices in Go with an example",
	}, aliceToken), http.StatusCreated)
	id := created["id"].(float64)

	expectStatus(t, s.do(t, http.MethodPost, "/api/prompts/examples", map[string]interface{}{"prompt_type": "Bad", "prompt": "code"}, ""), http.StatusCreated)

	good := expectStatus(t, s.do(t, http.MethodGet, "/api/prompts/examples?type=good", nil, ""), http.StatusOK)
	if len(good["examples"].([]interface{})) != 1 {
		t.Fatalf("good examples = %v", good)
	}
	recent := expectStatus(t, s.do(t, http.MethodGet, "/api/prompts/examples/recent", nil, ""), http.StatusOK)
	if len(recent["examples"].([]interface{})) != 2 {
		t.Fatalf("recent examples = %v", recent)
	}
	mine := expectStatus(t, s.do(t, http.MethodGet, "/api/prompts/examples/mine", nil, aliceToken), http.StatusOK)
	if len(mine["examples"].([]interface{})) != 1 {
		t.Fatalf("mine = %v", mine)
	}

	path := "/api/prompts/examples/" + formatID(id)
	expectError(t, s.do(t, http.MethodDelete, path, nil, bobToken), http.StatusForbidden, CodeForbidden)
	expectStatus(t, s.do(t, http.MethodDelete, path, nil, aliceToken), http.StatusOK)
	expectError(t, s.do(t, http.MethodDelete, path, nil, aliceToken), http.StatusNotFound, CodeNotFound)
}
