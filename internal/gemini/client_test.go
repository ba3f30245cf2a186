package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/study-buddy-service/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerate(t *testing.T) {
	var gotKey, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotText = req.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"**hello**"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(config.GeminiConfig{Server: srv.URL, APIKey: "k-123"}, srv.Client(), testLogger())
	out, err := c.Generate(context.Background(), "say hi")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "**hello**" {
		t.Fatalf("Generate() = %q", out)
	}
	if gotKey != "k-123" || gotText != "say hi" {
		t.Fatalf("server saw key=%q text=%q", gotKey, gotText)
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		c := NewClient(config.GeminiConfig{Server: "http://unused"}, nil, testLogger())
		if c.Configured() {
			t.Fatal("client without key reports configured")
		}
		if _, err := c.Generate(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("error = %v, want ErrNotConfigured", err)
		}
	})

	t.Run("upstream status truncated", func(t *testing.T) {
		long := strings.Repeat("e", 500)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(long))
		}))
		defer srv.Close()

		c := NewClient(config.GeminiConfig{Server: srv.URL, APIKey: "k", MaxErrorChars: 200}, srv.Client(), testLogger())
		_, err := c.Generate(context.Background(), "x")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want *APIError", err)
		}
		if apiErr.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("status = %d", apiErr.StatusCode)
		}
		if len(apiErr.Body) != 200 {
			t.Fatalf("body length = %d, want 200", len(apiErr.Body))
		}
	})

	t.Run("empty candidates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer srv.Close()

		c := NewClient(config.GeminiConfig{Server: srv.URL, APIKey: "k"}, srv.Client(), testLogger())
		if _, err := c.Generate(context.Background(), "x"); !errors.Is(err, ErrEmptyResponse) {
			t.Fatalf("error = %v, want ErrEmptyResponse", err)
		}
	})

	t.Run("deadline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		c := NewClient(config.GeminiConfig{Server: srv.URL, APIKey: "k"}, srv.Client(), testLogger())
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := c.Generate(ctx, "x")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("error = %v, want deadline exceeded", err)
		}
		if strings.Contains(err.Error(), "key=") {
			t.Fatalf("error leaks api key: %v", err)
		}
	})
}

func TestMarkdownToPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"emphasis", "# Title\n\nSome **bold** and *italic* text with `code`.", "Title\n\nSome bold and italic text with code."},
		{"code fence", "```python\nprint('hi')\n```", "print('hi')"},
		{"lists", "- one\n- two\n1. first", "one\ntwo\nfirst"},
		{"links", "[docs](http://x.io) and ![alt](img.png)", "docs and alt"},
		{"blank runs", "a\n\n\n\nb", "a\n\nb"},
		{"strike", "~~gone~~ now", "gone now"},
		{"quote", "> wise words", "wise words"},
		{"snake case kept", "use snake_case_name here", "use snake_case_name here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarkdownToPlainText(tt.in); got != tt.want {
				t.Fatalf("MarkdownToPlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}
