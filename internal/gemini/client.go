package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/SAP-F-2025/study-buddy-service/internal/config"
)

var (
	ErrNotConfigured = errors.New("AI service not configured")
	ErrEmptyResponse = errors.New("gemini returned no text")
)

// Client generates text from a single prompt
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Configured() bool
}

// APIError is a non-200 reply from the upstream API. Body is truncated.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

type client struct {
	server        string
	apiKey        string
	maxErrorChars int
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewClient builds a client from config. Timeouts come from the caller's
// context, so the http.Client itself has none.
func NewClient(cfg config.GeminiConfig, httpClient *http.Client, logger *slog.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	maxChars := cfg.MaxErrorChars
	if maxChars <= 0 {
		maxChars = 200
	}
	return &client{
		server:        strings.TrimSpace(cfg.Server),
		apiKey:        strings.TrimSpace(cfg.APIKey),
		maxErrorChars: maxChars,
		httpClient:    httpClient,
		logger:        logger.With("component", "GeminiClient"),
	}
}

func (c *client) Configured() bool {
	return c.apiKey != "" && c.server != ""
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini request: %w", err)
	}

	endpoint := c.server + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// keep the key out of logs and errors
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: truncate(string(raw), c.maxErrorChars)}
		c.logger.Error("Gemini API error", "status", resp.StatusCode, "body", apiErr.Body)
		return "", apiErr
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
