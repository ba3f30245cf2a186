package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/auth"
	"github.com/SAP-F-2025/study-buddy-service/internal/config"
	"github.com/SAP-F-2025/study-buddy-service/internal/events"
	"github.com/SAP-F-2025/study-buddy-service/internal/gemini"
	"github.com/SAP-F-2025/study-buddy-service/internal/models"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
	"github.com/SAP-F-2025/study-buddy-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/study-buddy-service/internal/seed"
	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
	"github.com/SAP-F-2025/study-buddy-service/pkg"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokenAuthenticator maps opaque test tokens to users
type tokenAuthenticator struct {
	users map[string]*models.User
}

func (a *tokenAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := a.users[token]; ok {
		return u, nil
	}
	return nil, auth.ErrInvalidToken
}

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	auth      *tokenAuthenticator
	services  services.ServiceManager
	validator *validator.Validator
	logger    utils.Logger
}

func newTestServer(t *testing.T, geminiCfg config.GeminiConfig) *testServer {
	t.Helper()

	db, err := pkg.OpenSQLite("file::memory:", nil)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ctx := context.Background()
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	catalog, err := seed.Badges()
	if err != nil {
		t.Fatalf("seed.Badges() error = %v", err)
	}
	if err := repo.Badge().CreateBatch(ctx, nil, catalog); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	slogLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	publisher := events.NewMockEventPublisher(slogLogger)

	sm := services.NewDefaultServiceManager(db, repo, slogLogger, v, services.Integrations{
		Publisher: publisher,
		Gemini:    gemini.NewClient(geminiCfg, nil, slogLogger),
	}, geminiCfg)
	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	s := &testServer{
		db:        db,
		repo:      repo,
		publisher: publisher,
		auth:      &tokenAuthenticator{users: map[string]*models.User{}},
		services:  sm,
		validator: v,
		logger:    utils.NewSlogLogger(slogLogger),
	}
	s.route(s.auth)
	return s
}

func (s *testServer) route(authn auth.Authenticator) {
	s.router = gin.New()
	SetupMiddleware(s.router, s.logger, nil)
	NewHandlerManager(s.services, s.validator, s.logger, authn).SetupRoutes(s.router)
}

// login creates a user and returns a token that resolves to it
func (s *testServer) login(t *testing.T, uid string, role models.UserRole) (string, *models.User) {
	t.Helper()
	user := &models.User{UID: uid, Name: "User " + uid, Role: role}
	if err := s.repo.User().Create(context.Background(), nil, user); err != nil {
		t.Fatalf("create user %s: %v", uid, err)
	}
	token := "token-" + uid
	s.auth.users[token] = user
	return token, user
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := s.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) map[string]interface{} {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	body := decode(t, w)
	if body["code"] != code {
		t.Fatalf("code = %v, want %s", body["code"], code)
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Fatalf("error message missing in %v", body)
	}
	return body
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) map[string]interface{} {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	if w.Body.Len() == 0 {
		return nil
	}
	return decode(t, w)
}

func formatID(id float64) string {
	return strconv.Itoa(int(id))
}
