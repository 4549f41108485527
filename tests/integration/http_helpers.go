package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/edustack/trainer-portal/internal/auth"
	"github.com/edustack/trainer-portal/internal/database"
	"github.com/edustack/trainer-portal/internal/handlers"
	middlewareCustom "github.com/edustack/trainer-portal/internal/middleware"
	"github.com/edustack/trainer-portal/internal/repositories"
	"github.com/edustack/trainer-portal/internal/routes"
	"github.com/edustack/trainer-portal/internal/services"
	pkglogger "github.com/edustack/trainer-portal/pkg/logger"
)

// TestJWTSecret signs every token issued by the test server
const TestJWTSecret = "test-secret-32-characters-long-ok"

// SentEmail represents a captured password-changed notification
type SentEmail struct {
	To   string
	Name string
}

// MockEmailService captures sent notifications for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

// SendPasswordChangedEmail records the notification instead of calling SES
func (m *MockEmailService) SendPasswordChangedEmail(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{To: email, Name: name})
	return nil
}

// GetLastEmail returns the most recent notification sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with a real database and mocked email
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	TokenManager *auth.TokenManager
}

// NewTestServer initializes a complete HTTP server wired the same way main does
func NewTestServer(db *database.DB) (*TestServer, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	tokenManager, err := auth.NewTokenManager(TestJWTSecret, "HS256", 8*time.Hour, 15*time.Minute)
	if err != nil {
		return nil, err
	}

	trainerRepo := repositories.NewTrainerRepository(db)
	auditLogger := pkglogger.NewAuditLogger(logger)
	mockEmail := &MockEmailService{}

	authService := services.NewAuthService(trainerRepo, tokenManager, mockEmail, logger, auditLogger)
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(db, "test")

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, authHandler, healthHandler, tokenManager)

	return &TestServer{
		Server:       httptest.NewServer(r),
		DB:           db,
		EmailService: mockEmail,
		TokenManager: tokenManager,
	}, nil
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with a bearer token
func (ts *TestServer) RequestWithAuth(method, path, token string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses the JSON response body into target
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractLoginResponse extracts the login payload from a response
func ExtractLoginResponse(resp *http.Response) (*services.LoginResponse, error) {
	defer resp.Body.Close()

	var loginResp services.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, err
	}
	return &loginResp, nil
}

// GetResponseMessage extracts the envelope message from a response
func GetResponseMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()

	var envelope map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}
	if msg, ok := envelope["message"].(string); ok {
		return msg, nil
	}
	return "", nil
}
