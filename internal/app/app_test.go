package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/albedo-support/api/internal/config"
	"github.com/albedo-support/api/internal/database/databasetest"
	"github.com/albedo-support/api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	mu         sync.Mutex
	recipients []string
}

func (r *recordingTransport) Deliver(_ string, to []string, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipients = append(r.recipients, to...)
	return nil
}

func (r *recordingTransport) sentTo() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.recipients...)
}

func testConfig(t *testing.T) *config.AppConfig {
	return &config.AppConfig{
		Port:           8000,
		Env:            "test",
		AllowedOrigins: []string{"http://localhost:8080", "*.example.com"},
		FrontendURL:    "http://localhost:8080",
		Auth:           config.AuthRuntimeConfig{SecretKey: "test-secret", Algorithm: "HS256", AccessTokenExpireMinutes: 60},
		Mail: config.MailRuntimeConfig{
			Enable:    true,
			Host:      "smtp.example.com",
			Port:      587,
			Username:  "mailer",
			FromEmail: "support@example.com",
			FromName:  "Albedo Support",
		},
		Storage: config.StorageRuntimeConfig{Driver: "local", UploadDir: t.TempDir(), MaxUploadMB: 10},
	}
}

func newTestApp(t *testing.T) (*App, *recordingTransport) {
	t.Helper()
	tr := &recordingTransport{}
	a, err := New(testConfig(t), databasetest.Open(t), nil, WithMailTransport(tr))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Shutdown(ctx)
	})
	return a, tr
}

func do(a *App, method, path, auth, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(nil, databasetest.Open(t), nil)
	assert.Error(t, err)
	_, err = New(testConfig(t), nil, nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Storage.Driver = "ftp"
	_, err = New(cfg, databasetest.Open(t), nil)
	assert.Error(t, err)
}

func TestRootAndHealth(t *testing.T) {
	a, _ := newTestApp(t)

	w := do(a, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Albedo Support API","version":"1.0.0","docs":null,"health":"/api/health"}`, w.Body.String())

	w = do(a, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCORS(t *testing.T) {
	a, _ := newTestApp(t)

	w := do(a, http.MethodGet, "/", "", "", "Origin", "http://localhost:8080")
	assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(a, http.MethodGet, "/", "", "", "Origin", "https://help.example.com")
	assert.Equal(t, "https://help.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(a, http.MethodGet, "/", "", "", "Origin", "https://evil.test")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginAllowed(t *testing.T) {
	patterns := []string{"https://app.example.org", "*.example.com", "localhost:*"}
	assert.True(t, originAllowed(patterns, "https://app.example.org"))
	assert.True(t, originAllowed(patterns, "https://docs.example.com"))
	assert.True(t, originAllowed(patterns, "http://localhost:5173"))
	assert.False(t, originAllowed(patterns, "https://example.org"))
	assert.False(t, originAllowed(patterns, "https://example.com.evil.test"))
	assert.True(t, originAllowed([]string{"*"}, "https://anything.test"))
}

func TestSupportRequestFlow(t *testing.T) {
	a, tr := newTestApp(t)

	w := do(a, http.MethodPost, "/api/users/create-admin", "",
		`{"username":"root","email":"root@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(a, http.MethodPost, "/api/auth/login", "", `{"username":"root","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	bearer := "Bearer " + login.AccessToken

	w = do(a, http.MethodPost, "/api/support-request/submit", "",
		`{"email":"customer@example.com","name":"Casey","subject":"Cannot log in","message":"The page keeps reloading"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var submitted struct {
		Success  bool               `json:"success"`
		Feedback models.TicketModel `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.True(t, submitted.Success)
	require.NotEmpty(t, submitted.Feedback.Token)

	a.runner.Flush()

	w = do(a, http.MethodGet, "/api/support-request/"+submitted.Feedback.Token, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(a, http.MethodGet, "/api/notifications", bearer, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.NotificationModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "New Support Request", list[0].Title)

	sent := tr.sentTo()
	assert.Contains(t, sent, "customer@example.com")
	assert.Contains(t, sent, "root@example.com")

	w = do(a, http.MethodGet, "/api/gateway/stats", bearer, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
