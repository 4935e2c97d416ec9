// Package authtest builds authenticated gin engines for handler tests.
package authtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/albedo-support/api/internal/middleware"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const Secret = "test-secret"

// Kit bundles the pieces a handler test needs.
type Kit struct {
	DB     *gorm.DB
	Tokens *jwt.Manager
	Engine *gin.Engine
	API    *gin.RouterGroup
	Auth   gin.HandlerFunc
}

// New returns an engine with an /api group and an Auth middleware bound to db.
func New(t testing.TB, db *gorm.DB) *Kit {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := jwt.NewManager(Secret, "HS256", time.Hour)
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	engine := gin.New()
	return &Kit{
		DB:     db,
		Tokens: tokens,
		Engine: engine,
		API:    engine.Group("/api"),
		Auth:   middleware.Auth(db, tokens),
	}
}

// CreateUser inserts an active account with the given role. The password is
// "password".
func (k *Kit) CreateUser(t testing.TB, role string) *models.UserModel {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	name := role + "-" + uuid.NewString()[:8]
	user := &models.UserModel{
		Username: name,
		Email:    name + "@example.com",
		Password: string(hash),
		Role:     role,
		Status:   models.StatusActive,
	}
	if err := k.DB.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// Bearer returns an Authorization header value for user.
func (k *Kit) Bearer(t testing.TB, user *models.UserModel) string {
	t.Helper()
	token, err := k.Tokens.Sign(user.ID, user.Username, user.Role)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + token
}

// Do performs a request against the engine. body may be empty.
func (k *Kit) Do(method, path, auth, body string) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	k.Engine.ServeHTTP(w, req)
	return w
}
