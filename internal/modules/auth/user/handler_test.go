package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/albedo-support/api/internal/database/databasetest"
	"github.com/albedo-support/api/internal/middleware/authtest"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/modules/auth/user"
	"github.com/albedo-support/api/internal/modules/notification"
	"github.com/albedo-support/api/internal/pkg/background"
	"github.com/albedo-support/api/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeMailer struct {
	mu      sync.Mutex
	welcome []mail.AccountData
}

func (f *fakeMailer) SendAccountWelcome(_ string, data mail.AccountData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcome = append(f.welcome, data)
	return nil
}

type fixture struct {
	kit    *authtest.Kit
	admin  string
	runner *background.Runner
	mailer *fakeMailer
}

func setup(t *testing.T) *fixture {
	kit := authtest.New(t, databasetest.Open(t))
	f := &fixture{kit: kit, runner: background.New(), mailer: &fakeMailer{}}
	notifier := notification.NewService(kit.DB)
	svc := user.NewService(kit.DB, f.runner, user.WithMailer(f.mailer), user.WithNotifier(notifier))
	user.NewHandler(svc).RegisterRoutes(kit.API, kit.Auth)
	f.admin = kit.Bearer(t, kit.CreateUser(t, models.RoleAdmin))
	return f
}

func decode(t *testing.T, body []byte) models.UserModel {
	t.Helper()
	var u models.UserModel
	require.NoError(t, json.Unmarshal(body, &u))
	return u
}

func TestCreateUserSendsWelcomeAndNotifiesAdmins(t *testing.T) {
	f := setup(t)

	w := f.kit.Do(http.MethodPost, "/api/users", f.admin, `{"username":"newbie","email":"newbie@example.com","password":"secret123","role":"moderator"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w.Body.Bytes())
	assert.Equal(t, models.RoleModerator, created.Role)
	assert.Equal(t, models.StatusActive, created.Status)
	assert.NotContains(t, w.Body.String(), "secret123")

	f.runner.Flush()
	require.Len(t, f.mailer.welcome, 1)
	assert.Equal(t, "secret123", f.mailer.welcome[0].Password)

	var stored models.UserModel
	require.NoError(t, f.kit.DB.First(&stored, "id = ?", created.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))

	var notes []models.NotificationModel
	require.NoError(t, f.kit.DB.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationTypeUserCreated, notes[0].Type)
}

func TestCreateUserDuplicateEmailRejected(t *testing.T) {
	f := setup(t)

	w := f.kit.Do(http.MethodPost, "/api/users", f.admin, `{"username":"first","email":"same@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.kit.Do(http.MethodPost, "/api/users", f.admin, `{"username":"second","email":"same@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already exists")

	w = f.kit.Do(http.MethodPost, "/api/users", f.admin, `{"username":"first","email":"other@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username already exists")
	f.runner.Flush()
}

func TestUpdateUser(t *testing.T) {
	f := setup(t)
	target := f.kit.CreateUser(t, models.RoleUser)
	other := f.kit.CreateUser(t, models.RoleUser)

	w := f.kit.Do(http.MethodPut, "/api/users/"+target.ID, f.admin, `{"email":"`+other.Email+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already in use by another user")

	w = f.kit.Do(http.MethodPut, "/api/users/"+target.ID, f.admin, `{"status":"inactive","password":"changed1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w.Body.Bytes())
	assert.Equal(t, models.StatusInactive, got.Status)
	assert.Equal(t, target.Email, got.Email)

	var stored models.UserModel
	require.NoError(t, f.kit.DB.First(&stored, "id = ?", target.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("changed1")))

	w = f.kit.Do(http.MethodPut, "/api/users/"+target.ID, f.admin, `{"role":"superuser"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUserRemovesNotifications(t *testing.T) {
	f := setup(t)
	target := f.kit.CreateUser(t, models.RoleAdmin)
	require.NoError(t, notification.NewService(f.kit.DB).Create(context.Background(), &models.NotificationModel{
		UserID: target.ID, Type: models.NotificationTypeSupportRequest, Title: "t", Message: "m",
	}))

	assert.Equal(t, http.StatusNoContent, f.kit.Do(http.MethodDelete, "/api/users/"+target.ID, f.admin, "").Code)
	assert.Equal(t, http.StatusNotFound, f.kit.Do(http.MethodGet, "/api/users/"+target.ID, f.admin, "").Code)

	var count int64
	f.kit.DB.Model(&models.NotificationModel{}).Where("user_id = ?", target.ID).Count(&count)
	assert.Zero(t, count)
}

func TestUsersRequireAdmin(t *testing.T) {
	f := setup(t)
	moderator := f.kit.CreateUser(t, models.RoleModerator)

	assert.Equal(t, http.StatusUnauthorized, f.kit.Do(http.MethodGet, "/api/users", "", "").Code)
	assert.Equal(t, http.StatusForbidden, f.kit.Do(http.MethodGet, "/api/users", f.kit.Bearer(t, moderator), "").Code)

	w := f.kit.Do(http.MethodGet, "/api/users", f.admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.UserModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestCreateAdminOnlyWhileNoAdminExists(t *testing.T) {
	kit := authtest.New(t, databasetest.Open(t))
	user.NewHandler(user.NewService(kit.DB, nil)).RegisterRoutes(kit.API, kit.Auth)

	w := kit.Do(http.MethodPost, "/api/users/create-admin", "", `{"username":"root","email":"root@example.com","password":"secret123","role":"user"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decode(t, w.Body.Bytes())
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, models.StatusActive, got.Status)

	w = kit.Do(http.MethodPost, "/api/users/create-admin", "", `{"username":"root2","email":"root2@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
