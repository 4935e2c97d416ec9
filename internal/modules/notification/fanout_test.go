package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/albedo-support/api/internal/database/databasetest"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu       sync.Mutex
	tickets  []string
	accounts []string
	err      error
}

func (f *fakeMailer) SendAdminTicketNotice(to string, _ mail.TicketData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets = append(f.tickets, to)
	return f.err
}

func (f *fakeMailer) SendAdminAccountNotice(to string, _ mail.AccountData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts = append(f.accounts, to)
	return f.err
}

type pushed struct {
	userID string
	event  string
}

type fakePusher struct {
	mu     sync.Mutex
	events []pushed
}

func (f *fakePusher) Push(userID, event string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, pushed{userID, event})
}

func createUser(t *testing.T, db *gorm.DB, name, role, status string) *models.UserModel {
	t.Helper()
	u := &models.UserModel{Username: name, Email: name + "@example.com", Password: "x", Role: role, Status: status}
	require.NoError(t, db.Create(u).Error)
	return u
}

func countNotifications(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.NotificationModel{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestFanOutTicketReachesActiveAdminsOnly(t *testing.T) {
	db := databasetest.Open(t)
	admin := createUser(t, db, "alice", models.RoleAdmin, models.StatusActive)
	inactive := createUser(t, db, "bob", models.RoleAdmin, models.StatusInactive)
	moderator := createUser(t, db, "carol", models.RoleModerator, models.StatusActive)

	mailer, pusher := &fakeMailer{}, &fakePusher{}
	svc := NewService(db, WithMailer(mailer), WithPusher(pusher))

	name := "Dana"
	ticket := &models.TicketModel{Base: models.Base{ID: "t-1"}, Email: "dana@example.com", Name: &name, Subject: "Login issue", Token: "tok"}
	require.NoError(t, svc.FanOut(context.Background(), TicketCreated(ticket)))

	assert.EqualValues(t, 1, countNotifications(t, db, admin.ID))
	assert.EqualValues(t, 0, countNotifications(t, db, inactive.ID))
	assert.EqualValues(t, 0, countNotifications(t, db, moderator.ID))
	assert.Equal(t, []string{admin.Email}, mailer.tickets)
	assert.Equal(t, []pushed{{admin.ID, EventNotification}}, pusher.events)

	var n models.NotificationModel
	require.NoError(t, db.Where("user_id = ?", admin.ID).First(&n).Error)
	assert.Equal(t, models.NotificationTypeSupportRequest, n.Type)
	assert.Equal(t, "New Support Request", n.Title)
	assert.Equal(t, "New support request from Dana: Login issue", n.Message)
	assert.Equal(t, "t-1", n.Data["support_request_id"])

	var prefs int64
	db.Model(&models.NotificationPreferenceModel{}).Count(&prefs)
	assert.EqualValues(t, 1, prefs)
}

func TestFanOutHonorsPreferences(t *testing.T) {
	db := databasetest.Open(t)
	admin := createUser(t, db, "alice", models.RoleAdmin, models.StatusActive)
	mailer, pusher := &fakeMailer{}, &fakePusher{}
	svc := NewService(db, WithMailer(mailer), WithPusher(pusher))

	off := false
	_, err := svc.UpdatePreference(context.Background(), admin.ID, &UpdateSettingsDTO{
		SystemSupportRequests: &off,
		EmailSupportRequests:  &off,
	})
	require.NoError(t, err)

	ticket := &models.TicketModel{Email: "x@example.com", Subject: "s", Token: "tok"}
	require.NoError(t, svc.FanOut(context.Background(), TicketCreated(ticket)))

	assert.EqualValues(t, 0, countNotifications(t, db, admin.ID))
	assert.Empty(t, mailer.tickets)
	assert.Len(t, pusher.events, 1)
}

func TestFanOutUserCreatedSkipsNewAccount(t *testing.T) {
	db := databasetest.Open(t)
	existing := createUser(t, db, "alice", models.RoleAdmin, models.StatusActive)
	created := createUser(t, db, "newbie", models.RoleAdmin, models.StatusActive)
	mailer := &fakeMailer{}
	svc := NewService(db, WithMailer(mailer))

	require.NoError(t, svc.FanOut(context.Background(), UserCreated(created)))

	assert.EqualValues(t, 1, countNotifications(t, db, existing.ID))
	assert.EqualValues(t, 0, countNotifications(t, db, created.ID))
	assert.Equal(t, []string{existing.Email}, mailer.accounts)

	var n models.NotificationModel
	require.NoError(t, db.Where("user_id = ?", existing.ID).First(&n).Error)
	assert.Equal(t, "New user 'newbie' (newbie@example.com) has been created with role: admin", n.Message)
}

func TestFanOutSwallowsMailFailures(t *testing.T) {
	db := databasetest.Open(t)
	first := createUser(t, db, "alice", models.RoleAdmin, models.StatusActive)
	second := createUser(t, db, "bob", models.RoleAdmin, models.StatusActive)
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := NewService(db, WithMailer(mailer))

	ticket := &models.TicketModel{Email: "x@example.com", Subject: "s", Token: "tok"}
	require.NoError(t, svc.FanOut(context.Background(), TicketCreated(ticket)))

	assert.EqualValues(t, 1, countNotifications(t, db, first.ID))
	assert.EqualValues(t, 1, countNotifications(t, db, second.ID))
	assert.Len(t, mailer.tickets, 2)
}

func TestFanOutIsNotDeduplicated(t *testing.T) {
	db := databasetest.Open(t)
	admin := createUser(t, db, "alice", models.RoleAdmin, models.StatusActive)
	svc := NewService(db)

	ticket := &models.TicketModel{Email: "x@example.com", Subject: "s", Token: "tok"}
	require.NoError(t, svc.FanOut(context.Background(), TicketCreated(ticket)))
	require.NoError(t, svc.FanOut(context.Background(), TicketCreated(ticket)))

	assert.EqualValues(t, 2, countNotifications(t, db, admin.ID))
}

func TestTicketCreatedFallsBackToEmail(t *testing.T) {
	ev := TicketCreated(&models.TicketModel{Email: "x@example.com", Subject: "Help"})
	assert.Equal(t, "New support request from x@example.com: Help", ev.Message)
}
