package notification

import (
	"context"
	"fmt"

	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/pkg/mail"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// EventNotification is the realtime event name pushed to admin browsers.
const EventNotification = "notification"

// Mailer sends the admin-facing notices. *mail.Sender satisfies it.
type Mailer interface {
	SendAdminTicketNotice(to string, data mail.TicketData) error
	SendAdminAccountNotice(to string, data mail.AccountData) error
}

// Pusher delivers realtime events to one account's open sessions.
type Pusher interface {
	Push(userID, event string, payload interface{})
}

// Event is something every eligible admin is told about.
type Event struct {
	Type    string
	Title   string
	Message string
	Data    map[string]interface{}
	// ExcludeUserID skips one admin, used so a new admin is not told about
	// its own account.
	ExcludeUserID string

	email func(m Mailer, to string) error
}

// TicketCreated describes a newly submitted support request.
func TicketCreated(t *models.TicketModel) Event {
	from := t.Email
	if t.Name != nil && *t.Name != "" {
		from = *t.Name
	}
	data := mail.TicketData{Email: t.Email, Subject: t.Subject, Message: t.Message, Token: t.Token, Status: t.Status}
	if t.Name != nil {
		data.Name = *t.Name
	}
	return Event{
		Type:    models.NotificationTypeSupportRequest,
		Title:   "New Support Request",
		Message: fmt.Sprintf("New support request from %s: %s", from, t.Subject),
		Data: map[string]interface{}{
			"support_request_id": t.ID,
			"email":              t.Email,
			"subject":            t.Subject,
		},
		email: func(m Mailer, to string) error { return m.SendAdminTicketNotice(to, data) },
	}
}

// UserCreated describes a newly created account.
func UserCreated(u *models.UserModel) Event {
	data := mail.AccountData{Username: u.Username, Email: u.Email, Role: u.Role}
	return Event{
		Type:    models.NotificationTypeUserCreated,
		Title:   "New User Created",
		Message: fmt.Sprintf("New user '%s' (%s) has been created with role: %s", u.Username, u.Email, u.Role),
		Data: map[string]interface{}{
			"user_id":  u.ID,
			"username": u.Username,
			"email":    u.Email,
			"role":     u.Role,
		},
		ExcludeUserID: u.ID,
		email:         func(m Mailer, to string) error { return m.SendAdminAccountNotice(to, data) },
	}
}

// FanOut tells every active admin about ev according to that admin's
// preferences. A failure for one admin is logged and does not stop the
// others. Calling it twice for the same event delivers twice.
func (s *Service) FanOut(ctx context.Context, ev Event) error {
	q := s.db.WithContext(ctx).Where("role = ? AND status = ?", models.RoleAdmin, models.StatusActive)
	if ev.ExcludeUserID != "" {
		q = q.Where("id <> ?", ev.ExcludeUserID)
	}
	var admins []models.UserModel
	if err := q.Find(&admins).Error; err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	for i := range admins {
		admin := &admins[i]
		if err := s.deliver(ctx, admin, ev); err != nil {
			s.logger.Warn("notification delivery failed",
				zap.String("type", ev.Type),
				zap.String("admin_id", admin.ID),
				zap.Error(err))
		}
	}
	s.logger.Info("notification fan-out finished", zap.String("type", ev.Type), zap.Int("admins", len(admins)))
	return nil
}

func (s *Service) deliver(ctx context.Context, admin *models.UserModel, ev Event) error {
	pref, err := s.Preference(ctx, admin.ID)
	if err != nil {
		return fmt.Errorf("load preference: %w", err)
	}
	wantEmail, wantSystem, wantBrowser := pref.Allows(ev.Type)

	var row *models.NotificationModel
	if wantSystem {
		row = &models.NotificationModel{
			UserID:  admin.ID,
			Type:    ev.Type,
			Title:   ev.Title,
			Message: ev.Message,
			Data:    datatypes.JSONMap(ev.Data),
		}
		if err := s.Create(ctx, row); err != nil {
			return err
		}
	}

	if wantBrowser && s.pusher != nil {
		if row != nil {
			s.pusher.Push(admin.ID, EventNotification, row)
		} else {
			s.pusher.Push(admin.ID, EventNotification, map[string]interface{}{
				"type":    ev.Type,
				"title":   ev.Title,
				"message": ev.Message,
				"data":    ev.Data,
			})
		}
	}

	if wantEmail && s.mailer != nil && ev.email != nil {
		if err := ev.email(s.mailer, admin.Email); err != nil {
			return fmt.Errorf("send email: %w", err)
		}
	}
	return nil
}
