package ticket

import (
	"context"
	"errors"
	"fmt"

	"github.com/albedo-support/api/internal/database"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/modules/notification"
	"github.com/albedo-support/api/internal/pkg/mail"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mailer sends submitter-facing ticket email. *mail.Sender satisfies it.
type Mailer interface {
	SendTicketConfirmation(to string, data mail.TicketData) error
	SendTicketResponse(to string, data mail.TicketData) error
	SendTicketStatusUpdate(to string, data mail.TicketData) error
}

// Notifier fans an event out to admins.
type Notifier interface {
	FanOut(ctx context.Context, ev notification.Event) error
}

// Runner schedules work that outlives the request.
type Runner interface {
	Go(name string, fn func(ctx context.Context) error)
}

type Service struct {
	db       *gorm.DB
	variant  Variant
	mailer   Mailer
	notifier Notifier
	runner   Runner
	logger   *zap.Logger
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("TicketService")
		}
	}
}

func WithMailer(m Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(db *gorm.DB, variant Variant, runner Runner, opts ...Option) *Service {
	s := &Service{db: db, variant: variant, runner: runner, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("kind", variant.Kind))
	return s
}

func (s *Service) Variant() Variant { return s.variant }

// Submit stores a new pending ticket with a fresh tracking token. An unknown
// category id is dropped rather than rejected. Confirmation email and admin
// fan-out run after the call returns.
func (s *Service) Submit(ctx context.Context, dto *SubmitTicketDTO) (*models.TicketModel, error) {
	t := models.TicketModel{
		Kind:    s.variant.Kind,
		Email:   dto.Email,
		Name:    dto.Name,
		Subject: dto.Subject,
		Message: dto.Message,
		Token:   uuid.NewString(),
		Status:  models.TicketStatusPending,
	}
	if id := dto.categoryID(); id != "" {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			t.CategoryID = &id
		}
	}

	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, fmt.Errorf("ticket token collision: %w", err)
		}
		return nil, err
	}
	s.logger.Info("ticket submitted", zap.String("id", t.ID), zap.String("email", t.Email))

	snapshot := t
	s.schedule("ticket confirmation email", func(context.Context) error {
		if s.mailer == nil {
			return nil
		}
		return s.mailer.SendTicketConfirmation(snapshot.Email, ticketData(&snapshot, ""))
	})
	if s.variant.NotifyAdmins && s.notifier != nil {
		s.schedule("ticket admin fan-out", func(ctx context.Context) error {
			return s.notifier.FanOut(ctx, notification.TicketCreated(&snapshot))
		})
	}
	return &t, nil
}

func (s *Service) GetByToken(ctx context.Context, token string) (*models.TicketModel, error) {
	return s.findBy(ctx, "token = ?", token)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.TicketModel, error) {
	return s.findBy(ctx, "id = ?", id)
}

// List returns the newest tickets first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string, limit int) ([]models.TicketModel, error) {
	q := s.db.WithContext(ctx).Where("kind = ?", s.variant.Kind)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	list := make([]models.TicketModel, 0)
	err := q.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// Update applies a status change and/or admin response, then schedules at
// most one submitter email. Any status may follow any other.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateTicketDTO) (*models.TicketModel, Email, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil || t == nil {
		return t, EmailNone, err
	}
	kind := s.variant.classify(dto)

	updates := map[string]interface{}{}
	if kind == EmailResponse || kind == EmailCombined {
		updates["admin_response"] = *dto.AdminResponse
	}
	if dto.Status != nil {
		updates["status"] = *dto.Status
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(t).Updates(updates).Error; err != nil {
			return nil, EmailNone, err
		}
		if t, err = s.GetByID(ctx, id); err != nil {
			return nil, EmailNone, err
		}
	}

	s.sendUpdateEmail(t, kind)
	return t, kind, nil
}

// Delete reports false when the ticket does not exist.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("kind = ?", s.variant.Kind).Delete(&models.TicketModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) sendUpdateEmail(t *models.TicketModel, kind Email) {
	if kind == EmailNone || s.mailer == nil {
		return
	}
	snapshot := *t
	s.schedule("ticket "+string(kind)+" email", func(context.Context) error {
		switch kind {
		case EmailCombined:
			return s.mailer.SendTicketResponse(snapshot.Email, ticketData(&snapshot, snapshot.Status))
		case EmailStatus:
			return s.mailer.SendTicketStatusUpdate(snapshot.Email, ticketData(&snapshot, snapshot.Status))
		default:
			return s.mailer.SendTicketResponse(snapshot.Email, ticketData(&snapshot, ""))
		}
	})
}

func (s *Service) schedule(name string, fn func(ctx context.Context) error) {
	if s.runner == nil {
		if err := fn(context.Background()); err != nil {
			s.logger.Warn("ticket side effect failed", zap.String("task", name), zap.Error(err))
		}
		return
	}
	s.runner.Go(name, fn)
}

func (s *Service) findBy(ctx context.Context, cond, arg string) (*models.TicketModel, error) {
	var t models.TicketModel
	err := s.db.WithContext(ctx).Where("kind = ?", s.variant.Kind).Where(cond, arg).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ticketData builds the email payload. status is empty unless the message
// should report it.
func ticketData(t *models.TicketModel, status string) mail.TicketData {
	data := mail.TicketData{
		Email:   t.Email,
		Subject: t.Subject,
		Message: t.Message,
		Token:   t.Token,
		Status:  status,
	}
	if t.Name != nil {
		data.Name = *t.Name
	}
	if t.AdminResponse != nil {
		data.AdminResponse = *t.AdminResponse
	}
	return data
}
