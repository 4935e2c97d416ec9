package user

import (
	"context"
	"errors"
	"strings"

	"github.com/albedo-support/api/internal/database"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/modules/notification"
	"github.com/albedo-support/api/internal/pkg/mail"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Mailer sends the welcome email. *mail.Sender satisfies it.
type Mailer interface {
	SendAccountWelcome(to string, data mail.AccountData) error
}

type Notifier interface {
	FanOut(ctx context.Context, ev notification.Event) error
}

type Runner interface {
	Go(name string, fn func(ctx context.Context) error)
}

type Service struct {
	db       *gorm.DB
	runner   Runner
	mailer   Mailer
	notifier Notifier
	logger   *zap.Logger
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("UserService")
		}
	}
}

func WithMailer(m Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(db *gorm.DB, runner Runner, opts ...Option) *Service {
	s := &Service{db: db, runner: runner, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]models.UserModel, error) {
	users := make([]models.UserModel, 0)
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create adds an account, emails its credentials and tells the other admins.
// Role defaults to admin and status to active.
func (s *Service) Create(ctx context.Context, dto *CreateUserDTO) (*models.UserModel, error) {
	role := dto.Role
	if role == "" {
		role = models.RoleAdmin
	}
	status := dto.Status
	if status == "" {
		status = models.StatusActive
	}
	u, err := s.insert(ctx, dto, role, status)
	if err != nil {
		return nil, err
	}

	created := *u
	password := dto.Password
	s.schedule("account welcome email", func(context.Context) error {
		if s.mailer == nil {
			return nil
		}
		return s.mailer.SendAccountWelcome(created.Email, mail.AccountData{
			Username: created.Username,
			Email:    created.Email,
			Role:     created.Role,
			Password: password,
		})
	})
	if s.notifier != nil {
		s.schedule("account admin fan-out", func(ctx context.Context) error {
			return s.notifier.FanOut(ctx, notification.UserCreated(&created))
		})
	}
	return u, nil
}

// CreateAdmin bootstraps the first admin account. It fails once any admin
// exists.
func (s *Service) CreateAdmin(ctx context.Context, dto *CreateUserDTO) (*models.UserModel, error) {
	var admins int64
	err := s.db.WithContext(ctx).Model(&models.UserModel{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error
	if err != nil {
		return nil, err
	}
	if admins > 0 {
		return nil, ErrAdminExists
	}
	return s.insert(ctx, dto, models.RoleAdmin, models.StatusActive)
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdateUserDTO) (*models.UserModel, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	updates := map[string]interface{}{}
	if dto.Email != nil && !strings.EqualFold(*dto.Email, u.Email) {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.UserModel{}).
			Where("email = ? AND id <> ?", *dto.Email, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrEmailInUse
		}
		updates["email"] = *dto.Email
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hash)
	}
	if dto.Role != nil {
		updates["role"] = *dto.Role
	}
	if dto.Status != nil {
		updates["status"] = *dto.Status
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return nil, ErrEmailInUse
			}
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

// Delete reports false when no account has the id. Notifications and
// preferences of the account go with it.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		s.logger.Info("user deleted", zap.String("id", id))
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) insert(ctx context.Context, dto *CreateUserDTO, role, status string) (*models.UserModel, error) {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.UserModel{}).Where("username = ?", dto.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	if err := db.Model(&models.UserModel{}).Where("email = ?", dto.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.UserModel{
		Username: dto.Username,
		Email:    dto.Email,
		Password: string(hash),
		Role:     role,
		Status:   status,
	}
	if err := db.Create(&u).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Info("user created", zap.String("id", u.ID), zap.String("username", u.Username), zap.String("role", u.Role))
	return &u, nil
}

func (s *Service) schedule(name string, fn func(ctx context.Context) error) {
	if s.runner == nil {
		if err := fn(context.Background()); err != nil {
			s.logger.Warn("user side effect failed", zap.String("task", name), zap.Error(err))
		}
		return
	}
	s.runner.Go(name, fn)
}
