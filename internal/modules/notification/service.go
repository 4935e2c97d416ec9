package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/albedo-support/api/internal/database"
	"github.com/albedo-support/api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service owns notification rows and per-account preferences.
type Service struct {
	db     *gorm.DB
	mailer Mailer
	pusher Pusher
	logger *zap.Logger
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("NotificationService")
		}
	}
}

// WithMailer sets the sender used for "email" deliveries.
func WithMailer(m Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

// WithPusher sets the realtime channel used for "browser" deliveries.
func WithPusher(p Pusher) Option {
	return func(s *Service) { s.pusher = p }
}

func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the newest notifications of one account.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.NotificationModel, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	list := make([]models.NotificationModel, 0)
	err := q.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkAllRead returns the number of notifications that changed.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// Get returns a notification owned by userID, or nil.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.NotificationModel, error) {
	var n models.NotificationModel
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// SetRead changes the read flag, the only mutable field of a notification.
func (s *Service) SetRead(ctx context.Context, userID, id string, dto *UpdateNotificationDTO) (*models.NotificationModel, error) {
	n, err := s.Get(ctx, userID, id)
	if err != nil || n == nil {
		return n, err
	}
	if dto.IsRead != nil && *dto.IsRead != n.IsRead {
		if err := s.db.WithContext(ctx).Model(n).Update("is_read", *dto.IsRead).Error; err != nil {
			return nil, err
		}
		n.IsRead = *dto.IsRead
	}
	return n, nil
}

// Create stores one notification.
func (s *Service) Create(ctx context.Context, n *models.NotificationModel) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// Preference loads the account's preference row, creating it with every
// toggle on when it does not exist yet.
func (s *Service) Preference(ctx context.Context, userID string) (*models.NotificationPreferenceModel, error) {
	db := s.db.WithContext(ctx)
	var pref models.NotificationPreferenceModel
	err := db.Where("user_id = ?", userID).First(&pref).Error
	if err == nil {
		return &pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pref = models.DefaultPreference(userID)
	if err := db.Create(&pref).Error; err != nil {
		if !database.IsDuplicateKey(err) {
			return nil, err
		}
		// a concurrent request created it first
		pref = models.NotificationPreferenceModel{}
		if err := db.Where("user_id = ?", userID).First(&pref).Error; err != nil {
			return nil, err
		}
	}
	return &pref, nil
}

// UpdatePreference changes only the toggles present in dto.
func (s *Service) UpdatePreference(ctx context.Context, userID string, dto *UpdateSettingsDTO) (*models.NotificationPreferenceModel, error) {
	pref, err := s.Preference(ctx, userID)
	if err != nil {
		return nil, err
	}
	if updates := dto.updates(); len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(pref).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Preference(ctx, userID)
}
