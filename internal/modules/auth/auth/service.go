package auth

import (
	"context"
	"errors"

	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/pkg/jwt"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	tokens *jwt.Manager
	logger *zap.Logger
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("AuthService")
		}
	}
}

func NewService(db *gorm.DB, tokens *jwt.Manager, opts ...Option) *Service {
	s := &Service{db: db, tokens: tokens, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies credentials and issues an access token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.UserModel, error) {
	var u models.UserModel
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, errBadCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Info("login rejected", zap.String("username", username))
		return "", nil, errBadCredentials
	}
	if !u.IsActive() {
		return "", nil, errInactive
	}

	token, err := s.tokens.Sign(u.ID, u.Username, u.Role)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("login", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return token, &u, nil
}
