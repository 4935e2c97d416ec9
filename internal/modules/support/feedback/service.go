package feedback

import (
	"context"
	"math"
	"strconv"

	"github.com/albedo-support/api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("FeedbackService")
		}
	}
}

func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, dto *CreateFeedbackDTO) (*models.RatingFeedbackModel, error) {
	fb := models.RatingFeedbackModel{
		Email:   dto.Email,
		Name:    dto.Name,
		Message: dto.Message,
		Rating:  dto.Rating,
	}
	if err := s.db.WithContext(ctx).Create(&fb).Error; err != nil {
		return nil, err
	}
	s.logger.Info("feedback received", zap.String("id", fb.ID), zap.Intp("rating", fb.Rating))
	return &fb, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]models.RatingFeedbackModel, error) {
	list := make([]models.RatingFeedbackModel, 0)
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// Delete reports false when no row has the id.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.RatingFeedbackModel{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx).Model(&models.RatingFeedbackModel{})

	stats := &Stats{RatingDistribution: make(map[string]int64, 5)}
	for i := 1; i <= 5; i++ {
		stats.RatingDistribution[strconv.Itoa(i)] = 0
	}
	if err := db.Session(&gorm.Session{}).Count(&stats.TotalFeedback).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Rating int
		Total  int64
	}
	err := db.Session(&gorm.Session{}).
		Select("rating, COUNT(*) AS total").
		Where("rating IS NOT NULL").
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var sum int64
	for _, row := range rows {
		stats.RatingCount += row.Total
		sum += int64(row.Rating) * row.Total
		stats.RatingDistribution[strconv.Itoa(row.Rating)] = row.Total
	}
	if stats.RatingCount > 0 {
		avg := math.Round(float64(sum)/float64(stats.RatingCount)*10) / 10
		stats.AverageRating = &avg
	}
	stats.FeedbackWithoutRating = stats.TotalFeedback - stats.RatingCount
	return stats, nil
}
