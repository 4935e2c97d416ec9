package category

import (
	"errors"
	"fmt"

	"github.com/albedo-support/api/internal/database"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/pkg/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNameTaken = errors.New("Category with this name already exists")

// InUseError rejects deleting a category that still owns articles.
type InUseError struct {
	Articles int64
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("Cannot delete category with %d article(s). Please reassign or delete the articles first.", e.Articles)
}

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("CategoryService")
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

func (s *Service) List(w pagination.Window) ([]CategoryResponse, error) {
	var cats []models.CategoryModel
	if err := w.Apply(s.db.Order("name ASC")).Find(&cats).Error; err != nil {
		return nil, err
	}
	counts, err := s.articleCounts(cats)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, CategoryResponse{CategoryModel: cat, ArticleCount: counts[cat.ID]})
	}
	return out, nil
}

func (s *Service) GetByID(id string) (*CategoryResponse, error) {
	cat, err := s.find(id)
	if err != nil || cat == nil {
		return nil, err
	}
	count, err := s.countArticles(id)
	if err != nil {
		return nil, err
	}
	return &CategoryResponse{CategoryModel: *cat, ArticleCount: count}, nil
}

func (s *Service) Create(dto *CreateCategoryDTO) (*CategoryResponse, error) {
	if taken, err := s.nameTaken(dto.Name, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrNameTaken
	}

	cat := models.CategoryModel{Name: dto.Name, Description: dto.Description, Color: dto.Color}
	if cat.Color == "" {
		cat.Color = models.DefaultCategoryColor
	}
	if err := s.db.Create(&cat).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	s.logger.Info("category created", zap.String("id", cat.ID), zap.String("name", cat.Name))
	return &CategoryResponse{CategoryModel: cat}, nil
}

func (s *Service) Update(id string, dto *UpdateCategoryDTO) (*CategoryResponse, error) {
	cat, err := s.find(id)
	if err != nil || cat == nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if dto.Name != nil && *dto.Name != cat.Name {
		if taken, err := s.nameTaken(*dto.Name, id); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrNameTaken
		}
		updates["name"] = *dto.Name
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Color != nil {
		updates["color"] = *dto.Color
	}
	if len(updates) > 0 {
		if err := s.db.Model(cat).Updates(updates).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return nil, ErrNameTaken
			}
			return nil, err
		}
	}
	return s.GetByID(id)
}

// Delete removes a category. It reports false when the category does not
// exist and an *InUseError when articles still reference it.
func (s *Service) Delete(id string) (bool, error) {
	cat, err := s.find(id)
	if err != nil || cat == nil {
		return false, err
	}
	count, err := s.countArticles(id)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, &InUseError{Articles: count}
	}
	if err := s.db.Delete(cat).Error; err != nil {
		return true, err
	}
	s.logger.Info("category deleted", zap.String("id", id))
	return true, nil
}

func (s *Service) find(id string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	if err := s.db.First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) nameTaken(name, exceptID string) (bool, error) {
	q := s.db.Model(&models.CategoryModel{}).Where("name = ?", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) countArticles(id string) (int64, error) {
	var count int64
	err := s.db.Model(&models.ArticleModel{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

func (s *Service) articleCounts(cats []models.CategoryModel) (map[string]int64, error) {
	counts := make(map[string]int64, len(cats))
	if len(cats) == 0 {
		return counts, nil
	}
	ids := make([]string, 0, len(cats))
	for _, cat := range cats {
		ids = append(ids, cat.ID)
	}
	var rows []struct {
		CategoryID string
		Total      int64
	}
	err := s.db.Model(&models.ArticleModel{}).
		Select("category_id, COUNT(*) AS total").
		Where("category_id IN ?", ids).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	return counts, nil
}
