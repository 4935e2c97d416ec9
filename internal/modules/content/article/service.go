package article

import (
	"errors"

	"github.com/albedo-support/api/internal/database"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/pkg/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("Category not found")
	ErrSlugTaken        = errors.New("Article with this slug already exists")
)

type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	onChange func()
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("ArticleService")
		}
	}
}

// OnChange registers fn to run after every successful article write.
func OnChange(fn func()) Option {
	return func(s *Service) { s.onChange = fn }
}

func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(filter ListFilter, w pagination.Window) ([]ArticleResponse, error) {
	q := s.db.Model(&models.ArticleModel{}).Preload("Category")
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.IsPublished != nil {
		q = q.Where("is_published = ?", *filter.IsPublished)
	}
	if filter.IsFeatured != nil {
		q = q.Where("is_featured = ?", *filter.IsFeatured)
	}

	var articles []models.ArticleModel
	if err := w.Apply(q.Order("sort_order ASC").Order("created_at DESC")).Find(&articles).Error; err != nil {
		return nil, err
	}
	out := make([]ArticleResponse, 0, len(articles))
	for i := range articles {
		out = append(out, toResponse(&articles[i]))
	}
	return out, nil
}

func (s *Service) GetByID(id string) (*ArticleResponse, error) {
	a, err := s.findBy("id = ?", id)
	if err != nil || a == nil {
		return nil, err
	}
	resp := toResponse(a)
	return &resp, nil
}

// GetBySlug returns the article and counts one view.
func (s *Service) GetBySlug(slug string) (*ArticleResponse, error) {
	a, err := s.findBy("slug = ?", slug)
	if err != nil || a == nil {
		return nil, err
	}
	err = s.db.Model(&models.ArticleModel{}).
		Where("id = ?", a.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		return nil, err
	}
	a.ViewCount++
	resp := toResponse(a)
	return &resp, nil
}

func (s *Service) Create(dto *CreateArticleDTO) (*ArticleResponse, error) {
	if ok, err := s.categoryExists(dto.CategoryID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrCategoryNotFound
	}
	if taken, err := s.slugTaken(dto.Slug, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrSlugTaken
	}

	a := models.ArticleModel{
		Title:       dto.Title,
		Slug:        dto.Slug,
		Excerpt:     dto.Excerpt,
		Content:     dto.Content,
		URL:         dto.URL,
		IsPublished: dto.IsPublished,
		IsFeatured:  dto.IsFeatured,
		ViewCount:   dto.ViewCount,
		Order:       dto.Order,
		CategoryID:  dto.CategoryID,
	}
	if err := s.db.Create(&a).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	s.logger.Info("article created", zap.String("id", a.ID), zap.String("slug", a.Slug))
	s.changed()
	return s.GetByID(a.ID)
}

func (s *Service) Update(id string, dto *UpdateArticleDTO) (*ArticleResponse, error) {
	a, err := s.findBy("id = ?", id)
	if err != nil || a == nil {
		return nil, err
	}
	if dto.Slug != nil && *dto.Slug != a.Slug {
		if taken, err := s.slugTaken(*dto.Slug, id); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrSlugTaken
		}
	}
	if dto.CategoryID != nil && *dto.CategoryID != a.CategoryID {
		if ok, err := s.categoryExists(*dto.CategoryID); err != nil {
			return nil, err
		} else if !ok {
			return nil, ErrCategoryNotFound
		}
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Slug != nil {
		updates["slug"] = *dto.Slug
	}
	if dto.Excerpt != nil {
		updates["excerpt"] = *dto.Excerpt
	}
	if dto.URL != nil {
		if *dto.URL == "" {
			updates["url"] = nil
		} else {
			updates["url"] = *dto.URL
		}
	}
	if dto.IsPublished != nil {
		updates["is_published"] = *dto.IsPublished
	}
	if dto.IsFeatured != nil {
		updates["is_featured"] = *dto.IsFeatured
	}
	if dto.ViewCount != nil {
		updates["view_count"] = *dto.ViewCount
	}
	if dto.Order != nil {
		updates["sort_order"] = *dto.Order
	}
	if dto.CategoryID != nil {
		updates["category_id"] = *dto.CategoryID
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(a).Updates(updates).Error; err != nil {
				return err
			}
		}
		if dto.Content != nil {
			// map updates bypass the json serializer
			a.Content = *dto.Content
			return tx.Model(a).Select("Content").Updates(a).Error
		}
		return nil
	})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	s.changed()
	return s.GetByID(id)
}

// Delete reports false when no article has the id.
func (s *Service) Delete(id string) (bool, error) {
	res := s.db.Delete(&models.ArticleModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.changed()
	return true, nil
}

func (s *Service) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Service) findBy(cond string, arg string) (*models.ArticleModel, error) {
	var a models.ArticleModel
	if err := s.db.Preload("Category").Where(cond, arg).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (s *Service) categoryExists(id string) (bool, error) {
	var count int64
	err := s.db.Model(&models.CategoryModel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (s *Service) slugTaken(slug, exceptID string) (bool, error) {
	q := s.db.Model(&models.ArticleModel{}).Where("slug = ?", slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
