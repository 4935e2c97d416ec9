package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/albedo-support/api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultLimit   = 5
	MaxLimit       = 25
	excerptMaxRune = 160
	cachePrefix    = "search:articles:"
)

var ErrEmptyQuery = errors.New("Query must not be empty")

// Cache stores serialized result sets. *redis.Client satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DelPattern(ctx context.Context, pattern string) error
}

// Service handles article search.
type Service struct {
	db     *gorm.DB
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

type ServiceOption func(*Service)

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("SearchService")
		}
	}
}

// WithCache enables result caching. A non-positive ttl disables it.
func WithCache(c Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if c != nil && ttl > 0 {
			s.cache = c
			s.ttl = ttl
		}
	}
}

func NewService(db *gorm.DB, opts ...ServiceOption) *Service {
	s := &Service{db: db, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ClampLimit bounds a requested result count to 1..MaxLimit.
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Articles matches query case-insensitively against title and excerpt,
// shortest titles first.
func (s *Service) Articles(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	limit = ClampLimit(limit)

	key := fmt.Sprintf("%s%d:%s", cachePrefix, limit, strings.ToLower(query))
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	like := "%" + escapeLike(strings.ToLower(query)) + "%"
	var articles []models.ArticleModel
	err := s.db.WithContext(ctx).
		Joins("Category").
		Where("LOWER(articles.title) LIKE ? ESCAPE '!' OR LOWER(articles.excerpt) LIKE ? ESCAPE '!'", like, like).
		Order("LENGTH(articles.title) ASC").
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(articles))
	for i := range articles {
		results = append(results, toResult(query, &articles[i]))
	}
	s.toCache(ctx, key, results)
	return results, nil
}

// Invalidate drops every cached result set.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DelPattern(ctx, cachePrefix+"*"); err != nil {
		s.logger.Warn("search cache invalidation failed", zap.Error(err))
	}
}

func (s *Service) fromCache(ctx context.Context, key string) ([]SearchResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("search cache read failed", zap.Error(err))
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var results []SearchResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, false
	}
	return results, true
}

func (s *Service) toCache(ctx context.Context, key string, results []SearchResult) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.logger.Warn("search cache write failed", zap.Error(err))
	}
}

func toResult(query string, a *models.ArticleModel) SearchResult {
	r := SearchResult{
		ID:        a.ID,
		Title:     a.Title,
		Excerpt:   excerptOf(a),
		Slug:      a.Slug,
		URL:       a.URL,
		Relevance: relevance(query, a),
	}
	if a.Category != nil {
		r.Category = ResultCategory{Name: a.Category.Name, Color: a.Category.Color}
	}
	return r
}

func relevance(query string, a *models.ArticleModel) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(strings.ToLower(a.Title), q):
		return RelevanceHigh
	case strings.Contains(strings.ToLower(a.Excerpt), q):
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}

// excerptOf falls back to the first non-empty block description.
func excerptOf(a *models.ArticleModel) string {
	if a.Excerpt != "" {
		return a.Excerpt
	}
	for _, block := range a.Content {
		if block.Description == "" {
			continue
		}
		runes := []rune(block.Description)
		if len(runes) > excerptMaxRune {
			runes = runes[:excerptMaxRune]
		}
		return string(runes)
	}
	return ""
}

func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}
