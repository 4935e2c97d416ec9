package article

import (
	"time"

	"github.com/albedo-support/api/internal/models"
)

type CreateArticleDTO struct {
	Title       string                `json:"title"        binding:"required,max=200"`
	Slug        string                `json:"slug"         binding:"required,max=191"`
	Excerpt     string                `json:"excerpt"`
	Content     []models.ContentBlock `json:"content"`
	URL         *string               `json:"url"          binding:"omitempty,max=500"`
	IsPublished bool                  `json:"is_published"`
	IsFeatured  bool                  `json:"is_featured"`
	ViewCount   int                   `json:"view_count"   binding:"min=0"`
	Order       int                   `json:"order"`
	CategoryID  string                `json:"category_id"  binding:"required"`
}

// UpdateArticleDTO only changes the fields that are present. An empty url
// clears it.
type UpdateArticleDTO struct {
	Title       *string                `json:"title"        binding:"omitnil,min=1,max=200"`
	Slug        *string                `json:"slug"         binding:"omitnil,min=1,max=191"`
	Excerpt     *string                `json:"excerpt"`
	Content     *[]models.ContentBlock `json:"content"`
	URL         *string                `json:"url"          binding:"omitempty,max=500"`
	IsPublished *bool                  `json:"is_published"`
	IsFeatured  *bool                  `json:"is_featured"`
	ViewCount   *int                   `json:"view_count"   binding:"omitempty,min=0"`
	Order       *int                   `json:"order"`
	CategoryID  *string                `json:"category_id"`
}

// ListFilter narrows the article listing. Nil fields are not applied.
type ListFilter struct {
	CategoryID  string
	IsPublished *bool
	IsFeatured  *bool
}

type CategorySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type ArticleResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Slug        string                `json:"slug"`
	Excerpt     string                `json:"excerpt"`
	Content     []models.ContentBlock `json:"content"`
	URL         *string               `json:"url"`
	IsPublished bool                  `json:"is_published"`
	IsFeatured  bool                  `json:"is_featured"`
	ViewCount   int                   `json:"view_count"`
	Order       int                   `json:"order"`
	CategoryID  string                `json:"category_id"`
	Category    *CategorySummary      `json:"category"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func toResponse(a *models.ArticleModel) ArticleResponse {
	out := ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Excerpt:     a.Excerpt,
		Content:     a.Content,
		URL:         a.URL,
		IsPublished: a.IsPublished,
		IsFeatured:  a.IsFeatured,
		ViewCount:   a.ViewCount,
		Order:       a.Order,
		CategoryID:  a.CategoryID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Category != nil {
		out.Category = &CategorySummary{ID: a.Category.ID, Name: a.Category.Name, Color: a.Category.Color}
	}
	return out
}
