package category

import "github.com/albedo-support/api/internal/models"

type CreateCategoryDTO struct {
	Name        string `json:"name"        binding:"required,max=100"`
	Description string `json:"description"`
	Color       string `json:"color"       binding:"omitempty,max=20"`
}

type UpdateCategoryDTO struct {
	Name        *string `json:"name"        binding:"omitnil,min=1,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color"       binding:"omitempty,max=20"`
}

// CategoryResponse is a category together with the number of articles it owns.
type CategoryResponse struct {
	models.CategoryModel
	ArticleCount int64 `json:"article_count"`
}
