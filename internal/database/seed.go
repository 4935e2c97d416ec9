package database

import (
	"fmt"

	"github.com/albedo-support/api/internal/models"
	"gorm.io/gorm"
)

type seedArticle struct {
	title    string
	slug     string
	excerpt  string
	body     string
	category string
}

var seedCategories = []struct {
	name  string
	color string
}{
	{"Getting Started", "#3b82f6"},
	{"Installation", "#10b981"},
	{"FAQ", "#f59e0b"},
	{"Troubleshooting", "#ef4444"},
}

var seedArticles = []seedArticle{
	{
		title:    "Albedo Support: Getting Started",
		slug:     "docs/getting-started",
		excerpt:  "Learn the basics of Albedo Support platform and key features.",
		body:     "This guide helps you start with Albedo support docs, search, and feedback.",
		category: "Getting Started",
	},
	{
		title:    "Install Albedo Support",
		slug:     "docs/installation",
		excerpt:  "Step-by-step installation instructions for Albedo Support.",
		body:     "Install prerequisites, configure environment, and run the app.",
		category: "Installation",
	},
	{
		title:    "FAQ: Common Questions",
		slug:     "docs/faq",
		excerpt:  "Frequently asked questions about Albedo Support.",
		body:     "Explore answers to common usage and setup questions.",
		category: "FAQ",
	},
}

// SeedResult counts the rows Seed inserted.
type SeedResult struct {
	Categories int
	Articles   int
}

// Seed inserts the default categories and example articles. Rows that
// already exist (by category name or article slug) are left alone, so Seed
// can be run repeatedly.
func Seed(db *gorm.DB) (SeedResult, error) {
	var res SeedResult
	byName := make(map[string]string, len(seedCategories))

	for _, sc := range seedCategories {
		var cat models.CategoryModel
		err := db.Where("name = ?", sc.name).Limit(1).Find(&cat).Error
		if err != nil {
			return res, fmt.Errorf("seed category %q: %w", sc.name, err)
		}
		if cat.ID == "" {
			cat = models.CategoryModel{Name: sc.name, Color: sc.color}
			if err := db.Create(&cat).Error; err != nil {
				return res, fmt.Errorf("seed category %q: %w", sc.name, err)
			}
			res.Categories++
		}
		byName[sc.name] = cat.ID
	}

	for _, sa := range seedArticles {
		var count int64
		if err := db.Model(&models.ArticleModel{}).Where("slug = ?", sa.slug).Count(&count).Error; err != nil {
			return res, err
		}
		if count > 0 {
			continue
		}
		article := models.ArticleModel{
			Title:   sa.title,
			Slug:    sa.slug,
			Excerpt: sa.excerpt,
			Content: []models.ContentBlock{{
				Title:       sa.title,
				Description: sa.body,
			}},
			IsPublished: true,
			CategoryID:  byName[sa.category],
		}
		if err := db.Create(&article).Error; err != nil {
			return res, fmt.Errorf("seed article %q: %w", sa.slug, err)
		}
		res.Articles++
	}
	return res, nil
}
