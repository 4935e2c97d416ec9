package models

// ContentBlock is one titled section of an article body. Block order is
// display order.
type ContentBlock struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images,omitempty"`
	Videos      []string `json:"videos,omitempty"`
}

// ArticleModel is a knowledge-base article.
type ArticleModel struct {
	Base
	Title       string         `json:"title"        gorm:"size:200;not null"`
	Slug        string         `json:"slug"         gorm:"uniqueIndex;size:191;not null"`
	Excerpt     string         `json:"excerpt"      gorm:"type:text"`
	Content     []ContentBlock `json:"content"      gorm:"serializer:json;size:16777216"`
	URL         *string        `json:"url"          gorm:"size:500"`
	IsPublished bool           `json:"is_published" gorm:"not null;index"`
	IsFeatured  bool           `json:"is_featured"  gorm:"not null;index"`
	ViewCount   int            `json:"view_count"   gorm:"not null"`
	Order       int            `json:"order"        gorm:"column:sort_order;not null;index"`
	CategoryID  string         `json:"category_id"  gorm:"type:char(36);not null;index"`

	Category *CategoryModel `json:"-" gorm:"foreignKey:CategoryID"`
}

func (ArticleModel) TableName() string { return "articles" }
