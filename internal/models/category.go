package models

const DefaultCategoryColor = "#3B82F6"

// CategoryModel groups knowledge-base articles.
type CategoryModel struct {
	Base
	Name        string `json:"name"        gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description" gorm:"type:text"`
	Color       string `json:"color"       gorm:"size:20;not null"`

	Articles []ArticleModel `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
}

func (CategoryModel) TableName() string { return "categories" }
