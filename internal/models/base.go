package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the base model for all entities. Rows are hard-deleted.
type Base struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// All returns every model that participates in auto-migration, in
// dependency order.
func All() []interface{} {
	return []interface{}{
		&UserModel{},
		&CategoryModel{},
		&ArticleModel{},
		&TicketModel{},
		&RatingFeedbackModel{},
		&NotificationModel{},
		&NotificationPreferenceModel{},
	}
}
