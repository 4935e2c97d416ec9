package models

// RatingFeedbackModel is a free-form comment with an optional 1-5 rating.
type RatingFeedbackModel struct {
	Base
	Email   string  `json:"email"   gorm:"size:191;not null"`
	Name    *string `json:"name"    gorm:"size:100"`
	Message string  `json:"message" gorm:"type:text;not null"`
	Rating  *int    `json:"rating"  gorm:"index"`
}

func (RatingFeedbackModel) TableName() string { return "rating_feedback" }
