package feedback

type CreateFeedbackDTO struct {
	Email   string  `json:"email"   binding:"required,email,max=191"`
	Name    *string `json:"name"    binding:"omitempty,max=100"`
	Message string  `json:"message" binding:"required"`
	Rating  *int    `json:"rating"  binding:"omitnil,min=1,max=5"`
}

// Stats summarises every rating feedback row. AverageRating is nil when no
// row carries a rating.
type Stats struct {
	TotalFeedback         int64            `json:"total_feedback"`
	AverageRating         *float64         `json:"average_rating"`
	RatingCount           int64            `json:"rating_count"`
	RatingDistribution    map[string]int64 `json:"rating_distribution"`
	FeedbackWithoutRating int64            `json:"feedback_without_rating"`
}
