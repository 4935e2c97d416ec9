package search

type SearchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit"`
}

const (
	RelevanceHigh   = "high"
	RelevanceMedium = "medium"
	RelevanceLow    = "low"
)

type ResultCategory struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type SearchResult struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Excerpt   string         `json:"excerpt"`
	Slug      string         `json:"slug"`
	URL       *string        `json:"url"`
	Category  ResultCategory `json:"category"`
	Relevance string         `json:"relevance"`
}
