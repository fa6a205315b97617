package prismic

import "spacetraveling/internal/domain"

// apiResponse is the repository root, which lists the content refs.
type apiResponse struct {
	Refs []Ref `json:"refs"`
}

type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// searchResponse is the documents/search payload.
type searchResponse struct {
	Page             int               `json:"page"`
	ResultsPerPage   int               `json:"results_per_page"`
	ResultsSize      int               `json:"results_size"`
	TotalResultsSize int               `json:"total_results_size"`
	TotalPages       int               `json:"total_pages"`
	NextPage         *string           `json:"next_page"`
	PrevPage         *string           `json:"prev_page"`
	Results          []domain.Document `json:"results"`
}
