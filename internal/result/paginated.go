package result

import (
	"math"
)

// Paginated wraps one page of results plus the metadata API clients need to
// walk the rest.
type Paginated[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalHits  int `json:"total"`
	TotalPages int `json:"total_pages"`
	Hits       T   `json:"results"`
}

func NewPaginated[T any](perPage, page, totalHits int, hits T) Paginated[T] {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(totalHits) / float64(perPage)))
	}

	return Paginated[T]{
		Page:       page,
		PerPage:    perPage,
		TotalHits:  totalHits,
		TotalPages: totalPages,
		Hits:       hits,
	}
}
