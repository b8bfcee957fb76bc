package result

import (
	"encoding/json"
	"math"
)

// Paginated holds one page of a listing, as well as the metadata needed to ask for the others
type Paginated[T any] struct {
	maxResultsPerPage int
	page              int
	hits              []T
	totalHits         int
}

func NewPaginated[T any](maxResultsPerPage, page, totalHits int, hits []T) Paginated[T] {
	if hits == nil {
		hits = []T{}
	}
	return Paginated[T]{
		maxResultsPerPage: maxResultsPerPage,
		page:              page,
		totalHits:         totalHits,
		hits:              hits,
	}
}

func (p Paginated[T]) Page() int {
	return p.page
}

func (p Paginated[T]) Hits() []T {
	return p.hits
}

func (p Paginated[T]) TotalHits() int {
	return p.totalHits
}

func (p Paginated[T]) TotalPages() int {
	if p.maxResultsPerPage == 0 {
		return 0
	}
	return int(math.Ceil(float64(p.totalHits) / float64(p.maxResultsPerPage)))
}

func (p Paginated[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
		Total      int `json:"total"`
		Items      []T `json:"items"`
	}{
		Page:       p.page,
		TotalPages: p.TotalPages(),
		Total:      p.totalHits,
		Items:      p.hits,
	})
}
