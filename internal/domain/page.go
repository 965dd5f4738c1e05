package domain

// DefaultLimit is the page size used when a find omits one.
const DefaultLimit = 10

// Page is a paginated slice of results.
type Page[T any] struct {
	Docs          []T  `json:"docs"`
	TotalDocs     int  `json:"totalDocs"`
	Limit         int  `json:"limit"`
	Page          int  `json:"page"`
	TotalPages    int  `json:"totalPages"`
	HasPrevPage   bool `json:"hasPrevPage"`
	HasNextPage   bool `json:"hasNextPage"`
	PagingCounter int  `json:"pagingCounter"`
}

// NewPage slices items according to limit and page, both one-based defaults.
func NewPage[T any](items []T, total, limit, page int) Page[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = 1
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Docs:          items,
		TotalDocs:     total,
		Limit:         limit,
		Page:          page,
		TotalPages:    totalPages,
		HasPrevPage:   page > 1,
		HasNextPage:   page < totalPages,
		PagingCounter: (page-1)*limit + 1,
	}
}
