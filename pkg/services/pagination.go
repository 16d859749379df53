package services

// Pagination bounds for list operations.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MinPageSize     = 1
	MaxPageSize     = 100
)

// Page is a single page of listed items with the total matching count.
// Total counts all rows matching the filters irrespective of the page;
// TotalPages is ceil(Total / pageSize).
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// normalizePaging applies defaults and validates the page size bounds.
// Returns the effective page and pageSize, or a validation error.
func normalizePaging(page, pageSize int) (int, int, error) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return 0, 0, &ValidationError{Fields: map[string]string{
			"page_size": "page_size must be between 1 and 100",
		}}
	}
	return page, pageSize, nil
}

// totalPages computes ceil(total / pageSize).
func totalPages(total, pageSize int) int {
	return (total + pageSize - 1) / pageSize
}
