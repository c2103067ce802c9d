// Package paging translates externally-facing 1-based page numbers into
// 0-based storage offsets and wraps query results with page metadata.
package paging

// Page is one page of results with 1-based metadata.
type Page[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"currentPage"`
	Size        int   `json:"size"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

// NewPage builds a Page for the externally-facing page number (1-based).
// TotalPages is ceil(totalItems/size).
func NewPage[T any](items []T, page, size int, totalItems int64) *Page[T] {
	totalPages := 0
	if size > 0 {
		totalPages = int((totalItems + int64(size) - 1) / int64(size))
	}
	return &Page[T]{
		Items:       items,
		CurrentPage: page,
		Size:        size,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
	}
}

// Offset converts a 1-based page number and size to a storage row offset.
// Page numbers below 1 are treated as the first page.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}
