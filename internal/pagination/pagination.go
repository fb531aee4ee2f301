// Package pagination splits ordered result sets into fixed-size pages.
//
// Pages are 1-indexed. A requested page outside the valid range clamps to
// the nearest valid page instead of erroring, mirroring the behavior users
// expect from listing views: page 0 shows the first page, page 9999 shows
// the last one.
package pagination

// Size is the fixed page size for every listing view.
const Size = 10

// Page is a bounded slice of an ordered result set plus pagination metadata.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Number     int   `json:"number"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// TotalPages returns how many pages a result set of total items spans.
// An empty set still has a single (empty) page.
func TotalPages(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	return pages
}

// Clamp coerces a requested page number into [1, totalPages].
func Clamp(requested, totalPages int) int {
	if requested < 1 {
		return 1
	}
	if requested > totalPages {
		return totalPages
	}
	return requested
}

// Offset converts a 1-indexed page number to a row offset.
func Offset(number, size int) int {
	return (number - 1) * size
}

// New assembles a Page from the items fetched for an already-clamped page
// number and the total item count.
func New[T any](items []T, number, size int, total int64) Page[T] {
	totalPages := TotalPages(total, size)
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
		HasPrev:    number > 1,
		HasNext:    number < totalPages,
	}
}
