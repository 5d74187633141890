package shared

// Pagination defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// PagedResult is one page of items plus the number of items matching the
// filter before paging was applied
type PagedResult[T any] struct {
	Items      []T
	TotalCount int
}

// NormalizePage clamps a 1-based page number and a page size to their defaults
// when they are not positive
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// Paginate returns the slice of items for the given page. page and pageSize are
// normalized first; an out-of-range page yields an empty (non-nil) slice.
func Paginate[T any](items []T, page, pageSize int) []T {
	page, pageSize = NormalizePage(page, pageSize)

	pages := len(items) / pageSize
	if len(items)%pageSize != 0 {
		pages++
	}
	if page-1 >= pages {
		return []T{}
	}
	skip := (page - 1) * pageSize
	end := len(items)
	if pageSize < end-skip {
		end = skip + pageSize
	}

	out := make([]T, end-skip)
	copy(out, items[skip:end])
	return out
}
