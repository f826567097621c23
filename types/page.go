package types

// Page is one page of an ordered listing.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// NumPages returns the number of pages needed to hold Total items.
// An empty listing still has one page.
func (p Page[T]) NumPages() int {
	if p.PageSize < 1 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// IsPaginated reports whether the listing spans more than one page.
func (p Page[T]) IsPaginated() bool {
	return p.NumPages() > 1
}

func (p Page[T]) HasNext() bool {
	return p.Page < p.NumPages()
}

func (p Page[T]) HasPrevious() bool {
	return p.Page > 1
}

// Offset returns the row offset of the first item on the page.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
