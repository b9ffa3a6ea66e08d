package query

import "budgetplanner/internal/core"

// DefaultPageSize is used when a page size is not positive.
const DefaultPageSize = 10

// PageSizes are the page sizes offered by the table.
var PageSizes = []int{5, 10, 20, 50}

// Page is one slice of a filtered result.
type Page struct {
	Items      []core.Transaction
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
}

// TotalPages is ceil(n/pageSize).
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage limits page to [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	return max(1, min(page, totalPages))
}

// Paginate returns the requested 1-based page of items, clamping page to
// the available range.
func Paginate(items []core.Transaction, pageSize, page int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := Page{
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: TotalPages(len(items), pageSize),
	}
	p.Page = ClampPage(page, p.TotalPages)

	lo := (p.Page - 1) * pageSize
	hi := min(lo+pageSize, len(items))
	if lo < hi {
		p.Items = make([]core.Transaction, hi-lo)
		copy(p.Items, items[lo:hi])
	}
	return p
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// PageAfterDelete returns the page to show after deleting one item from p.
// Removing the only item of a page past the first steps back one page.
func PageAfterDelete(p Page) int {
	if len(p.Items) == 1 && p.Page > 1 {
		return p.Page - 1
	}
	return p.Page
}
