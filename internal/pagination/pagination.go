// Package pagination splits ordered result sets into fixed-size pages.
package pagination

import "strconv"

// Amount is the number of items on one page.
const Amount = 10

// Page describes one page of an ordered result set plus the metadata
// needed to render navigation controls.
type Page struct {
	Number      int
	TotalPages  int
	Limit       int
	Offset      int
	HasNext     bool
	HasPrevious bool
}

// Paginate computes the page for a requested page parameter over a result
// set of total items. Invalid input degrades gracefully: a non-numeric or
// non-positive parameter selects page 1, and a number past the end selects
// the last page. It never fails.
func Paginate(total int64, pageParam string) Page {
	totalPages := int((total + Amount - 1) / Amount)
	if totalPages < 1 {
		totalPages = 1
	}

	number, err := strconv.Atoi(pageParam)
	if err != nil || number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:      number,
		TotalPages:  totalPages,
		Limit:       Amount,
		Offset:      (number - 1) * Amount,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}
}

// NextPage returns the following page number; meaningful only when HasNext.
func (p Page) NextPage() int {
	return p.Number + 1
}

// PreviousPage returns the preceding page number; meaningful only when HasPrevious.
func (p Page) PreviousPage() int {
	return p.Number - 1
}

// PageRange lists all page numbers, for rendering pager links.
func (p Page) PageRange() []int {
	pages := make([]int, p.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
