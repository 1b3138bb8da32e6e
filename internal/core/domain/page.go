package domain

import "math"

// PageSize is the fixed number of posts on a listing page.
const PageSize = 10

// MaxPageNumber is the largest page whose offset still fits in an int.
const MaxPageNumber = math.MaxInt / PageSize

// Page is one fixed-size slice of an ordered post listing. Number is
// 1-based. A Number past the last page holds no items.
type Page struct {
	Items      []*Post `json:"items"`
	Number     int     `json:"number"`
	TotalItems int64   `json:"total_items"`
	TotalPages int     `json:"total_pages"`
}

// NewPage builds the page envelope for the given page number and total.
// Numbers below 1 are treated as 1.
func NewPage(number int, total int64) Page {
	if number < 1 {
		number = 1
	}
	return Page{
		Items:      []*Post{},
		Number:     number,
		TotalItems: total,
		TotalPages: NumPages(total),
	}
}

// NumPages returns how many pages total items span. An empty listing still
// has one (empty) page.
func NumPages(total int64) int {
	if total <= 0 {
		return 1
	}
	return int((total + PageSize - 1) / PageSize)
}

// Offset is the number of items preceding this page.
func (p Page) Offset() int {
	return (p.Number - 1) * PageSize
}

func (p Page) Len() int { return len(p.Items) }

func (p Page) HasNext() bool     { return p.Number < p.TotalPages }
func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasOtherPages() bool {
	return p.TotalPages > 1
}
func (p Page) NextPageNumber() int     { return p.Number + 1 }
func (p Page) PreviousPageNumber() int { return p.Number - 1 }

// PageRange lists every page number, for the paginator.
func (p Page) PageRange() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
