// Package listutil parses list-view query parameters and pages in-memory
// result sets for the admin tables.
package listutil

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 20

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100}

// Params carries the page, sort and search of a list request.
type Params struct {
	Page    int    // 1-indexed
	PerPage int
	Sort    string // column name; empty keeps store order
	Desc    bool
	Search  string
	Filter  string // one exact-match filter, e.g. a membership status
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// Parse extracts list parameters from q.
// PRE: none
// POST: Page >= 1; PerPage is one of PerPageOptions; Sort is empty or in columns
func Parse(q url.Values, columns []string) Params {
	p := Params{
		Search: strings.TrimSpace(q.Get("q")),
		Filter: q.Get("filter"),
		Desc:   q.Get("dir") == "desc",
	}
	p.Page, _ = strconv.Atoi(q.Get("page"))
	if p.Page < 1 {
		p.Page = 1
	}
	p.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if !lo.Contains(PerPageOptions, p.PerPage) {
		p.PerPage = DefaultPerPage
	}
	if s := q.Get("sort"); lo.Contains(columns, s) {
		p.Sort = s
	}
	return p
}

// Query renders p back into query values, for pagination links.
func (p Params) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	if p.Sort != "" {
		q.Set("sort", p.Sort)
		if p.Desc {
			q.Set("dir", "desc")
		}
	}
	if p.Search != "" {
		q.Set("q", p.Search)
	}
	if p.Filter != "" {
		q.Set("filter", p.Filter)
	}
	return q
}

// Spec describes how a row type is searched, filtered and sorted.
type Spec[T any] struct {
	// Text returns the searchable text of a row.
	Text func(T) string
	// Filter reports whether a row matches Params.Filter. nil ignores the filter.
	Filter func(T, string) bool
	// Less orders rows per sortable column.
	Less map[string]func(a, b T) bool
}

// Apply searches, filters, sorts and pages items.
// PRE: items is not shared with other goroutines
// POST: Returns the rows of the requested page and the metadata for all matches
// INVARIANT: items is not mutated
func Apply[T any](items []T, p Params, spec Spec[T]) ([]T, PageInfo) {
	needle := strings.ToLower(p.Search)
	rows := lo.Filter(items, func(it T, _ int) bool {
		if needle != "" && spec.Text != nil && !strings.Contains(strings.ToLower(spec.Text(it)), needle) {
			return false
		}
		return p.Filter == "" || spec.Filter == nil || spec.Filter(it, p.Filter)
	})
	if less, ok := spec.Less[p.Sort]; ok {
		sort.SliceStable(rows, func(i, j int) bool {
			if p.Desc {
				return less(rows[j], rows[i])
			}
			return less(rows[i], rows[j])
		})
	}

	info := NewPageInfo(p.Page, p.PerPage, len(rows))
	return rows[info.Offset():info.EndRow()], info
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: Page is clamped to [1, TotalPages]; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), totalPages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first row on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number, 0 when empty.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the page.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// PageNumbers returns at most five page numbers centred on the current page.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := max(p.Page-maxButtons/2, 1)
	end := min(start+maxButtons-1, p.TotalPages)
	start = max(end-maxButtons+1, 1)
	return lo.RangeFrom(start, end-start+1)
}

// ShowPagination reports whether there is more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}
