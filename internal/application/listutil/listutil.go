package listutil

import (
	"net/url"
	"strconv"
)

// Sort directions
const (
	DirAsc  = "asc"
	DirDesc = "desc"
)

// ListParams are the list view parameters carried in the query string, so
// every search, sort and page is bookmarkable.
type ListParams struct {
	Search  string // free-text term, "q"
	Sort    string // active column, "" for server order
	Dir     string // DirAsc or DirDesc
	Page    int    // 1-indexed
	PerPage int
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // ceil(Total / PerPage)
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 20

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100}

// ParseListParams reads q, sort, dir, page and per_page from query values.
// PRE: allowedSort lists the sortable column names
// POST: Search is q exactly as typed; Sort is "" or an allowed column; Dir is DirAsc or DirDesc; Page >= 1; PerPage is an allowed option
func ParseListParams(q url.Values, allowedSort []string) ListParams {
	p := ListParams{
		Search: q.Get("q"),
		Sort:   q.Get("sort"),
		Dir:    q.Get("dir"),
	}
	if !contains(allowedSort, p.Sort) {
		p.Sort = ""
	}
	if p.Dir != DirDesc {
		p.Dir = DirAsc
	}
	p.Page, _ = strconv.Atoi(q.Get("page"))
	if p.Page < 1 {
		p.Page = 1
	}
	p.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if !containsInt(PerPageOptions, p.PerPage) {
		p.PerPage = DefaultPerPage
	}
	return p
}

// NextDir returns the direction a click on column should request.
// Clicking the active column flips its direction; any other column starts ascending.
// INVARIANT: two consecutive clicks on the same column return to the starting direction
func (p ListParams) NextDir(column string) string {
	if p.Sort == column && p.Dir == DirAsc {
		return DirDesc
	}
	return DirAsc
}

// Values encodes p back to query values, omitting defaults.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("q", p.Search)
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
		v.Set("dir", p.Dir)
	}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage != DefaultPerPage && p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	return v
}

// SortQuery returns the encoded query for a click on column's header.
// The page resets to 1; the search term is kept.
func (p ListParams) SortQuery(column string) string {
	next := p
	next.Sort = column
	next.Dir = p.NextDir(column)
	next.Page = 1
	return next.Values().Encode()
}

// PageQuery returns the encoded query for page n with everything else kept.
func (p ListParams) PageQuery(n int) string {
	next := p
	next.Page = n
	return next.Values().Encode()
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: Page clamped to [1, TotalPages]; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first row on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page, or 0 when empty.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// PageNumbers returns at most 5 page numbers centred on the current page.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := p.Page - maxButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - maxButtons + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination reports whether there is more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// Window returns the slice of items on the current page.
// PRE: len(items) == info.Total
func Window[T any](items []T, info PageInfo) []T {
	start := info.Offset()
	if start >= len(items) {
		return items[:0]
	}
	end := info.EndRow()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
