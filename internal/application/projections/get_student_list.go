package projections

import (
	"context"
	"slices"
	"strings"

	"brochure/internal/application/listutil"
	"brochure/internal/domain/portfolio"
)

// Sortable student list columns
const (
	SortName  = "name"
	SortEmail = "email"
)

// StudentSortColumns lists the columns the directory can be sorted by.
var StudentSortColumns = []string{SortName, SortEmail}

// GetStudentListQuery carries query parameters.
type GetStudentListQuery struct {
	Params listutil.ListParams
}

// GetStudentListResult carries the query result.
type GetStudentListResult struct {
	Students []portfolio.Student // current page only
	Page     listutil.PageInfo   // Total counts matches, not the snapshot
	Total    int                 // size of the unfiltered snapshot
	Params   listutil.ListParams
}

// GetStudentListDeps holds dependencies for GetStudentList.
type GetStudentListDeps struct {
	Gateway StudentLister
}

// QueryGetStudentList fetches the directory snapshot, then filters, sorts and
// pages it in memory.
// PRE: query.Params came from listutil.ParseListParams with StudentSortColumns
// POST: every returned student matches query.Params.Search
// INVARIANT: filtering and sorting are recomputed from the full snapshot on every call
func QueryGetStudentList(ctx context.Context, query GetStudentListQuery, deps GetStudentListDeps) (GetStudentListResult, error) {
	all, err := deps.Gateway.ListStudents(ctx)
	if err != nil {
		return GetStudentListResult{}, err
	}

	matched := FilterStudents(all, query.Params.Search)
	SortStudents(matched, query.Params.Sort, query.Params.Dir)

	page := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, len(matched))
	return GetStudentListResult{
		Students: listutil.Window(matched, page),
		Page:     page,
		Total:    len(all),
		Params:   query.Params,
	}, nil
}

// FilterStudents returns the students matching term, in snapshot order.
// POST: result is a new slice; students is not modified
func FilterStudents(students []portfolio.Student, term string) []portfolio.Student {
	out := make([]portfolio.Student, 0, len(students))
	for _, s := range students {
		if s.Matches(term) {
			out = append(out, s)
		}
	}
	return out
}

// SortStudents orders students in place by column, lexicographically.
// An empty or unknown column leaves the order untouched. Equal keys have no
// guaranteed order.
func SortStudents(students []portfolio.Student, column, dir string) {
	var key func(portfolio.Student) string
	switch column {
	case SortName:
		key = func(s portfolio.Student) string { return s.Name }
	case SortEmail:
		key = func(s portfolio.Student) string { return s.Email }
	default:
		return
	}
	slices.SortFunc(students, func(a, b portfolio.Student) int {
		c := strings.Compare(key(a), key(b))
		if dir == listutil.DirDesc {
			return -c
		}
		return c
	})
}
