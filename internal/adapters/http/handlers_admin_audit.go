package web

import (
	"net/http"
	"net/url"
	"strconv"

	auditStore "brochure/internal/adapters/storage/audit"
	"brochure/internal/application/listutil"
	auditDomain "brochure/internal/domain/audit"
	"brochure/internal/domain/session"
)

// auditData is the audit trail page's template data.
type auditData struct {
	Events   []auditDomain.Event
	Page     listutil.PageInfo
	Category string
	Action   string
	Prev     string
	Next     string
}

// handleAdminAuditTrail renders the admin audit trail page (GET /admin/audit)
// PRE: isAdminLoggedIn flag set
// POST: Renders newest events first with optional category/action filters
func (s *server) handleAdminAuditTrail(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, session.GateAdmin, "Audit Trail") {
		return
	}
	ctx := r.Context()
	q := r.URL.Query()

	filter := auditStore.Filter{
		Category: auditDomain.Category(q.Get("category")),
		Action:   auditDomain.Action(q.Get("action")),
	}
	total, err := s.AuditStore.Count(ctx, filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	info := listutil.NewPageInfo(page, listutil.DefaultPerPage, total)
	filter.Offset = info.Offset()

	events, err := s.AuditStore.List(ctx, filter, info.PerPage)
	if err != nil {
		internalError(w, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"events": events, "total": total})
		return
	}

	data := auditData{Events: events, Page: info, Category: string(filter.Category), Action: string(filter.Action)}
	if info.Page > 1 {
		data.Prev = auditQuery(filter, info.Page-1)
	}
	if info.Page < info.TotalPages {
		data.Next = auditQuery(filter, info.Page+1)
	}
	s.render(w, r, http.StatusOK, "audit.html", view{Title: "Audit Trail", Data: data})
}

func auditQuery(f auditStore.Filter, page int) string {
	v := url.Values{}
	if f.Category != "" {
		v.Set("category", string(f.Category))
	}
	if f.Action != "" {
		v.Set("action", string(f.Action))
	}
	v.Set("page", strconv.Itoa(page))
	return "/admin/audit?" + v.Encode()
}
