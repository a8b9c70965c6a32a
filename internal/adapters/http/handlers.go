package web

import (
	"errors"
	"log/slog"
	"net/http"

	"brochure/internal/adapters/api"
	"brochure/internal/application/listutil"
	"brochure/internal/application/orchestrators"
	"brochure/internal/application/projections"
	"brochure/internal/domain/portfolio"
	"brochure/internal/domain/session"
)

// Notices shown to the user
const (
	msgStudentsFailed  = "Failed to load students. Please try again later."
	msgPortfolioFailed = "Failed to load your portfolio."
	msgSubmitted       = "Portfolio submitted successfully!"
	msgSubmitFailed    = "Failed to submit portfolio."
	msgFixErrors       = "Please fix the highlighted fields."
)

// handleStudents renders the searchable, sortable student directory (GET /).
// PRE: none; the directory is public
// POST: renders only students matching q, sorted by sort/dir
func (s *server) handleStudents(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), projections.StudentSortColumns)
	res, err := projections.QueryGetStudentList(r.Context(), projections.GetStudentListQuery{Params: params},
		projections.GetStudentListDeps{Gateway: s.Gateway})

	if wantsJSON(r) {
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": msgStudentsFailed})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"students": res.Students,
			"total":    res.Total,
			"matched":  res.Page.Total,
			"page":     res.Page.Page,
			"pages":    res.Page.TotalPages,
		})
		return
	}

	v := view{Title: "Students"}
	if err != nil {
		slog.Warn("students_fetch_failed", "error", err)
		v.Flash = errorNotice(msgStudentsFailed)
		res = projections.GetStudentListResult{Params: params, Page: listutil.NewPageInfo(1, params.PerPage, 0)}
	}
	v.Data = res
	s.render(w, r, http.StatusOK, "students.html", v)
}

// handleAbout renders the About page from embedded Markdown.
func (s *server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about.html", view{Title: "About", Data: s.about})
}

// handlePortfolio renders one student's public portfolio (GET /portfolio/{id}).
func (s *server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetPortfolio(r.Context(), projections.GetPortfolioQuery{ID: r.PathValue("id")},
		projections.GetPortfolioDeps{Gateway: s.Gateway})
	status := http.StatusOK
	switch {
	case errors.Is(err, api.ErrNotFound):
		status = http.StatusNotFound
	case err != nil:
		slog.Warn("portfolio_fetch_failed", "id", r.PathValue("id"), "error", err)
		status = http.StatusBadGateway
	}

	if wantsJSON(r) {
		if err != nil {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		writeJSON(w, status, res.Portfolio)
		return
	}
	if err != nil {
		msg := "Failed to load this portfolio."
		if status == http.StatusNotFound {
			msg = "No portfolio exists for this student."
		}
		s.render(w, r, status, "error.html", view{Title: "Portfolio", Data: msg})
		return
	}
	s.render(w, r, status, "portfolio.html", view{Title: res.Portfolio.Name, Data: res})
}

// handleDashboard renders the logged-in student's own portfolio (GET /dashboard).
// PRE: isLoggedIn flag set, otherwise a log-in prompt renders
// POST: a missing record renders a call to action instead of an error
func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, session.GateStudent, "Dashboard") {
		return
	}
	res, err := projections.QueryGetOwnPortfolio(r.Context(), projections.GetOwnPortfolioQuery{Jar: s.browser(r).Jar},
		projections.GetOwnPortfolioDeps{Gateway: s.Gateway})
	v := view{Title: "Dashboard", Data: res}
	if err != nil {
		v.Flash = errorNotice(msgPortfolioFailed)
	}
	s.render(w, r, http.StatusOK, "dashboard.html", v)
}

// editorData is the portfolio editor's template data.
type editorData struct {
	Portfolio portfolio.Portfolio
	Skills    []skillSection
	Errors    portfolio.FieldErrors
	Exists    bool
}

// skillSection is one repeating skill table in the editor.
type skillSection struct {
	Key   portfolio.Section
	Title string
	Noun  string
	Rows  []portfolio.Skill
}

func newEditorData(p portfolio.Portfolio, errs portfolio.FieldErrors) editorData {
	p.Normalize()
	return editorData{
		Portfolio: p,
		Errors:    errs,
		Skills: []skillSection{
			{Key: portfolio.SectionLanguages, Title: "Programming Languages", Noun: "language", Rows: p.ProgrammingLanguages},
			{Key: portfolio.SectionLibraries, Title: "Libraries", Noun: "library", Rows: p.Libraries},
			{Key: portfolio.SectionFrameworks, Title: "Frameworks", Noun: "framework", Rows: p.Frameworks},
		},
	}
}

// handleEditPortfolio renders the editor pre-populated with the stored record (GET /editportfolio).
// PRE: isLoggedIn flag set, otherwise only a log-in prompt renders
func (s *server) handleEditPortfolio(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, session.GateStudent, "Edit Portfolio") {
		return
	}
	res, err := projections.QueryGetOwnPortfolio(r.Context(), projections.GetOwnPortfolioQuery{Jar: s.browser(r).Jar},
		projections.GetOwnPortfolioDeps{Gateway: s.Gateway})
	data := newEditorData(res.Portfolio, nil)
	data.Exists = res.Exists
	v := view{Title: "Edit Portfolio", Data: data}
	if err != nil {
		v.Flash = errorNotice(msgPortfolioFailed)
	}
	s.render(w, r, http.StatusOK, "editor.html", v)
}

// handleEditPortfolioPost applies a row edit or submits the whole portfolio (POST /editportfolio).
// PRE: isLoggedIn flag set
// POST: add/remove actions re-render without contacting the remote API
// POST: the hidden "exists" field carries create versus edit across re-renders
// POST: submit validates first; an invalid form never reaches the remote API
func (s *server) handleEditPortfolioPost(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, session.GateStudent, "Edit Portfolio") {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	p := decodePortfolio(r.PostForm)
	exists := r.PostForm.Get("exists") == "true"
	editor := func(errs portfolio.FieldErrors) editorData {
		d := newEditorData(p, errs)
		d.Exists = exists
		return d
	}

	act, err := parseAction(r.PostForm.Get("action"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if act.kind != actionSubmit {
		if err := act.apply(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.render(w, r, http.StatusOK, "editor.html", view{Title: "Edit Portfolio", Data: editor(nil)})
		return
	}

	err = orchestrators.ExecuteSubmitPortfolio(r.Context(), orchestrators.SubmitPortfolioInput{
		Requester: s.requester(r),
		Portfolio: p,
	}, orchestrators.SubmitPortfolioDeps{Gateway: s.Gateway, AuditStore: s.AuditStore})

	if fields, ok := portfolio.AsValidationError(err); ok {
		s.render(w, r, http.StatusUnprocessableEntity, "editor.html", view{
			Title: "Edit Portfolio",
			Flash: errorNotice(msgFixErrors),
			Data:  editor(fields),
		})
		return
	}
	if err != nil {
		s.render(w, r, http.StatusBadGateway, "editor.html", view{
			Title: "Edit Portfolio",
			Flash: errorNotice(api.MessageOf(err, msgSubmitFailed)),
			Data:  editor(nil),
		})
		return
	}
	s.redirectWithFlash(w, r, "/dashboard", "success", msgSubmitted)
}
