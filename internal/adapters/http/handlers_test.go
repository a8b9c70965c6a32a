package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brochure/internal/adapters/api"
	"brochure/internal/adapters/http/middleware"
	auditStore "brochure/internal/adapters/storage/audit"
	auditDomain "brochure/internal/domain/audit"
	"brochure/internal/domain/portfolio"
	"brochure/internal/domain/session"
)

func testStudents() []portfolio.Student {
	return []portfolio.Student{
		{ID: "1", Name: "Grace Hopper", Email: "grace@navy.test",
			ProgrammingLanguages: []portfolio.Skill{{Name: "COBOL", Fluency: portfolio.FluencyExpert}}},
		{ID: "2", Name: "Ada Lovelace", Email: "ada@engine.test",
			ProgrammingLanguages: []portfolio.Skill{{Name: "Go", Fluency: portfolio.FluencyAdvanced}}},
		{ID: "3", Name: "Alan Turing", Email: "alan@bletchley.test",
			Frameworks: []portfolio.Skill{{Name: "Django", Fluency: portfolio.FluencyBeginner}}},
	}
}

// validForm is an editor submission that passes validation.
func validForm() url.Values {
	return url.Values{
		"name":                           {"Ada Lovelace"},
		"email":                          {"ada@engine.test"},
		"githubProfile":                  {"ada"},
		"programmingLanguages.0.name":    {"Go"},
		"programmingLanguages.0.fluency": {"Advanced"},
		"projects.0.projectName":         {"Engine"},
		"projects.0.projectDescription":  {"An analytical engine emulator"},
		"projects.0.technologiesUsed":    {"Go"},
		"projects.0.projectDuration":     {"3 months"},
		"action":                         {"submit"},
	}
}

// TestStudents_SearchAndSort verifies the directory filters by term and orders by column.
func TestStudents_SearchAndSort(t *testing.T) {
	h := newHarness(t)
	h.gw.students = testStudents()

	body := h.get("/?q=a&sort=name&dir=desc").Body.String()
	grace := strings.Index(body, "Grace Hopper")
	alan := strings.Index(body, "Alan Turing")
	ada := strings.Index(body, "Ada Lovelace")
	require.True(t, grace > 0 && alan > 0 && ada > 0, "all three names match 'a'")
	assert.True(t, grace < alan && alan < ada, "descending by name")

	body = h.get("/?q=django").Body.String()
	assert.Contains(t, body, "Alan Turing")
	assert.NotContains(t, body, "Ada Lovelace")
	assert.NotContains(t, body, "Grace Hopper")
}

// TestStudents_SortLinksToggle verifies the active header links to the opposite direction.
func TestStudents_SortLinksToggle(t *testing.T) {
	h := newHarness(t)
	h.gw.students = testStudents()

	body := h.get("/?sort=name&dir=asc").Body.String()
	assert.Contains(t, body, `href="/?dir=desc&amp;sort=name"`)
	assert.Contains(t, body, `href="/?dir=asc&amp;sort=email"`)
}

// TestStudents_NoMatches verifies an empty result renders a message, not an error.
func TestStudents_NoMatches(t *testing.T) {
	h := newHarness(t)
	h.gw.students = testStudents()

	rr := h.get("/?q=haskell")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No students found.")
}

// TestStudents_FetchFailureShowsNotice verifies a failed load keeps the page usable.
func TestStudents_FetchFailureShowsNotice(t *testing.T) {
	h := newHarness(t)
	h.gw.listErr = errors.New("connection refused")

	rr := h.get("/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), msgStudentsFailed)
	assert.Contains(t, rr.Body.String(), "No students found.")

	assert.Equal(t, http.StatusBadGateway, h.getJSON("/").Code)
}

// TestStudents_JSON verifies the JSON variant carries totals.
func TestStudents_JSON(t *testing.T) {
	h := newHarness(t)
	h.gw.students = testStudents()

	rr := h.getJSON("/?q=engine")
	require.Equal(t, http.StatusOK, rr.Code)
	var out struct {
		Students []portfolio.Student `json:"students"`
		Total    int                 `json:"total"`
		Matched  int                 `json:"matched"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 1, out.Matched)
	require.Len(t, out.Students, 1)
	assert.Equal(t, "Ada Lovelace", out.Students[0].Name)
}

// TestPortfolio_Public verifies a stored portfolio renders for anyone.
func TestPortfolio_Public(t *testing.T) {
	h := newHarness(t)
	p := portfolio.New()
	p.Name = "Ada Lovelace"
	p.GithubProfile = "ada"
	p.Projects = []portfolio.Project{{ProjectName: "Engine", ProjectDescription: "Analytical engine", ProjectDuration: "1 year"}}
	h.gw.portfolios = map[string]portfolio.Portfolio{"2": p}

	rr := h.get("/portfolio/2")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "https://github.com/ada")
	assert.Contains(t, body, "Analytical engine")
	assert.Contains(t, body, "None listed.")
}

// TestPortfolio_Errors verifies missing and failed lookups map to 404 and 502.
func TestPortfolio_Errors(t *testing.T) {
	h := newHarness(t)

	rr := h.get("/portfolio/404")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "No portfolio exists for this student.")

	h.gw.fetchErr = &api.APIError{StatusCode: 500, Message: "boom"}
	assert.Equal(t, http.StatusBadGateway, h.get("/portfolio/1").Code)
}

// TestGatedViews_PromptOnly verifies gated pages render only a log-in prompt
// and never contact the remote API when the flag is missing.
func TestGatedViews_PromptOnly(t *testing.T) {
	tests := []struct {
		path      string
		loginPath string
	}{
		{"/dashboard", "/login"},
		{"/editportfolio", "/login"},
		{"/admin", "/admin/login"},
		{"/admin/registerstudent", "/admin/login"},
		{"/admin/audit", "/admin/login"},
		{"/admin/perf", "/admin/login"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			h := newHarness(t)
			rr := h.get(tt.path)
			assert.Equal(t, http.StatusOK, rr.Code)
			body := rr.Body.String()
			assert.Contains(t, body, `class="prompt"`)
			assert.Contains(t, body, `href="`+tt.loginPath+`"`)
			assert.NotContains(t, body, `name="githubProfile"`)
			assert.NotContains(t, body, `name="pass"`)
			assert.Zero(t, h.gw.ownCalls)

			assert.Equal(t, http.StatusUnauthorized, h.getJSON(tt.path).Code)
		})
	}
}

// TestGatedViews_StudentFlagIsNotAdmin verifies the two flags gate independently.
func TestGatedViews_StudentFlagIsNotAdmin(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)
	assert.Contains(t, h.get("/admin").Body.String(), `class="prompt"`)

	h2 := newHarness(t)
	h2.login(session.KeyAdminLoggedIn)
	assert.Contains(t, h2.get("/dashboard").Body.String(), `class="prompt"`)
}

// TestGatedViews_PostWithoutFlag verifies gated form posts are refused before any work.
func TestGatedViews_PostWithoutFlag(t *testing.T) {
	h := newHarness(t)

	rr := h.post("/editportfolio", validForm())
	assert.Contains(t, rr.Body.String(), `class="prompt"`)
	assert.Zero(t, h.gw.submitCount())

	rr = h.post("/admin/registerstudent", url.Values{"email": {"new@x.test"}, "pass": {"secret1"}})
	assert.Contains(t, rr.Body.String(), `class="prompt"`)
	assert.Empty(t, h.gw.registered)
}

// TestDashboard_NoRecordShowsCallToAction verifies a missing portfolio is not an error.
func TestDashboard_NoRecordShowsCallToAction(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)

	rr := h.get("/dashboard")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Create your portfolio")
	assert.NotContains(t, rr.Body.String(), msgPortfolioFailed)
}

// TestDashboard_ShowsOwnPortfolio verifies the stored record renders with an edit link.
func TestDashboard_ShowsOwnPortfolio(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)
	p := portfolio.New()
	p.Name = "Ada Lovelace"
	h.gw.own = api.OwnPortfolioResult{Status: api.OwnPortfolioFound, Portfolio: p}

	body := h.get("/dashboard").Body.String()
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "Edit your portfolio")
}

// TestDashboard_FetchFailure verifies a failed fetch shows a notice.
func TestDashboard_FetchFailure(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)
	h.gw.own = api.OwnPortfolioResult{Status: api.OwnPortfolioFailed, Err: errors.New("down")}

	assert.Contains(t, h.get("/dashboard").Body.String(), msgPortfolioFailed)
}

// TestEditPortfolio_PrePopulated verifies the editor shows the stored record.
func TestEditPortfolio_PrePopulated(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)
	p := portfolio.New()
	p.Name = "Ada Lovelace"
	p.Libraries = []portfolio.Skill{{Name: "React", Fluency: portfolio.FluencyIntermediate}}
	h.gw.own = api.OwnPortfolioResult{Status: api.OwnPortfolioFound, Portfolio: p}

	body := h.get("/editportfolio").Body.String()
	assert.Contains(t, body, "Edit your portfolio")
	assert.Contains(t, body, `name="name" value="Ada Lovelace"`)
	assert.Contains(t, body, `name="libraries.0.name" value="React"`)
	assert.Contains(t, body, `<option value="Intermediate" selected>`)
}

// TestEditPortfolioPost_AddRow verifies an add action appends a blank row
// and keeps what was typed.
func TestEditPortfolioPost_AddRow(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)

	form := validForm()
	form.Set("action", "add:programmingLanguages")
	rr := h.post("/editportfolio", form)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `name="programmingLanguages.0.name" value="Go"`)
	assert.Contains(t, body, `name="programmingLanguages.1.name"`)
	assert.Contains(t, body, `name="projects.0.projectName" value="Engine"`)
	assert.Zero(t, h.gw.submitCount())
}

// TestEditPortfolioPost_RemoveRow verifies a remove action drops exactly that row.
func TestEditPortfolioPost_RemoveRow(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)

	form := validForm()
	form.Set("frameworks.0.name", "Gin")
	form.Set("frameworks.0.fluency", "Beginner")
	form.Set("frameworks.1.name", "Echo")
	form.Set("frameworks.1.fluency", "Expert")
	form.Set("action", "remove:frameworks:0")
	body := h.post("/editportfolio", form).Body.String()

	assert.NotContains(t, body, `value="Gin"`)
	assert.Contains(t, body, `name="frameworks.0.name" value="Echo"`)
	assert.NotContains(t, body, `name="frameworks.1.name"`)
}

// TestEditPortfolioPost_RowEditKeepsHeading verifies an existing portfolio
// stays in edit mode across add and remove re-renders.
func TestEditPortfolioPost_RowEditKeepsHeading(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)
	h.gw.own = api.OwnPortfolioResult{Status: api.OwnPortfolioFound, Portfolio: portfolio.New()}
	assert.Contains(t, h.get("/editportfolio").Body.String(), `<input type="hidden" name="exists" value="true">`)

	form := validForm()
	form.Set("exists", "true")
	form.Set("action", "add:libraries")
	body := h.post("/editportfolio", form).Body.String()
	assert.Contains(t, body, "Edit your portfolio")
	assert.Contains(t, body, `name="exists" value="true"`)

	form = validForm()
	form.Set("action", "add:libraries")
	assert.Contains(t, h.post("/editportfolio", form).Body.String(), "Create your portfolio")
}

// TestEditPortfolioPost_ValuesKeptAsTyped verifies padding counts toward
// length rules and reaches the remote API unchanged.
func TestEditPortfolioPost_ValuesKeptAsTyped(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)

	form := validForm()
	form.Set("projects.0.projectDescription", "  engine  ")
	rr := h.post("/editportfolio", form)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, 1, h.gw.submitCount())
	assert.Equal(t, "  engine  ", h.gw.submitted[0].Projects[0].ProjectDescription)
}

// TestEditPortfolioPost_BadAction verifies malformed actions are rejected.
func TestEditPortfolioPost_BadAction(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)
	for _, action := range []string{"add:hobbies", "remove:projects:x", "explode"} {
		form := validForm()
		form.Set("action", action)
		assert.Equal(t, http.StatusBadRequest, h.post("/editportfolio", form).Code, action)
	}
	form := validForm()
	form.Set("action", "remove:projects:7")
	assert.Equal(t, http.StatusBadRequest, h.post("/editportfolio", form).Code)
}

// TestEditPortfolioPost_InvalidNeverReachesAPI verifies validation errors
// render next to their fields and nothing is sent.
func TestEditPortfolioPost_InvalidNeverReachesAPI(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)

	form := validForm()
	form.Set("name", "A")
	form.Set("projects.0.projectDescription", "short")
	rr := h.post("/editportfolio", form)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, msgFixErrors)
	assert.Contains(t, body, "Name must be at least 2 characters.")
	assert.Contains(t, body, "Project description must be at least 10 characters.")
	assert.Contains(t, body, `name="name" value="A"`)
	assert.Zero(t, h.gw.submitCount())
}

// TestEditPortfolioPost_ServerMessageShown verifies the remote API's message is shown verbatim.
func TestEditPortfolioPost_ServerMessageShown(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)
	h.gw.submitErr = &api.APIError{StatusCode: 400, Message: "Portfolio already locked"}

	rr := h.post("/editportfolio", validForm())
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "Portfolio already locked")
	assert.Contains(t, rr.Body.String(), `name="name" value="Ada Lovelace"`)
}

// TestEditPortfolioPost_Success verifies a valid submit is sent once and redirects.
func TestEditPortfolioPost_Success(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)

	rr := h.post("/editportfolio", validForm())
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))
	require.Equal(t, 1, h.gw.submitCount())
	sent := h.gw.submitted[0]
	assert.Equal(t, "Ada Lovelace", sent.Name)
	assert.Equal(t, []portfolio.Skill{{Name: "Go", Fluency: portfolio.FluencyAdvanced}}, sent.ProgrammingLanguages)
	assert.NotNil(t, sent.Libraries)

	flash, ok := h.srv.Browsers.TakeFlash(h.browser.ID)
	require.True(t, ok)
	assert.Equal(t, msgSubmitted, flash.Message)

	events, err := h.audit.List(context.Background(), auditStore.Filter{Action: auditDomain.ActionSubmit}, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

// TestRegister_Success verifies the form is cleared and a welcome email goes out.
func TestRegister_Success(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyAdminLoggedIn)

	rr := h.post("/admin/registerstudent", url.Values{"email": {"new@uni.test"}, "pass": {"secret1"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, msgRegistered)
	assert.NotContains(t, body, `value="new@uni.test"`)
	require.Len(t, h.gw.registered, 1)
	assert.Equal(t, "secret1", h.gw.registered[0].Password)

	sent := h.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"new@uni.test"}, sent[0].To)
	assert.Contains(t, sent[0].HTML, "http://portfolios.test/login")
}

// TestRegister_UnauthorizedClearsForm verifies a 401 shows its notice and clears the inputs.
func TestRegister_UnauthorizedClearsForm(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyAdminLoggedIn)
	h.gw.registerErr = api.ErrUnauthorized

	rr := h.post("/admin/registerstudent", url.Values{"email": {"new@uni.test"}, "pass": {"secret1"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, msgNotAuthorized)
	assert.NotContains(t, body, "new@uni.test")
	assert.NotContains(t, body, "secret1")
	assert.Empty(t, h.mail.Sent())
}

// TestRegister_ServerErrorKeepsValues verifies other failures show the server message
// and keep what was entered.
func TestRegister_ServerErrorKeepsValues(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyAdminLoggedIn)
	h.gw.registerErr = &api.APIError{StatusCode: 409, Message: "Email already registered"}

	rr := h.post("/admin/registerstudent", url.Values{"email": {"dup@uni.test"}, "pass": {"secret1"}})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Email already registered")
	assert.Contains(t, body, `value="dup@uni.test"`)
	assert.NotContains(t, body, "secret1", "password must not be echoed")
}

// TestRegister_InvalidNeverReachesAPI verifies local validation runs first.
func TestRegister_InvalidNeverReachesAPI(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyAdminLoggedIn)

	rr := h.post("/admin/registerstudent", url.Values{"email": {"not-an-email"}, "pass": {"123"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid email address.")
	assert.Contains(t, rr.Body.String(), "Password must be at least 6 characters.")
	assert.NotContains(t, rr.Body.String(), `value="123"`)
	assert.Empty(t, h.gw.registered)
}

// TestLogin_Success verifies the flag is raised and every tab is told.
func TestLogin_Success(t *testing.T) {
	h := newHarness(t)
	changes, cancel := h.reader.Subscribe(h.browser.ID)
	defer cancel()

	rr := h.post("/login", url.Values{"email": {"ada@engine.test"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))
	assert.True(t, h.reader.Read(context.Background(), h.browser.ID).LoggedIn)

	select {
	case c := <-changes:
		assert.Equal(t, session.KeyLoggedIn, c.Key)
		assert.True(t, c.Flags.LoggedIn)
	default:
		t.Fatal("no change published")
	}
}

// TestLogin_Admin verifies the admin form raises only the admin flag.
func TestLogin_Admin(t *testing.T) {
	h := newHarness(t)
	rr := h.post("/admin/login", url.Values{"email": {"root@uni.test"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin", rr.Header().Get("Location"))

	f := h.reader.Read(context.Background(), h.browser.ID)
	assert.True(t, f.AdminLoggedIn)
	assert.False(t, f.LoggedIn)
}

// TestLogin_InvalidCredentials verifies a rejected login keeps the flag down.
func TestLogin_InvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.gw.loginErr = api.ErrUnauthorized

	rr := h.post("/login", url.Values{"email": {"ada@engine.test"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid email or password.")
	assert.Contains(t, rr.Body.String(), `value="ada@engine.test"`)
	assert.False(t, h.reader.Read(context.Background(), h.browser.ID).LoggedIn)

	events, err := h.audit.List(context.Background(), auditStore.Filter{Action: auditDomain.ActionDenied}, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

// TestLogin_RemoteFailure verifies transport errors are reported as 502.
func TestLogin_RemoteFailure(t *testing.T) {
	h := newHarness(t)
	h.gw.loginErr = errors.New("dial tcp: connection refused")

	rr := h.post("/login", url.Values{"email": {"ada@engine.test"}, "password": {"pw"}})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.False(t, h.reader.Read(context.Background(), h.browser.ID).LoggedIn)
}

// TestLogout_ClearsFlag verifies logout drops the flag and redirects home.
func TestLogout_ClearsFlag(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)
	h.login(session.KeyAdminLoggedIn)

	rr := h.post("/logout", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	f := h.reader.Read(context.Background(), h.browser.ID)
	assert.False(t, f.LoggedIn)
	assert.True(t, f.AdminLoggedIn, "student logout leaves the admin flag")
}

// TestLogout_TransportErrorKeepsFlag verifies an unreachable API leaves the session up.
func TestLogout_TransportErrorKeepsFlag(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyLoggedIn)
	h.gw.logoutErr = errors.New("dial tcp: connection refused")

	rr := h.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.True(t, h.reader.Read(context.Background(), h.browser.ID).LoggedIn)

	flash, ok := h.srv.Browsers.TakeFlash(h.browser.ID)
	require.True(t, ok)
	assert.Equal(t, "error", flash.Kind)
}

// TestFlash_ShownOnce verifies a queued notice renders on the next page only.
func TestFlash_ShownOnce(t *testing.T) {
	h := newHarness(t)
	h.srv.Browsers.SetFlash(h.browser.ID, middleware.Flash{Kind: "success", Message: "Saved it"})

	assert.Contains(t, h.get("/about").Body.String(), "Saved it")
	assert.NotContains(t, h.get("/about").Body.String(), "Saved it")
}

// TestAdminAudit_ListsAndFilters verifies the audit page shows events and honours filters.
func TestAdminAudit_ListsAndFilters(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyAdminLoggedIn)
	ctx := context.Background()
	require.NoError(t, h.audit.Save(ctx, auditDomain.NewEvent("hash", auditDomain.CategorySession, auditDomain.ActionLogin).WithSubject("ada@engine.test")))
	require.NoError(t, h.audit.Save(ctx, auditDomain.NewEvent("hash", auditDomain.CategoryRegistration, auditDomain.ActionRegister).WithSubject("new@uni.test")))

	body := h.get("/admin/audit").Body.String()
	assert.Contains(t, body, "ada@engine.test")
	assert.Contains(t, body, "new@uni.test")

	body = h.get("/admin/audit?category=registration").Body.String()
	assert.NotContains(t, body, "ada@engine.test")
	assert.Contains(t, body, "new@uni.test")
	assert.Contains(t, body, `<option value="registration" selected>`)
}

// TestAdminPerf_Renders verifies the perf page renders with and without data.
func TestAdminPerf_Renders(t *testing.T) {
	h := newHarness(t)
	h.login(session.KeyAdminLoggedIn)

	rr := h.get("/admin/perf")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Slowest remote API calls")

	rr = h.getJSON("/admin/perf")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"Requests"`)
}
