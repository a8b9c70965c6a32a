package web

import (
	"net/http"
	"strings"
	"time"

	"brochure/internal/adapters/api"
	"brochure/internal/adapters/http/perf"
	"brochure/internal/application/orchestrators"
	"brochure/internal/domain/portfolio"
	"brochure/internal/domain/session"
)

// Registration notices
const (
	msgRegistered     = "Student registered successfully!"
	msgNotAuthorized  = "You are not authorized to register a student."
	msgRegisterFailed = "Failed to register student."
)

// handleAdmin renders the admin home (GET /admin).
func (s *server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, session.GateAdmin, "Admin") {
		return
	}
	s.render(w, r, http.StatusOK, "admin.html", view{Title: "Admin"})
}

// registerData is the registration form's template data.
// The password is never written back into the page.
type registerData struct {
	Email  string
	Errors portfolio.FieldErrors
}

// handleRegisterPage renders a blank registration form (GET /admin/registerstudent).
func (s *server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, session.GateAdmin, "Register Student") {
		return
	}
	s.render(w, r, http.StatusOK, "register.html", view{Title: "Register Student", Data: registerData{}})
}

// handleRegister creates a student login (POST /admin/registerstudent).
// PRE: isAdminLoggedIn flag set
// POST: success and 401 both render a blank form with their own notice
// POST: any other failure keeps the entered email, never the password, and shows the server's message
func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, session.GateAdmin, "Register Student") {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	reg := portfolio.Registration{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("pass"),
	}

	outcome, err := orchestrators.ExecuteRegisterStudent(r.Context(), orchestrators.RegisterStudentInput{
		Requester:    s.requester(r),
		Registration: reg,
	}, orchestrators.RegisterStudentDeps{
		Gateway:     s.Gateway,
		EmailSender: s.EmailSender,
		LoginURL:    strings.TrimRight(s.PublicURL, "/") + "/login",
		AuditStore:  s.AuditStore,
	})

	v := view{Title: "Register Student", Data: registerData{}}
	status := http.StatusOK
	if fields, ok := portfolio.AsValidationError(err); ok {
		status = http.StatusUnprocessableEntity
		v.Data = registerData{Email: reg.Email, Errors: fields}
	} else if err != nil {
		status = http.StatusBadGateway
		v.Flash = errorNotice(api.MessageOf(err, msgRegisterFailed))
		v.Data = registerData{Email: reg.Email}
	} else if outcome == orchestrators.Unauthorized {
		status = http.StatusUnauthorized
		v.Flash = errorNotice(msgNotAuthorized)
	} else {
		v.Flash = successNotice(msgRegistered)
	}
	s.render(w, r, status, "register.html", v)
}

// perfWindow is how far back the perf page looks.
const perfWindow = 15 * time.Minute

// handleAdminPerf renders request, upstream and query timings (GET /admin/perf).
func (s *server) handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, session.GateAdmin, "Performance") {
		return
	}
	var snap perf.Snapshot
	if s.Collector != nil {
		snap = s.Collector.Snapshot(time.Now().Add(-perfWindow), 10)
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	s.render(w, r, http.StatusOK, "perf.html", view{Title: "Performance", Data: snap})
}
