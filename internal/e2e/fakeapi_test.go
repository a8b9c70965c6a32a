package e2e_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"

	"brochure/internal/domain/portfolio"
)

const (
	studentEmail = "ada@engine.test"
	adminEmail   = "root@uni.test"
	testPassword = "secret1"
	sessionName  = "connect.sid"
)

// fakeAPI mimics the remote student API: Basic-auth logins that set a session
// cookie, cookie-authenticated portfolio calls and a public directory.
type fakeAPI struct {
	mu         sync.Mutex
	sessions   map[string]string // cookie value -> email
	admins     map[string]bool   // cookie value -> admin session
	portfolios map[string]portfolio.Portfolio
	students   []portfolio.Student
	registered []string
	denyAdmin  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		sessions:   map[string]string{},
		admins:     map[string]bool{},
		portfolios: map[string]portfolio.Portfolio{},
		students: []portfolio.Student{
			{ID: "1", Name: "Grace Hopper", Email: "grace@navy.test",
				ProgrammingLanguages: []portfolio.Skill{{Name: "COBOL", Fluency: portfolio.FluencyExpert}}},
			{ID: "2", Name: "Alan Turing", Email: "alan@bletchley.test",
				Frameworks: []portfolio.Skill{{Name: "Django", Fluency: portfolio.FluencyBeginner}}},
		},
	}
}

func (f *fakeAPI) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /fetchStudents", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.students)
	})
	mux.HandleFunc("GET /login", f.login(false))
	mux.HandleFunc("GET /adminlogin", f.login(true))
	mux.HandleFunc("GET /logout", f.logout)
	mux.HandleFunc("GET /adminlogout", f.logout)
	mux.HandleFunc("GET /fetchPortfolio", func(w http.ResponseWriter, r *http.Request) {
		email, ok := f.session(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Not logged in"})
			return
		}
		f.mu.Lock()
		p, found := f.portfolios[email]
		f.mu.Unlock()
		if !found {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, p)
	})
	mux.HandleFunc("POST /submitportfolio", func(w http.ResponseWriter, r *http.Request) {
		email, ok := f.session(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Not logged in"})
			return
		}
		var p portfolio.Portfolio
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid portfolio"})
			return
		}
		f.mu.Lock()
		f.portfolios[email] = p
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"msg": "Portfolio saved"})
	})
	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionName)
		f.mu.Lock()
		defer f.mu.Unlock()
		if err != nil || !f.admins[c.Value] || f.denyAdmin {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Unauthorized"})
			return
		}
		var creds struct {
			Email string `json:"email"`
			Pass  string `json:"pass"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		f.registered = append(f.registered, creds.Email)
		writeJSON(w, http.StatusCreated, map[string]string{"msg": "Registered"})
	})
	return httptest.NewServer(mux)
}

func (f *fakeAPI) login(admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, pass, ok := r.BasicAuth()
		want := studentEmail
		if admin {
			want = adminEmail
		}
		if !ok || !strings.EqualFold(email, want) || pass != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Invalid credentials"})
			return
		}
		sid := uuid.NewString()
		f.mu.Lock()
		f.sessions[sid] = email
		f.admins[sid] = admin
		f.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: sessionName, Value: sid, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]string{"msg": "Logged in"})
	}
}

func (f *fakeAPI) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionName); err == nil {
		f.mu.Lock()
		delete(f.sessions, c.Value)
		delete(f.admins, c.Value)
		f.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Logged out"})
}

func (f *fakeAPI) session(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionName)
	if err != nil {
		return "", false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.sessions[c.Value]
	return email, ok
}

func (f *fakeAPI) stored(email string) (portfolio.Portfolio, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.portfolios[email]
	return p, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
