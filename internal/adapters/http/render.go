package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"brochure/internal/adapters/http/middleware"
	"brochure/internal/application/listutil"
	"brochure/internal/application/orchestrators"
	"brochure/internal/domain/portfolio"
	"brochure/internal/domain/session"
)

//go:embed templates/*.html static content
var assets embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
)

// view is the data every page template receives. Page-specific data is in Data.
type view struct {
	Title string
	Flags session.Flags
	Flash *middleware.Flash
	Data  any
}

// baseFuncs are shared by every page. csrfField is replaced per request.
var baseFuncs = template.FuncMap{
	"csrfField":  func() template.HTML { return "" },
	"skillNames": portfolio.SkillNames,
	"fluencies":  func() []portfolio.Fluency { return portfolio.FluencyLevels },
	"add":        func(a, b int) int { return a + b },
	"list":       func(items ...any) []any { return items },
	"fieldError": func(errs portfolio.FieldErrors, format string, args ...any) string {
		return errs[fmt.Sprintf(format, args...)]
	},
	"sortHref": func(p listutil.ListParams, column string) template.URL {
		return template.URL("/?" + p.SortQuery(column))
	},
	"pageHref": func(p listutil.ListParams, n int) template.URL {
		return template.URL("/?" + p.PageQuery(n))
	},
	"sortMark": func(p listutil.ListParams, column string) string {
		if p.Sort != column {
			return ""
		}
		if p.Dir == listutil.DirDesc {
			return "▼"
		}
		return "▲"
	},
	"formatTime": func(t time.Time) string { return t.Local().Format("2006-01-02 15:04:05") },
	"ms":         func(v float64) string { return fmt.Sprintf("%.1f ms", v) },
}

// pageNames lists the templates rendered inside layout.html.
var pageNames = []string{
	"students.html", "portfolio.html", "dashboard.html", "editor.html", "about.html",
	"login.html", "prompt.html", "admin.html", "register.html", "audit.html", "perf.html",
	"error.html",
}

// parsePages parses each page together with the layout and shared partials. The templates are
// embedded, so a parse error is a build defect and panics.
func parsePages() map[string]*template.Template {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.New("layout.html").Funcs(baseFuncs).
			ParseFS(assets, "templates/layout.html", "templates/partials.html", "templates/"+name))
	}
	return pages
}

func renderAbout() template.HTML {
	md, err := assets.ReadFile("content/about.md")
	if err != nil {
		panic(err)
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert(md, &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(string(md)))
	}
	return template.HTML(buf.String())
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err)
	}
}

// browser returns the visiting browser. Identify always sets one; requests
// built without it get a throwaway browser.
func (s *server) browser(r *http.Request) middleware.Browser {
	if b, ok := middleware.BrowserFromContext(r.Context()); ok {
		return b
	}
	b, _ := s.Browsers.Open("")
	return b
}

// requester describes the current browser to orchestrators.
func (s *server) requester(r *http.Request) orchestrators.Requester {
	b := s.browser(r)
	return orchestrators.Requester{
		BrowserID:   b.ID,
		BrowserHash: s.Hasher.Hash(b.ID),
		Jar:         b.Jar,
		IPAddress:   middleware.ClientIP(r),
		UserAgent:   r.UserAgent(),
	}
}

// flags reads the current browser's session flags.
func (s *server) flags(r *http.Request) session.Flags {
	return s.Flags.Read(r.Context(), s.browser(r).ID)
}

// flash queues a notice for the next page this browser renders.
func (s *server) flash(r *http.Request, kind, message string) {
	s.Browsers.SetFlash(s.browser(r).ID, middleware.Flash{Kind: kind, Message: message})
}

// redirectWithFlash queues a notice and redirects with 303.
func (s *server) redirectWithFlash(w http.ResponseWriter, r *http.Request, to, kind, message string) {
	s.flash(r, kind, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// render executes page inside the layout. A pending flash is consumed; an
// explicit notice passed in v.Flash wins over it.
func (s *server) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	b := s.browser(r)
	if f, ok := s.Browsers.TakeFlash(b.ID); ok && v.Flash == nil {
		v.Flash = &f
	}
	v.Flags = s.Flags.Read(r.Context(), b.ID)

	base, ok := s.pages[page]
	if !ok {
		internalError(w, fmt.Errorf("unknown page %q", page))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	tpl.Funcs(template.FuncMap{
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
	})

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, v); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", page, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// gate renders the log-in prompt and returns false when the browser's flags
// do not allow g. The gated content is never rendered in that case.
func (s *server) gate(w http.ResponseWriter, r *http.Request, g session.Gate, title string) bool {
	if s.flags(r).Allows(g) {
		return true
	}
	slog.Debug("view_gated", "path", r.URL.Path, "gate", g.String())
	if wantsJSON(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return false
	}
	loginPath := "/login"
	if g == session.GateAdmin {
		loginPath = "/admin/login"
	}
	s.render(w, r, http.StatusOK, "prompt.html", view{
		Title: title,
		Data:  map[string]any{"LoginPath": loginPath, "Admin": g == session.GateAdmin},
	})
	return false
}
