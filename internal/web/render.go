package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/lbianche/schooladmin/internal/logging"
)

//go:embed templates
var templateFiles embed.FS

// Flash is the outcome banner shown at the top of a page. Kind is one of
// "success", "warning", "danger".
type Flash struct {
	Kind    string
	Message string
	Details []string
}

// pageData is what every template receives.
type pageData struct {
	AppName string
	Title   string
	Flash   *Flash
	Data    any
}

var templateFuncs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"grade": func(g *int) string {
		if g == nil {
			return "—"
		}
		return fmt.Sprintf("%d", *g)
	},
	"avg": func(f *float64) string {
		if f == nil {
			return "—"
		}
		return fmt.Sprintf("%.1f", *f)
	},
}

// parseTemplates builds one template per page, each paired with the shared
// layout. Pages define a "content" block that the layout includes.
func parseTemplates() (map[string]*template.Template, error) {
	pages := []string{
		"dashboard.html",
		"teachers.html",
		"teacher_form.html",
		"teacher_delete.html",
		"courses.html",
		"editions.html",
		"participants.html",
		"qualifications.html",
		"enrollments.html",
		"search.html",
		"audit.html",
		"error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(
			templateFiles,
			"templates/layout.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = t
	}
	return templates, nil
}

// render writes a full page. Render failures end up as a bare 500: by the
// time they occur there is no template left to present them with.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any, flash *Flash) {
	t, ok := s.templates[page]
	if !ok {
		logging.FromContext(r.Context()).Error("unknown template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := t.ExecuteTemplate(w, "layout.html", pageData{
		AppName: s.service.AppName(),
		Title:   title,
		Flash:   flash,
		Data:    data,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("template render failed", "page", page, "error", err)
	}
}

// redirect is the single place the redirect-after-POST pattern is applied:
// mutation handlers compute a target URL and hand it here.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
