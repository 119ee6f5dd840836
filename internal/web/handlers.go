package web

import (
	"net/http"
	"strings"

	"github.com/lbianche/schooladmin/internal/models"
	"github.com/lbianche/schooladmin/internal/school"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Store().GetDashboard(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", d, nil)
}

// searchData is what the search page renders. Results stays nil until the
// user submits a term, so the page can distinguish "no query yet" from
// "query with no hits".
type searchData struct {
	Term    string
	Results *models.SearchResults
}

// handleSearch fans one keyword out over teachers, courses, editions and
// participants. A blank term renders the empty search form.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	data := searchData{Term: term}

	if term != "" {
		results, err := s.service.Store().Search(r.Context(), term, school.SearchLimit)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		data.Results = results
	}
	s.render(w, r, http.StatusOK, "search.html", "Search", data, nil)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.Store().ListAudit(r.Context(), school.AuditLimit)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "audit.html", "Audit trail", entries, nil)
}

// flashErrors builds the red banner for a rejected form.
func flashErrors(msgs []string) *Flash {
	return &Flash{Kind: "danger", Message: "Please correct the following:", Details: msgs}
}

func flashWarning(msg string) *Flash {
	return &Flash{Kind: "warning", Message: msg}
}
