package web

import (
	"net/http"

	"github.com/lbianche/schooladmin/internal/logging"
)

// renderError shows the error page for a failed database operation. The full
// error is always logged; what the browser sees depends on debug mode.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path, "method", r.Method, "error", err)

	s.render(w, r, http.StatusInternalServerError, "error.html", "Error",
		s.service.UserErrorMessage(err), nil)
}
