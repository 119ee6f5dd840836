// Package web provides the HTTP server and page handlers of the school
// administration application. Every page is rendered server-side from the
// embedded templates; mutations are plain form POSTs that redirect back to
// the list they changed.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lbianche/schooladmin/internal/config"
	"github.com/lbianche/schooladmin/internal/school"
	"github.com/lbianche/schooladmin/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the administration pages.
type Server struct {
	service   *school.Service
	cfg       *config.Config
	router    *chi.Mux
	server    *http.Server
	templates map[string]*template.Template
}

// NewServer builds the server, parses all page templates and wires the
// routes. A template parse failure is a packaging error and is fatal.
func NewServer(service *school.Service, cfg *config.Config) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		service:   service,
		cfg:       cfg,
		router:    chi.NewRouter(),
		templates: templates,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("static files missing from build: %v", err))
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/", s.handleDashboard)
	s.router.Get("/search", s.handleSearch)
	s.router.Get("/audit", s.handleAudit)

	s.router.Route("/teachers", func(r chi.Router) {
		r.Get("/", s.handleTeacherList)
		r.Get("/new", s.handleTeacherNew)
		r.Post("/new", s.handleTeacherCreate)
		r.Get("/{cf}/edit", s.handleTeacherEdit)
		r.Post("/{cf}/edit", s.handleTeacherUpdate)
		r.Get("/{cf}/delete", s.handleTeacherDeleteConfirm)
		r.Post("/{cf}/delete", s.handleTeacherDelete)
		r.Post("/{cf}/phones", s.handleTeacherPhones)
	})

	s.router.Route("/courses", func(r chi.Router) {
		r.Get("/", s.handleCourseList)
		r.Post("/", s.handleCourseMutate)
	})
	s.router.Route("/editions", func(r chi.Router) {
		r.Get("/", s.handleEditionList)
		r.Post("/", s.handleEditionMutate)
	})
	s.router.Route("/participants", func(r chi.Router) {
		r.Get("/", s.handleParticipantList)
		r.Post("/", s.handleParticipantMutate)
	})

	s.router.Route("/qualifications", func(r chi.Router) {
		r.Get("/", s.handleQualificationList)
		r.Post("/", s.handleQualificationMutate)
	})
	s.router.Route("/enrollments", func(r chi.Router) {
		r.Get("/", s.handleEnrollmentList)
		r.Post("/", s.handleEnrollmentMutate)
	})

	s.router.Handle("/metrics", promhttp.Handler())
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// clientIP is what the audit trail records for a mutation. RealIP middleware
// has already folded X-Real-IP / X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	return r.RemoteAddr
}
