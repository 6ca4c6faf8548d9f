// Package server renders the CineTrivia pages and serves the JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abdulachik/cinetrivia/internal/actions"
	"github.com/abdulachik/cinetrivia/internal/health"
	"github.com/abdulachik/cinetrivia/internal/supersede"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"home", "detail", "funfact", "error"}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	svc       *actions.Service
	health    *health.Health
	tracker   *supersede.Tracker
	templates map[string]*template.Template
	cfg       Config
}

// Config holds configuration for the HTTP server.
type Config struct {
	Service *actions.Service
	Health  *health.Health
	Tracker *supersede.Tracker

	CORSAllowedOrigins []string
	RateLimitRequests  int // per client IP on AI routes; 0 disables
	RateLimitWindow    time.Duration
}

// New creates a server and parses its templates.
func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("service is required")
	}
	if cfg.Health == nil {
		cfg.Health = health.New()
	}
	if cfg.Tracker == nil {
		cfg.Tracker = supersede.NewTracker()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Server{
		svc:       cfg.Service,
		health:    cfg.Health,
		tracker:   cfg.Tracker,
		templates: templates,
		cfg:       cfg,
	}, nil
}

// posterURL trusts web URLs and image data URIs. Anything else is left to
// html/template, which replaces unsafe schemes with "#ZgotmplZ".
func posterURL(s string) any {
	lower := strings.ToLower(s)
	for _, prefix := range []string{"https://", "http://", "data:image/"} {
		if strings.HasPrefix(lower, prefix) {
			return template.URL(s)
		}
	}
	return s
}

func parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"ratingText": func(r float64) string { return fmt.Sprintf("%.1f/10", r) },
		"posterURL":  posterURL,
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Session)

		r.Get("/", s.handleHome)
		r.Get("/movies/{id}", s.handleMovie)
		r.Post("/movies/{id}/rating", s.handleRateForm)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit())
			r.Post("/recommend", s.handleRecommendForm)
			r.Get("/movies/{id}/funfact", s.handleFunFactPage)
		})
	})

	r.Route("/api", func(r chi.Router) {
		if len(s.cfg.CORSAllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   s.cfg.CORSAllowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", WidgetHeader},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		r.Use(Session)

		r.Get("/options", s.apiOptions)
		r.Get("/movies", s.apiMovies)
		r.Get("/movies/{id}", s.apiMovie)
		r.Get("/movies/{id}/rating", s.apiRating)
		r.Put("/movies/{id}/rating", s.apiRate)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit())
			r.Post("/recommendations", s.apiRecommend)
			r.Post("/funfacts", s.apiFunFact)
			r.Post("/posters", s.apiGeneratePoster)
			r.Get("/movies/{id}/poster", s.apiMoviePoster)
		})
	})

	return r
}

func (s *Server) rateLimit() func(http.Handler) http.Handler {
	if s.cfg.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.cfg.RateLimitRequests,
		s.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
		}),
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s.health.Check(ctx)
	report := s.health.Snapshot()

	status := http.StatusOK
	if report.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
