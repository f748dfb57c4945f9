// Package api serves the hunter over HTTP: starting hunts, reading their
// summaries, and reading the requester's leads.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lead-hunter/internal/common/config"
	"lead-hunter/internal/common/logger"
	"lead-hunter/internal/models"
)

// RequesterHeader carries the authenticated user id, set by the gateway in
// front of this service.
const RequesterHeader = "X-User-ID"

type HuntSubmitter interface {
	Submit(query models.SearchQuery) (string, error)
}

type SummaryReader interface {
	Get(ctx context.Context, huntID string) (*models.HuntSummary, error)
}

type LeadReader interface {
	ListByCreator(ctx context.Context, createdBy string, limit int) ([]models.Lead, error)
	StatsByCreator(ctx context.Context, createdBy string) (*models.LeadStats, error)
}

// Check is one dependency probe for /ready.
type Check func(ctx context.Context) error

type Options struct {
	Hunts     HuntSubmitter
	Summaries SummaryReader
	Leads     LeadReader
	Config    *config.Config
	// Database probes the primary store for /health.
	Database Check
	Checks   map[string]Check
	Logger   logger.Logger
	Metrics  http.Handler
	Clock    func() time.Time
}

type Server struct {
	hunts     HuntSubmitter
	summaries SummaryReader
	leads     LeadReader
	cfg       *config.Config
	database  Check
	checks    map[string]Check
	log       logger.Logger
	metrics   http.Handler
	now       func() time.Time
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	return &Server{
		hunts:     opts.Hunts,
		summaries: opts.Summaries,
		leads:     opts.Leads,
		cfg:       cfg,
		database:  opts.Database,
		checks:    opts.Checks,
		log:       log.Named("api"),
		metrics:   metrics,
		now:       now,
	}
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleStatus)
	r.Get("/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Group(func(r chi.Router) {
		r.Use(requireRequester)
		r.Post("/hunt", s.handleStartHunt)
		r.Get("/hunts/{id}", s.handleGetHunt)
		r.Get("/leads", s.handleListLeads)
		r.Get("/stats", s.handleStats)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		if r.URL.Path == "/metrics" {
			return
		}
		s.log.Debug("http request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		})
	})
}

type requesterKey struct{}

func requireRequester(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester := r.Header.Get(RequesterHeader)
		if requester == "" {
			writeError(w, http.StatusUnauthorized, "", RequesterHeader+" header is required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requesterKey{}, requester)))
	})
}

func requesterFrom(ctx context.Context) string {
	v, _ := ctx.Value(requesterKey{}).(string)
	return v
}
