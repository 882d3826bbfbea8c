// Package api provides the HTTP server for LifeIO.
// Every /api route except health requires a verified access token and is
// scoped to the token's user.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lifeio/lifeio/internal/app/activity"
	"github.com/lifeio/lifeio/internal/app/finance"
	"github.com/lifeio/lifeio/internal/app/sleep"
	"github.com/lifeio/lifeio/internal/app/stats"
	"github.com/lifeio/lifeio/internal/domain"
	"github.com/lifeio/lifeio/internal/health"
	"github.com/lifeio/lifeio/internal/security"
)

// Error types carried in the error body.
const (
	errTypeValidation = "validation_error"
	errTypeStore      = "store_error"
	errTypeAuth       = "auth_error"
)

// DefaultCookieName is the session cookie checked when no bearer token is sent.
const DefaultCookieName = "sb-access-token"

// TokenVerifier turns a raw access token into claims.
type TokenVerifier interface {
	Verify(token string) (security.Claims, error)
}

// Services are the application services the API exposes.
type Services struct {
	Activities *activity.Service
	Stats      *stats.Service
	Sleep      *sleep.Service
	Finance    *finance.Service
}

// Server is the LifeIO HTTP API server.
type Server struct {
	svc            Services
	verifier       TokenVerifier
	log            zerolog.Logger
	health         *health.Checker
	metricsEnabled bool
	corsOrigins    []string
	rateLimit      int
	rateWindow     time.Duration
	cookieName     string
	allowedEmail   string
}

// NewServer creates a new API server.
func NewServer(svc Services, verifier TokenVerifier, log zerolog.Logger) *Server {
	return &Server{
		svc:        svc,
		verifier:   verifier,
		log:        log.With().Str("component", "api").Logger(),
		cookieName: DefaultCookieName,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth sets the checker reported by /api/health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// SetCORSOrigins restricts allowed origins. Empty allows any origin.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// SetRateLimit enables per-IP rate limiting on /api. n <= 0 disables it.
func (s *Server) SetRateLimit(n int, window time.Duration) {
	s.rateLimit, s.rateWindow = n, window
}

// SetCookieName overrides the session cookie name.
func (s *Server) SetCookieName(name string) {
	if name != "" {
		s.cookieName = name
	}
}

// SetAllowedEmail restricts access to tokens carrying this email.
func (s *Server) SetAllowedEmail(email string) { s.allowedEmail = email }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.requestLogger)
	r.Use(metricsMiddleware)
	r.Use(s.corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.LimitByIP(s.rateLimit, s.rateWindow))
		}

		r.Get("/health", s.handleHealth)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)

			r.Post("/activities", s.handleCreateActivity)
			r.Get("/activities", s.handleListActivities)
			r.Delete("/activities/{id}", s.handleDeleteActivity)

			r.Get("/stats/summary", s.handleSummary)
			r.Get("/stats/skills", s.handleSkills)
			r.Get("/stats/finance", s.handleFinanceSummary)

			r.Post("/sleep", s.handleCreateSleep)
			r.Get("/sleep", s.handleListSleep)
			r.Delete("/sleep/{id}", s.handleDeleteSleep)

			r.Post("/finance", s.handleUpsertFinance)
			r.Get("/finance", s.handleListFinance)
			r.Delete("/finance/{id}", s.handleDeleteFinance)
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}

// ─── Health ─────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}
	statuses := s.health.Statuses()
	if len(statuses) == 0 {
		statuses = s.health.RunOnce(r.Context())
	}

	status, code := "ok", http.StatusOK
	for _, st := range statuses {
		if !st.Healthy {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": statuses,
	})
}

// ─── Responses ──────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeTypedError(w, status, "error", msg)
}

func writeTypedError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    typ,
		},
	})
}

// writeServiceError maps a service error onto a status code.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrValidation) {
		writeTypedError(w, http.StatusBadRequest, errTypeValidation, err.Error())
		return
	}
	if errors.Is(err, domain.ErrLockTimeout) {
		w.Header().Set("Retry-After", "1")
		writeTypedError(w, http.StatusServiceUnavailable, errTypeStore, err.Error())
		return
	}
	s.log.Error().Err(err).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("request failed")
	writeTypedError(w, http.StatusInternalServerError, errTypeStore, err.Error())
}
