// Package api provides the local HTTP API the MindWell client talks to.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mindwell-app/mindwell/internal/app/assessment"
	"github.com/mindwell-app/mindwell/internal/app/community"
	"github.com/mindwell-app/mindwell/internal/app/mindfulness"
	"github.com/mindwell-app/mindwell/internal/app/mood"
	"github.com/mindwell-app/mindwell/internal/app/progression"
	"github.com/mindwell-app/mindwell/internal/domain"
	"github.com/mindwell-app/mindwell/internal/health"
	"github.com/mindwell-app/mindwell/internal/identity"
)

// Deps is everything the server needs wired in.
type Deps struct {
	Progression *progression.Service
	Mood        *mood.Service
	Assessment  *assessment.Service
	Mindfulness *mindfulness.Service
	Community   *community.Service
	Signer      *identity.Signer
	Health      *health.Checker
	UserID      string
	CORSOrigins []string
	Metrics     bool
	Log         *zap.Logger
}

// Server is the MindWell HTTP API server.
type Server struct {
	deps Deps
}

// NewServer creates a new API server.
func NewServer(deps Deps) *Server {
	return &Server{deps: deps}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware(s.deps.CORSOrigins))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"version": "0.1.0",
			})
		})

		// Session bootstrap: the local client exchanges nothing for
		// this install's token. The API only binds to loopback.
		r.Post("/session", s.handleSession)

		// Everything else requires the session token.
		r.Group(func(r chi.Router) {
			r.Use(s.deps.Signer.Middleware)

			r.Route("/progression", func(r chi.Router) {
				r.Get("/summary", s.handleSummary)
				r.Post("/refresh", s.handleRefresh)
				r.Get("/history", s.handleHistory)
				r.Get("/achievements", s.handleAchievementCatalog)
				r.Get("/challenges", s.handleChallenges)
				r.Post("/challenges/{id}/claim", s.handleClaimChallenge)
				r.Get("/tracks", s.handleTracks)
				r.Post("/tracks/{name}/xp", s.handleTrackXP)
			})

			r.Route("/moods", func(r chi.Router) {
				r.Post("/", s.handleLogMood)
				r.Get("/", s.handleListMoods)
			})

			r.Route("/assessments", func(r chi.Router) {
				r.Post("/", s.handleSubmitAssessment)
				r.Get("/", s.handleListAssessments)
			})

			r.Route("/mindfulness", func(r chi.Router) {
				r.Post("/sessions", s.handleCompleteSession)
				r.Get("/sessions", s.handleListSessions)
			})

			r.Route("/community", func(r chi.Router) {
				r.Get("/feed", s.handleFeed)
				r.Post("/posts", s.handleCreatePost)
				r.Post("/posts/{id}/react", s.handleReact)
			})
		})
	})

	if s.deps.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	statuses := s.deps.Health.Statuses()
	code := http.StatusOK
	status := "ok"
	if !s.deps.Health.IsHealthy() {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": statuses,
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token, err := s.deps.Signer.Mint(s.deps.UserID, time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":   token,
		"user_id": s.deps.UserID,
	})
}

// writeDomainError maps sentinel errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrTrackNotFound),
		errors.Is(err, domain.ErrPostNotFound),
		errors.Is(err, domain.ErrUnknownChallenge):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrMoodAlreadyLogged),
		errors.Is(err, domain.ErrChallengeExpired):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrChallengeIncomplete),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNegativeXP),
		errors.Is(err, domain.ErrBadMoodScore),
		errors.Is(err, domain.ErrBadAnswerCount),
		errors.Is(err, domain.ErrBadAnswerValue),
		errors.Is(err, domain.ErrBadDuration):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoUser), errors.Is(err, domain.ErrBadToken):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		s.deps.Log.Error("request failed", zap.Error(err))
	}
	writeError(w, status, err.Error())
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the local client. An empty or
// "*" origin list allows everything; otherwise only listed origins are
// echoed back.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
