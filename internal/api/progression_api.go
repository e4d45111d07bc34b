package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindwell-app/mindwell/internal/identity"
)

// ─── Progression Routes ─────────────────────────────────────────────────────

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	summary, err := s.deps.Progression.Summarize(userID, time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	cs, err := s.deps.Progression.Refresh(userID, false, time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	events, err := s.deps.Progression.History(userID, queryLimit(r, 50))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleAchievementCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": s.deps.Progression.Engine().Achievements(),
	})
}

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	summary, err := s.deps.Progression.Summarize(userID, time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"challenges": summary.Challenges})
}

func (s *Server) handleClaimChallenge(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	awarded, err := s.deps.Progression.Claim(userID, chi.URLParam(r, "id"), time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"xp_awarded": awarded})
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	tracks, err := s.deps.Progression.Tracks(userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

func (s *Server) handleTrackXP(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var req struct {
		XP int64 `json:"xp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	track, err := s.deps.Progression.AddTrackXP(userID, chi.URLParam(r, "name"), req.XP)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

// queryLimit parses a ?limit= query param with a fallback.
func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
