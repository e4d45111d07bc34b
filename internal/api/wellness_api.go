package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindwell-app/mindwell/internal/domain"
	"github.com/mindwell-app/mindwell/internal/identity"
)

// ─── Mood Routes ────────────────────────────────────────────────────────────

func (s *Server) handleLogMood(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var req struct {
		Score int      `json:"score"`
		Tags  []string `json:"tags"`
		Note  string   `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := s.deps.Mood.Log(userID, req.Score, req.Tags, req.Note, time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListMoods(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	entries, err := s.deps.Mood.Recent(userID, queryLimit(r, 30))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moods": entries})
}

// ─── Assessment Routes ──────────────────────────────────────────────────────

func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var req struct {
		Kind    string `json:"kind"`
		Answers []int  `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := s.deps.Assessment.Submit(userID, domain.AssessmentKind(req.Kind), req.Answers, time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	results, err := s.deps.Assessment.Recent(userID, queryLimit(r, 20))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": results})
}

// ─── Mindfulness Routes ─────────────────────────────────────────────────────

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var req struct {
		Kind    string `json:"kind"`
		Minutes int    `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := s.deps.Mindfulness.Complete(userID, req.Kind, req.Minutes, time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	sessions, err := s.deps.Mindfulness.Recent(userID, queryLimit(r, 20))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// ─── Community Routes ───────────────────────────────────────────────────────

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.deps.Community.Feed(queryLimit(r, 50))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.CurrentUser(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	post, err := s.deps.Community.Post(userID, req.Body, time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleReact(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Community.React(chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
