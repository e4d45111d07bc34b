// Package mindfulness records completed breathing and meditation
// sessions. Minutes feed the lifetime and per-day counters the
// progression engine evaluates.
package mindfulness

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindwell-app/mindwell/internal/app/progression"
	"github.com/mindwell-app/mindwell/internal/domain"
	"github.com/mindwell-app/mindwell/internal/infra/metrics"
	"github.com/mindwell-app/mindwell/internal/infra/sqlite"
)

// XPPerMinute is the XP credited per mindfulness minute.
const XPPerMinute = 2

// maxSessionMinutes rejects obviously bogus durations.
const maxSessionMinutes = 8 * 60

type Service struct {
	db   *sqlite.DB
	prog *progression.Service
	log  *zap.Logger
}

func NewService(db *sqlite.DB, prog *progression.Service, log *zap.Logger) *Service {
	return &Service{db: db, prog: prog, log: log}
}

// CompleteResult reports a recorded session plus the progression it moved.
type CompleteResult struct {
	Session     domain.MindfulnessSession `json:"session"`
	Progression progression.Changeset     `json:"progression"`
}

// Complete records a finished session and credits its minutes.
func (s *Service) Complete(userID, kind string, minutes int, now time.Time) (CompleteResult, error) {
	if minutes <= 0 || minutes > maxSessionMinutes {
		return CompleteResult{}, fmt.Errorf("%w: %d minutes", domain.ErrBadDuration, minutes)
	}
	if kind == "" {
		kind = "breathing"
	}

	session := domain.MindfulnessSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        kind,
		Minutes:     minutes,
		CompletedAt: now,
	}
	if err := s.db.InsertSession(session); err != nil {
		return CompleteResult{}, fmt.Errorf("record session: %w", err)
	}
	metrics.MindfulnessMinutes.Add(float64(minutes))

	cs, err := s.prog.AwardXP(userID, domain.XPMindfulness, int64(minutes)*XPPerMinute, session.ID, false, now)
	if err != nil {
		return CompleteResult{}, err
	}
	s.log.Info("mindfulness session completed",
		zap.String("kind", kind),
		zap.Int("minutes", minutes))

	return CompleteResult{Session: session, Progression: cs}, nil
}

// Recent returns the latest sessions, newest first.
func (s *Service) Recent(userID string, limit int) ([]domain.MindfulnessSession, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.db.ListSessions(userID, limit)
}
