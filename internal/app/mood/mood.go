// Package mood implements the daily mood check-in. Logging a mood is
// the activity that counts toward the daily streak, so a successful log
// triggers a qualifying progression refresh.
package mood

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

// XPPerLog is the XP credited for the first mood check-in of a day.
const XPPerLog = 10

type Service struct {
	db   *sqlite.DB
	prog *progression.Service
	log  *zap.Logger
}

func NewService(db *sqlite.DB, prog *progression.Service, log *zap.Logger) *Service {
	return &Service{db: db, prog: prog, log: log}
}

// LogResult reports a recorded check-in plus the progression it moved.
type LogResult struct {
	Entry       domain.MoodEntry      `json:"entry"`
	Progression progression.Changeset `json:"progression"`
}

// Log records today's mood. A second log on the same calendar day
// returns ErrMoodAlreadyLogged and awards nothing.
func (s *Service) Log(userID string, score int, tags []string, note string, now time.Time) (LogResult, error) {
	if score < 1 || score > 5 {
		return LogResult{}, fmt.Errorf("%w: %d", domain.ErrBadMoodScore, score)
	}

	entry := domain.MoodEntry{
		ID:       uuid.NewString(),
		UserID:   userID,
		Score:    score,
		Tags:     tags,
		Note:     note,
		LoggedAt: now,
	}

	// The row, the per-log XP, and the streak advance commit together;
	// a failed cycle leaves nothing behind, so a retry re-runs clean
	// instead of hitting the one-per-day rule against an orphan row.
	cs, err := s.prog.Apply(userID, progression.Activity{
		Source:     domain.XPMoodLog,
		XP:         XPPerLog,
		Ref:        entry.ID,
		Qualifying: true,
		Mood:       &entry,
	}, now)
	if err != nil {
		return LogResult{}, err
	}
	metrics.MoodsLogged.Inc()
	s.log.Info("mood logged",
		zap.Int("score", score),
		zap.Int("streak", cs.Streak.NewStreakCount))

	return LogResult{Entry: entry, Progression: cs}, nil
}

// Recent returns the latest mood entries, newest first.
func (s *Service) Recent(userID string, limit int) ([]domain.MoodEntry, error) {
	if limit <= 0 {
		limit = 30
	}
	return s.db.ListMoods(userID, limit)
}
