// Package assessment scores the PHQ-9 and GAD-7 standardized forms.
// Each item is answered 0-3; the score is the item sum and the severity
// label follows the published bands for each instrument.
package assessment

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

// XPPerAssessment is the XP credited per completed form.
const XPPerAssessment = 25

// itemCount is the number of questions per instrument.
var itemCount = map[domain.AssessmentKind]int{
	domain.AssessmentPHQ9: 9,
	domain.AssessmentGAD7: 7,
}

type Service struct {
	db   *sqlite.DB
	prog *progression.Service
	log  *zap.Logger
}

func NewService(db *sqlite.DB, prog *progression.Service, log *zap.Logger) *Service {
	return &Service{db: db, prog: prog, log: log}
}

// SubmitResult reports a scored assessment plus the progression it moved.
type SubmitResult struct {
	Assessment  domain.Assessment     `json:"assessment"`
	Progression progression.Changeset `json:"progression"`
}

// Submit scores and records a completed form.
func (s *Service) Submit(userID string, kind domain.AssessmentKind, answers []int, now time.Time) (SubmitResult, error) {
	want, ok := itemCount[kind]
	if !ok {
		return SubmitResult{}, fmt.Errorf("%w: unknown assessment %q", domain.ErrInvalidInput, kind)
	}
	if len(answers) != want {
		return SubmitResult{}, fmt.Errorf("%w: %s needs %d answers, got %d",
			domain.ErrBadAnswerCount, kind, want, len(answers))
	}

	score := 0
	for i, a := range answers {
		if a < 0 || a > 3 {
			return SubmitResult{}, fmt.Errorf("%w: item %d = %d", domain.ErrBadAnswerValue, i+1, a)
		}
		score += a
	}

	result := domain.Assessment{
		ID:       uuid.NewString(),
		UserID:   userID,
		Kind:     kind,
		Answers:  answers,
		Score:    score,
		Severity: Severity(kind, score),
		TakenAt:  now,
	}
	if err := s.db.InsertAssessment(result); err != nil {
		return SubmitResult{}, fmt.Errorf("record assessment: %w", err)
	}
	metrics.AssessmentsTaken.WithLabelValues(string(kind)).Inc()

	cs, err := s.prog.AwardXP(userID, domain.XPAssessment, XPPerAssessment, result.ID, false, now)
	if err != nil {
		return SubmitResult{}, err
	}
	s.log.Info("assessment completed",
		zap.String("kind", string(kind)),
		zap.Int("score", score),
		zap.String("severity", result.Severity))

	return SubmitResult{Assessment: result, Progression: cs}, nil
}

// Severity maps a total score onto the instrument's standard band.
func Severity(kind domain.AssessmentKind, score int) string {
	if kind == domain.AssessmentGAD7 {
		switch {
		case score < 5:
			return "minimal"
		case score < 10:
			return "mild"
		case score < 15:
			return "moderate"
		default:
			return "severe"
		}
	}
	// PHQ-9
	switch {
	case score < 5:
		return "minimal"
	case score < 10:
		return "mild"
	case score < 15:
		return "moderate"
	case score < 20:
		return "moderately severe"
	default:
		return "severe"
	}
}

// Recent returns the latest assessments, newest first.
func (s *Service) Recent(userID string, limit int) ([]domain.Assessment, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.db.ListAssessments(userID, limit)
}
