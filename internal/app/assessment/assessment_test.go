package assessment_test

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mindwell-app/mindwell/internal/app/assessment"
	"github.com/mindwell-app/mindwell/internal/app/progression"
	"github.com/mindwell-app/mindwell/internal/domain"
	"github.com/mindwell-app/mindwell/internal/infra/sqlite"
)

func testService(t *testing.T) (*assessment.Service, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.EnsureProfile("u1", "Alex"); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	prog := progression.NewService(db, progression.NewEngine(), zap.NewNop())
	return assessment.NewService(db, prog, zap.NewNop()), db
}

var noon = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestSubmit_PHQ9(t *testing.T) {
	svc, db := testService(t)

	answers := []int{1, 1, 2, 0, 1, 1, 0, 2, 1} // sum 9 → mild
	result, err := svc.Submit("u1", domain.AssessmentPHQ9, answers, noon)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Assessment.Score != 9 || result.Assessment.Severity != "mild" {
		t.Errorf("scored %d (%s)", result.Assessment.Score, result.Assessment.Severity)
	}

	// The first assessment unlocks assess_1 and lands its XP.
	unlocked, err := db.UnlockedAchievementIDs("u1")
	if err != nil {
		t.Fatalf("unlocked: %v", err)
	}
	if !unlocked["assess_1"] {
		t.Errorf("assess_1 not unlocked: %v", unlocked)
	}
	p, _ := db.GetProfile("u1")
	if p.TotalXP != assessment.XPPerAssessment+25 {
		t.Errorf("xp = %d", p.TotalXP)
	}
}

func TestSubmit_AnswerValidation(t *testing.T) {
	svc, _ := testService(t)

	// GAD-7 takes exactly 7 answers.
	_, err := svc.Submit("u1", domain.AssessmentGAD7, []int{0, 1, 2}, noon)
	if !errors.Is(err, domain.ErrBadAnswerCount) {
		t.Errorf("expected ErrBadAnswerCount, got %v", err)
	}

	_, err = svc.Submit("u1", domain.AssessmentGAD7, []int{0, 1, 2, 4, 0, 1, 2}, noon)
	if !errors.Is(err, domain.ErrBadAnswerValue) {
		t.Errorf("expected ErrBadAnswerValue, got %v", err)
	}

	_, err = svc.Submit("u1", "mcmi", []int{0}, noon)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSeverityBands(t *testing.T) {
	cases := []struct {
		kind  domain.AssessmentKind
		score int
		want  string
	}{
		{domain.AssessmentPHQ9, 0, "minimal"},
		{domain.AssessmentPHQ9, 4, "minimal"},
		{domain.AssessmentPHQ9, 5, "mild"},
		{domain.AssessmentPHQ9, 10, "moderate"},
		{domain.AssessmentPHQ9, 15, "moderately severe"},
		{domain.AssessmentPHQ9, 20, "severe"},
		{domain.AssessmentPHQ9, 27, "severe"},
		{domain.AssessmentGAD7, 4, "minimal"},
		{domain.AssessmentGAD7, 5, "mild"},
		{domain.AssessmentGAD7, 10, "moderate"},
		{domain.AssessmentGAD7, 15, "severe"},
		{domain.AssessmentGAD7, 21, "severe"},
	}
	for _, tc := range cases {
		if got := assessment.Severity(tc.kind, tc.score); got != tc.want {
			t.Errorf("Severity(%s, %d) = %q, want %q", tc.kind, tc.score, got, tc.want)
		}
	}
}
