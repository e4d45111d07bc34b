package mood_test

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mindwell-app/mindwell/internal/app/mood"
	"github.com/mindwell-app/mindwell/internal/app/progression"
	"github.com/mindwell-app/mindwell/internal/domain"
	"github.com/mindwell-app/mindwell/internal/infra/sqlite"
)

func testService(t *testing.T) (*mood.Service, *sqlite.DB) {
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
	return mood.NewService(db, prog, zap.NewNop()), db
}

var noon = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestLog_AdvancesStreakAndAwardsXP(t *testing.T) {
	svc, db := testService(t)

	result, err := svc.Log("u1", 4, []string{"calm"}, "slept well", noon)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if result.Progression.Streak.NewStreakCount != 1 || !result.Progression.Streak.DidIncrement {
		t.Errorf("streak = %+v", result.Progression.Streak)
	}

	p, err := db.GetProfile("u1")
	if err != nil || p == nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.TotalXP != mood.XPPerLog {
		t.Errorf("xp = %d, want %d", p.TotalXP, mood.XPPerLog)
	}
	if p.StreakCount != 1 {
		t.Errorf("streak = %d", p.StreakCount)
	}
}

func TestLog_SecondSameDayRejected(t *testing.T) {
	svc, db := testService(t)

	if _, err := svc.Log("u1", 4, nil, "", noon); err != nil {
		t.Fatalf("first log: %v", err)
	}
	_, err := svc.Log("u1", 2, nil, "", noon.Add(2*time.Hour))
	if !errors.Is(err, domain.ErrMoodAlreadyLogged) {
		t.Fatalf("expected ErrMoodAlreadyLogged, got %v", err)
	}

	// No double XP either.
	p, _ := db.GetProfile("u1")
	if p.TotalXP != mood.XPPerLog {
		t.Errorf("xp drifted to %d", p.TotalXP)
	}
}

func TestLog_ConsecutiveDaysBuildStreak(t *testing.T) {
	svc, db := testService(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.Log("u1", 3, nil, "", noon.AddDate(0, 0, i)); err != nil {
			t.Fatalf("log day %d: %v", i, err)
		}
	}

	p, _ := db.GetProfile("u1")
	if p.StreakCount != 3 {
		t.Errorf("streak = %d, want 3", p.StreakCount)
	}
	// 3 days in a row unlocks streak_3 on top of the per-log XP.
	unlocked, err := db.UnlockedAchievementIDs("u1")
	if err != nil {
		t.Fatalf("unlocked: %v", err)
	}
	if !unlocked["streak_3"] {
		t.Errorf("streak_3 not unlocked: %v", unlocked)
	}
}

func TestLog_FirstCheckinDoesNotRateWellness(t *testing.T) {
	svc, db := testService(t)

	// A single perfect score is not enough data to rate the 14-day window.
	if _, err := svc.Log("u1", 5, nil, "", noon); err != nil {
		t.Fatalf("log: %v", err)
	}

	unlocked, err := db.UnlockedAchievementIDs("u1")
	if err != nil {
		t.Fatalf("unlocked: %v", err)
	}
	if unlocked["wellness_70"] || unlocked["wellness_90"] {
		t.Errorf("wellness unlocked off one check-in: %v", unlocked)
	}
	p, _ := db.GetProfile("u1")
	if p.TotalXP != mood.XPPerLog {
		t.Errorf("xp = %d, want %d", p.TotalXP, mood.XPPerLog)
	}
}

func TestLog_FailedCycleLeavesNoRow(t *testing.T) {
	svc, db := testService(t)

	// Logging for an unknown user fails before anything commits.
	_, err := svc.Log("ghost", 4, nil, "", noon)
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	n, err := db.MoodCountOn("ghost", noon)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("orphan mood row survived the failed cycle")
	}

	// Once the profile exists, the same day logs fine.
	if _, err := db.EnsureProfile("ghost", ""); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := svc.Log("ghost", 4, nil, "", noon); err != nil {
		t.Errorf("retry after failure: %v", err)
	}
}

func TestLog_ScoreBounds(t *testing.T) {
	svc, _ := testService(t)
	for _, score := range []int{0, 6, -1} {
		if _, err := svc.Log("u1", score, nil, "", noon); !errors.Is(err, domain.ErrBadMoodScore) {
			t.Errorf("score %d: expected ErrBadMoodScore, got %v", score, err)
		}
	}
}
