package progression

import (
	"fmt"
	"time"

	"github.com/mindwell-app/mindwell/internal/domain"
)

// StreakDelta describes how a qualifying activity today changes the streak.
type StreakDelta struct {
	NewStreakCount int  `json:"new_streak_count"`
	DidIncrement   bool `json:"did_increment"`
}

// ResolveStreakDelta computes day-over-day streak continuation.
// Both dates are normalized to midnight before differencing so
// time-of-day never skews the whole-day delta:
//
//	first ever activity         → streak 1
//	same day                    → unchanged (re-entry is idempotent)
//	next day                    → previous + 1
//	gap of 2+ days              → reset to 1
//	negative delta (clock skew) → no-op, never decrement
func ResolveStreakDelta(previousStreak int, lastActivity, today time.Time) (StreakDelta, error) {
	if previousStreak < 0 {
		return StreakDelta{}, fmt.Errorf("streak count %d: %w", previousStreak, domain.ErrInvalidInput)
	}
	if today.IsZero() {
		return StreakDelta{}, fmt.Errorf("today: %w", domain.ErrZeroDate)
	}

	if lastActivity.IsZero() {
		return StreakDelta{NewStreakCount: 1, DidIncrement: true}, nil
	}

	// Stored timestamps may carry a different zone than today's clock;
	// compare both on the same calendar.
	delta := dayDelta(lastActivity.In(today.Location()), today)
	switch {
	case delta == 0:
		return StreakDelta{NewStreakCount: previousStreak, DidIncrement: false}, nil
	case delta == 1:
		return StreakDelta{NewStreakCount: previousStreak + 1, DidIncrement: true}, nil
	case delta > 1:
		return StreakDelta{NewStreakCount: 1, DidIncrement: true}, nil
	default:
		// Stale cache or clock skew — leave the streak alone.
		return StreakDelta{NewStreakCount: previousStreak, DidIncrement: false}, nil
	}
}

// dayDelta returns whole calendar days from a to b.
func dayDelta(a, b time.Time) int {
	return int(midnight(b).Sub(midnight(a)) / (24 * time.Hour))
}

// midnight truncates t to 00:00 in its own location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
