package progression

import (
	"fmt"
	"time"

	"github.com/mindwell-app/mindwell/internal/domain"
)

// progressSource selects the counter a challenge measures. Keyed by
// challenge ID because progress semantics differ per challenge, not per
// period kind.
var progressSource = map[string]func(domain.Counters) float64{
	"daily_mood_checkin": func(c domain.Counters) float64 {
		if c.MoodEntriesToday > 0 {
			return 1
		}
		return 0
	},
	"daily_breather":      func(c domain.Counters) float64 { return float64(c.MindfulnessMinutesToday) },
	"weekly_assessments":  func(c domain.Counters) float64 { return float64(c.AssessmentsThisWeek) },
	"weekly_sessions":     func(c domain.Counters) float64 { return float64(c.SessionsThisWeek) },
	"monthly_streak_keep": func(c domain.Counters) float64 { return float64(c.CurrentStreakDays) },
}

// ChallengeProgress is the derived state of one challenge instance.
type ChallengeProgress struct {
	Progress   float64 `json:"progress"`
	Target     float64 `json:"target"`
	IsComplete bool    `json:"is_complete"`
}

// EvaluateChallengeProgress recomputes a challenge's progress from live
// counters. Completion alone grants nothing — XP is gated behind an
// explicit claim.
func EvaluateChallengeProgress(ch domain.ChallengeDef, counters domain.Counters) (ChallengeProgress, error) {
	source, ok := progressSource[ch.ID]
	if !ok {
		return ChallengeProgress{}, fmt.Errorf("challenge %q: %w", ch.ID, domain.ErrUnknownChallenge)
	}
	progress := source(counters)
	return ChallengeProgress{
		Progress:   progress,
		Target:     ch.Target,
		IsComplete: progress >= ch.Target,
	}, nil
}

// ClaimChallenge validates a one-time claim of a completed challenge
// instance. periodKey is the instance the client observed progress in;
// an instance from an earlier period is stale and never claimable, no
// matter its completion state. Claiming an already-claimed instance
// awards zero XP without error, so retry-from-scratch stays safe.
func ClaimChallenge(ch domain.ChallengeDef, prog ChallengeProgress, periodKey string, claimed map[string]bool, now time.Time) (int64, string, error) {
	key := ClaimKey(ch.ID, periodKey)
	if periodKey != ch.PeriodKey(now) {
		return 0, key, fmt.Errorf("challenge %s period %s: %w", ch.ID, periodKey, domain.ErrChallengeExpired)
	}
	if !prog.IsComplete {
		return 0, key, fmt.Errorf("challenge %s at %.0f/%.0f: %w", ch.ID, prog.Progress, prog.Target, domain.ErrChallengeIncomplete)
	}
	if claimed[key] {
		return 0, key, nil
	}
	return ch.RewardXP, key, nil
}

// ClaimKey builds the per-period claim set member for a challenge.
func ClaimKey(challengeID, periodKey string) string {
	return challengeID + "@" + periodKey
}

// DefaultChallenges returns the challenge catalog. IDs are stable; each
// must have a progress source registered above.
func DefaultChallenges() []domain.ChallengeDef {
	return []domain.ChallengeDef{
		{ID: "daily_mood_checkin", Title: "Log your mood today", Period: domain.PeriodDaily, Target: 1, RewardXP: 20},
		{ID: "daily_breather", Title: "Breathe for 5 minutes", Period: domain.PeriodDaily, Target: 5, RewardXP: 25},
		{ID: "weekly_assessments", Title: "Complete 3 assessments this week", Period: domain.PeriodWeekly, Target: 3, RewardXP: 100},
		{ID: "weekly_sessions", Title: "Finish 4 mindfulness sessions this week", Period: domain.PeriodWeekly, Target: 4, RewardXP: 120},
		{ID: "monthly_streak_keep", Title: "Hold a 21-day streak this month", Period: domain.PeriodMonthly, Target: 21, RewardXP: 400},
	}
}
