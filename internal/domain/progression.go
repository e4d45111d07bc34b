// Package domain holds the plain data types shared across MindWell.
// Progression types model the gamification state: XP, levels, streaks,
// achievements, challenges, and level rewards. All catalogs are immutable
// after process start and passed explicitly into evaluator calls.
package domain

import (
	"fmt"
	"time"
)

// ─── Profile ────────────────────────────────────────────────────────────────

// Profile is the per-user progression document. Level is a display cache
// only — it is recomputed from TotalXP on every read and never trusted
// from storage.
type Profile struct {
	UserID           string    `json:"user_id"`
	DisplayName      string    `json:"display_name"`
	TotalXP          int64     `json:"total_xp"`
	Level            int       `json:"level"`
	StreakCount      int       `json:"streak_count"`
	LastActivityDate time.Time `json:"last_activity_date"`

	// Reward side effects
	UnlockedThemes []string `json:"unlocked_themes"`
	UnlockedFrames []string `json:"unlocked_frames"`
	BadgeFlair     bool     `json:"badge_flair"`
}

// Counters is a read-only snapshot of aggregate user statistics fed to
// achievement predicates and challenge progress sources.
type Counters struct {
	AssessmentsCompleted    int     `json:"assessments_completed"`
	CurrentStreakDays       int     `json:"current_streak_days"`
	TotalMindfulnessMinutes int     `json:"total_mindfulness_minutes"`
	WellnessScorePercent    float64 `json:"wellness_score_percent"`

	// CommunityHelpCount has no live feature feeding it yet. The
	// "Community Helper" achievements stay locked until help tracking
	// exists — deliberate, see the community package.
	CommunityHelpCount int `json:"community_help_count"`

	// Period-scoped counters consumed by challenges.
	MoodEntriesToday        int `json:"mood_entries_today"`
	MindfulnessMinutesToday int `json:"mindfulness_minutes_today"`
	AssessmentsThisWeek     int `json:"assessments_this_week"`
	SessionsThisWeek        int `json:"sessions_this_week"`
}

// ─── Game Tracks ────────────────────────────────────────────────────────────

// GameTrack is an independent leveling track for one mini-activity
// (e.g. "forest_focus", "memory_match"). Level fields are derived from
// TotalXP with the geometric curve; only TotalXP and Prestige persist.
type GameTrack struct {
	Name          string `json:"name"`
	TotalXP       int64  `json:"total_xp"`
	Level         int    `json:"level"`
	XPIntoLevel   int64  `json:"xp_into_level"`
	XPToNextLevel int64  `json:"xp_to_next_level"`
	Prestige      int    `json:"prestige"`
}

// XPSource categorizes how XP was earned, for the XP event ledger.
type XPSource string

const (
	XPAchievement XPSource = "ACHIEVEMENT"
	XPChallenge   XPSource = "CHALLENGE"
	XPMoodLog     XPSource = "MOOD_LOG"
	XPAssessment  XPSource = "ASSESSMENT"
	XPMindfulness XPSource = "MINDFULNESS"
	XPMiniGame    XPSource = "MINI_GAME"
)

// XPEvent is one entry in the append-only XP history.
type XPEvent struct {
	ID        int64     `json:"id"`
	Source    XPSource  `json:"source"`
	Amount    int64     `json:"amount"`
	Ref       string    `json:"ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ─── Achievements ───────────────────────────────────────────────────────────

// AchievementCategory selects which counter an achievement is checked
// against. The category→counter mapping is a single lookup table in the
// progression package; adding a category is one table edit.
type AchievementCategory string

const (
	CatStreak      AchievementCategory = "streak"
	CatAssessment  AchievementCategory = "assessment"
	CatMindfulness AchievementCategory = "mindfulness"
	CatCommunity   AchievementCategory = "community"
	CatSpecial     AchievementCategory = "special"
)

// Rarity tiers an achievement for display.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AchievementDef defines a single one-time unlock: met when the counter
// selected by Category reaches Threshold (inclusive).
type AchievementDef struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Category  AchievementCategory `json:"category"`
	Threshold float64             `json:"threshold"`
	RewardXP  int64               `json:"reward_xp"`
	Rarity    Rarity              `json:"rarity"`
	Icon      string              `json:"icon"`
}

// UnlockedAchievement records when an achievement was earned.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// ─── Challenges ─────────────────────────────────────────────────────────────

// ChallengePeriod is how often a challenge resets.
type ChallengePeriod string

const (
	PeriodDaily   ChallengePeriod = "daily"
	PeriodWeekly  ChallengePeriod = "weekly"
	PeriodMonthly ChallengePeriod = "monthly"
)

// ChallengeDef defines a periodically-resetting goal. Progress is
// recomputed from live counters every evaluation; the only mutable state
// is membership in the per-period claimed set.
type ChallengeDef struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Period   ChallengePeriod `json:"period"`
	Target   float64         `json:"target"`
	RewardXP int64           `json:"reward_xp"`
}

// PeriodKey identifies the challenge instance active at the given time.
// Claims are recorded per key, which makes claiming idempotent within a
// period and fresh across periods.
func (c ChallengeDef) PeriodKey(now time.Time) string {
	switch c.Period {
	case PeriodWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodMonthly:
		return now.Format("2006-01")
	default:
		return now.Format("2006-01-02")
	}
}

// PeriodEnd returns the instant the current period's instance expires.
func (c ChallengeDef) PeriodEnd(now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch c.Period {
	case PeriodWeekly:
		// Next Monday 00:00
		days := (8 - int(midnight.Weekday())) % 7
		if days == 0 {
			days = 7
		}
		return midnight.AddDate(0, 0, days)
	case PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	default:
		return midnight.AddDate(0, 0, 1)
	}
}

// ClaimedChallenge records a one-time claim of a challenge period.
type ClaimedChallenge struct {
	ClaimKey  string    `json:"claim_key"` // "<challenge id>@<period key>"
	ClaimedAt time.Time `json:"claimed_at"`
}

// ─── Level Rewards ──────────────────────────────────────────────────────────

// RewardEffect tags the profile-field mutation a reward applies. The
// effect→mutation mapping is a fixed table in the progression package.
type RewardEffect string

const (
	EffectTheme      RewardEffect = "theme"
	EffectFrame      RewardEffect = "frame"
	EffectBadgeFlair RewardEffect = "badge_flair"
)

// RewardDef is a one-time cosmetic unlock gated by reaching a level.
type RewardDef struct {
	UnlockLevel int          `json:"unlock_level"`
	Effect      RewardEffect `json:"effect"`
	Value       string       `json:"value,omitempty"`
}
