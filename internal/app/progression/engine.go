package progression

import (
	"fmt"
	"time"

	"github.com/mindwell-app/mindwell/internal/domain"
)

// Engine bundles the growth curve and the immutable catalogs and runs
// one evaluate pass per data refresh. It holds no mutable state and no
// locks: it reads a snapshot and returns a changeset.
type Engine struct {
	curve        Curve
	achievements []domain.AchievementDef
	challenges   []domain.ChallengeDef
	rewards      []domain.RewardDef
}

// NewEngine creates an engine with the default linear account curve
// (100 XP per level) and the default catalogs.
func NewEngine() *Engine {
	return &Engine{
		curve:        LinearCurve{Block: 100},
		achievements: DefaultAchievements(),
		challenges:   DefaultChallenges(),
		rewards:      DefaultRewards(),
	}
}

// NewEngineWithCatalogs creates an engine with explicit configuration.
// Catalogs must not be mutated after being passed in.
func NewEngineWithCatalogs(curve Curve, achievements []domain.AchievementDef, challenges []domain.ChallengeDef, rewards []domain.RewardDef) *Engine {
	return &Engine{curve: curve, achievements: achievements, challenges: challenges, rewards: rewards}
}

// Achievements returns the achievement catalog (for display).
func (e *Engine) Achievements() []domain.AchievementDef { return e.achievements }

// Challenges returns the challenge catalog (for display).
func (e *Engine) Challenges() []domain.ChallengeDef { return e.challenges }

// Rewards returns the reward catalog (for display).
func (e *Engine) Rewards() []domain.RewardDef { return e.rewards }

// Curve returns the primary account curve.
func (e *Engine) Curve() Curve { return e.curve }

// Snapshot is the immutable per-user state an evaluation runs against.
// The three sets are the idempotency guards: membership is append-only.
type Snapshot struct {
	Profile  domain.Profile
	Counters domain.Counters

	Unlocked map[string]bool // achievement ids
	Applied  map[int]bool    // reward unlock levels
	Claimed  map[string]bool // challenge claim keys

	// QualifyingActivity reports whether the trigger for this refresh
	// was a streak-qualifying action (a mood check-in). Plain reloads
	// must not advance the streak.
	QualifyingActivity bool
}

// ChallengeStatus is the derived view of one challenge instance.
type ChallengeStatus struct {
	Def       domain.ChallengeDef `json:"def"`
	Progress  ChallengeProgress   `json:"progress"`
	PeriodKey string              `json:"period_key"`
	ExpiresAt time.Time           `json:"expires_at"`
	Claimed   bool                `json:"claimed"`
	Claimable bool                `json:"claimable"`
}

// Changeset is what one refresh decided. The caller persists unlocks,
// reward levels, streak fields, and the XP delta as a single logical
// update; evaluation itself touches nothing.
type Changeset struct {
	Level           LevelInfo               `json:"level"`
	Rank            string                  `json:"rank"`
	Streak          StreakDelta             `json:"streak"`
	NewAchievements []domain.AchievementDef `json:"new_achievements"`
	NewRewards      []domain.RewardDef      `json:"new_rewards"`
	XPAwarded       int64                   `json:"xp_awarded"`
	Challenges      []ChallengeStatus       `json:"challenges"`
}

// Refresh runs the full progression chain over a snapshot: streak,
// achievements, level, level rewards, and challenge status, in that
// order so achievement XP is reflected in the resolved level.
func (e *Engine) Refresh(snap Snapshot, now time.Time) (Changeset, error) {
	var cs Changeset

	// Streak. A qualifying activity advances it; a plain refresh only
	// reports the stored value.
	if snap.QualifyingActivity {
		delta, err := ResolveStreakDelta(snap.Profile.StreakCount, snap.Profile.LastActivityDate, now)
		if err != nil {
			return Changeset{}, fmt.Errorf("refresh streak: %w", err)
		}
		cs.Streak = delta
	} else {
		cs.Streak = StreakDelta{NewStreakCount: snap.Profile.StreakCount}
	}

	// Achievement predicates see the streak as of this refresh.
	counters := snap.Counters
	counters.CurrentStreakDays = cs.Streak.NewStreakCount

	ach, err := EvaluateAchievements(e.achievements, counters, snap.Unlocked)
	if err != nil {
		return Changeset{}, fmt.Errorf("refresh achievements: %w", err)
	}
	cs.NewAchievements = ach.NewlyUnlocked
	cs.XPAwarded = ach.TotalXPAwarded

	// Level is derived from the XP total after this pass's awards —
	// never read back from a stored level field.
	level, err := ResolveLevel(e.curve, snap.Profile.TotalXP+cs.XPAwarded)
	if err != nil {
		return Changeset{}, fmt.Errorf("refresh level: %w", err)
	}
	cs.Level = level
	cs.Rank = RankForLevel(level.Level)

	cs.NewRewards = ApplyLevelRewards(level.Level, e.rewards, snap.Applied)

	for _, ch := range e.challenges {
		prog, err := EvaluateChallengeProgress(ch, counters)
		if err != nil {
			return Changeset{}, fmt.Errorf("refresh challenges: %w", err)
		}
		key := ch.PeriodKey(now)
		claimed := snap.Claimed[ClaimKey(ch.ID, key)]
		cs.Challenges = append(cs.Challenges, ChallengeStatus{
			Def:       ch,
			Progress:  prog,
			PeriodKey: key,
			ExpiresAt: ch.PeriodEnd(now),
			Claimed:   claimed,
			Claimable: prog.IsComplete && !claimed,
		})
	}

	return cs, nil
}
