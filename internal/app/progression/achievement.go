package progression

import (
	"fmt"

	"github.com/mindwell-app/mindwell/internal/domain"
)

// counterForCategory is the single category→counter dispatch table.
// Adding a category means adding one row here, not hunting switch
// statements across call sites.
var counterForCategory = map[domain.AchievementCategory]func(domain.Counters) float64{
	domain.CatStreak:      func(c domain.Counters) float64 { return float64(c.CurrentStreakDays) },
	domain.CatAssessment:  func(c domain.Counters) float64 { return float64(c.AssessmentsCompleted) },
	domain.CatMindfulness: func(c domain.Counters) float64 { return float64(c.TotalMindfulnessMinutes) },
	domain.CatSpecial:     func(c domain.Counters) float64 { return c.WellnessScorePercent },

	// CommunityHelpCount is never incremented anywhere yet, so the
	// community achievements stay permanently locked. Intentional —
	// "help N members" semantics are undefined until help tracking
	// exists. Do not wire a substitute counter here.
	domain.CatCommunity: func(c domain.Counters) float64 { return float64(c.CommunityHelpCount) },
}

// AchievementResult is the output of one achievement evaluation pass.
type AchievementResult struct {
	NewlyUnlocked  []domain.AchievementDef `json:"newly_unlocked"`
	TotalXPAwarded int64                   `json:"total_xp_awarded"`
}

// EvaluateAchievements checks every definition not already unlocked
// against the counter its category selects. A threshold of N unlocks at
// exactly N. Output order follows catalog declaration order, so results
// are deterministic for identical input. The caller must persist the
// unlock set and the XP award as one logical update.
func EvaluateAchievements(catalog []domain.AchievementDef, counters domain.Counters, alreadyUnlocked map[string]bool) (AchievementResult, error) {
	var res AchievementResult
	for _, def := range catalog {
		if alreadyUnlocked[def.ID] {
			continue
		}
		counter, ok := counterForCategory[def.Category]
		if !ok {
			return AchievementResult{}, fmt.Errorf("achievement %s category %q: %w", def.ID, def.Category, domain.ErrUnknownCategory)
		}
		if counter(counters) >= def.Threshold {
			res.NewlyUnlocked = append(res.NewlyUnlocked, def)
			res.TotalXPAwarded += def.RewardXP
		}
	}
	return res, nil
}

// DefaultAchievements returns the full achievement catalog. Defined once
// at process start and never mutated; IDs are stable because clients
// store them.
func DefaultAchievements() []domain.AchievementDef {
	return []domain.AchievementDef{
		// ── Streaks ────────────────────────────────────────────────────
		{ID: "streak_3", Name: "Warming Up", Category: domain.CatStreak,
			Threshold: 3, RewardXP: 30, Rarity: domain.RarityCommon, Icon: "🔥"},
		{ID: "streak_7", Name: "Week of Wellness", Category: domain.CatStreak,
			Threshold: 7, RewardXP: 75, Rarity: domain.RarityCommon, Icon: "🔥"},
		{ID: "streak_30", Name: "Habit Formed", Category: domain.CatStreak,
			Threshold: 30, RewardXP: 300, Rarity: domain.RarityRare, Icon: "💪"},
		{ID: "streak_100", Name: "Centurion", Category: domain.CatStreak,
			Threshold: 100, RewardXP: 1000, Rarity: domain.RarityEpic, Icon: "🏛️"},
		{ID: "streak_365", Name: "Year of Calm", Category: domain.CatStreak,
			Threshold: 365, RewardXP: 5000, Rarity: domain.RarityLegendary, Icon: "⭐"},

		// ── Assessments ────────────────────────────────────────────────
		{ID: "assess_1", Name: "Self Check", Category: domain.CatAssessment,
			Threshold: 1, RewardXP: 25, Rarity: domain.RarityCommon, Icon: "📋"},
		{ID: "assess_5", Name: "Knowing Yourself", Category: domain.CatAssessment,
			Threshold: 5, RewardXP: 100, Rarity: domain.RarityCommon, Icon: "📋"},
		{ID: "assess_20", Name: "Tracker", Category: domain.CatAssessment,
			Threshold: 20, RewardXP: 400, Rarity: domain.RarityRare, Icon: "📊"},
		{ID: "assess_52", Name: "Weekly Ritual", Category: domain.CatAssessment,
			Threshold: 52, RewardXP: 1500, Rarity: domain.RarityEpic, Icon: "🗓️"},

		// ── Mindfulness (total minutes) ────────────────────────────────
		{ID: "mindful_10", Name: "First Breath", Category: domain.CatMindfulness,
			Threshold: 10, RewardXP: 25, Rarity: domain.RarityCommon, Icon: "🧘"},
		{ID: "mindful_60", Name: "Hour of Stillness", Category: domain.CatMindfulness,
			Threshold: 60, RewardXP: 100, Rarity: domain.RarityCommon, Icon: "🧘"},
		{ID: "mindful_600", Name: "Deep Practice", Category: domain.CatMindfulness,
			Threshold: 600, RewardXP: 600, Rarity: domain.RarityRare, Icon: "🌊"},
		{ID: "mindful_3000", Name: "Monk Mode", Category: domain.CatMindfulness,
			Threshold: 3000, RewardXP: 2500, Rarity: domain.RarityLegendary, Icon: "⛩️"},

		// ── Community (permanently locked — no help counter yet) ───────
		{ID: "community_helper_10", Name: "Community Helper", Category: domain.CatCommunity,
			Threshold: 10, RewardXP: 250, Rarity: domain.RarityRare, Icon: "🤝"},
		{ID: "community_helper_50", Name: "Pillar of Support", Category: domain.CatCommunity,
			Threshold: 50, RewardXP: 1000, Rarity: domain.RarityEpic, Icon: "🏆"},

		// ── Special (wellness score percent) ───────────────────────────
		{ID: "wellness_70", Name: "On the Up", Category: domain.CatSpecial,
			Threshold: 70, RewardXP: 150, Rarity: domain.RarityRare, Icon: "🌤️"},
		{ID: "wellness_90", Name: "Flourishing", Category: domain.CatSpecial,
			Threshold: 90, RewardXP: 500, Rarity: domain.RarityEpic, Icon: "☀️"},
	}
}
