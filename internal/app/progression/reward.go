package progression

import (
	"fmt"
	"slices"

	"github.com/mindwell-app/mindwell/internal/domain"
)

// ApplyLevelRewards returns, in catalog order, every reward whose unlock
// level the user has reached and whose level is not yet in the applied
// set. Re-running with the applied set updated yields nothing — the
// idempotency guard against duplicate side effects across refreshes.
func ApplyLevelRewards(level int, catalog []domain.RewardDef, alreadyApplied map[int]bool) []domain.RewardDef {
	var newly []domain.RewardDef
	for _, r := range catalog {
		if r.UnlockLevel <= level && !alreadyApplied[r.UnlockLevel] {
			newly = append(newly, r)
		}
	}
	return newly
}

// ApplyRewardEffect mutates the profile field the reward's effect tag
// names. The tag→mutation mapping is this fixed switch — effects are
// never inferred from reward text.
func ApplyRewardEffect(p *domain.Profile, r domain.RewardDef) error {
	switch r.Effect {
	case domain.EffectTheme:
		if !slices.Contains(p.UnlockedThemes, r.Value) {
			p.UnlockedThemes = append(p.UnlockedThemes, r.Value)
		}
	case domain.EffectFrame:
		if !slices.Contains(p.UnlockedFrames, r.Value) {
			p.UnlockedFrames = append(p.UnlockedFrames, r.Value)
		}
	case domain.EffectBadgeFlair:
		p.BadgeFlair = true
	default:
		return fmt.Errorf("reward level %d effect %q: %w", r.UnlockLevel, r.Effect, domain.ErrUnknownEffect)
	}
	return nil
}

// DefaultRewards returns the level reward catalog, ordered by level.
func DefaultRewards() []domain.RewardDef {
	return []domain.RewardDef{
		{UnlockLevel: 2, Effect: domain.EffectTheme, Value: "ocean"},
		{UnlockLevel: 5, Effect: domain.EffectTheme, Value: "forest"},
		{UnlockLevel: 10, Effect: domain.EffectFrame, Value: "bronze_ring"},
		{UnlockLevel: 20, Effect: domain.EffectFrame, Value: "silver_ring"},
		{UnlockLevel: 30, Effect: domain.EffectBadgeFlair},
		{UnlockLevel: 50, Effect: domain.EffectTheme, Value: "aurora"},
	}
}
