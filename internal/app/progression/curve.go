// Package progression implements the MindWell progression engine:
// XP growth curves, level and rank resolution, streak continuation,
// achievement and challenge evaluation, and level reward unlocks.
// Every function here is pure — it takes an in-memory snapshot and
// returns a description of what changed. Persistence belongs to the
// caller, and because evaluation is deterministic and unlock
// application idempotent, retrying the whole evaluate-then-persist
// cycle is always safe.
package progression

import (
	"fmt"
	"math"

	"github.com/mindwell-app/mindwell/internal/domain"
)

// Curve maps a level to the cumulative XP required to reach it.
// Threshold(1) is always 0 and thresholds are strictly increasing, so
// level resolution is monotonic in XP.
type Curve interface {
	// Threshold returns the cumulative XP required to reach level.
	Threshold(level int) int64
}

// LinearCurve levels up every Block XP. Used for the primary account
// level: level = floor(xp/B)+1.
type LinearCurve struct {
	Block int64
}

// Threshold returns (level-1) * Block.
func (c LinearCurve) Threshold(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(level-1) * c.Block
}

// GeometricCurve grows the per-level block by Ratio each level,
// starting from Base. Used for per-track mini-game leveling: with
// Base=100 and Ratio=1.5 the thresholds are 0, 100, 250, 475, …
type GeometricCurve struct {
	Base  int64
	Ratio float64
}

// Threshold returns the cumulative sum of Base*Ratio^(k-1) for k=1..level-1.
func (c GeometricCurve) Threshold(level int) int64 {
	if level <= 1 {
		return 0
	}
	var sum float64
	step := float64(c.Base)
	for k := 1; k < level; k++ {
		sum += step
		step *= c.Ratio
		if sum > math.MaxInt64/4 {
			return math.MaxInt64 / 4 // Unreachable at any plausible XP
		}
	}
	return int64(sum)
}

// LevelInfo is the resolved triple for a cumulative XP total.
type LevelInfo struct {
	Level         int   `json:"level"`
	XPIntoLevel   int64 `json:"xp_into_level"`
	XPToNextLevel int64 `json:"xp_to_next_level"`
}

// ResolveLevel converts a cumulative XP total into level, progress
// within the level, and the size of the current level block.
// Rejects negative XP rather than clamping.
func ResolveLevel(c Curve, totalXP int64) (LevelInfo, error) {
	if totalXP < 0 {
		return LevelInfo{}, fmt.Errorf("resolve level: %d: %w", totalXP, domain.ErrNegativeXP)
	}
	// A curve whose second threshold is not above the first can never
	// terminate the scan below.
	if c.Threshold(2) <= 0 {
		return LevelInfo{}, fmt.Errorf("resolve level: curve does not grow: %w", domain.ErrInvalidInput)
	}

	level := 1
	for totalXP >= c.Threshold(level+1) {
		level++
	}

	this := c.Threshold(level)
	next := c.Threshold(level + 1)
	return LevelInfo{
		Level:         level,
		XPIntoLevel:   totalXP - this,
		XPToNextLevel: next - this,
	}, nil
}
