package progression

import (
	"fmt"

	"github.com/mindwell-app/mindwell/internal/domain"
)

// TrackCurve is the escalating curve shared by every mini-game track.
// Thresholds: 0, 100, 250, 475, …
var TrackCurve = GeometricCurve{Base: 100, Ratio: 1.5}

// ResolveTrack derives the display fields of a game track from its
// persisted XP total. Tracks are independent — no cross-track state.
func ResolveTrack(name string, totalXP int64, prestige int) (domain.GameTrack, error) {
	if name == "" {
		return domain.GameTrack{}, fmt.Errorf("track name: %w", domain.ErrInvalidInput)
	}
	info, err := ResolveLevel(TrackCurve, totalXP)
	if err != nil {
		return domain.GameTrack{}, fmt.Errorf("track %s: %w", name, err)
	}
	return domain.GameTrack{
		Name:          name,
		TotalXP:       totalXP,
		Level:         info.Level,
		XPIntoLevel:   info.XPIntoLevel,
		XPToNextLevel: info.XPToNextLevel,
		Prestige:      prestige,
	}, nil
}
