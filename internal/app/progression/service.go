package progression

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mindwell-app/mindwell/internal/domain"
	"github.com/mindwell-app/mindwell/internal/infra/metrics"
	"github.com/mindwell-app/mindwell/internal/infra/sqlite"
)

// ─── Service ────────────────────────────────────────────────────────────────

// Service binds the pure engine to the store: it loads snapshots, runs
// evaluation cycles, and persists the resulting changesets atomically.
type Service struct {
	db     *sqlite.DB
	engine *Engine
	log    *zap.Logger
}

func NewService(db *sqlite.DB, engine *Engine, log *zap.Logger) *Service {
	return &Service{db: db, engine: engine, log: log}
}

// Engine exposes the catalogs for read-only routes.
func (s *Service) Engine() *Engine { return s.engine }

// loadSnapshot reads everything one evaluation cycle needs.
func (s *Service) loadSnapshot(userID string, now time.Time) (Snapshot, error) {
	profile, err := s.db.GetProfile(userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return Snapshot{}, domain.ErrProfileNotFound
	}
	counters, err := s.db.LoadCounters(userID, now)
	if err != nil {
		return Snapshot{}, err
	}
	unlocked, err := s.db.UnlockedAchievementIDs(userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load unlocks: %w", err)
	}
	applied, err := s.db.AppliedRewardLevels(userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load reward levels: %w", err)
	}
	claimed, err := s.db.ClaimedChallengeKeys(userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load claims: %w", err)
	}
	return Snapshot{
		Profile:  *profile,
		Counters: counters,
		Unlocked: unlocked,
		Applied:  applied,
		Claimed:  claimed,
	}, nil
}

// Activity describes the feature event that triggered an evaluation
// cycle. The event's row, its XP, and everything the refresh decides
// are persisted in one transaction, so a failed cycle leaves no trace
// and a retry re-runs from scratch.
type Activity struct {
	Source     domain.XPSource
	XP         int64
	Ref        string
	Qualifying bool
	Mood       *domain.MoodEntry
}

// Apply runs one evaluation cycle around a feature event and persists
// its effects atomically. A zero Activity is a plain refresh.
func (s *Service) Apply(userID string, act Activity, now time.Time) (Changeset, error) {
	if act.XP < 0 {
		return Changeset{}, domain.ErrNegativeXP
	}
	snap, err := s.loadSnapshot(userID, now)
	if err != nil {
		return Changeset{}, err
	}
	snap.QualifyingActivity = act.Qualifying
	// Counters were read before the event's row lands, so derived
	// aggregates catch up on the next cycle. Today's mood presence is
	// bumped by hand to keep the challenge board current.
	if act.Mood != nil {
		snap.Counters.MoodEntriesToday++
	}
	snap.Profile.TotalXP += act.XP

	cs, err := s.engine.Refresh(snap, now)
	if err != nil {
		return Changeset{}, err
	}

	update := sqlite.ProgressUpdate{
		Mood:        act.Mood,
		CachedLevel: cs.Level.Level,
	}
	if act.XP > 0 {
		update.Awards = append(update.Awards, sqlite.XPAward{Source: act.Source, Amount: act.XP, Ref: act.Ref})
	}
	if cs.XPAwarded > 0 {
		update.Awards = append(update.Awards, sqlite.XPAward{Source: domain.XPAchievement, Amount: cs.XPAwarded})
	}
	for _, a := range cs.NewAchievements {
		update.UnlockAchievements = append(update.UnlockAchievements, a.ID)
	}
	if act.Qualifying {
		update.SetStreak = true
		update.StreakCount = cs.Streak.NewStreakCount
		update.LastActivity = now
	}
	if len(cs.NewRewards) > 0 {
		profile := snap.Profile
		for _, r := range cs.NewRewards {
			if err := ApplyRewardEffect(&profile, r); err != nil {
				return Changeset{}, fmt.Errorf("apply reward: %w", err)
			}
			update.ApplyRewardLevels = append(update.ApplyRewardLevels, r.UnlockLevel)
		}
		update.SetEffects = true
		update.Themes = profile.UnlockedThemes
		update.Frames = profile.UnlockedFrames
		update.BadgeFlair = profile.BadgeFlair
	}

	if err := s.db.ApplyProgress(userID, update, now); err != nil {
		return Changeset{}, err
	}

	metrics.Refreshes.Inc()
	metrics.CurrentLevel.Set(float64(cs.Level.Level))
	metrics.CurrentStreak.Set(float64(cs.Streak.NewStreakCount))
	if act.XP > 0 {
		metrics.XPAwarded.WithLabelValues(string(act.Source)).Add(float64(act.XP))
	}
	if cs.XPAwarded > 0 {
		metrics.XPAwarded.WithLabelValues(string(domain.XPAchievement)).Add(float64(cs.XPAwarded))
	}
	for _, a := range cs.NewAchievements {
		metrics.AchievementsUnlocked.WithLabelValues(string(a.Rarity)).Inc()
		s.log.Info("achievement unlocked",
			zap.String("id", a.ID),
			zap.Int64("reward_xp", a.RewardXP))
	}

	return cs, nil
}

// Refresh runs one evaluation cycle and persists its effects. When
// qualifying is true the caller just recorded streak-qualifying
// activity and the streak advances; otherwise the stored streak is
// only re-reported. Re-running with the same inputs is a no-op.
func (s *Service) Refresh(userID string, qualifying bool, now time.Time) (Changeset, error) {
	return s.Apply(userID, Activity{Qualifying: qualifying}, now)
}

// Claim finalizes a completed challenge for its current period and
// awards its XP. Claiming the same period twice is a silent no-op.
func (s *Service) Claim(userID, challengeID string, now time.Time) (int64, error) {
	snap, err := s.loadSnapshot(userID, now)
	if err != nil {
		return 0, err
	}

	var def *domain.ChallengeDef
	for i := range s.engine.challenges {
		if s.engine.challenges[i].ID == challengeID {
			def = &s.engine.challenges[i]
			break
		}
	}
	if def == nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownChallenge, challengeID)
	}

	prog, err := EvaluateChallengeProgress(*def, snap.Counters)
	if err != nil {
		return 0, err
	}
	awarded, key, err := ClaimChallenge(*def, prog, def.PeriodKey(now), snap.Claimed, now)
	if err != nil {
		return 0, err
	}
	if awarded == 0 {
		return 0, nil
	}

	update := sqlite.ProgressUpdate{
		Awards:    []sqlite.XPAward{{Source: domain.XPChallenge, Amount: awarded, Ref: challengeID}},
		ClaimKeys: []string{key},
	}
	// The claim XP may cross a level boundary, so refresh the level
	// cache and apply any newly reached rewards in the same write.
	level, err := ResolveLevel(s.engine.curve, snap.Profile.TotalXP+awarded)
	if err != nil {
		return 0, err
	}
	update.CachedLevel = level.Level
	if rewards := ApplyLevelRewards(level.Level, s.engine.rewards, snap.Applied); len(rewards) > 0 {
		profile := snap.Profile
		for _, r := range rewards {
			if err := ApplyRewardEffect(&profile, r); err != nil {
				return 0, fmt.Errorf("apply reward: %w", err)
			}
			update.ApplyRewardLevels = append(update.ApplyRewardLevels, r.UnlockLevel)
		}
		update.SetEffects = true
		update.Themes = profile.UnlockedThemes
		update.Frames = profile.UnlockedFrames
		update.BadgeFlair = profile.BadgeFlair
	}

	if err := s.db.ApplyProgress(userID, update, now); err != nil {
		return 0, err
	}

	metrics.ChallengesClaimed.Inc()
	metrics.XPAwarded.WithLabelValues(string(domain.XPChallenge)).Add(float64(awarded))
	s.log.Info("challenge claimed",
		zap.String("id", challengeID),
		zap.String("period", def.PeriodKey(now)),
		zap.Int64("xp", awarded))

	return awarded, nil
}

// AwardXP credits XP from a feature event (assessment, session) and
// runs the refresh it triggers in the same write.
func (s *Service) AwardXP(userID string, source domain.XPSource, amount int64, ref string, qualifying bool, now time.Time) (Changeset, error) {
	return s.Apply(userID, Activity{Source: source, XP: amount, Ref: ref, Qualifying: qualifying}, now)
}

// AddTrackXP credits XP to a named mini-game track and returns its
// resolved state. Track XP never feeds the primary level.
func (s *Service) AddTrackXP(userID, name string, delta int64) (domain.GameTrack, error) {
	if delta < 0 {
		return domain.GameTrack{}, domain.ErrNegativeXP
	}
	total, err := s.db.AddTrackXP(userID, name, delta)
	if err != nil {
		return domain.GameTrack{}, fmt.Errorf("add track xp: %w", err)
	}
	row, err := s.db.GetTrack(userID, name)
	if err != nil {
		return domain.GameTrack{}, err
	}
	prestige := 0
	if row != nil {
		prestige = row.Prestige
		total = row.TotalXP
	}
	return ResolveTrack(name, total, prestige)
}

// Tracks resolves every stored track for display.
func (s *Service) Tracks(userID string) ([]domain.GameTrack, error) {
	rows, err := s.db.ListTracks(userID)
	if err != nil {
		return nil, err
	}
	tracks := make([]domain.GameTrack, 0, len(rows))
	for _, row := range rows {
		t, err := ResolveTrack(row.Name, row.TotalXP, row.Prestige)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// ─── Summary ────────────────────────────────────────────────────────────────

// Summary is the read-only progression view for the API and CLI.
type Summary struct {
	Profile      domain.Profile               `json:"profile"`
	Level        LevelInfo                    `json:"level"`
	Rank         string                       `json:"rank"`
	Counters     domain.Counters              `json:"counters"`
	Achievements []domain.UnlockedAchievement `json:"achievements"`
	Challenges   []ChallengeStatus            `json:"challenges"`
	Tracks       []domain.GameTrack           `json:"tracks"`
}

// Summarize reports current progression without mutating anything.
func (s *Service) Summarize(userID string, now time.Time) (Summary, error) {
	snap, err := s.loadSnapshot(userID, now)
	if err != nil {
		return Summary{}, err
	}

	// Level is always derived from the XP total, not the stored cache.
	level, err := ResolveLevel(s.engine.curve, snap.Profile.TotalXP)
	if err != nil {
		return Summary{}, err
	}
	snap.Profile.Level = level.Level

	unlocked, err := s.db.ListUnlockedAchievements(userID)
	if err != nil {
		return Summary{}, err
	}
	tracks, err := s.Tracks(userID)
	if err != nil {
		return Summary{}, err
	}

	var statuses []ChallengeStatus
	for _, ch := range s.engine.challenges {
		prog, err := EvaluateChallengeProgress(ch, snap.Counters)
		if err != nil {
			return Summary{}, err
		}
		key := ch.PeriodKey(now)
		claimed := snap.Claimed[ClaimKey(ch.ID, key)]
		statuses = append(statuses, ChallengeStatus{
			Def:       ch,
			Progress:  prog,
			PeriodKey: key,
			ExpiresAt: ch.PeriodEnd(now),
			Claimed:   claimed,
			Claimable: prog.IsComplete && !claimed,
		})
	}

	return Summary{
		Profile:      snap.Profile,
		Level:        level,
		Rank:         RankForLevel(level.Level),
		Counters:     snap.Counters,
		Achievements: unlocked,
		Challenges:   statuses,
		Tracks:       tracks,
	}, nil
}

// History returns the recent XP ledger, newest first.
func (s *Service) History(userID string, limit int) ([]domain.XPEvent, error) {
	return s.db.XPHistory(userID, limit)
}
