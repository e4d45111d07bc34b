package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mindwell-app/mindwell/internal/domain"
)

// ─── Profiles ───────────────────────────────────────────────────────────────

// EnsureProfile fetches the profile, creating an empty one on first use.
func (d *DB) EnsureProfile(userID, displayName string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrEmptyUserID
	}
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO profiles (user_id, display_name) VALUES (?, ?)`,
		userID, displayName,
	)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("ensure profile: %w", err)
	}
	p, err := d.GetProfile(userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if p == nil {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return *p, nil
}

// GetProfile retrieves a profile by user id. Returns nil if not found.
func (d *DB) GetProfile(userID string) (*domain.Profile, error) {
	row := d.db.QueryRow(
		`SELECT user_id, display_name, total_xp, level, streak_count, last_activity, themes, frames, badge_flair
		 FROM profiles WHERE user_id = ?`, userID,
	)
	return scanProfile(row)
}

// IncrementProfileXP atomically adds delta to the XP total. This is the
// increment-by-delta primitive that avoids lost updates between
// concurrent sessions.
func (d *DB) IncrementProfileXP(userID string, delta int64) error {
	_, err := d.db.Exec(
		`UPDATE profiles SET total_xp = total_xp + ? WHERE user_id = ?`,
		delta, userID,
	)
	return err
}

// ─── Unlock Sets ────────────────────────────────────────────────────────────

// UnlockedAchievementIDs returns the achievement id set for a user.
func (d *DB) UnlockedAchievementIDs(userID string) (map[string]bool, error) {
	rows, err := d.db.Query(`SELECT id FROM achievements WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = true
	}
	return set, rows.Err()
}

// ListUnlockedAchievements returns unlocks newest first.
func (d *DB) ListUnlockedAchievements(userID string) ([]domain.UnlockedAchievement, error) {
	rows, err := d.db.Query(
		`SELECT id, unlocked_at FROM achievements WHERE user_id = ? ORDER BY unlocked_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unlocks []domain.UnlockedAchievement
	for rows.Next() {
		var a domain.UnlockedAchievement
		var at int64
		if err := rows.Scan(&a.ID, &at); err != nil {
			return nil, err
		}
		a.UnlockedAt = time.Unix(at, 0)
		unlocks = append(unlocks, a)
	}
	return unlocks, rows.Err()
}

// AppliedRewardLevels returns the reward idempotency set for a user.
func (d *DB) AppliedRewardLevels(userID string) (map[int]bool, error) {
	rows, err := d.db.Query(`SELECT level FROM reward_levels WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[int]bool)
	for rows.Next() {
		var lvl int
		if err := rows.Scan(&lvl); err != nil {
			return nil, err
		}
		set[lvl] = true
	}
	return set, rows.Err()
}

// ClaimedChallengeKeys returns the claim key set for a user.
func (d *DB) ClaimedChallengeKeys(userID string) (map[string]bool, error) {
	rows, err := d.db.Query(`SELECT claim_key FROM challenge_claims WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		set[key] = true
	}
	return set, rows.Err()
}

// ─── Progress Updates ───────────────────────────────────────────────────────

// XPAward is one XP ledger entry to record alongside its profile delta.
type XPAward struct {
	Source domain.XPSource
	Amount int64
	Ref    string
}

// ProgressUpdate is everything one evaluate cycle decided to persist.
// ApplyProgress writes it in a single transaction so XP, unlocks, and
// streak fields can never be observed partially applied.
type ProgressUpdate struct {
	Awards []XPAward

	// Mood, when set, is the check-in that triggered this cycle. It
	// lands in the same transaction as everything else; a same-day
	// duplicate aborts the whole update with ErrMoodAlreadyLogged.
	Mood *domain.MoodEntry

	UnlockAchievements []string
	ApplyRewardLevels  []int
	ClaimKeys          []string

	SetStreak    bool
	StreakCount  int
	LastActivity time.Time

	CachedLevel int // display cache only, recomputed on every read

	SetEffects bool
	Themes     []string
	Frames     []string
	BadgeFlair bool
}

// ApplyProgress commits one changeset atomically.
func (d *DB) ApplyProgress(userID string, u ProgressUpdate, now time.Time) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin progress tx: %w", err)
	}
	defer tx.Rollback()

	if u.Mood != nil {
		inserted, err := insertMood(tx, *u.Mood)
		if err != nil {
			return fmt.Errorf("insert mood: %w", err)
		}
		if !inserted {
			return domain.ErrMoodAlreadyLogged
		}
	}

	for _, a := range u.Awards {
		if a.Amount == 0 {
			continue
		}
		if _, err := tx.Exec(
			`UPDATE profiles SET total_xp = total_xp + ? WHERE user_id = ?`,
			a.Amount, userID,
		); err != nil {
			return fmt.Errorf("apply xp delta: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO xp_events (user_id, source, amount, ref, created_at) VALUES (?, ?, ?, ?, ?)`,
			userID, string(a.Source), a.Amount, a.Ref, now.Unix(),
		); err != nil {
			return fmt.Errorf("record xp event: %w", err)
		}
	}

	for _, id := range u.UnlockAchievements {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO achievements (user_id, id, unlocked_at) VALUES (?, ?, ?)`,
			userID, id, now.Unix(),
		); err != nil {
			return fmt.Errorf("unlock achievement %s: %w", id, err)
		}
	}
	for _, lvl := range u.ApplyRewardLevels {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO reward_levels (user_id, level, applied_at) VALUES (?, ?, ?)`,
			userID, lvl, now.Unix(),
		); err != nil {
			return fmt.Errorf("apply reward level %d: %w", lvl, err)
		}
	}
	for _, key := range u.ClaimKeys {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO challenge_claims (user_id, claim_key, claimed_at) VALUES (?, ?, ?)`,
			userID, key, now.Unix(),
		); err != nil {
			return fmt.Errorf("record claim %s: %w", key, err)
		}
	}

	if u.SetStreak {
		if _, err := tx.Exec(
			`UPDATE profiles SET streak_count = ?, last_activity = ? WHERE user_id = ?`,
			u.StreakCount, u.LastActivity.Unix(), userID,
		); err != nil {
			return fmt.Errorf("set streak: %w", err)
		}
	}
	if u.CachedLevel > 0 {
		if _, err := tx.Exec(
			`UPDATE profiles SET level = ? WHERE user_id = ?`,
			u.CachedLevel, userID,
		); err != nil {
			return fmt.Errorf("cache level: %w", err)
		}
	}
	if u.SetEffects {
		themes, err := json.Marshal(u.Themes)
		if err != nil {
			return fmt.Errorf("encode themes: %w", err)
		}
		frames, err := json.Marshal(u.Frames)
		if err != nil {
			return fmt.Errorf("encode frames: %w", err)
		}
		if _, err := tx.Exec(
			`UPDATE profiles SET themes = ?, frames = ?, badge_flair = ? WHERE user_id = ?`,
			string(themes), string(frames), u.BadgeFlair, userID,
		); err != nil {
			return fmt.Errorf("set effects: %w", err)
		}
	}

	return tx.Commit()
}

// ─── Game Tracks ────────────────────────────────────────────────────────────

// TrackRow is the persisted subset of a game track.
type TrackRow struct {
	Name     string
	TotalXP  int64
	Prestige int
}

// AddTrackXP atomically adds XP to a track, creating it on first use.
// Returns the new total.
func (d *DB) AddTrackXP(userID, name string, delta int64) (int64, error) {
	_, err := d.db.Exec(
		`INSERT INTO game_tracks (user_id, name, total_xp) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, name) DO UPDATE SET total_xp = total_xp + excluded.total_xp`,
		userID, name, delta,
	)
	if err != nil {
		return 0, fmt.Errorf("add track xp: %w", err)
	}
	var total int64
	err = d.db.QueryRow(
		`SELECT total_xp FROM game_tracks WHERE user_id = ? AND name = ?`, userID, name,
	).Scan(&total)
	return total, err
}

// GetTrack retrieves one track row. Returns nil if the track has never
// earned XP.
func (d *DB) GetTrack(userID, name string) (*TrackRow, error) {
	var t TrackRow
	err := d.db.QueryRow(
		`SELECT name, total_xp, prestige FROM game_tracks WHERE user_id = ? AND name = ?`,
		userID, name,
	).Scan(&t.Name, &t.TotalXP, &t.Prestige)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTracks returns all track rows for a user, alphabetical.
func (d *DB) ListTracks(userID string) ([]TrackRow, error) {
	rows, err := d.db.Query(
		`SELECT name, total_xp, prestige FROM game_tracks WHERE user_id = ? ORDER BY name`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []TrackRow
	for rows.Next() {
		var t TrackRow
		if err := rows.Scan(&t.Name, &t.TotalXP, &t.Prestige); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// ─── XP History ─────────────────────────────────────────────────────────────

// XPHistory returns recent XP events, newest first.
func (d *DB) XPHistory(userID string, limit int) ([]domain.XPEvent, error) {
	rows, err := d.db.Query(
		`SELECT id, source, amount, COALESCE(ref, ''), created_at
		 FROM xp_events WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.XPEvent
	for rows.Next() {
		var e domain.XPEvent
		var at int64
		if err := rows.Scan(&e.ID, &e.Source, &e.Amount, &e.Ref, &at); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(at, 0)
		events = append(events, e)
	}
	return events, rows.Err()
}

// ─── Scanners ───────────────────────────────────────────────────────────────

func scanProfile(s scanner) (*domain.Profile, error) {
	var p domain.Profile
	var lastActivity sql.NullInt64
	var themes, frames string

	err := s.Scan(&p.UserID, &p.DisplayName, &p.TotalXP, &p.Level,
		&p.StreakCount, &lastActivity, &themes, &frames, &p.BadgeFlair)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	if lastActivity.Valid {
		p.LastActivityDate = time.Unix(lastActivity.Int64, 0)
	}
	if err := json.Unmarshal([]byte(themes), &p.UnlockedThemes); err != nil {
		return nil, fmt.Errorf("decode themes: %w", err)
	}
	if err := json.Unmarshal([]byte(frames), &p.UnlockedFrames); err != nil {
		return nil, fmt.Errorf("decode frames: %w", err)
	}
	return &p, nil
}
