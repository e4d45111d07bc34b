package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mindwell-app/mindwell/internal/domain"
)

// dayKey is the calendar-day bucket for mood uniqueness.
const dayKey = "2006-01-02"

// minWellnessSamples is the fewest mood check-ins the trailing window
// must hold before the wellness score counts.
const minWellnessSamples = 3

// ─── Moods ──────────────────────────────────────────────────────────────────

// InsertMood records a mood entry. Returns false if a mood was already
// logged on that calendar day (the one-per-day rule, enforced by the
// unique index so concurrent sessions cannot double-log).
func (d *DB) InsertMood(m domain.MoodEntry) (bool, error) {
	return insertMood(d.db, m)
}

// insertMood runs against either the pool or an open transaction, so
// ApplyProgress can land the row atomically with its XP and streak.
func insertMood(e execer, m domain.MoodEntry) (bool, error) {
	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return false, fmt.Errorf("encode tags: %w", err)
	}
	result, err := e.Exec(
		`INSERT OR IGNORE INTO moods (id, user_id, day, score, tags, note, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.LoggedAt.Format(dayKey), m.Score, string(tags), m.Note, m.LoggedAt.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// ListMoods returns recent mood entries, newest first.
func (d *DB) ListMoods(userID string, limit int) ([]domain.MoodEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, score, tags, note, logged_at
		 FROM moods WHERE user_id = ? ORDER BY logged_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.MoodEntry
	for rows.Next() {
		m, err := scanMood(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *m)
	}
	return entries, rows.Err()
}

// MoodCountOn returns how many moods were logged on a calendar day
// (0 or 1 under the one-per-day rule).
func (d *DB) MoodCountOn(userID string, day time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM moods WHERE user_id = ? AND day = ?`,
		userID, day.Format(dayKey),
	).Scan(&count)
	return count, err
}

// AvgMoodSince returns the average mood score since a cutoff and how
// many entries the window holds.
func (d *DB) AvgMoodSince(userID string, since time.Time) (float64, int, error) {
	var avg sql.NullFloat64
	var n int
	err := d.db.QueryRow(
		`SELECT AVG(score), COUNT(*) FROM moods WHERE user_id = ? AND logged_at >= ?`,
		userID, since.Unix(),
	).Scan(&avg, &n)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, n, nil
}

// ─── Assessments ────────────────────────────────────────────────────────────

// InsertAssessment records a completed assessment.
func (d *DB) InsertAssessment(a domain.Assessment) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT INTO assessments (id, user_id, kind, answers, score, severity, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, string(a.Kind), string(answers), a.Score, a.Severity, a.TakenAt.Unix(),
	)
	return err
}

// ListAssessments returns recent assessments, newest first.
func (d *DB) ListAssessments(userID string, limit int) ([]domain.Assessment, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, kind, answers, score, severity, taken_at
		 FROM assessments WHERE user_id = ? ORDER BY taken_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *a)
	}
	return results, rows.Err()
}

// CountAssessments returns the lifetime assessment count.
func (d *DB) CountAssessments(userID string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM assessments WHERE user_id = ?`, userID,
	).Scan(&count)
	return count, err
}

// CountAssessmentsSince returns assessments taken since a cutoff.
func (d *DB) CountAssessmentsSince(userID string, since time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM assessments WHERE user_id = ? AND taken_at >= ?`,
		userID, since.Unix(),
	).Scan(&count)
	return count, err
}

// ─── Mindfulness Sessions ───────────────────────────────────────────────────

// InsertSession records a completed mindfulness session.
func (d *DB) InsertSession(s domain.MindfulnessSession) error {
	_, err := d.db.Exec(
		`INSERT INTO mindfulness_sessions (id, user_id, kind, minutes, completed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Kind, s.Minutes, s.CompletedAt.Unix(),
	)
	return err
}

// ListSessions returns recent sessions, newest first.
func (d *DB) ListSessions(userID string, limit int) ([]domain.MindfulnessSession, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, kind, minutes, completed_at
		 FROM mindfulness_sessions WHERE user_id = ? ORDER BY completed_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.MindfulnessSession
	for rows.Next() {
		var s domain.MindfulnessSession
		var at int64
		if err := rows.Scan(&s.ID, &s.UserID, &s.Kind, &s.Minutes, &at); err != nil {
			return nil, err
		}
		s.CompletedAt = time.Unix(at, 0)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// SumMinutes returns the lifetime mindfulness minute total.
func (d *DB) SumMinutes(userID string) (int, error) {
	var total sql.NullInt64
	err := d.db.QueryRow(
		`SELECT SUM(minutes) FROM mindfulness_sessions WHERE user_id = ?`, userID,
	).Scan(&total)
	return int(total.Int64), err
}

// SumMinutesSince returns mindfulness minutes since a cutoff.
func (d *DB) SumMinutesSince(userID string, since time.Time) (int, error) {
	var total sql.NullInt64
	err := d.db.QueryRow(
		`SELECT SUM(minutes) FROM mindfulness_sessions WHERE user_id = ? AND completed_at >= ?`,
		userID, since.Unix(),
	).Scan(&total)
	return int(total.Int64), err
}

// CountSessionsSince returns sessions completed since a cutoff.
func (d *DB) CountSessionsSince(userID string, since time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM mindfulness_sessions WHERE user_id = ? AND completed_at >= ?`,
		userID, since.Unix(),
	).Scan(&count)
	return count, err
}

// ─── Community Posts ────────────────────────────────────────────────────────

// InsertPost adds a post to the feed.
func (d *DB) InsertPost(p domain.Post) error {
	_, err := d.db.Exec(
		`INSERT INTO posts (id, user_id, body, reactions, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Body, p.Reactions, p.CreatedAt.Unix(),
	)
	return err
}

// ListPosts returns the feed, newest first.
func (d *DB) ListPosts(limit int) ([]domain.Post, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, body, reactions, created_at
		 FROM posts ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		var at int64
		if err := rows.Scan(&p.ID, &p.UserID, &p.Body, &p.Reactions, &at); err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(at, 0)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// AddReaction atomically bumps a post's reaction count.
func (d *DB) AddReaction(postID string) error {
	result, err := d.db.Exec(
		`UPDATE posts SET reactions = reactions + 1 WHERE id = ?`, postID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// ─── Counters Snapshot ──────────────────────────────────────────────────────

// LoadCounters assembles the aggregate counter snapshot the progression
// engine evaluates against. CommunityHelpCount is intentionally left at
// zero — no feature tracks "helping" yet, so the community achievements
// stay locked.
func (d *DB) LoadCounters(userID string, now time.Time) (domain.Counters, error) {
	var c domain.Counters
	var err error

	p, err := d.GetProfile(userID)
	if err != nil {
		return c, fmt.Errorf("load counters: %w", err)
	}
	if p != nil {
		c.CurrentStreakDays = p.StreakCount
	}

	if c.AssessmentsCompleted, err = d.CountAssessments(userID); err != nil {
		return c, fmt.Errorf("count assessments: %w", err)
	}
	if c.TotalMindfulnessMinutes, err = d.SumMinutes(userID); err != nil {
		return c, fmt.Errorf("sum minutes: %w", err)
	}

	// Wellness score: trailing 14-day mood average mapped onto 0–100.
	// One or two check-ins is noise, not a trend; the score stays 0
	// until the window holds enough entries to mean something.
	avg, n, err := d.AvgMoodSince(userID, now.AddDate(0, 0, -14))
	if err != nil {
		return c, fmt.Errorf("avg mood: %w", err)
	}
	if n >= minWellnessSamples {
		c.WellnessScorePercent = (avg - 1) / 4 * 100
	}

	y, m, day := now.Date()
	startOfDay := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -weekdayOffset(startOfDay))

	if c.MoodEntriesToday, err = d.MoodCountOn(userID, now); err != nil {
		return c, fmt.Errorf("count moods today: %w", err)
	}
	if c.MindfulnessMinutesToday, err = d.SumMinutesSince(userID, startOfDay); err != nil {
		return c, fmt.Errorf("sum minutes today: %w", err)
	}
	if c.AssessmentsThisWeek, err = d.CountAssessmentsSince(userID, startOfWeek); err != nil {
		return c, fmt.Errorf("count assessments this week: %w", err)
	}
	if c.SessionsThisWeek, err = d.CountSessionsSince(userID, startOfWeek); err != nil {
		return c, fmt.Errorf("count sessions this week: %w", err)
	}

	return c, nil
}

// weekdayOffset returns days since Monday (0 on Monday, 6 on Sunday).
func weekdayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ─── Scanners ───────────────────────────────────────────────────────────────

func scanMood(s scanner) (*domain.MoodEntry, error) {
	var m domain.MoodEntry
	var tags string
	var at int64
	err := s.Scan(&m.ID, &m.UserID, &m.Score, &tags, &m.Note, &at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.LoggedAt = time.Unix(at, 0)
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &m, nil
}

func scanAssessment(s scanner) (*domain.Assessment, error) {
	var a domain.Assessment
	var answers string
	var at int64
	err := s.Scan(&a.ID, &a.UserID, &a.Kind, &answers, &a.Score, &a.Severity, &at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.TakenAt = time.Unix(at, 0)
	if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return &a, nil
}
