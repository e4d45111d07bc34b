// Package sqlite provides SQLite-based persistent storage for MindWell.
// It plays the role of the user document store: profile snapshots,
// append-only unlock sets, atomic XP increments, and the wellness
// tables the progression counters are assembled from. Uses WAL mode for
// concurrent reads and crash-safe writes.
//
// Concurrency model: single-writer, last-writer-wins. Concurrent
// sessions are not coordinated here; duplicate unlock attempts are
// harmless because every unlock write is INSERT OR IGNORE and XP only
// ever moves by increment-by-delta.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Progression: per-user profile document
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id       TEXT PRIMARY KEY,
			display_name  TEXT NOT NULL DEFAULT '',
			total_xp      INTEGER NOT NULL DEFAULT 0,
			level         INTEGER NOT NULL DEFAULT 1,
			streak_count  INTEGER NOT NULL DEFAULT 0,
			last_activity INTEGER,
			themes        TEXT NOT NULL DEFAULT '[]',
			frames        TEXT NOT NULL DEFAULT '[]',
			badge_flair   BOOLEAN NOT NULL DEFAULT 0
		)`,

		// Append-only unlock sets. The composite primary keys make
		// every unlock write idempotent via INSERT OR IGNORE.
		`CREATE TABLE IF NOT EXISTS achievements (
			user_id     TEXT NOT NULL,
			id          TEXT NOT NULL,
			unlocked_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS reward_levels (
			user_id    TEXT NOT NULL,
			level      INTEGER NOT NULL,
			applied_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, level)
		)`,
		`CREATE TABLE IF NOT EXISTS challenge_claims (
			user_id    TEXT NOT NULL,
			claim_key  TEXT NOT NULL,
			claimed_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, claim_key)
		)`,

		// Per-activity leveling tracks
		`CREATE TABLE IF NOT EXISTS game_tracks (
			user_id  TEXT NOT NULL,
			name     TEXT NOT NULL,
			total_xp INTEGER NOT NULL DEFAULT 0,
			prestige INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, name)
		)`,

		// XP event ledger (append-only award history)
		`CREATE TABLE IF NOT EXISTS xp_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			source     TEXT NOT NULL,
			amount     INTEGER NOT NULL,
			ref        TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_events_user ON xp_events(user_id, created_at)`,

		// Wellness: mood check-ins, one per user per calendar day
		`CREATE TABLE IF NOT EXISTS moods (
			id        TEXT PRIMARY KEY,
			user_id   TEXT NOT NULL,
			day       TEXT NOT NULL,
			score     INTEGER NOT NULL,
			tags      TEXT NOT NULL DEFAULT '[]',
			note      TEXT NOT NULL DEFAULT '',
			logged_at INTEGER NOT NULL,
			UNIQUE (user_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_moods_user ON moods(user_id, logged_at)`,

		// Wellness: completed assessments (PHQ-9, GAD-7)
		`CREATE TABLE IF NOT EXISTS assessments (
			id       TEXT PRIMARY KEY,
			user_id  TEXT NOT NULL,
			kind     TEXT NOT NULL,
			answers  TEXT NOT NULL,
			score    INTEGER NOT NULL,
			severity TEXT NOT NULL,
			taken_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_user ON assessments(user_id, taken_at)`,

		// Wellness: mindfulness sessions
		`CREATE TABLE IF NOT EXISTS mindfulness_sessions (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			kind         TEXT NOT NULL,
			minutes      INTEGER NOT NULL,
			completed_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON mindfulness_sessions(user_id, completed_at)`,

		// Community feed
		`CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			body       TEXT NOT NULL,
			reactions  INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}
