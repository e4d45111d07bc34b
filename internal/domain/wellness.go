package domain

import "time"

// ─── Mood ───────────────────────────────────────────────────────────────────

// MoodEntry is one daily mood check-in. One entry per calendar day is
// the qualifying activity that advances the streak.
type MoodEntry struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Score    int       `json:"score"` // 1 (struggling) … 5 (great)
	Tags     []string  `json:"tags,omitempty"`
	Note     string    `json:"note,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}

// ─── Assessments ────────────────────────────────────────────────────────────

// AssessmentKind identifies the standardized form taken.
type AssessmentKind string

const (
	AssessmentPHQ9 AssessmentKind = "phq9"
	AssessmentGAD7 AssessmentKind = "gad7"
)

// Assessment is one completed PHQ-9 or GAD-7 form. Score is the sum of
// the per-item answers (0-3 each); Severity is the standard band label.
type Assessment struct {
	ID       string         `json:"id"`
	UserID   string         `json:"user_id"`
	Kind     AssessmentKind `json:"kind"`
	Answers  []int          `json:"answers"`
	Score    int            `json:"score"`
	Severity string         `json:"severity"`
	TakenAt  time.Time      `json:"taken_at"`
}

// ─── Mindfulness ────────────────────────────────────────────────────────────

// MindfulnessSession is one completed breathing or meditation session.
type MindfulnessSession struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"` // "breathing", "meditation", "body_scan"
	Minutes     int       `json:"minutes"`
	CompletedAt time.Time `json:"completed_at"`
}

// ─── Community ──────────────────────────────────────────────────────────────

// Post is one entry in the community feed.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	Reactions int       `json:"reactions"`
	CreatedAt time.Time `json:"created_at"`
}
