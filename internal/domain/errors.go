package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Validation errors. The progression engine fails fast on bad input
	// rather than clamping, so upstream corruption is never masked.
	ErrInvalidInput = errors.New("invalid input")
	ErrNegativeXP   = errors.New("xp must not be negative")
	ErrZeroDate     = errors.New("date must not be zero")

	// Catalog errors
	ErrUnknownCategory  = errors.New("unknown achievement category")
	ErrUnknownChallenge = errors.New("unknown challenge id")
	ErrUnknownEffect    = errors.New("unknown reward effect")

	// Challenge claim errors
	ErrChallengeIncomplete = errors.New("challenge target not reached")
	ErrChallengeExpired    = errors.New("challenge period has ended")

	// Store errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrTrackNotFound   = errors.New("game track not found")
	ErrPostNotFound    = errors.New("post not found")

	// Wellness errors
	ErrMoodAlreadyLogged = errors.New("mood already logged today")
	ErrBadMoodScore      = errors.New("mood score must be between 1 and 5")
	ErrBadAnswerCount    = errors.New("assessment answer count does not match form")
	ErrBadAnswerValue    = errors.New("assessment answers must be between 0 and 3")
	ErrBadDuration       = errors.New("session minutes must be positive")

	// Identity errors
	ErrNoUser      = errors.New("no signed-in user")
	ErrBadToken    = errors.New("session token invalid or expired")
	ErrEmptyUserID = errors.New("user id must not be empty")
)
