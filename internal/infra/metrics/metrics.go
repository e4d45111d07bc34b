// Package metrics exposes Prometheus instruments for the progression
// engine. Everything is registered at init via promauto so call sites
// just bump package vars.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Refreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindwell_progression_refreshes_total",
		Help: "Progression evaluation cycles run.",
	})

	XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindwell_xp_awarded_total",
		Help: "XP awarded, by source.",
	}, []string{"source"})

	AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindwell_achievements_unlocked_total",
		Help: "Achievements unlocked, by rarity.",
	}, []string{"rarity"})

	ChallengesClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindwell_challenges_claimed_total",
		Help: "Challenge rewards claimed.",
	})

	MoodsLogged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindwell_moods_logged_total",
		Help: "Mood check-ins recorded.",
	})

	AssessmentsTaken = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindwell_assessments_taken_total",
		Help: "Assessments completed, by kind.",
	}, []string{"kind"})

	MindfulnessMinutes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindwell_mindfulness_minutes_total",
		Help: "Mindfulness minutes completed.",
	})

	CurrentLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mindwell_current_level",
		Help: "Resolved level after the latest refresh.",
	})

	CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mindwell_current_streak_days",
		Help: "Streak length after the latest refresh.",
	})
)
