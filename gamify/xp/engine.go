// Package xp implements the deterministic activity scoring engine.
package xp

import (
	"fmt"
	"math"
	"time"

	"github.com/momentumhq/server/gamify/event"
)

// Config holds the scoring bounds.
type Config struct {
	MinXP int `mapstructure:"min_xp"`
	MaxXP int `mapstructure:"max_xp"`
}

// Activity is one scored unit of work. Immutable for the duration of a
// scoring call; the caller owns it.
type Activity struct {
	BasePoints        int
	Difficulty        event.Difficulty
	Priority          event.Priority
	EstimatedDuration time.Duration // zero = not reported
	ActualDuration    time.Duration // zero = not reported
	Quality           *float64      // nil = not reported, otherwise [0,1]
	StreakMultiplier  float64       // from the streak manager; 0 treated as 1.0
	CreatedAt         time.Time
	CompletedAt       time.Time // zero = unknown, no time bonus
}

// Breakdown exposes every intermediate factor of one score.
// Score derives its result from these exact values, so the breakdown can
// never drift from the final number.
type Breakdown struct {
	BasePoints       int     `json:"base_points"`
	DifficultyFactor float64 `json:"difficulty_factor"`
	PriorityFactor   float64 `json:"priority_factor"`
	EfficiencyBonus  float64 `json:"efficiency_bonus"` // 0–0.5
	QualityBonus     float64 `json:"quality_bonus"`    // 0–0.4
	StreakMultiplier float64 `json:"streak_multiplier"`
	TimeBonus        float64 `json:"time_bonus"` // 0–0.2
	Raw              float64 `json:"raw"`        // pre-clamp value
	Total            int     `json:"total"`      // clamped to [MinXP, MaxXP]
}

// Engine is the pure scoring function. Safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine, applying the default bounds [1, 1000]
// where the config leaves them unset.
func NewEngine(cfg Config) *Engine {
	if cfg.MinXP <= 0 {
		cfg.MinXP = 1
	}
	if cfg.MaxXP <= 0 {
		cfg.MaxXP = 1000
	}
	return &Engine{cfg: cfg}
}

var difficultyFactors = map[event.Difficulty]float64{
	event.DifficultyTrivial: 0.5,
	event.DifficultyEasy:    0.75,
	event.DifficultyMedium:  1.0,
	event.DifficultyHard:    1.5,
	event.DifficultyExpert:  2.0,
}

var priorityFactors = map[event.Priority]float64{
	event.PriorityLow:    0.8,
	event.PriorityMedium: 1.0,
	event.PriorityHigh:   1.3,
	event.PriorityUrgent: 1.6,
}

// Score computes the bounded XP value for one activity.
// Deterministic and side-effect-free.
func (e *Engine) Score(a Activity) (int, error) {
	b, err := e.Breakdown(a)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

// Breakdown computes every scoring factor for one activity.
func (e *Engine) Breakdown(a Activity) (Breakdown, error) {
	var b Breakdown

	if a.BasePoints <= 0 {
		return b, fmt.Errorf("xp: base points must be positive, got %d", a.BasePoints)
	}
	df, ok := difficultyFactors[a.Difficulty]
	if !ok {
		return b, fmt.Errorf("xp: unknown difficulty %q", a.Difficulty)
	}
	pf, ok := priorityFactors[a.Priority]
	if !ok {
		return b, fmt.Errorf("xp: unknown priority %q", a.Priority)
	}
	if a.Quality != nil && (*a.Quality < 0 || *a.Quality > 1) {
		return b, fmt.Errorf("xp: quality must be in [0,1], got %f", *a.Quality)
	}

	b.BasePoints = a.BasePoints
	b.DifficultyFactor = df
	b.PriorityFactor = pf
	b.EfficiencyBonus = efficiencyBonus(a.EstimatedDuration, a.ActualDuration)
	if a.Quality != nil {
		b.QualityBonus = 0.4 * *a.Quality
	}
	b.StreakMultiplier = a.StreakMultiplier
	if b.StreakMultiplier <= 0 {
		b.StreakMultiplier = 1.0
	}
	b.TimeBonus = timeBonus(a.CreatedAt, a.CompletedAt)

	raw := float64(b.BasePoints) * b.DifficultyFactor * b.PriorityFactor
	raw *= 1 + b.EfficiencyBonus + b.QualityBonus
	raw *= b.StreakMultiplier
	raw *= 1 + b.TimeBonus
	b.Raw = raw
	b.Total = e.clamp(int(raw))
	return b, nil
}

// MinXP returns the configured lower scoring bound.
func (e *Engine) MinXP() int { return e.cfg.MinXP }

// MaxXP returns the configured upper scoring bound.
func (e *Engine) MaxXP() int { return e.cfg.MaxXP }

func (e *Engine) clamp(v int) int {
	if v < e.cfg.MinXP {
		return e.cfg.MinXP
	}
	if v > e.cfg.MaxXP {
		return e.cfg.MaxXP
	}
	return v
}

// efficiencyBonus scales linearly from 0% at ratio 1.0 (finished exactly
// on estimate) to 50% at ratio 2.0 (finished in half the estimate or less).
// Ratios below 1.0 (ran over the estimate) yield zero, not a penalty.
func efficiencyBonus(estimated, actual time.Duration) float64 {
	if estimated <= 0 || actual <= 0 {
		return 0
	}
	ratio := float64(estimated) / float64(actual)
	if ratio <= 1.0 {
		return 0
	}
	return math.Min(0.5, 0.5*(ratio-1.0))
}

// timeBonus awards 10% for same-day completion and a further 10% when the
// activity completes within 24 hours of creation.
func timeBonus(created, completed time.Time) float64 {
	if created.IsZero() || completed.IsZero() || completed.Before(created) {
		return 0
	}
	bonus := 0.0
	cy, cm, cd := created.Date()
	dy, dm, dd := completed.Date()
	if cy == dy && cm == dm && cd == dd {
		bonus += 0.10
	}
	if completed.Sub(created) <= 24*time.Hour {
		bonus += 0.10
	}
	return bonus
}
