// Package event defines the plain records that cross the gamification
// engine boundary: the domain event, the trigger taxonomy, and the
// user-statistics snapshot the caller computes before each call.
package event

import "time"

// TriggerKind categorizes a domain event for achievement evaluation.
type TriggerKind string

const (
	TriggerTaskCompleted   TriggerKind = "task_completed"
	TriggerFocusCompleted  TriggerKind = "focus_completed"
	TriggerEnergyLogged    TriggerKind = "energy_logged"
	TriggerProgressUpdated TriggerKind = "progress_updated"
)

// KnownTrigger reports whether k is one of the defined trigger kinds.
func KnownTrigger(k TriggerKind) bool {
	switch k {
	case TriggerTaskCompleted, TriggerFocusCompleted, TriggerEnergyLogged, TriggerProgressUpdated:
		return true
	}
	return false
}

// Difficulty is the five-tier difficulty rating of an activity.
type Difficulty string

const (
	DifficultyTrivial Difficulty = "trivial"
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyExpert  Difficulty = "expert"
)

// Priority is the four-tier priority rating of an activity.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Event is one unit of user activity submitted for scoring.
// Optional fields use zero values (durations) or nil pointers (quality,
// energy) to mean "absent"; the engines never invent defaults for them.
type Event struct {
	BasePoints int        `json:"base_points"`
	Difficulty Difficulty `json:"difficulty"`
	Priority   Priority   `json:"priority"`

	// EstimatedDuration and ActualDuration feed the efficiency bonus.
	// Zero means the duration was not reported.
	EstimatedDuration time.Duration `json:"estimated_duration"`
	ActualDuration    time.Duration `json:"actual_duration"`

	// Quality is a self- or system-reported score in [0,1].
	Quality *float64 `json:"quality,omitempty"`

	// EnergyPct is the user's reported energy level in [0,100],
	// set on energy-log events.
	EnergyPct *int `json:"energy_pct,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Meta carries free-form keys the engine does not interpret.
	Meta map[string]any `json:"meta,omitempty"`
}

// UserStats is the aggregate snapshot the caller computes from durable
// storage before each orchestrator call. The engine reads it, augments it
// with the event being scored, and never writes it back.
type UserStats struct {
	TotalXP        int64 `json:"total_xp"`
	TasksCompleted int   `json:"tasks_completed"`
	FocusSessions  int   `json:"focus_sessions"`
	PerfectQuality int   `json:"perfect_quality"`

	// CurrentStreak is the longest currently-active streak across all
	// tracked streak kinds.
	CurrentStreak int `json:"current_streak"`
}
