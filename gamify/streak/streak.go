// Package streak tracks per-user consecutive-day behavior with shield-based
// recovery and a grace-period status check.
package streak

import (
	"errors"
	"time"
)

// Kind is a category of recurring behavior tracked independently.
type Kind string

const (
	KindTaskCompletion Kind = "task_completion"
	KindFocusSession   Kind = "focus_session"
	KindEnergyLog      Kind = "energy_log"
	KindProgressUpdate Kind = "progress_update"
)

// Status is the streak state machine position.
type Status string

const (
	StatusActive    Status = "active"
	StatusBroken    Status = "broken"
	StatusProtected Status = "protected"
	// StatusRecovering is reserved for a future grace-window flow; no
	// transition produces it yet but stores must round-trip it.
	StatusRecovering Status = "recovering"
)

// Key identifies one streak record.
type Key struct {
	UserID int64
	Kind   Kind
}

// Record is the mutable per-(user, kind) streak state. Mutated exclusively
// by the Manager; created lazily on first activity and never deleted.
type Record struct {
	UserID        int64      `json:"user_id"`
	Kind          Kind       `json:"kind"`
	CurrentCount  int        `json:"current_count"`
	BestCount     int        `json:"best_count"`
	Status        Status     `json:"status"`
	LastActivity  time.Time  `json:"last_activity"` // calendar day, midnight UTC
	StartedAt     time.Time  `json:"started_at"`
	Shields       int        `json:"shields"`
	RecoveryUntil *time.Time `json:"recovery_until,omitempty"`
}

// Requirement is the static per-kind configuration.
type Requirement struct {
	MinActionsPerPeriod int
	GraceHours          int
	Description         string
}

// DefaultRequirements is the built-in streak catalogue.
func DefaultRequirements() map[Kind]Requirement {
	return map[Kind]Requirement{
		KindTaskCompletion: {MinActionsPerPeriod: 1, GraceHours: 30, Description: "Complete at least one task per day"},
		KindFocusSession:   {MinActionsPerPeriod: 1, GraceHours: 30, Description: "Finish at least one focus session per day"},
		KindEnergyLog:      {MinActionsPerPeriod: 1, GraceHours: 36, Description: "Log your energy level daily"},
		KindProgressUpdate: {MinActionsPerPeriod: 1, GraceHours: 48, Description: "Record progress on any goal"},
	}
}

// ErrNotFound is returned by stores when no record exists for a key.
var ErrNotFound = errors.New("streak: record not found")

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
