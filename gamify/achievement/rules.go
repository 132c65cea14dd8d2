package achievement

import (
	"fmt"

	"github.com/momentumhq/server/gamify/event"
)

// Rule is a closed set of pure predicates over (event, stats). Every
// variant carries its own typed requirement payload; evaluation is an
// exhaustive type switch, no name lookup.
type Rule interface {
	isRule()
}

// TaskCount fires when the user's lifetime completed-task total reaches Target.
type TaskCount struct{ Target int }

// FocusSessionCount fires when the lifetime focus-session total reaches Target.
type FocusSessionCount struct{ Target int }

// FocusDuration fires when a single focus session lasts at least Minutes.
type FocusDuration struct{ Minutes int }

// StreakCount fires when the user's current streak reaches Target days.
type StreakCount struct{ Target int }

// TotalXP fires when lifetime XP reaches Target.
type TotalXP struct{ Target int64 }

// PerfectQuality fires when the perfect-quality completion total reaches Target.
type PerfectQuality struct{ Target int }

// CompletionBefore fires when the event completes at or before Hour (early bird).
type CompletionBefore struct{ Hour int }

// CompletionAfter fires when the event completes at or after Hour (night owl).
type CompletionAfter struct{ Hour int }

func (TaskCount) isRule()         {}
func (FocusSessionCount) isRule() {}
func (FocusDuration) isRule()     {}
func (StreakCount) isRule()       {}
func (TotalXP) isRule()           {}
func (PerfectQuality) isRule()    {}
func (CompletionBefore) isRule()  {}
func (CompletionAfter) isRule()   {}

// validateRule checks the requirement payload at catalogue load.
func validateRule(id string, r Rule) error {
	switch v := r.(type) {
	case TaskCount:
		if v.Target <= 0 {
			return fmt.Errorf("achievement %q: task count target must be positive", id)
		}
	case FocusSessionCount:
		if v.Target <= 0 {
			return fmt.Errorf("achievement %q: focus session target must be positive", id)
		}
	case FocusDuration:
		if v.Minutes <= 0 {
			return fmt.Errorf("achievement %q: focus duration must be positive", id)
		}
	case StreakCount:
		if v.Target <= 0 {
			return fmt.Errorf("achievement %q: streak target must be positive", id)
		}
	case TotalXP:
		if v.Target <= 0 {
			return fmt.Errorf("achievement %q: xp target must be positive", id)
		}
	case PerfectQuality:
		if v.Target <= 0 {
			return fmt.Errorf("achievement %q: perfect quality target must be positive", id)
		}
	case CompletionBefore:
		if v.Hour < 0 || v.Hour > 23 {
			return fmt.Errorf("achievement %q: hour must be in [0,23]", id)
		}
	case CompletionAfter:
		if v.Hour < 0 || v.Hour > 23 {
			return fmt.Errorf("achievement %q: hour must be in [0,23]", id)
		}
	case nil:
		return fmt.Errorf("achievement %q: rule is required", id)
	default:
		return fmt.Errorf("achievement %q: unknown rule type %T", id, r)
	}
	return nil
}

// eval runs the rule predicate against one event and the stats snapshot.
func eval(r Rule, ev event.Event, stats event.UserStats) (bool, error) {
	switch v := r.(type) {
	case TaskCount:
		return stats.TasksCompleted >= v.Target, nil
	case FocusSessionCount:
		return stats.FocusSessions >= v.Target, nil
	case FocusDuration:
		if ev.ActualDuration <= 0 {
			return false, fmt.Errorf("achievement: focus duration rule requires actual_duration")
		}
		return int(ev.ActualDuration.Minutes()) >= v.Minutes, nil
	case StreakCount:
		return stats.CurrentStreak >= v.Target, nil
	case TotalXP:
		return stats.TotalXP >= v.Target, nil
	case PerfectQuality:
		return stats.PerfectQuality >= v.Target, nil
	case CompletionBefore:
		if ev.CompletedAt.IsZero() {
			return false, fmt.Errorf("achievement: completion hour rule requires completed_at")
		}
		return ev.CompletedAt.Hour() <= v.Hour, nil
	case CompletionAfter:
		if ev.CompletedAt.IsZero() {
			return false, fmt.Errorf("achievement: completion hour rule requires completed_at")
		}
		return ev.CompletedAt.Hour() >= v.Hour, nil
	}
	return false, fmt.Errorf("achievement: unknown rule type %T", r)
}

// progress reports (current, target) for count-based rules; ok is false for
// rules with no meaningful partial progress (the hour-of-day predicates).
func progress(r Rule, stats event.UserStats) (current, target int, ok bool) {
	switch v := r.(type) {
	case TaskCount:
		return stats.TasksCompleted, v.Target, true
	case FocusSessionCount:
		return stats.FocusSessions, v.Target, true
	case StreakCount:
		return stats.CurrentStreak, v.Target, true
	case TotalXP:
		return int(stats.TotalXP), int(v.Target), true
	case PerfectQuality:
		return stats.PerfectQuality, v.Target, true
	}
	return 0, 0, false
}
