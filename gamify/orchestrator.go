// Package gamify composes the XP engine, streak manager, achievement
// engine, and reward service behind a single entry point per domain event.
package gamify

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/momentumhq/server/gamify/achievement"
	"github.com/momentumhq/server/gamify/event"
	"github.com/momentumhq/server/gamify/reward"
	"github.com/momentumhq/server/gamify/streak"
	"github.com/momentumhq/server/gamify/xp"
	"go.uber.org/zap"
)

// Result is the aggregate response for one domain event.
type Result struct {
	UserID  int64             `json:"user_id"`
	Trigger event.TriggerKind `json:"trigger"`

	XPAwarded int           `json:"xp_awarded"`
	Breakdown xp.Breakdown  `json:"breakdown"`
	Reward    reward.Result `json:"reward"`

	Achievements  []achievement.Record `json:"achievements"`
	AchievementXP int                  `json:"achievement_xp"`

	Streak *streak.Record `json:"streak,omitempty"`

	TotalXP       int64  `json:"total_xp"`
	Level         int    `json:"level"`
	XPToNextLevel int64  `json:"xp_to_next_level"`
	Message       string `json:"message"`
}

// Orchestrator owns no durable state; it composes the four engines over
// their injected stores and is safe to reconstruct per request.
type Orchestrator struct {
	xp           *xp.Engine
	streaks      *streak.Manager
	achievements *achievement.Engine
	rewards      *reward.Service
	locks        userLocks
	logger       *zap.Logger
}

// New creates an Orchestrator over already-constructed engines.
func New(x *xp.Engine, s *streak.Manager, a *achievement.Engine, r *reward.Service, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{xp: x, streaks: s, achievements: a, rewards: r, logger: logger}
}

// streakKindFor maps a trigger to the streak it advances.
var streakKindFor = map[event.TriggerKind]streak.Kind{
	event.TriggerTaskCompleted:   streak.KindTaskCompletion,
	event.TriggerFocusCompleted:  streak.KindFocusSession,
	event.TriggerEnergyLogged:    streak.KindEnergyLog,
	event.TriggerProgressUpdated: streak.KindProgressUpdate,
}

// HandleEvent processes one domain event end to end:
// streak multiplier → XP score → reward roll → streak update →
// achievement checks → level computation → aggregate result.
// Calls for the same user are serialized; stats is the caller-computed
// snapshot and is not written back.
func (o *Orchestrator) HandleEvent(ctx context.Context, userID int64, trigger event.TriggerKind, ev event.Event, stats event.UserStats) (*Result, error) {
	kind, ok := streakKindFor[trigger]
	if !ok {
		return nil, fmt.Errorf("gamify: unknown trigger %q", trigger)
	}

	mu := o.locks.lock(userID)
	defer mu.Unlock()

	// (1) Current multiplier, before today's activity is recorded.
	mult, err := o.streaks.Multiplier(ctx, userID)
	if err != nil {
		// A multiplier read failure must not void the XP award.
		o.logger.Warn("streak multiplier unavailable, using base",
			zap.Int64("user_id", userID), zap.Error(err))
		mult = 1.0
	}

	// (2) Deterministic score. Invalid input rejects the whole call.
	breakdown, err := o.xp.Breakdown(activityFrom(ev, mult))
	if err != nil {
		return nil, err
	}

	// (3) Advance the streak for this trigger's kind.
	day := ev.CompletedAt
	if day.IsZero() {
		day = ev.CreatedAt
	}
	streakRec, err := o.streaks.RecordActivity(ctx, userID, kind, day)
	if err != nil {
		o.logger.Warn("streak update failed",
			zap.Int64("user_id", userID), zap.String("kind", string(kind)), zap.Error(err))
	}

	// Variable-ratio layer on top of the deterministic score.
	rollOpts := reward.RollOptions{EnergyPct: ev.EnergyPct}
	if ph, ok := ev.Meta["power_hour"].(bool); ok {
		rollOpts.PowerHourActive = ph
	}
	if streakRec != nil {
		rollOpts.StreakDays = streakRec.CurrentCount
	}
	rewardRes := o.rewards.Roll(breakdown.Total, rollOpts)

	// A streak-shield unlock is the one mystery with a durable effect.
	if rewardRes.MysteryContent != nil && rewardRes.MysteryContent.Kind == reward.MysteryStreakShield {
		if _, err := o.streaks.AddShields(ctx, userID, kind, 1); err != nil {
			o.logger.Warn("shield grant failed",
				zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	res := &Result{
		UserID:    userID,
		Trigger:   trigger,
		XPAwarded: rewardRes.TotalXP,
		Breakdown: breakdown,
		Reward:    rewardRes,
		Streak:    streakRec,
	}

	// (4) Achievement checks against stats refreshed with this event.
	// The snapshot predates the event being scored, so fold it in before
	// evaluating count thresholds.
	checkStats := stats
	checkStats.TotalXP += int64(res.XPAwarded)
	switch trigger {
	case event.TriggerTaskCompleted:
		checkStats.TasksCompleted++
	case event.TriggerFocusCompleted:
		checkStats.FocusSessions++
	}
	if ev.Quality != nil && *ev.Quality >= 1.0 {
		checkStats.PerfectQuality++
	}
	if streakRec != nil && streakRec.CurrentCount > checkStats.CurrentStreak {
		checkStats.CurrentStreak = streakRec.CurrentCount
	}
	awarded, err := o.achievements.Check(ctx, userID, trigger, ev, checkStats)
	if err != nil {
		// Isolated: the XP award stands even if a check fails midway.
		o.logger.Warn("achievement check failed",
			zap.Int64("user_id", userID), zap.Error(err))
	}
	res.Achievements = awarded

	// (5) Sum achievement XP.
	for _, rec := range awarded {
		res.AchievementXP += rec.XPAwarded
	}

	// (6) Level from the post-event total.
	res.TotalXP = checkStats.TotalXP + int64(res.AchievementXP)
	res.Level = Level(res.TotalXP)
	res.XPToNextLevel = XPForLevel(res.Level+1) - res.TotalXP

	// (7) Feedback line for the presentation layer.
	res.Message = feedback(res)
	return res, nil
}

// CheckIn runs the deterministic daily check-in reward for one streak kind.
func (o *Orchestrator) CheckIn(ctx context.Context, userID int64, kind streak.Kind, baseXP int) (*reward.Result, *streak.Record, error) {
	mu := o.locks.lock(userID)
	defer mu.Unlock()

	rec, err := o.streaks.RecordActivity(ctx, userID, kind, dayNow())
	if err != nil {
		return nil, nil, err
	}
	res := o.rewards.DailyCheckIn(baseXP, rec.CurrentCount)
	return &res, rec, nil
}

// MicroStep runs the low-variance micro-step roll. No streak or
// achievement side effects.
func (o *Orchestrator) MicroStep(baseXP int) reward.Result {
	return o.rewards.MicroStep(baseXP)
}

// Streaks exposes the streak manager for direct queries.
func (o *Orchestrator) Streaks() *streak.Manager { return o.streaks }

// Achievements exposes the achievement engine for direct queries.
func (o *Orchestrator) Achievements() *achievement.Engine { return o.achievements }

// Level computes the user level from total XP:
// level = max(1, floor(sqrt(total_xp / 100))).
func Level(totalXP int64) int {
	if totalXP < 0 {
		totalXP = 0
	}
	lvl := int(math.Sqrt(float64(totalXP) / 100))
	if lvl < 1 {
		return 1
	}
	return lvl
}

// XPForLevel returns the total XP at which the given level is reached.
func XPForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(level) * int64(level) * 100
}

func activityFrom(ev event.Event, mult float64) xp.Activity {
	return xp.Activity{
		BasePoints:        ev.BasePoints,
		Difficulty:        ev.Difficulty,
		Priority:          ev.Priority,
		EstimatedDuration: ev.EstimatedDuration,
		ActualDuration:    ev.ActualDuration,
		Quality:           ev.Quality,
		StreakMultiplier:  mult,
		CreatedAt:         ev.CreatedAt,
		CompletedAt:       ev.CompletedAt,
	}
}

func feedback(res *Result) string {
	if len(res.Achievements) > 0 {
		return fmt.Sprintf("+%d XP, achievement unlocked! (level %d)", res.XPAwarded+res.AchievementXP, res.Level)
	}
	if res.Reward.Tier != reward.TierNormal {
		return fmt.Sprintf("%s +%d XP (level %d)", res.Reward.BonusReason, res.XPAwarded, res.Level)
	}
	return fmt.Sprintf("+%d XP (level %d)", res.XPAwarded, res.Level)
}

func dayNow() time.Time {
	return time.Now().UTC()
}
