package gamify_test

import (
	"context"
	"testing"
	"time"

	"github.com/momentumhq/server/gamify"
	"github.com/momentumhq/server/gamify/achievement"
	"github.com/momentumhq/server/gamify/event"
	"github.com/momentumhq/server/gamify/reward"
	"github.com/momentumhq/server/gamify/streak"
	"github.com/momentumhq/server/gamify/xp"
	"github.com/momentumhq/server/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrchestrator(t *testing.T) *gamify.Orchestrator {
	t.Helper()
	xpEngine := xp.NewEngine(xp.Config{})
	streakMgr, err := streak.NewManager(memory.NewStreakStore(), nil, nil)
	require.NoError(t, err)
	achEngine, err := achievement.NewEngine(nil, memory.NewLedger(), nil)
	require.NoError(t, err)
	rewardSvc, err := reward.NewService(reward.Config{}, reward.NewSeededRand(7), nil)
	require.NoError(t, err)
	return gamify.New(xpEngine, streakMgr, achEngine, rewardSvc, nil)
}

func taskEvent(at time.Time) event.Event {
	return event.Event{
		BasePoints:  20,
		Difficulty:  event.DifficultyMedium,
		Priority:    event.PriorityMedium,
		CreatedAt:   at,
		CompletedAt: at,
	}
}

func TestHandleEvent_FullPipeline(t *testing.T) {
	o := newOrchestrator(t)
	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	res, err := o.HandleEvent(context.Background(), 1, event.TriggerTaskCompleted, taskEvent(at), event.UserStats{})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.XPAwarded, 20, "20 base with time bonus, possibly multiplied")
	assert.Equal(t, 20, res.Breakdown.BasePoints)
	require.NotNil(t, res.Streak)
	assert.Equal(t, 1, res.Streak.CurrentCount)

	// First task unlocks the getting-started achievement.
	require.NotEmpty(t, res.Achievements)
	assert.Equal(t, "first_task", res.Achievements[0].AchievementID)
	assert.Equal(t, res.Achievements[0].XPAwarded, res.AchievementXP)

	assert.Equal(t, int64(res.XPAwarded+res.AchievementXP), res.TotalXP)
	assert.GreaterOrEqual(t, res.Level, 1)
	assert.NotEmpty(t, res.Message)
}

func TestHandleEvent_UnknownTrigger(t *testing.T) {
	o := newOrchestrator(t)
	_, err := o.HandleEvent(context.Background(), 1, "logged_in", taskEvent(time.Now()), event.UserStats{})
	assert.Error(t, err)
}

func TestHandleEvent_InvalidActivity(t *testing.T) {
	o := newOrchestrator(t)
	ev := taskEvent(time.Now())
	ev.BasePoints = 0
	_, err := o.HandleEvent(context.Background(), 1, event.TriggerTaskCompleted, ev, event.UserStats{})
	assert.Error(t, err)
}

func TestHandleEvent_StreakMultiplierApplies(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Build a 3-day streak, then score a 4th-day event.
	for i := 0; i < 3; i++ {
		_, err := o.Streaks().RecordActivity(ctx, 1, streak.KindTaskCompletion, base.AddDate(0, 0, i))
		require.NoError(t, err)
	}
	res, err := o.HandleEvent(ctx, 1, event.TriggerTaskCompleted, taskEvent(base.AddDate(0, 0, 3)), event.UserStats{CurrentStreak: 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.10, res.Breakdown.StreakMultiplier, 1e-9)
	assert.Equal(t, 4, res.Streak.CurrentCount)
}

func TestHandleEvent_SeparateStreakPerTrigger(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	_, err := o.HandleEvent(ctx, 1, event.TriggerTaskCompleted, taskEvent(at), event.UserStats{})
	require.NoError(t, err)
	res, err := o.HandleEvent(ctx, 1, event.TriggerFocusCompleted, taskEvent(at), event.UserStats{})
	require.NoError(t, err)

	assert.Equal(t, streak.KindFocusSession, res.Streak.Kind)
	recs, err := o.Streaks().Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestHandleEvent_EnergyLogged(t *testing.T) {
	o := newOrchestrator(t)
	pct := 20
	ev := taskEvent(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	ev.EnergyPct = &pct

	res, err := o.HandleEvent(context.Background(), 1, event.TriggerEnergyLogged, ev, event.UserStats{})
	require.NoError(t, err)
	assert.Equal(t, streak.KindEnergyLog, res.Streak.Kind)
	// Low energy multiplies the reward roll by 1.5.
	assert.GreaterOrEqual(t, res.Reward.Multiplier, 1.5)
}

func TestHandleEvent_ConcurrentSameUser(t *testing.T) {
	o := newOrchestrator(t)
	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	const n = 20
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := o.HandleEvent(context.Background(), 1, event.TriggerTaskCompleted, taskEvent(at), event.UserStats{})
			done <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-done)
	}

	// Same-day events collapse into a single streak day.
	rec, err := o.Streaks().CheckStatus(context.Background(), 1, streak.KindTaskCompletion, at)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.CurrentCount)

	// The one-shot achievement was awarded exactly once.
	earned, err := o.Achievements().List(context.Background(), 1)
	require.NoError(t, err)
	firstTask := 0
	for _, rec := range earned {
		if rec.AchievementID == "first_task" {
			firstTask++
		}
	}
	assert.Equal(t, 1, firstTask)
}

func TestCheckIn(t *testing.T) {
	o := newOrchestrator(t)

	res, rec, err := o.CheckIn(context.Background(), 1, streak.KindTaskCompletion, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.CurrentCount)
	assert.Equal(t, 10, res.BaseXP)
	assert.Equal(t, 10, res.TotalXP, "day-1 check-in has no multiplier")
}

func TestCheckIn_UnknownKind(t *testing.T) {
	o := newOrchestrator(t)
	_, _, err := o.CheckIn(context.Background(), 1, "hydration", 10)
	assert.Error(t, err)
}

func TestMicroStep(t *testing.T) {
	o := newOrchestrator(t)
	res := o.MicroStep(5)
	assert.Equal(t, 5, res.BaseXP)
	assert.GreaterOrEqual(t, res.TotalXP, 5)
}

func TestLevel(t *testing.T) {
	cases := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 1},
		{400, 2},
		{899, 2},
		{900, 3},
		{10000, 10},
		{-5, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, gamify.Level(tc.xp), "xp %d", tc.xp)
	}
}

func TestXPForLevel(t *testing.T) {
	assert.Equal(t, int64(100), gamify.XPForLevel(1))
	assert.Equal(t, int64(400), gamify.XPForLevel(2))
	assert.Equal(t, int64(250000), gamify.XPForLevel(50))
	assert.Equal(t, int64(100), gamify.XPForLevel(0), "levels below 1 clamp up")
}

func TestLevel_RoundTripsWithXPForLevel(t *testing.T) {
	for lvl := 2; lvl <= 60; lvl++ {
		atThreshold := gamify.XPForLevel(lvl)
		assert.Equal(t, lvl, gamify.Level(atThreshold), "level %d threshold", lvl)
		assert.Equal(t, lvl-1, gamify.Level(atThreshold-1), "just below level %d", lvl)
	}
}
