// Package integration exercises the full engine stack over real SQLite
// stores: orchestrator, gorm-backed streak and ledger stores, the async
// history writer, and the stats snapshot service.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momentumhq/server/gamify"
	"github.com/momentumhq/server/gamify/achievement"
	"github.com/momentumhq/server/gamify/event"
	"github.com/momentumhq/server/gamify/reward"
	"github.com/momentumhq/server/gamify/streak"
	"github.com/momentumhq/server/gamify/xp"
	"github.com/momentumhq/server/history"
	"github.com/momentumhq/server/stats"
	"github.com/momentumhq/server/store/gormstore"
	"github.com/momentumhq/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stack struct {
	db      *gorm.DB
	orch    *gamify.Orchestrator
	history *history.Service
	stats   *stats.Service
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)

	xpEngine := xp.NewEngine(xp.Config{})
	streakMgr, err := streak.NewManager(gormstore.NewStreakStore(db), nil, nil)
	require.NoError(t, err)
	achEngine, err := achievement.NewEngine(achievement.Catalog(), gormstore.NewLedger(db), nil)
	require.NoError(t, err)
	rewardSvc, err := reward.NewService(reward.Config{}, reward.NewSeededRand(11), nil)
	require.NoError(t, err)

	h := history.New(db, nil)
	t.Cleanup(func() { h.Stop(context.Background()) })

	return &stack{
		db:      db,
		orch:    gamify.New(xpEngine, streakMgr, achEngine, rewardSvc, nil),
		history: h,
		stats:   stats.New(db, c, nil),
	}
}

// submitTask mirrors what the events handler does per request: snapshot
// stats, run the orchestrator, record history, invalidate the snapshot.
func (s *stack) submitTask(ctx context.Context, t *testing.T, userID int64, ev event.Event) *gamify.Result {
	t.Helper()
	snap, err := s.stats.Snapshot(ctx, userID)
	require.NoError(t, err)
	res, err := s.orch.HandleEvent(ctx, userID, event.TriggerTaskCompleted, ev, snap)
	require.NoError(t, err)
	s.history.Record(uuid.NewString(), res)
	s.stats.Invalidate(ctx, userID)
	return res
}

func dayEvent(day time.Time) event.Event {
	return event.Event{
		BasePoints:  20,
		Difficulty:  event.DifficultyMedium,
		Priority:    event.PriorityMedium,
		CreatedAt:   day,
		CompletedAt: day,
	}
}

func TestMultiDayFlow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	const userID int64 = 42

	// Day 1: first task unlocks the getting-started achievement.
	res := s.submitTask(ctx, t, userID, dayEvent(base))
	require.NotEmpty(t, res.Achievements)
	assert.Equal(t, "first_task", res.Achievements[0].AchievementID)
	require.NotNil(t, res.Streak)
	assert.Equal(t, 1, res.Streak.CurrentCount)
	day1XP := res.XPAwarded

	// Days 2 and 3 extend the streak.
	for i := 1; i <= 2; i++ {
		res = s.submitTask(ctx, t, userID, dayEvent(base.AddDate(0, 0, i)))
		assert.Equal(t, i+1, res.Streak.CurrentCount)
	}

	// Day 4: the 3-day tier bonus multiplies the deterministic score.
	res = s.submitTask(ctx, t, userID, dayEvent(base.AddDate(0, 0, 3)))
	assert.Equal(t, 4, res.Streak.CurrentCount)
	assert.InDelta(t, 1.10, res.Breakdown.StreakMultiplier, 1e-9)
	assert.Greater(t, res.Breakdown.Total, day1XP/2, "multiplied score is not collapsing")

	// The day-4 call saw the 3-day streak achievement unlock.
	ids := make(map[string]bool)
	earned, err := s.orch.Achievements().List(ctx, userID)
	require.NoError(t, err)
	for _, rec := range earned {
		ids[rec.AchievementID] = true
	}
	assert.True(t, ids["first_task"])
	assert.True(t, ids["streak_3"])

	// Flush the async writer and check the durable trail.
	s.history.Stop(ctx)
	events, err := s.history.ListByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, events, 4)
	for _, e := range events {
		assert.Equal(t, string(event.TriggerTaskCompleted), e.Trigger)
		assert.Positive(t, e.XPAwarded)
	}

	// Stats snapshot reflects all four days plus achievement XP.
	snap, err := s.stats.Snapshot(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.TasksCompleted)
	assert.Equal(t, 4, snap.CurrentStreak)
	assert.Positive(t, snap.TotalXP)
	assert.GreaterOrEqual(t, snap.TotalXP, res.TotalXP-int64(res.XPAwarded), "snapshot keeps pace with results")
}

func TestStreakBreaksAcrossGap(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	const userID int64 = 7

	for i := 0; i < 3; i++ {
		s.submitTask(ctx, t, userID, dayEvent(base.AddDate(0, 0, i)))
	}

	// A 5-day absence with no shields resets the count.
	res := s.submitTask(ctx, t, userID, dayEvent(base.AddDate(0, 0, 7)))
	assert.Equal(t, 1, res.Streak.CurrentCount)
	assert.Equal(t, 3, res.Streak.BestCount)
	assert.Equal(t, streak.StatusBroken, res.Streak.Status)

	// The next consecutive day resumes an active streak.
	res = s.submitTask(ctx, t, userID, dayEvent(base.AddDate(0, 0, 8)))
	assert.Equal(t, 2, res.Streak.CurrentCount)
	assert.Equal(t, streak.StatusActive, res.Streak.Status)
}

func TestShieldBridgesGap(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	const userID int64 = 9

	for i := 0; i < 3; i++ {
		s.submitTask(ctx, t, userID, dayEvent(base.AddDate(0, 0, i)))
	}
	_, err := s.orch.Streaks().AddShields(ctx, userID, streak.KindTaskCompletion, 1)
	require.NoError(t, err)

	// Missing one day consumes the shield instead of resetting. The count
	// holds rather than advancing for the skipped day.
	res := s.submitTask(ctx, t, userID, dayEvent(base.AddDate(0, 0, 4)))
	assert.Equal(t, 3, res.Streak.CurrentCount)
	assert.Equal(t, 0, res.Streak.Shields)
	assert.Equal(t, streak.StatusProtected, res.Streak.Status)
}

func TestStatsIsolatedPerUser(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	day := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	s.submitTask(ctx, t, 1, dayEvent(day))
	s.submitTask(ctx, t, 2, dayEvent(day))
	s.submitTask(ctx, t, 2, dayEvent(day.AddDate(0, 0, 1)))
	s.history.Stop(ctx)

	snap1, err := s.stats.Snapshot(ctx, 1)
	require.NoError(t, err)
	snap2, err := s.stats.Snapshot(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, snap1.TasksCompleted)
	assert.Equal(t, 2, snap2.TasksCompleted)
	assert.Equal(t, 2, snap2.CurrentStreak)
}
