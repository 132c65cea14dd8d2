// Package stats computes the per-user statistics snapshot the orchestrator
// consumes. Aggregates are read from the XP ledger and streak tables and
// cached briefly; the gamification engine itself never touches storage.
package stats

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/momentumhq/server/cache"
	"github.com/momentumhq/server/gamify/event"
	"github.com/momentumhq/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const cacheTTL = 30 * time.Second

// Service builds UserStats snapshots.
type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

// New creates a stats Service.
func New(db *gorm.DB, c cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cache: c, logger: logger}
}

// Snapshot returns the current aggregate statistics for a user.
// Served from cache when fresh; cache failures fall through to the DB.
func (s *Service) Snapshot(ctx context.Context, userID int64) (event.UserStats, error) {
	key := cacheKey(userID)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var st event.UserStats
		if json.Unmarshal([]byte(cached), &st) == nil {
			return st, nil
		}
	}

	st, err := s.compute(ctx, userID)
	if err != nil {
		return event.UserStats{}, err
	}

	if buf, err := json.Marshal(st); err == nil {
		if err := s.cache.Set(ctx, key, string(buf), cacheTTL); err != nil {
			s.logger.Debug("stats cache write failed", zap.Error(err))
		}
	}
	return st, nil
}

// Invalidate drops the cached snapshot after an event is scored.
func (s *Service) Invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Del(ctx, cacheKey(userID)); err != nil {
		s.logger.Debug("stats cache invalidate failed", zap.Error(err))
	}
}

func (s *Service) compute(ctx context.Context, userID int64) (event.UserStats, error) {
	var st event.UserStats
	db := s.db.WithContext(ctx)

	type totals struct {
		XP int64
	}
	var t totals
	if err := db.Model(&model.XPEvent{}).
		Select("COALESCE(SUM(xp_awarded + achievement_xp), 0) AS xp").
		Where("user_id = ?", userID).
		Scan(&t).Error; err != nil {
		return st, err
	}
	st.TotalXP = t.XP

	counts := map[string]*int{
		"task_completed":  &st.TasksCompleted,
		"focus_completed": &st.FocusSessions,
	}
	for trigger, dst := range counts {
		var n int64
		if err := db.Model(&model.XPEvent{}).
			Where("user_id = ? AND trigger_kind = ?", userID, trigger).
			Count(&n).Error; err != nil {
			return st, err
		}
		*dst = int(n)
	}

	var perfect int64
	if err := db.Model(&model.XPEvent{}).
		Where("user_id = ? AND quality >= 1.0", userID).
		Count(&perfect).Error; err != nil {
		return st, err
	}
	st.PerfectQuality = int(perfect)

	var best int
	row := db.Model(&model.StreakRecord{}).
		Select("COALESCE(MAX(current_count), 0)").
		Where("user_id = ? AND status = ?", userID, "active").
		Row()
	if err := row.Scan(&best); err == nil {
		st.CurrentStreak = best
	}

	return st, nil
}

func cacheKey(userID int64) string {
	return "stats:" + strconv.FormatInt(userID, 10)
}
