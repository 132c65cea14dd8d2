// Package history records every scored event to the XP ledger
// asynchronously in batches.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/momentumhq/server/gamify"
	"github.com/momentumhq/server/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service writes XP events to the database off the request path.
type Service struct {
	db     *gorm.DB
	ch     chan *model.XPEvent
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a history Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &Service{
		db:     db,
		ch:     make(chan *model.XPEvent, 1024),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Record enqueues one orchestrator result for async DB write.
// A full queue drops the entry rather than blocking the request.
func (svc *Service) Record(traceID string, res *gamify.Result) {
	meta, _ := json.Marshal(map[string]any{
		"tier":         res.Reward.Tier,
		"bonus_reason": res.Reward.BonusReason,
		"streak_bonus": res.Reward.StreakBonusXP,
		"mystery":      res.Reward.MysteryUnlocked,
	})
	row := &model.XPEvent{
		TraceID:       traceID,
		UserID:        res.UserID,
		Trigger:       string(res.Trigger),
		BaseXP:        res.Breakdown.Total,
		Multiplier:    res.Reward.Multiplier,
		XPAwarded:     res.XPAwarded,
		AchievementXP: res.AchievementXP,
		RewardTier:    string(res.Reward.Tier),
		Meta:          datatypes.JSON(meta),
	}
	if res.Breakdown.QualityBonus > 0 {
		q := res.Breakdown.QualityBonus / 0.4
		row.Quality = &q
	}
	select {
	case svc.ch <- row:
	default:
		svc.logger.Warn("history channel full, dropping event",
			zap.Int64("user_id", res.UserID),
			zap.String("trigger", string(res.Trigger)))
	}
}

// ListByUser returns the most recent XP events for a user.
func (svc *Service) ListByUser(ctx context.Context, userID int64, limit int) ([]model.XPEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []model.XPEvent
	err := svc.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	select {
	case <-svc.stopCh:
	default:
		close(svc.stopCh)
	}
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	batch := make([]*model.XPEvent, 0, 100)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("history batch write failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case row := <-svc.ch:
			batch = append(batch, row)
			if len(batch) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			// Drain remaining entries.
			for {
				select {
				case row := <-svc.ch:
					batch = append(batch, row)
				default:
					flush()
					return
				}
			}
		}
	}
}
