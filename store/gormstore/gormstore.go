// Package gormstore maps the engine store interfaces onto the relational
// models. It is a caller-side collaborator; the engines never see gorm.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/momentumhq/server/gamify/achievement"
	"github.com/momentumhq/server/gamify/streak"
	"github.com/momentumhq/server/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakStore implements streak.Store over the streak_records table.
type StreakStore struct {
	db *gorm.DB
}

// NewStreakStore creates a StreakStore.
func NewStreakStore(db *gorm.DB) *StreakStore {
	return &StreakStore{db: db}
}

func (s *StreakStore) Get(ctx context.Context, key streak.Key) (*streak.Record, error) {
	var row model.StreakRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", key.UserID, string(key.Kind)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, streak.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gormstore: get streak: %w", err)
	}
	return fromStreakRow(&row), nil
}

func (s *StreakStore) Upsert(ctx context.Context, rec *streak.Record) error {
	row := toStreakRow(rec)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_count", "best_count", "status",
			"last_activity", "started_at", "shields", "recovery_until",
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("gormstore: upsert streak: %w", err)
	}
	return nil
}

func (s *StreakStore) ListByUser(ctx context.Context, userID int64) ([]*streak.Record, error) {
	var rows []model.StreakRecord
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list streaks: %w", err)
	}
	out := make([]*streak.Record, len(rows))
	for i := range rows {
		out[i] = fromStreakRow(&rows[i])
	}
	return out, nil
}

func toStreakRow(rec *streak.Record) *model.StreakRecord {
	return &model.StreakRecord{
		UserID:        rec.UserID,
		Kind:          string(rec.Kind),
		CurrentCount:  rec.CurrentCount,
		BestCount:     rec.BestCount,
		Status:        string(rec.Status),
		LastActivity:  rec.LastActivity,
		StartedAt:     rec.StartedAt,
		Shields:       rec.Shields,
		RecoveryUntil: rec.RecoveryUntil,
	}
}

func fromStreakRow(row *model.StreakRecord) *streak.Record {
	return &streak.Record{
		UserID:        row.UserID,
		Kind:          streak.Kind(row.Kind),
		CurrentCount:  row.CurrentCount,
		BestCount:     row.BestCount,
		Status:        streak.Status(row.Status),
		LastActivity:  row.LastActivity,
		StartedAt:     row.StartedAt,
		Shields:       row.Shields,
		RecoveryUntil: row.RecoveryUntil,
	}
}

// Ledger implements achievement.Ledger over the user_achievements table.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a Ledger.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) List(ctx context.Context, userID int64) ([]achievement.Record, error) {
	var rows []model.UserAchievement
	if err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list ledger: %w", err)
	}
	out := make([]achievement.Record, len(rows))
	for i, row := range rows {
		out[i] = achievement.Record{
			UserID:        row.UserID,
			AchievementID: row.AchievementID,
			EarnedAt:      row.EarnedAt,
			XPAwarded:     row.XPAwarded,
			AwardCount:    row.AwardCount,
		}
	}
	return out, nil
}

func (l *Ledger) Count(ctx context.Context, userID int64, achievementID string) (int, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&model.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("gormstore: count ledger: %w", err)
	}
	return int(n), nil
}

func (l *Ledger) Append(ctx context.Context, rec achievement.Record) error {
	progress, _ := json.Marshal(map[string]int{"award_count": rec.AwardCount})
	row := &model.UserAchievement{
		UserID:        rec.UserID,
		AchievementID: rec.AchievementID,
		EarnedAt:      rec.EarnedAt,
		XPAwarded:     rec.XPAwarded,
		AwardCount:    rec.AwardCount,
		Progress:      datatypes.JSON(progress),
	}
	if err := l.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("gormstore: append ledger: %w", err)
	}
	return nil
}
