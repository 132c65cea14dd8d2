package model

import "time"

// StreakRecord is the persisted per-(user, kind) streak state.
type StreakRecord struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64      `gorm:"uniqueIndex:idx_user_kind;not null" json:"user_id"`
	Kind          string     `gorm:"uniqueIndex:idx_user_kind;size:32;not null" json:"kind"`
	CurrentCount  int        `gorm:"default:0" json:"current_count"`
	BestCount     int        `gorm:"default:0" json:"best_count"`
	Status        string     `gorm:"size:16;not null" json:"status"`
	LastActivity  time.Time  `json:"last_activity"`
	StartedAt     time.Time  `json:"started_at"`
	Shields       int        `gorm:"default:0" json:"shields"`
	RecoveryUntil *time.Time `json:"recovery_until"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
