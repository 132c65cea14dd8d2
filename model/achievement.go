package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserAchievement is one row of the append-only award ledger.
// Repeatable achievements get one row per award.
type UserAchievement struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64          `gorm:"index:idx_ua_user;not null" json:"user_id"`
	AchievementID string         `gorm:"index:idx_ua_achievement;size:64;not null" json:"achievement_id"`
	EarnedAt      time.Time      `gorm:"not null" json:"earned_at"`
	XPAwarded     int            `gorm:"default:0" json:"xp_awarded"`
	AwardCount    int            `gorm:"default:1" json:"award_count"`
	Progress      datatypes.JSON `json:"progress"` // {"current": 10, "target": 10}
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}
