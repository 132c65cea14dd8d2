package model

import (
	"time"

	"gorm.io/datatypes"
)

// XPEvent is one row of the XP ledger: a scored domain event with its
// reward outcome. The stats snapshot and the history endpoint aggregate
// over this table.
type XPEvent struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID       string         `gorm:"index:idx_xe_trace;size:36" json:"trace_id"`
	UserID        int64          `gorm:"index:idx_xe_user;not null" json:"user_id"`
	Trigger       string         `gorm:"column:trigger_kind;size:32;not null" json:"trigger"`
	BaseXP        int            `gorm:"default:0" json:"base_xp"`
	Multiplier    float64        `gorm:"default:1" json:"multiplier"`
	XPAwarded     int            `gorm:"default:0" json:"xp_awarded"`
	AchievementXP int            `gorm:"default:0" json:"achievement_xp"`
	RewardTier    string         `gorm:"size:16" json:"reward_tier"`
	Quality       *float64       `json:"quality"`
	Meta          datatypes.JSON `json:"meta"`
	CreatedAt     time.Time      `gorm:"index:idx_xe_created;autoCreateTime:milli" json:"created_at"`
}
