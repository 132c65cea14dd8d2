// Package rest exposes the gamification engine over HTTP.
package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momentumhq/server/cache"
	"github.com/momentumhq/server/gamify"
	"github.com/momentumhq/server/gamify/event"
	"github.com/momentumhq/server/history"
	mw "github.com/momentumhq/server/middleware"
	"github.com/momentumhq/server/stats"
	"go.uber.org/zap"
)

// EventsHandler scores domain events and reports the resulting profile.
type EventsHandler struct {
	orch    *gamify.Orchestrator
	stats   *stats.Service
	history *history.Service
	cache   cache.Cache
	logger  *zap.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(orch *gamify.Orchestrator, st *stats.Service, hist *history.Service, c cache.Cache, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{orch: orch, stats: st, history: hist, cache: c, logger: logger}
}

type submitEventRequest struct {
	Trigger           string         `json:"trigger"      binding:"required"`
	BasePoints        int            `json:"base_points"  binding:"required,min=1"`
	Difficulty        string         `json:"difficulty"   binding:"required"`
	Priority          string         `json:"priority"     binding:"required"`
	EstimatedMinutes  int            `json:"estimated_minutes"`
	ActualMinutes     int            `json:"actual_minutes"`
	Quality           *float64       `json:"quality"`
	EnergyPct         *int           `json:"energy_pct"`
	CreatedAt         time.Time      `json:"created_at"`
	CompletedAt       time.Time      `json:"completed_at"`
	Meta              map[string]any `json:"meta"`
}

// Submit handles POST /api/gamify/events.
func (h *EventsHandler) Submit(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req submitEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	trigger := event.TriggerKind(req.Trigger)
	if !event.KnownTrigger(trigger) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown trigger"})
		return
	}

	ev := event.Event{
		BasePoints:        req.BasePoints,
		Difficulty:        event.Difficulty(req.Difficulty),
		Priority:          event.Priority(req.Priority),
		EstimatedDuration: time.Duration(req.EstimatedMinutes) * time.Minute,
		ActualDuration:    time.Duration(req.ActualMinutes) * time.Minute,
		Quality:           req.Quality,
		EnergyPct:         req.EnergyPct,
		CreatedAt:         req.CreatedAt,
		CompletedAt:       req.CompletedAt,
		Meta:              req.Meta,
	}
	// CompletedAt anchors the streak day, so it gets a server-side
	// default. CreatedAt stays as submitted: the time bonus is earned by
	// real client timestamps, not granted to every bare payload.
	if ev.CompletedAt.IsZero() {
		ev.CompletedAt = time.Now().UTC()
	}

	ctx := c.Request.Context()
	snapshot, err := h.stats.Snapshot(ctx, userID)
	if err != nil {
		h.logger.Error("stats snapshot failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	res, err := h.orch.HandleEvent(ctx, userID, trigger, ev, snapshot)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.history.Record(mw.GetTraceID(c), res)
	h.stats.Invalidate(ctx, userID)
	if err := h.cache.ZAdd(ctx, LeaderboardZKey, float64(res.TotalXP), strconv.FormatInt(userID, 10)); err != nil {
		h.logger.Debug("leaderboard update failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, res)
}

// Profile handles GET /api/gamify/profile.
func (h *EventsHandler) Profile(c *gin.Context) {
	userID := mw.GetUserID(c)
	ctx := c.Request.Context()

	snapshot, err := h.stats.Snapshot(ctx, userID)
	if err != nil {
		h.logger.Error("stats snapshot failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	level := gamify.Level(snapshot.TotalXP)
	c.JSON(http.StatusOK, gin.H{
		"user_id":          userID,
		"total_xp":         snapshot.TotalXP,
		"level":            level,
		"xp_to_next_level": gamify.XPForLevel(level+1) - snapshot.TotalXP,
		"tasks_completed":  snapshot.TasksCompleted,
		"focus_sessions":   snapshot.FocusSessions,
		"perfect_quality":  snapshot.PerfectQuality,
		"current_streak":   snapshot.CurrentStreak,
	})
}
