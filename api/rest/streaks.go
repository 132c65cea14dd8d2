package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momentumhq/server/config"
	"github.com/momentumhq/server/gamify"
	"github.com/momentumhq/server/gamify/streak"
	mw "github.com/momentumhq/server/middleware"
	"go.uber.org/zap"
)

// StreaksHandler exposes streak state and the deterministic daily rewards.
type StreaksHandler struct {
	orch   *gamify.Orchestrator
	gcfg   config.GamifyConfig
	logger *zap.Logger
}

// NewStreaksHandler creates a StreaksHandler.
func NewStreaksHandler(orch *gamify.Orchestrator, gcfg config.GamifyConfig, logger *zap.Logger) *StreaksHandler {
	return &StreaksHandler{orch: orch, gcfg: gcfg, logger: logger}
}

// List handles GET /api/gamify/streaks. Each streak is re-evaluated
// against the clock so an expired one reports as broken without waiting
// for the sweep.
func (h *StreaksHandler) List(c *gin.Context) {
	userID := mw.GetUserID(c)
	ctx := c.Request.Context()
	now := time.Now().UTC()

	records, err := h.orch.Streaks().Snapshot(ctx, userID)
	if err != nil {
		h.logger.Error("streak snapshot failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]*streak.Record, 0, len(records))
	for _, rec := range records {
		checked, err := h.orch.Streaks().CheckStatus(ctx, userID, rec.Kind, now)
		if err != nil {
			out = append(out, rec)
			continue
		}
		out = append(out, checked)
	}

	mult, err := h.orch.Streaks().Multiplier(ctx, userID)
	if err != nil {
		mult = 1.0
	}
	c.JSON(http.StatusOK, gin.H{"streaks": out, "multiplier": mult})
}

type checkInRequest struct {
	Kind string `json:"kind"`
}

// CheckIn handles POST /api/gamify/checkin. The kind defaults to the
// task-completion streak.
func (h *StreaksHandler) CheckIn(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req checkInRequest
	_ = c.ShouldBindJSON(&req)
	kind := streak.Kind(req.Kind)
	if req.Kind == "" {
		kind = streak.KindTaskCompletion
	}
	if _, ok := h.orch.Streaks().Requirements()[kind]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown streak kind"})
		return
	}

	reward, rec, err := h.orch.CheckIn(c.Request.Context(), userID, kind, h.gcfg.CheckInBaseXP)
	if err != nil {
		h.logger.Error("check-in failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reward": reward, "streak": rec})
}

// MicroStep handles POST /api/gamify/microstep.
func (h *StreaksHandler) MicroStep(c *gin.Context) {
	res := h.orch.MicroStep(h.gcfg.MicroStepBaseXP)
	c.JSON(http.StatusOK, gin.H{"reward": res})
}
