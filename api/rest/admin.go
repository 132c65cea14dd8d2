package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momentumhq/server/gamify"
	"github.com/momentumhq/server/gamify/streak"
	"go.uber.org/zap"
)

// AdminHandler holds operator-only endpoints. Routes using it sit behind
// the IP whitelist.
type AdminHandler struct {
	orch   *gamify.Orchestrator
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(orch *gamify.Orchestrator, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{orch: orch, logger: logger}
}

type grantShieldsRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Kind   string `json:"kind"    binding:"required"`
	Count  int    `json:"count"   binding:"required,min=1"`
}

// GrantShields handles POST /api/admin/shields. Support tooling uses it
// to compensate users after outages.
func (h *AdminHandler) GrantShields(c *gin.Context) {
	var req grantShieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind := streak.Kind(req.Kind)
	if _, ok := h.orch.Streaks().Requirements()[kind]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown streak kind"})
		return
	}

	rec, err := h.orch.Streaks().AddShields(c.Request.Context(), req.UserID, kind, req.Count)
	if err != nil {
		h.logger.Error("shield grant failed",
			zap.Int64("user_id", req.UserID), zap.String("kind", req.Kind), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": rec})
}
