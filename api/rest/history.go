package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/momentumhq/server/history"
	mw "github.com/momentumhq/server/middleware"
	"go.uber.org/zap"
)

// HistoryHandler serves the per-user XP ledger.
type HistoryHandler struct {
	history *history.Service
	logger  *zap.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(hist *history.Service, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: hist, logger: logger}
}

// List handles GET /api/gamify/history?limit=50.
func (h *HistoryHandler) List(c *gin.Context) {
	userID := mw.GetUserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.history.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("history read failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": rows})
}
