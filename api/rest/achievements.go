package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momentumhq/server/gamify"
	"github.com/momentumhq/server/gamify/achievement"
	mw "github.com/momentumhq/server/middleware"
	"github.com/momentumhq/server/stats"
	"go.uber.org/zap"
)

// AchievementsHandler serves the catalogue, the per-user ledger, and
// progress toward unearned achievements.
type AchievementsHandler struct {
	orch   *gamify.Orchestrator
	stats  *stats.Service
	logger *zap.Logger
}

// NewAchievementsHandler creates an AchievementsHandler.
func NewAchievementsHandler(orch *gamify.Orchestrator, st *stats.Service, logger *zap.Logger) *AchievementsHandler {
	return &AchievementsHandler{orch: orch, stats: st, logger: logger}
}

// catalogEntry is the wire form of one catalogue definition. The rule
// payload stays internal.
type catalogEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Rarity      string `json:"rarity"`
	XPReward    int    `json:"xp_reward"`
	Repeatable  bool   `json:"repeatable"`
	MaxAwards   int    `json:"max_awards,omitempty"`
	Prereqs     []string `json:"prereqs,omitempty"`
}

// Catalog handles GET /api/gamify/achievements.
func (h *AchievementsHandler) Catalog(c *gin.Context) {
	defs := h.orch.Achievements().Definitions()
	out := make([]catalogEntry, len(defs))
	for i, d := range defs {
		out[i] = catalogEntry{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Icon:        d.Icon,
			Category:    string(d.Category),
			Rarity:      string(d.Rarity),
			XPReward:    d.XPReward,
			Repeatable:  d.Repeatable,
			MaxAwards:   d.MaxAwards,
			Prereqs:     d.Prereqs,
		}
	}
	c.JSON(http.StatusOK, gin.H{"achievements": out})
}

// Earned handles GET /api/gamify/achievements/earned.
func (h *AchievementsHandler) Earned(c *gin.Context) {
	userID := mw.GetUserID(c)
	records, err := h.orch.Achievements().List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("ledger read failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"earned": records})
}

// Progress handles GET /api/gamify/achievements/:id/progress.
func (h *AchievementsHandler) Progress(c *gin.Context) {
	userID := mw.GetUserID(c)
	id := c.Param("id")
	ctx := c.Request.Context()

	snapshot, err := h.stats.Snapshot(ctx, userID)
	if err != nil {
		h.logger.Error("stats snapshot failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	current, target, description, err := h.orch.Achievements().Progress(ctx, userID, id, snapshot)
	if errors.Is(err, achievement.ErrUnknownAchievement) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown achievement"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          id,
		"current":     current,
		"target":      target,
		"description": description,
	})
}
