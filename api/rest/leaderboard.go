package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/momentumhq/server/cache"
	"github.com/momentumhq/server/gamify"
	"github.com/momentumhq/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LeaderboardZKey is the sorted set holding total XP per user.
const LeaderboardZKey = "leaderboard:xp"

// LeaderboardHandler serves the XP leaderboard from the cache sorted set,
// falling back to a ledger aggregate when the set is cold.
type LeaderboardHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	size   int
	logger *zap.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler. size caps how many
// entries are kept and served.
func NewLeaderboardHandler(db *gorm.DB, c cache.Cache, size int, logger *zap.Logger) *LeaderboardHandler {
	if size <= 0 {
		size = 100
	}
	return &LeaderboardHandler{db: db, cache: c, size: size, logger: logger}
}

// LeaderboardEntry is one row in the leaderboard.
type LeaderboardEntry struct {
	Rank    int   `json:"rank"`
	UserID  int64 `json:"user_id"`
	TotalXP int64 `json:"total_xp"`
	Level   int   `json:"level"`
}

// Top returns the top users sorted by total XP.
// GET /api/gamify/leaderboard?limit=20
func (h *LeaderboardHandler) Top(c *gin.Context) {
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= h.size {
		limit = l
	}

	ctx := c.Request.Context()
	members, err := h.cache.ZRevRange(ctx, LeaderboardZKey, 0, int64(limit-1))
	if err == nil && len(members) > 0 {
		entries := make([]LeaderboardEntry, 0, len(members))
		for i, m := range members {
			userID, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				continue
			}
			score, _ := h.cache.ZScore(ctx, LeaderboardZKey, m)
			entries = append(entries, LeaderboardEntry{
				Rank:    i + 1,
				UserID:  userID,
				TotalXP: int64(score),
				Level:   gamify.Level(int64(score)),
			})
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
		return
	}

	entries, err := h.topFromDB(c, limit, true)
	if err != nil {
		h.logger.Error("leaderboard query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// Refresh rebuilds the leaderboard sorted set from the XP ledger.
// Called periodically by the scheduler; also exposed as
// POST /api/admin/leaderboard/refresh.
func (h *LeaderboardHandler) Refresh(c *gin.Context) {
	entries, err := h.topFromDB(c, h.size, true)
	if err != nil {
		h.logger.Error("leaderboard refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": len(entries)})
}

func (h *LeaderboardHandler) topFromDB(c *gin.Context, limit int, warmCache bool) ([]LeaderboardEntry, error) {
	ctx := c.Request.Context()

	type row struct {
		UserID int64
		XP     int64
	}
	var rows []row
	err := h.db.WithContext(ctx).Model(&model.XPEvent{}).
		Select("user_id, COALESCE(SUM(xp_awarded + achievement_xp), 0) AS xp").
		Group("user_id").
		Order("xp DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		entries[i] = LeaderboardEntry{
			Rank:    i + 1,
			UserID:  r.UserID,
			TotalXP: r.XP,
			Level:   gamify.Level(r.XP),
		}
		if warmCache {
			_ = h.cache.ZAdd(ctx, LeaderboardZKey, float64(r.XP), strconv.FormatInt(r.UserID, 10))
		}
	}
	return entries, nil
}
