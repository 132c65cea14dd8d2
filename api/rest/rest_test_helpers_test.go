package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momentumhq/server/api/rest"
	"github.com/momentumhq/server/cache"
	"github.com/momentumhq/server/config"
	"github.com/momentumhq/server/gamify"
	"github.com/momentumhq/server/gamify/achievement"
	"github.com/momentumhq/server/gamify/reward"
	"github.com/momentumhq/server/gamify/streak"
	"github.com/momentumhq/server/gamify/xp"
	"github.com/momentumhq/server/history"
	mw "github.com/momentumhq/server/middleware"
	"github.com/momentumhq/server/stats"
	"github.com/momentumhq/server/store/gormstore"
	"github.com/momentumhq/server/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	cache   cache.Cache
	history *history.Service
	orch    *gamify.Orchestrator
}

func newGamifyRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := zap.NewNop()
	sec := config.SecurityConfig{JWTSecret: testJWTSecret, JWTTTLH: 72 * time.Hour}
	gcfg := config.GamifyConfig{
		MinXP: 1, MaxXP: 1000,
		MysteryChance: 0.15, PowerHourMult: 2.0,
		LowEnergyMult: 1.5, LowEnergyThreshold: 30,
		CheckInBaseXP: 10, MicroStepBaseXP: 5,
		LeaderboardSize: 100,
	}

	xpEngine := xp.NewEngine(xp.Config{MinXP: gcfg.MinXP, MaxXP: gcfg.MaxXP})
	streakMgr, err := streak.NewManager(gormstore.NewStreakStore(db), streak.DefaultRequirements(), logger)
	require.NoError(t, err)
	achEngine, err := achievement.NewEngine(achievement.Catalog(), gormstore.NewLedger(db), logger)
	require.NoError(t, err)
	rewardSvc, err := reward.NewService(reward.Config{
		MysteryChance:      gcfg.MysteryChance,
		PowerHourMult:      gcfg.PowerHourMult,
		LowEnergyMult:      gcfg.LowEnergyMult,
		LowEnergyThreshold: gcfg.LowEnergyThreshold,
	}, reward.NewSeededRand(1), logger)
	require.NoError(t, err)

	orch := gamify.New(xpEngine, streakMgr, achEngine, rewardSvc, logger)
	statsSvc := stats.New(db, c, logger)
	histSvc := history.New(db, logger)
	t.Cleanup(func() { histSvc.Stop(nil) })

	eventsH := rest.NewEventsHandler(orch, statsSvc, histSvc, c, logger)
	streaksH := rest.NewStreaksHandler(orch, gcfg, logger)
	achH := rest.NewAchievementsHandler(orch, statsSvc, logger)
	histH := rest.NewHistoryHandler(histSvc, logger)
	boardH := rest.NewLeaderboardHandler(db, c, gcfg.LeaderboardSize, logger)
	adminH := rest.NewAdminHandler(orch, logger)

	r := gin.New()
	g := r.Group("/api/gamify", mw.Auth(sec, c))
	g.POST("/events", eventsH.Submit)
	g.GET("/profile", eventsH.Profile)
	g.GET("/streaks", streaksH.List)
	g.POST("/checkin", streaksH.CheckIn)
	g.POST("/microstep", streaksH.MicroStep)
	g.GET("/achievements", achH.Catalog)
	g.GET("/achievements/earned", achH.Earned)
	g.GET("/achievements/:id/progress", achH.Progress)
	g.GET("/history", histH.List)
	g.GET("/leaderboard", boardH.Top)

	adminG := r.Group("/api/admin", mw.IPWhitelist(nil))
	adminG.POST("/shields", adminH.GrantShields)
	adminG.POST("/leaderboard/refresh", boardH.Refresh)

	return &testEnv{router: r, db: db, cache: c, history: histSvc, orch: orch}
}

func token(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := mw.GenerateToken(userID, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func doJSON(r *gin.Engine, method, path, tok string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func submitTask(r *gin.Engine, tok string) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodPost, "/api/gamify/events", tok, map[string]any{
		"trigger":     "task_completed",
		"base_points": 20,
		"difficulty":  "medium",
		"priority":    "medium",
	})
}
