package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/momentumhq/server/api/rest"
	"github.com/momentumhq/server/cache"
	"github.com/momentumhq/server/config"
	dbadapter "github.com/momentumhq/server/db"
	"github.com/momentumhq/server/gamify"
	"github.com/momentumhq/server/gamify/achievement"
	"github.com/momentumhq/server/gamify/reward"
	"github.com/momentumhq/server/gamify/streak"
	"github.com/momentumhq/server/gamify/xp"
	"github.com/momentumhq/server/history"
	mw "github.com/momentumhq/server/middleware"
	"github.com/momentumhq/server/model"
	"github.com/momentumhq/server/scheduler"
	"github.com/momentumhq/server/stats"
	"github.com/momentumhq/server/store/gormstore"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if len(cfg.Security.AdminIPs) == 0 {
		logger.Warn("security.admin_ips is not set; admin endpoints are unrestricted")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- History ----
	histSvc := history.New(db, logger)
	defer histSvc.Stop(context.Background())

	// ---- Cache ----
	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Gamification engines ----
	xpEngine := xp.NewEngine(xp.Config{MinXP: cfg.Gamify.MinXP, MaxXP: cfg.Gamify.MaxXP})

	streakMgr, err := streak.NewManager(gormstore.NewStreakStore(db), streak.DefaultRequirements(), logger)
	if err != nil {
		log.Fatalf("streaks: %v", err)
	}

	achEngine, err := achievement.NewEngine(achievement.Catalog(), gormstore.NewLedger(db), logger)
	if err != nil {
		log.Fatalf("achievements: %v", err)
	}

	rewardSvc, err := reward.NewService(reward.Config{
		MysteryChance:      cfg.Gamify.MysteryChance,
		PowerHourMult:      cfg.Gamify.PowerHourMult,
		LowEnergyMult:      cfg.Gamify.LowEnergyMult,
		LowEnergyThreshold: cfg.Gamify.LowEnergyThreshold,
	}, reward.NewRand(), logger)
	if err != nil {
		log.Fatalf("rewards: %v", err)
	}

	orch := gamify.New(xpEngine, streakMgr, achEngine, rewardSvc, logger)
	statsSvc := stats.New(db, c, logger)
	logger.Info("gamification engines initialized")

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	sweepEvery := time.Duration(cfg.Gamify.StreakSweepMinutes) * time.Minute
	if sweepEvery <= 0 {
		sweepEvery = time.Hour
	}
	sched.Register("streak_sweep", sweepEvery, func() {
		sweepStreaks(db, streakMgr, logger)
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	eventsH := apirest.NewEventsHandler(orch, statsSvc, histSvc, c, logger)
	streaksH := apirest.NewStreaksHandler(orch, cfg.Gamify, logger)
	achH := apirest.NewAchievementsHandler(orch, statsSvc, logger)
	histH := apirest.NewHistoryHandler(histSvc, logger)
	boardH := apirest.NewLeaderboardHandler(db, c, cfg.Gamify.LeaderboardSize, logger)
	adminH := apirest.NewAdminHandler(orch, logger)

	sched.Register("leaderboard_refresh", 5*time.Minute, func() {
		refreshLeaderboard(db, c, cfg.Gamify.LeaderboardSize, logger)
	})
	sched.Start()

	api := r.Group("/api")
	{
		g := api.Group("/gamify")
		g.Use(mw.Auth(cfg.Security, c))
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

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Security.AdminIPs))
		adminG.POST("/shields", adminH.GrantShields)
		adminG.POST("/leaderboard/refresh", boardH.Refresh)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// sweepStreaks re-evaluates every active or protected streak so broken
// ones do not linger until the user's next request.
func sweepStreaks(db *gorm.DB, mgr *streak.Manager, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var rows []model.StreakRecord
	err := db.WithContext(ctx).
		Select("user_id, kind").
		Where("status IN ?", []string{string(streak.StatusActive), string(streak.StatusProtected)}).
		Find(&rows).Error
	if err != nil {
		logger.Error("streak sweep query failed", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	swept := 0
	for _, row := range rows {
		if _, err := mgr.CheckStatus(ctx, row.UserID, streak.Kind(row.Kind), now); err != nil {
			logger.Warn("streak sweep check failed",
				zap.Int64("user_id", row.UserID), zap.String("kind", row.Kind), zap.Error(err))
			continue
		}
		swept++
	}
	logger.Debug("streak sweep done", zap.Int("checked", swept))
}

// refreshLeaderboard rebuilds the leaderboard sorted set from the XP ledger.
func refreshLeaderboard(db *gorm.DB, c cache.Cache, size int, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	type row struct {
		UserID int64
		XP     int64
	}
	var rows []row
	err := db.WithContext(ctx).Model(&model.XPEvent{}).
		Select("user_id, COALESCE(SUM(xp_awarded + achievement_xp), 0) AS xp").
		Group("user_id").
		Order("xp DESC").
		Limit(size).
		Scan(&rows).Error
	if err != nil {
		logger.Error("leaderboard refresh query failed", zap.Error(err))
		return
	}
	for _, r := range rows {
		_ = c.ZAdd(ctx, apirest.LeaderboardZKey, float64(r.XP), fmt.Sprintf("%d", r.UserID))
	}
	logger.Debug("leaderboard refreshed", zap.Int("entries", len(rows)))
}
