package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/config"
	"github.com/dev-lov-oper/Clarix-AI/internal/middleware"
	"github.com/dev-lov-oper/Clarix-AI/internal/scheduler"
	"github.com/dev-lov-oper/Clarix-AI/pkg/batch"
	"github.com/dev-lov-oper/Clarix-AI/pkg/dbretry"
	"github.com/dev-lov-oper/Clarix-AI/pkg/metrics"
	"github.com/dev-lov-oper/Clarix-AI/pkg/ratelimiter"

	adminHttp "github.com/dev-lov-oper/Clarix-AI/internal/modules/admin/delivery/http"
	adminService "github.com/dev-lov-oper/Clarix-AI/internal/modules/admin/service"

	confidenceHttp "github.com/dev-lov-oper/Clarix-AI/internal/modules/confidence/delivery/http"
	confidenceRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/confidence/repository"
	confidenceService "github.com/dev-lov-oper/Clarix-AI/internal/modules/confidence/service"

	contributionHttp "github.com/dev-lov-oper/Clarix-AI/internal/modules/contribution/delivery/http"
	contributionRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/contribution/repository"
	contributionService "github.com/dev-lov-oper/Clarix-AI/internal/modules/contribution/service"

	leaderboardHttp "github.com/dev-lov-oper/Clarix-AI/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/leaderboard/repository"
	leaderboardService "github.com/dev-lov-oper/Clarix-AI/internal/modules/leaderboard/service"

	notiHttp "github.com/dev-lov-oper/Clarix-AI/internal/modules/notification/delivery/http"
	notifRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/notification/repository"
	notifService "github.com/dev-lov-oper/Clarix-AI/internal/modules/notification/service"

	progressHttp "github.com/dev-lov-oper/Clarix-AI/internal/modules/progress/delivery/http"
	progressRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/progress/repository"
	progressService "github.com/dev-lov-oper/Clarix-AI/internal/modules/progress/service"

	statHttp "github.com/dev-lov-oper/Clarix-AI/internal/modules/stat/delivery/http"
	statRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/stat/repository"
	statService "github.com/dev-lov-oper/Clarix-AI/internal/modules/stat/service"

	topicHttp "github.com/dev-lov-oper/Clarix-AI/internal/modules/topic/delivery/http"
	topicRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/topic/repository"
	topicService "github.com/dev-lov-oper/Clarix-AI/internal/modules/topic/service"

	userHttp "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/delivery/http"
	userRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	userService "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/service"

	voteHttp "github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/delivery/http"
	voteRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/repository"
	voteService "github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/service"

	weaknessService "github.com/dev-lov-oper/Clarix-AI/internal/modules/weakness/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *scheduler.Scheduler
	log         *zap.Logger
}

// NewServer wires every module onto one gin engine and registers the batch
// jobs. redisClient may be nil: caching, publishing and job locks then degrade
// to no-ops.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *zap.Logger) (*Server, error) {
	userRepo := userRepo.NewUserRepository(db)
	userSvc := userService.NewUserService(userRepo, log, time.Now)
	userHandler := userHttp.NewUserHandler(userSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient, log)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, log)

	topicSvc := topicService.NewTopicService(topicRepo.NewTopicRepository(db))
	topicHandler := topicHttp.NewTopicHandler(topicSvc)

	contributionRepo := contributionRepo.NewContributionRepository(db)
	contributionSvc := contributionService.NewContributionService(contributionRepo, userRepo,
		ratelimiter.New(redisClient), cfg.RateLimitContribution, log, time.Now)
	contributionHandler := contributionHttp.NewContributionHandler(contributionSvc)

	votePolicy := dbretry.DefaultPolicy()
	votePolicy.MaxRetries = uint64(cfg.VoteMaxRetries)
	voteSvc := voteService.NewVoteService(voteRepo.NewVoteRepository(db), votePolicy, log)
	voteHandler := voteHttp.NewVoteHandler(voteSvc)

	confidenceSvc := confidenceService.NewConfidenceService(confidenceRepo.NewConfidenceRepository(db), log, time.Now)
	confidenceHandler := confidenceHttp.NewConfidenceHandler(confidenceSvc)

	progressRepo := progressRepo.NewProgressRepository(db)
	progressSvc := progressService.NewProgressService(progressRepo, userRepo, confidenceSvc, log, time.Now)
	progressHandler := progressHttp.NewProgressHandler(progressSvc)

	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), userRepo, redisClient,
		leaderboardService.Options{Concurrency: cfg.JobConcurrency, CacheTTL: cfg.LeaderboardCacheTTL}, log)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	weaknessSvc := weaknessService.NewWeaknessService(userRepo, progressRepo, notificationSvc, cfg.JobConcurrency, log)

	statSvc := statService.NewStatService(statRepo.NewStatRepository(db), userRepo, log, time.Now)
	statHandler := statHttp.NewStatHandler(statSvc)

	jobs := scheduler.New(redisClient, cfg.JobLockTTL, log)
	if err := registerJobs(jobs, cfg, leaderboardSvc, weaknessSvc, statSvc); err != nil {
		return nil, err
	}

	adminSvc := adminService.NewAdminService(jobs, userRepo, log)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	if strings.EqualFold(cfg.AppEnv, "production") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/metrics", "/healthz"},
	}))
	router.Use(metrics.RequestDurationMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/topics", topicHandler.CreateTopic)
			adminGroup.PUT("/contributions/:id/assessment", contributionHandler.ApplyAssessment)
			adminGroup.GET("/jobs", adminHandler.ListJobs)
			adminGroup.POST("/jobs/:name/run", adminHandler.RunJob)
			adminGroup.POST("/users/:id/roles", adminHandler.GrantRole)
			adminGroup.GET("/stats/daily", statHandler.GetDailyStats)
		}

		// User routes
		protected.PUT("/users/me", userHandler.Provision)
		protected.GET("/users/me", userHandler.GetMe)

		protected.GET("/topics", topicHandler.GetAllTopics)
		protected.GET("/topics/:topic", topicHandler.GetTopic)

		// Contribution routes
		protected.POST("/contributions", contributionHandler.Create)
		protected.GET("/contributions/:id", contributionHandler.Get)
		protected.PUT("/contributions/:id/vote", voteHandler.CastVote)
		protected.GET("/contributions/:id/vote", voteHandler.GetVote)

		// Progress routes
		protected.POST("/history", progressHandler.RecordAttempt)
		protected.GET("/history", progressHandler.History)
		protected.GET("/stats/me", progressHandler.MyStats)
		protected.GET("/confidence", confidenceHandler.List)
		protected.GET("/confidence/:topic", confidenceHandler.Get)

		protected.GET("/leaderboard/:topic", leaderboardHandler.GetLeaderboard)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   jobs,
		log:         log,
	}, nil
}

func registerJobs(
	jobs *scheduler.Scheduler,
	cfg *config.Config,
	leaderboard leaderboardService.LeaderboardService,
	weakness weaknessService.WeaknessService,
	stats statService.StatService,
) error {
	all := []scheduler.Job{
		{
			Name:     leaderboardService.JobName,
			Schedule: cfg.LeaderboardCron,
			Run:      reportJob(leaderboard.AggregateAll),
		},
		{
			Name:     weaknessService.JobName,
			Schedule: cfg.WeaknessCron,
			Run:      reportJob(weakness.ScanAll),
		},
		{
			Name:     statService.JobName,
			Schedule: cfg.DailyStatsCron,
			Run: func(ctx context.Context) error {
				_, err := stats.Rollup(ctx)
				return err
			},
		},
	}
	for _, job := range all {
		if err := jobs.Register(job); err != nil {
			return err
		}
	}
	return nil
}

// reportJob adapts a batch run to a scheduler job. Unit failures were already
// logged per unit; they still mark the run as failed.
func reportJob(fn func(context.Context) (*batch.Report, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		report, err := fn(ctx)
		if err != nil {
			return err
		}
		return report.Err()
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the scheduler and serves HTTP until ctx is cancelled, then
// drains both.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("http shutdown", zap.Error(err))
	}
	s.scheduler.Stop(shutdownCtx)
	return nil
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
