package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/dev-lov-oper/Clarix-AI/internal/bootstrap"
	"github.com/dev-lov-oper/Clarix-AI/internal/config"
	"github.com/dev-lov-oper/Clarix-AI/internal/server"
	"github.com/dev-lov-oper/Clarix-AI/pkg/database"
	"github.com/dev-lov-oper/Clarix-AI/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()
	zap.ReplaceGlobals(zapLog)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		zapLog.Fatal("database unavailable", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		zapLog.Fatal("migration failed", zap.Error(err))
	}
	if err := bootstrap.SeedTopics(db); err != nil {
		zapLog.Fatal("failed to seed topics", zap.Error(err))
	}
	if cfg.AdminUserID != "" {
		adminID, err := uuid.Parse(cfg.AdminUserID)
		if err != nil {
			zapLog.Fatal("ADMIN_USER_ID is not a uuid", zap.Error(err))
		}
		if err := bootstrap.SeedAdminUser(db, zapLog, adminID); err != nil {
			zapLog.Fatal("failed to seed admin user", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(ctx, cfg.RedisURL, zapLog)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient, zapLog)
	if err != nil {
		zapLog.Fatal("failed to build server", zap.Error(err))
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		zapLog.Fatal("server exited with error", zap.Error(err))
	}
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// service then runs without cache, live notifications and job locks.
func connectRedis(ctx context.Context, url string, log *zap.Logger) *redis.Client {
	if url == "" {
		log.Warn("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("invalid REDIS_URL, running without redis", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, running without redis", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}
