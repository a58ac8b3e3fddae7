package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DBHost string
	DBUser string
	DBPass string
	DBName string
	DBPort string

	RedisURL  string
	JWTSecret string

	// AdminUserID, when set, is provisioned with the admin role at startup.
	AdminUserID string

	LeaderboardCron string
	WeaknessCron    string
	DailyStatsCron  string

	JobConcurrency      int
	JobLockTTL          time.Duration
	VoteMaxRetries      int
	LeaderboardCacheTTL time.Duration

	RateLimitContribution time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: os.Getenv("DB_PASS"),
		DBName: getEnv("DB_NAME", "clarix"),
		DBPort: getEnv("DB_PORT", "5432"),

		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminUserID: os.Getenv("ADMIN_USER_ID"),

		LeaderboardCron: getEnv("LEADERBOARD_CRON", "0 0 * * 0"),
		WeaknessCron:    getEnv("WEAKNESS_CRON", "0 0 * * *"),
		DailyStatsCron:  getEnv("DAILY_STATS_CRON", "59 23 * * *"),
	}

	var err error
	cfg.JobConcurrency, err = parseInt(getEnv("JOB_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_CONCURRENCY: %w", err)
	}
	cfg.JobLockTTL, err = time.ParseDuration(getEnv("JOB_LOCK_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_LOCK_TTL: %w", err)
	}
	cfg.VoteMaxRetries, err = parseInt(getEnv("VOTE_MAX_RETRIES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid VOTE_MAX_RETRIES: %w", err)
	}
	cfg.LeaderboardCacheTTL, err = time.ParseDuration(getEnv("LEADERBOARD_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_CACHE_TTL: %w", err)
	}

	cfg.RateLimitContribution, err = time.ParseDuration(getEnv("RATE_LIMIT_CONTRIBUTION", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_CONTRIBUTION: %w", err)
	}

	return cfg, nil
}

// DSN is the PostgreSQL connection string for the configured database.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
