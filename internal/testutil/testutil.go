// Package testutil provides throwaway stores for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dev-lov-oper/Clarix-AI/internal/bootstrap"
	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database that lives for the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

// NewRedis starts a miniredis server and returns a client connected to it.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// Clock returns a clock pinned to now.
func Clock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func CreateUser(t testing.TB, db *gorm.DB, reputation int, expertise string) *entity.User {
	t.Helper()

	u := &entity.User{ID: uuid.New(), Reputation: reputation, Expertise: expertise}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

func CreateContribution(t testing.TB, db *gorm.DB, c *entity.Contribution) *entity.Contribution {
	t.Helper()

	if c.ValidationStatus == "" {
		c.ValidationStatus = entity.ValidationUnvalidated
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func IntPtr(v int) *int { return &v }

func TimePtr(v time.Time) *time.Time { return &v }
