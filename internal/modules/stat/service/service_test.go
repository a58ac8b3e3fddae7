package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	statRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/stat/repository"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/stat/service"
	userRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	"github.com/dev-lov-oper/Clarix-AI/internal/testutil"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2026, 9, 6, 15, 0, 0, 0, time.UTC)

func newService(db *gorm.DB, clock time.Time) service.StatService {
	return service.NewStatService(statRepo.NewStatRepository(db), userRepo.NewUserRepository(db),
		zap.NewNop(), testutil.Clock(clock))
}

func activeUser(t *testing.T, db *gorm.DB, at time.Time) *entity.User {
	t.Helper()
	u := testutil.CreateUser(t, db, 0, entity.ExpertiseBeginner)
	require.NoError(t, db.Model(u).Update("last_active_at", at).Error)
	return u
}

func solve(t *testing.T, db *gorm.DB, user *entity.User, status string, at time.Time) {
	t.Helper()
	entry := &entity.HistoryEntry{
		UserID:    user.ID,
		ProblemID: uuid.NewString(),
		Topic:     "Graphs",
		Status:    status,
		CreatedAt: at,
	}
	if entity.IsCompletedStatus(status) {
		entry.CompletedAt = testutil.TimePtr(at)
	}
	require.NoError(t, db.Create(entry).Error)
}

func analysed(t *testing.T, db *gorm.DB, author *entity.User, relevance int, misleading bool, at time.Time) {
	t.Helper()
	testutil.CreateContribution(t, db, &entity.Contribution{
		TopicID:          "graphs",
		AuthorID:         author.ID,
		AIRelevance:      testutil.IntPtr(relevance),
		HasMisconception: misleading,
		AnalyzedAt:       testutil.TimePtr(at),
		CreatedAt:        at,
	})
}

func TestRollupAggregatesToday(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	ctx := context.Background()

	alice := activeUser(t, db, now.Add(-time.Hour))
	bob := activeUser(t, db, now.Add(-20*time.Hour))

	solve(t, db, alice, entity.StatusAccepted, now.Add(-2*time.Hour))
	solve(t, db, alice, entity.StatusWrongAnswer, now.Add(-time.Hour))
	solve(t, db, bob, entity.StatusCompleted, now.Add(-20*time.Hour))

	analysed(t, db, alice, 80, false, now.Add(-3*time.Hour))
	analysed(t, db, alice, 71, true, now.Add(-30*time.Minute))
	analysed(t, db, bob, 10, true, now.Add(-20*time.Hour))
	// never scored
	testutil.CreateContribution(t, db, &entity.Contribution{TopicID: "graphs", AuthorID: bob.ID, CreatedAt: now})

	stat, err := newService(db, now).Rollup(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2026-09-06", stat.Date)
	assert.Equal(t, int64(1), stat.ActiveUsers)
	assert.Equal(t, int64(1), stat.TotalSolves)
	assert.InDelta(t, 75.5, stat.AIAccuracy, 0.001)
	assert.Equal(t, int64(1), stat.MisleadingPosts)
}

func TestRollupEmptyDay(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)

	stat, err := newService(db, now).Rollup(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stat.ActiveUsers)
	assert.Zero(t, stat.TotalSolves)
	assert.Zero(t, stat.AIAccuracy)
	assert.Zero(t, stat.MisleadingPosts)
}

func TestRollupOverwritesSameDay(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	ctx := context.Background()

	alice := activeUser(t, db, now.Add(-time.Hour))
	_, err := newService(db, now).Rollup(ctx)
	require.NoError(t, err)

	activeUser(t, db, now.Add(-time.Minute))
	solve(t, db, alice, entity.StatusCompleted, now.Add(-time.Minute))
	later := now.Add(time.Hour)
	_, err = newService(db, later).Rollup(ctx)
	require.NoError(t, err)

	var rows []entity.DailyStat
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].ActiveUsers)
	assert.Equal(t, int64(1), rows[0].TotalSolves)
	assert.True(t, rows[0].AggregatedAt.Equal(later))
}

func TestListDaily(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	ctx := context.Background()

	for _, date := range []string{"2026-09-01", "2026-09-03", "2026-09-06", "2026-06-01"} {
		require.NoError(t, db.Create(&entity.DailyStat{Date: date, AggregatedAt: now}).Error)
	}
	svc := newService(db, now)

	t.Run("explicit range", func(t *testing.T) {
		stats, err := svc.ListDaily(ctx, "2026-09-01", "2026-09-03")
		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, "2026-09-01", stats[0].Date)
		assert.Equal(t, "2026-09-03", stats[1].Date)
	})

	t.Run("defaults to last 30 days", func(t *testing.T) {
		stats, err := svc.ListDaily(ctx, "", "")
		require.NoError(t, err)
		assert.Len(t, stats, 3)
	})

	invalid := []struct {
		name     string
		from, to string
	}{
		{name: "bad from", from: "09/01/2026", to: "2026-09-03"},
		{name: "bad to", from: "2026-09-01", to: "tomorrow"},
		{name: "reversed", from: "2026-09-03", to: "2026-09-01"},
		{name: "too long", from: "2024-01-01", to: "2026-09-01"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListDaily(ctx, tt.from, tt.to)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}
}
