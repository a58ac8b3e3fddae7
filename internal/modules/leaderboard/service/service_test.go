package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	leaderboardRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/leaderboard/repository"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/leaderboard/service"
	userRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	"github.com/dev-lov-oper/Clarix-AI/internal/testutil"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/dev-lov-oper/Clarix-AI/pkg/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

type world struct {
	db   *gorm.DB
	repo leaderboardRepo.LeaderboardRepository
}

func newWorld(t *testing.T, topics ...string) *world {
	t.Helper()
	db := testutil.NewDB(t)
	for _, id := range topics {
		require.NoError(t, db.Create(&entity.Topic{ID: id, Name: id}).Error)
	}
	return &world{db: db, repo: leaderboardRepo.NewLeaderboardRepository(db)}
}

func (w *world) contribute(t *testing.T, author *entity.User, topic string, score float64, status string, age time.Duration) {
	t.Helper()
	testutil.CreateContribution(t, w.db, &entity.Contribution{
		TopicID:          topic,
		AuthorID:         author.ID,
		WeightedScore:    score,
		ValidationStatus: status,
		CreatedAt:        now.Add(-age),
	})
}

func (w *world) service(repo leaderboardRepo.LeaderboardRepository) service.LeaderboardService {
	return service.NewLeaderboardService(repo, userRepo.NewUserRepository(w.db), nil,
		service.Options{Concurrency: 2, Now: testutil.Clock(now)}, zap.NewNop())
}

func (w *world) snapshot(t *testing.T, topic string) *entity.LeaderboardSnapshot {
	t.Helper()
	var snapshots []entity.LeaderboardSnapshot
	require.NoError(t, w.db.Where("topic_id = ?", topic).Find(&snapshots).Error)
	if len(snapshots) == 0 {
		return nil
	}
	return &snapshots[0]
}

func TestAggregateAllRankAndPromote(t *testing.T) {
	t.Parallel()
	w := newWorld(t, "graphs", "trees", "empty")
	ctx := context.Background()

	alice := testutil.CreateUser(t, w.db, 0, entity.ExpertiseBeginner)
	bob := testutil.CreateUser(t, w.db, 0, entity.ExpertiseBeginner)
	carol := testutil.CreateUser(t, w.db, 0, entity.ExpertiseBeginner)

	w.contribute(t, alice, "graphs", 6, entity.ValidationVerified, 24*time.Hour)
	w.contribute(t, bob, "graphs", 12.5, entity.ValidationUnvalidated, 48*time.Hour)
	w.contribute(t, carol, "graphs", 3, entity.ValidationUnvalidated, time.Hour)
	// outside the 30 day window
	w.contribute(t, carol, "graphs", 100, entity.ValidationVerified, 31*24*time.Hour)
	// no positive author
	w.contribute(t, bob, "trees", -4, entity.ValidationUnvalidated, time.Hour)

	report, err := w.service(w.repo).AggregateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Units)
	assert.Equal(t, 2, report.Done)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Failed)

	snap := w.snapshot(t, "graphs")
	require.NotNil(t, snap)
	assert.Equal(t, []entity.LeaderEntry{
		{UserID: alice.ID, Score: 16},
		{UserID: bob.ID, Score: 12.5},
		{UserID: carol.ID, Score: 3},
	}, []entity.LeaderEntry(snap.Leaders))
	assert.True(t, now.AddDate(0, 0, -30).Equal(snap.PeriodStart))

	// published even without a positive leader
	trees := w.snapshot(t, "trees")
	require.NotNil(t, trees)
	assert.Equal(t, []entity.LeaderEntry{{UserID: bob.ID, Score: -4}}, []entity.LeaderEntry(trees.Leaders))
	assert.Nil(t, w.snapshot(t, "empty"))

	u, err := userRepo.NewUserRepository(w.db).FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, u.HasRole(entity.RoleTopicExpert))
	require.Len(t, u.ExpertTopics, 1)
	assert.Equal(t, "graphs", u.ExpertTopics[0].TopicID)

	b, err := userRepo.NewUserRepository(w.db).FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, b.HasRole(entity.RoleTopicExpert))
}

func TestAggregateRerunIsIdempotent(t *testing.T) {
	t.Parallel()
	w := newWorld(t, "graphs")
	ctx := context.Background()
	svc := w.service(w.repo)

	alice := testutil.CreateUser(t, w.db, 0, entity.ExpertiseBeginner)
	bob := testutil.CreateUser(t, w.db, 0, entity.ExpertiseBeginner)
	w.contribute(t, alice, "graphs", 5, entity.ValidationUnvalidated, time.Hour)
	w.contribute(t, bob, "graphs", 5, entity.ValidationUnvalidated, time.Hour)

	_, err := svc.AggregateAll(ctx)
	require.NoError(t, err)
	first := w.snapshot(t, "graphs")

	_, err = svc.AggregateAll(ctx)
	require.NoError(t, err)
	second := w.snapshot(t, "graphs")

	assert.Equal(t, first.Leaders, second.Leaders)

	var roles, snapshots int64
	require.NoError(t, w.db.Model(&entity.UserRole{}).Count(&roles).Error)
	require.NoError(t, w.db.Model(&entity.LeaderboardSnapshot{}).Count(&snapshots).Error)
	assert.Equal(t, int64(1), roles)
	assert.Equal(t, int64(1), snapshots)
}

func TestAggregateReplacesStaleSnapshot(t *testing.T) {
	t.Parallel()
	w := newWorld(t, "graphs")
	mr, rdb := testutil.NewRedis(t)
	ctx := context.Background()
	svc := service.NewLeaderboardService(w.repo, userRepo.NewUserRepository(w.db), rdb,
		service.Options{Concurrency: 1, CacheTTL: time.Minute, Now: testutil.Clock(now)}, zap.NewNop())

	bob := testutil.CreateUser(t, w.db, 0, entity.ExpertiseBeginner)
	w.contribute(t, bob, "graphs", 5, entity.ValidationUnvalidated, time.Hour)

	outcome, err := svc.AggregateTopic(ctx, "graphs")
	require.NoError(t, err)
	assert.Equal(t, batch.Done, outcome)
	_, err = svc.GetLeaderboard(ctx, "graphs")
	require.NoError(t, err)
	require.True(t, mr.Exists("leaderboard:graphs"))

	require.NoError(t, w.db.Model(&entity.Contribution{}).
		Where("author_id = ?", bob.ID).
		Update("weighted_score", -4).Error)

	outcome, err = svc.AggregateTopic(ctx, "graphs")
	require.NoError(t, err)
	assert.Equal(t, batch.Done, outcome)
	assert.False(t, mr.Exists("leaderboard:graphs"))

	snap := w.snapshot(t, "graphs")
	require.NotNil(t, snap)
	assert.Equal(t, []entity.LeaderEntry{{UserID: bob.ID, Score: -4}}, []entity.LeaderEntry(snap.Leaders))

	resp, err := svc.GetLeaderboard(ctx, "graphs")
	require.NoError(t, err)
	require.Len(t, resp.Leaders, 1)
	assert.Equal(t, -4.0, resp.Leaders[0].Score)

	// promoted on the first run, the role stays
	u, err := userRepo.NewUserRepository(w.db).FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, u.HasRole(entity.RoleTopicExpert))
}

type flakyRepo struct {
	leaderboardRepo.LeaderboardRepository
	failTopic string
}

func (r *flakyRepo) ContributionsSince(ctx context.Context, topicID string, since time.Time) ([]entity.Contribution, error) {
	if topicID == r.failTopic {
		return nil, errors.New("store unavailable")
	}
	return r.LeaderboardRepository.ContributionsSince(ctx, topicID, since)
}

func TestAggregateIsolatesTopicFailure(t *testing.T) {
	t.Parallel()
	w := newWorld(t, "arrays", "graphs", "trees")
	author := testutil.CreateUser(t, w.db, 0, entity.ExpertiseBeginner)
	for _, topic := range []string{"arrays", "graphs", "trees"} {
		w.contribute(t, author, topic, 3, entity.ValidationUnvalidated, time.Hour)
	}

	report, err := w.service(&flakyRepo{LeaderboardRepository: w.repo, failTopic: "graphs"}).AggregateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "graphs", report.Failed[0].Unit)
	assert.ErrorIs(t, report.Err(), apperror.ErrBatchUnitFailure)

	assert.NotNil(t, w.snapshot(t, "arrays"))
	assert.Nil(t, w.snapshot(t, "graphs"))
	assert.NotNil(t, w.snapshot(t, "trees"))
}

func TestGetLeaderboardCachesSnapshot(t *testing.T) {
	t.Parallel()
	w := newWorld(t, "graphs")
	mr, rdb := testutil.NewRedis(t)
	ctx := context.Background()
	svc := service.NewLeaderboardService(w.repo, userRepo.NewUserRepository(w.db), rdb,
		service.Options{Concurrency: 1, CacheTTL: time.Minute, Now: testutil.Clock(now)}, zap.NewNop())

	_, err := svc.GetLeaderboard(ctx, "graphs")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	author := testutil.CreateUser(t, w.db, 0, entity.ExpertiseBeginner)
	w.contribute(t, author, "graphs", 7, entity.ValidationUnvalidated, time.Hour)
	_, err = svc.AggregateTopic(ctx, "graphs")
	require.NoError(t, err)

	resp, err := svc.GetLeaderboard(ctx, "graphs")
	require.NoError(t, err)
	require.Len(t, resp.Leaders, 1)
	assert.Equal(t, 1, resp.Leaders[0].Position)
	assert.Equal(t, 7.0, resp.Leaders[0].Score)
	assert.True(t, mr.Exists("leaderboard:graphs"))
	assert.Equal(t, time.Minute, mr.TTL("leaderboard:graphs"))

	// a new run invalidates the cached copy
	w.contribute(t, author, "graphs", 1, entity.ValidationUnvalidated, time.Hour)
	_, err = svc.AggregateTopic(ctx, "graphs")
	require.NoError(t, err)
	assert.False(t, mr.Exists("leaderboard:graphs"))

	resp, err = svc.GetLeaderboard(ctx, "graphs")
	require.NoError(t, err)
	assert.Equal(t, 8.0, resp.Leaders[0].Score)
}
