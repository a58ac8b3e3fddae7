package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	leaderboardDto "github.com/dev-lov-oper/Clarix-AI/internal/modules/leaderboard/dto"
	leaderboardRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/leaderboard/repository"
	userRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	"github.com/dev-lov-oper/Clarix-AI/pkg/batch"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const JobName = "leaderboard"

func cacheKey(topicID string) string {
	return fmt.Sprintf("leaderboard:%s", topicID)
}

type LeaderboardService interface {
	// AggregateAll rebuilds every topic's snapshot. A failing topic is recorded
	// in the report and does not stop the others.
	AggregateAll(ctx context.Context) (*batch.Report, error)
	AggregateTopic(ctx context.Context, topicID string) (batch.Outcome, error)
	GetLeaderboard(ctx context.Context, topicID string) (*leaderboardDto.LeaderboardResponse, error)
}

type Options struct {
	Concurrency int
	CacheTTL    time.Duration
	Now         func() time.Time
}

type leaderboardService struct {
	repo        leaderboardRepo.LeaderboardRepository
	userRepo    userRepo.UserRepository
	redisClient *redis.Client
	opts        Options
	log         *zap.Logger
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, userRepo userRepo.UserRepository, redisClient *redis.Client, opts Options, log *zap.Logger) LeaderboardService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	return &leaderboardService{
		repo:        repo,
		userRepo:    userRepo,
		redisClient: redisClient,
		opts:        opts,
		log:         log,
	}
}

func (s *leaderboardService) AggregateAll(ctx context.Context) (*batch.Report, error) {
	topics, err := s.repo.ListTopicIDs(ctx)
	if err != nil {
		s.log.Error("leaderboard: listing topics failed", zap.Error(err))
		return nil, fmt.Errorf("list topics: %w", err)
	}

	report := batch.Run(ctx, s.log, JobName, topics, s.opts.Concurrency,
		func(topicID string) string { return topicID },
		s.AggregateTopic,
	)
	s.log.Info("leaderboard aggregation finished",
		zap.Int("topics", report.Units),
		zap.Int("published", report.Done),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

func (s *leaderboardService) AggregateTopic(ctx context.Context, topicID string) (batch.Outcome, error) {
	now := s.opts.Now()
	periodStart := now.AddDate(0, 0, -PeriodDays)

	contributions, err := s.repo.ContributionsSince(ctx, topicID, periodStart)
	if err != nil {
		return batch.Skipped, err
	}

	leaders := RankAuthors(contributions, TopN)
	if len(leaders) == 0 {
		return batch.Skipped, nil
	}

	snapshot := &entity.LeaderboardSnapshot{
		TopicID:     topicID,
		Leaders:     leaders,
		PeriodStart: periodStart,
		UpdatedAt:   now,
	}
	if err := s.repo.ReplaceSnapshot(ctx, snapshot); err != nil {
		return batch.Skipped, err
	}
	s.invalidate(ctx, topicID)

	top := leaders[0]
	if HasPositiveLeader(leaders) {
		if err := s.userRepo.PromoteTopicExpert(ctx, top.UserID, topicID); err != nil {
			return batch.Skipped, fmt.Errorf("promote %s: %w", top.UserID, err)
		}
	}

	s.log.Debug("leaderboard updated",
		zap.String("topic", topicID),
		zap.String("leader", top.UserID.String()),
		zap.Float64("score", top.Score),
	)
	return batch.Done, nil
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, topicID string) (*leaderboardDto.LeaderboardResponse, error) {
	if resp, ok := s.fromCache(ctx, topicID); ok {
		return resp, nil
	}

	snapshot, err := s.repo.GetSnapshot(ctx, topicID)
	if err != nil {
		return nil, err
	}

	resp := toResponse(snapshot)
	s.toCache(ctx, topicID, resp)
	return resp, nil
}

func toResponse(snapshot *entity.LeaderboardSnapshot) *leaderboardDto.LeaderboardResponse {
	entries := make([]leaderboardDto.LeaderboardEntry, 0, len(snapshot.Leaders))
	for i, leader := range snapshot.Leaders {
		entries = append(entries, leaderboardDto.LeaderboardEntry{
			Position: i + 1,
			UserID:   leader.UserID,
			Score:    leader.Score,
		})
	}

	return &leaderboardDto.LeaderboardResponse{
		TopicID:     snapshot.TopicID,
		Leaders:     entries,
		PeriodStart: snapshot.PeriodStart,
		UpdatedAt:   snapshot.UpdatedAt,
	}
}

func (s *leaderboardService) fromCache(ctx context.Context, topicID string) (*leaderboardDto.LeaderboardResponse, bool) {
	if s.redisClient == nil {
		return nil, false
	}

	raw, err := s.redisClient.Get(ctx, cacheKey(topicID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("leaderboard cache read failed", zap.String("topic", topicID), zap.Error(err))
		}
		return nil, false
	}

	var resp leaderboardDto.LeaderboardResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (s *leaderboardService) toCache(ctx context.Context, topicID string, resp *leaderboardDto.LeaderboardResponse) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, cacheKey(topicID), payload, s.opts.CacheTTL).Err(); err != nil {
		s.log.Warn("leaderboard cache write failed", zap.String("topic", topicID), zap.Error(err))
	}
}

func (s *leaderboardService) invalidate(ctx context.Context, topicID string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, cacheKey(topicID)).Err(); err != nil {
		s.log.Warn("leaderboard cache invalidation failed", zap.String("topic", topicID), zap.Error(err))
	}
}
