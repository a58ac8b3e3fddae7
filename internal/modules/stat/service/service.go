package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	statRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/stat/repository"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/dev-lov-oper/Clarix-AI/pkg/scoremath"
	"go.uber.org/zap"
)

const (
	JobName    = "daily_stats"
	DateLayout = "2006-01-02"
	// maxRangeDays bounds one listing request.
	maxRangeDays = 366
)

type StatService interface {
	// Rollup aggregates today's platform metrics and overwrites today's row.
	Rollup(ctx context.Context) (*entity.DailyStat, error)
	ListDaily(ctx context.Context, from, to string) ([]entity.DailyStat, error)
}

type statService struct {
	repo     statRepo.StatRepository
	userRepo repository.UserRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewStatService(repo statRepo.StatRepository, userRepo repository.UserRepository, log *zap.Logger, now func() time.Time) StatService {
	if now == nil {
		now = time.Now
	}
	return &statService{
		repo:     repo,
		userRepo: userRepo,
		log:      log,
		now:      now,
	}
}

func (s *statService) Rollup(ctx context.Context) (*entity.DailyStat, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	active, err := s.userRepo.CountActiveSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	solves, err := s.repo.CountCompletedSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("count solves: %w", err)
	}
	accuracy, err := s.repo.AverageRelevanceSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("average relevance: %w", err)
	}
	misleading, err := s.repo.CountMisleadingSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("count misleading posts: %w", err)
	}

	stat := &entity.DailyStat{
		Date:            now.Format(DateLayout),
		ActiveUsers:     active,
		TotalSolves:     solves,
		AIAccuracy:      scoremath.Round2(accuracy),
		MisleadingPosts: misleading,
		AggregatedAt:    now,
	}
	if err := s.repo.Upsert(ctx, stat); err != nil {
		return nil, fmt.Errorf("save daily stat: %w", err)
	}

	s.log.Info("daily stats aggregated",
		zap.String("date", stat.Date),
		zap.Int64("active_users", stat.ActiveUsers),
		zap.Int64("total_solves", stat.TotalSolves),
		zap.Float64("ai_accuracy", stat.AIAccuracy),
		zap.Int64("misleading_posts", stat.MisleadingPosts),
	)
	return stat, nil
}

// ListDaily defaults to the last 30 days when from or to is empty.
func (s *statService) ListDaily(ctx context.Context, from, to string) ([]entity.DailyStat, error) {
	today := s.now()
	if to == "" {
		to = today.Format(DateLayout)
	}
	if from == "" {
		from = today.AddDate(0, 0, -29).Format(DateLayout)
	}

	fromDay, err := time.Parse(DateLayout, from)
	if err != nil {
		return nil, apperror.New(400, "from must be YYYY-MM-DD", apperror.ErrInvalidInput)
	}
	toDay, err := time.Parse(DateLayout, to)
	if err != nil {
		return nil, apperror.New(400, "to must be YYYY-MM-DD", apperror.ErrInvalidInput)
	}
	if toDay.Before(fromDay) {
		return nil, apperror.New(400, "from must not be after to", apperror.ErrInvalidInput)
	}
	if toDay.Sub(fromDay) > maxRangeDays*24*time.Hour {
		return nil, apperror.New(400, "range is limited to one year", apperror.ErrInvalidInput)
	}

	return s.repo.ListRange(ctx, from, to)
}
