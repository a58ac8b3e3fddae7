package service

import (
	"context"
	"strings"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	confidence "github.com/dev-lov-oper/Clarix-AI/internal/modules/confidence/service"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/progress/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/progress/repository"
	userRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	"github.com/dev-lov-oper/Clarix-AI/pkg/dbretry"
	"github.com/dev-lov-oper/Clarix-AI/pkg/scoremath"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const maxHistoryPage = 100

type ProgressService interface {
	RecordAttempt(ctx context.Context, userID uuid.UUID, req dto.RecordAttemptRequest) (*dto.RecordAttemptResponse, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.HistoryEntry, error)
	Stats(ctx context.Context, userID uuid.UUID) (*entity.UserStats, error)
}

type progressService struct {
	repo       repository.ProgressRepository
	userRepo   userRepo.UserRepository
	confidence confidence.ConfidenceService
	policy     dbretry.Policy
	log        *zap.Logger
	now        func() time.Time
}

func NewProgressService(
	repo repository.ProgressRepository,
	userRepo userRepo.UserRepository,
	confidence confidence.ConfidenceService,
	log *zap.Logger,
	now func() time.Time,
) ProgressService {
	if now == nil {
		now = time.Now
	}
	return &progressService{
		repo:       repo,
		userRepo:   userRepo,
		confidence: confidence,
		policy:     dbretry.DefaultPolicy(),
		log:        log,
		now:        now,
	}
}

type recordResult struct {
	entry     *entity.HistoryEntry
	completed bool
	stats     *entity.UserStats
}

func (s *progressService) RecordAttempt(ctx context.Context, userID uuid.UUID, req dto.RecordAttemptRequest) (*dto.RecordAttemptResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = entity.DefaultTopicName
	}
	now := s.now()

	// A concurrent first attempt on the same problem loses the unique index
	// race and is retried against the winner's row.
	res, err := dbretry.Operation(ctx, s.policy, func(ctx context.Context) (*recordResult, error) {
		return s.record(ctx, userID, topic, req, now)
	})
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Touch(ctx, userID, now); err != nil {
		s.log.Warn("failed to update last activity", zap.String("user_id", userID.String()), zap.Error(err))
	}

	resp := &dto.RecordAttemptResponse{Entry: res.entry, Completed: res.completed, Stats: res.stats}
	if !res.completed {
		return resp, nil
	}

	// The attempt is already durable; a failed recompute is picked up by the
	// next completion in the topic.
	rec, err := s.confidence.OnCompletion(ctx, userID, topic, req.Attempts)
	if err != nil {
		s.log.Error("confidence recompute failed",
			zap.String("user_id", userID.String()),
			zap.String("topic", topic),
			zap.Error(err),
		)
		return resp, nil
	}
	resp.Confidence = rec
	return resp, nil
}

func (s *progressService) record(ctx context.Context, userID uuid.UUID, topic string, req dto.RecordAttemptRequest, now time.Time) (*recordResult, error) {
	out := &recordResult{}

	err := s.repo.Transaction(ctx, func(repo repository.ProgressRepository) error {
		entry, err := repo.FindEntry(ctx, userID, req.ProblemID)
		if err != nil {
			return err
		}
		wasCompleted := false
		if entry == nil {
			entry = &entity.HistoryEntry{UserID: userID, ProblemID: req.ProblemID}
		} else {
			wasCompleted = entry.IsCompleted()
		}

		entry.Topic = topic
		entry.Status = req.Status
		entry.Attempts = req.Attempts
		entry.FailureReason = req.FailureReason
		entry.TestInput = datatypes.JSON(req.TestInput)
		entry.CreatedAt = now
		if entity.IsCompletedStatus(req.Status) && !wasCompleted {
			entry.CompletedAt = &now
			out.completed = true
		}
		if err := repo.SaveEntry(ctx, entry); err != nil {
			return err
		}
		out.entry = entry

		if !out.completed {
			return nil
		}

		stats, err := repo.FindStats(ctx, userID)
		if err != nil {
			return err
		}
		if stats == nil {
			stats = &entity.UserStats{UserID: userID}
		}
		applyCompletion(stats, topic, req.Attempts, now)
		if err := repo.SaveStats(ctx, stats); err != nil {
			return err
		}
		out.stats = stats
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applyCompletion(stats *entity.UserStats, topic string, attempts int, now time.Time) {
	stats.TopicsLearned++
	stats.TotalSolved++
	stats.TotalAttempted += attempts
	if stats.TotalAttempted > 0 {
		stats.AccuracyRate = scoremath.Round2(float64(stats.TotalSolved) / float64(stats.TotalAttempted) * 100)
	}

	if attempts > scoremath.StruggleAttempts {
		found := false
		for _, area := range stats.WeakAreas {
			if area == topic {
				found = true
				break
			}
		}
		if !found {
			stats.WeakAreas = append(stats.WeakAreas, topic)
		}
	}
	stats.LastUpdated = now
}

func (s *progressService) History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.HistoryEntry, error) {
	if limit <= 0 || limit > maxHistoryPage {
		limit = maxHistoryPage
	}
	return s.repo.RecentEntries(ctx, userID, limit)
}

func (s *progressService) Stats(ctx context.Context, userID uuid.UUID) (*entity.UserStats, error) {
	stats, err := s.repo.FindStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &entity.UserStats{UserID: userID, WeakAreas: datatypes.JSONSlice[string]{}}, nil
	}
	return stats, nil
}
