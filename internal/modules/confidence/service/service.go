package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/confidence/repository"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/dev-lov-oper/Clarix-AI/pkg/metrics"
	"github.com/dev-lov-oper/Clarix-AI/pkg/scoremath"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ConfidenceService interface {
	// OnCompletion recomputes the user's confidence in the topic. It must only
	// be called when a problem moved from not completed to completed.
	OnCompletion(ctx context.Context, userID uuid.UUID, topic string, attempts int) (*entity.ConfidenceRecord, error)
	List(ctx context.Context, userID uuid.UUID) ([]entity.ConfidenceRecord, error)
	Get(ctx context.Context, userID uuid.UUID, topic string) (*entity.ConfidenceRecord, error)
}

type confidenceService struct {
	repo repository.ConfidenceRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewConfidenceService(repo repository.ConfidenceRepository, log *zap.Logger, now func() time.Time) ConfidenceService {
	if now == nil {
		now = time.Now
	}
	return &confidenceService{repo: repo, log: log, now: now}
}

func (s *confidenceService) OnCompletion(ctx context.Context, userID uuid.UUID, topic string, attempts int) (*entity.ConfidenceRecord, error) {
	topicName := strings.TrimSpace(topic)
	if topicName == "" {
		topicName = entity.DefaultTopicName
	}
	topicID := entity.TopicID(topicName)
	now := s.now()

	var record *entity.ConfidenceRecord
	err := s.repo.Transaction(ctx, func(repo repository.ConfidenceRepository) error {
		history, err := repo.TopicHistory(ctx, userID, topicName)
		if err != nil {
			return err
		}

		solved := 0
		for i := range history {
			if history[i].IsCompleted() {
				solved++
			}
		}
		recent := make([]int, 0, scoremath.RecentAttemptWindow)
		for i := 0; i < len(history) && i < scoremath.RecentAttemptWindow; i++ {
			recent = append(recent, history[i].Attempts)
		}
		errorRate := scoremath.ErrorRate(recent)

		prev, err := repo.Find(ctx, userID, topicID)
		if err != nil {
			return err
		}
		daysInactive := 0
		if prev != nil {
			daysInactive = DaysBetween(prev.LastUpdated, now)
		}

		conf := scoremath.ConfidenceScore(solved, daysInactive, errorRate)
		record = &entity.ConfidenceRecord{
			UserID:      userID,
			TopicID:     topicID,
			TopicName:   topicName,
			Score:       conf.Score,
			SolvedCount: solved,
			ErrorRate:   scoremath.Round2(errorRate),
			DecayFactor: scoremath.Round2(conf.DecayFactor),
			LastUpdated: now,
		}
		return repo.Upsert(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	metrics.ConfidenceRecomputed.Inc()
	s.log.Debug("confidence recomputed",
		zap.String("user_id", userID.String()),
		zap.String("topic_id", topicID),
		zap.Int("score", record.Score),
		zap.Int("attempts", attempts),
	)
	return record, nil
}

func (s *confidenceService) List(ctx context.Context, userID uuid.UUID) ([]entity.ConfidenceRecord, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *confidenceService) Get(ctx context.Context, userID uuid.UUID, topic string) (*entity.ConfidenceRecord, error) {
	record, err := s.repo.Find(ctx, userID, entity.TopicID(topic))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.ErrNotFound
	}
	return record, nil
}

// DaysBetween counts started days from since to now; 0 if now is not after since.
func DaysBetween(since, now time.Time) int {
	d := now.Sub(since)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
