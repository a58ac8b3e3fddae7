package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	notifService "github.com/dev-lov-oper/Clarix-AI/internal/modules/notification/service"
	progressRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/progress/repository"
	userRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	"github.com/dev-lov-oper/Clarix-AI/pkg/batch"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const JobName = "weakness_scan"

const edgeCaseMessage = "High failure rate detected on edge cases (0, -1, null, []). Consider adding strict boundary checks at the start of your functions."

type WeaknessService interface {
	// ScanAll inspects every user's recent history and appends weakness alerts.
	ScanAll(ctx context.Context) (*batch.Report, error)
	ScanUser(ctx context.Context, userID uuid.UUID) (batch.Outcome, error)
}

type weaknessService struct {
	userRepo     userRepo.UserRepository
	progressRepo progressRepo.ProgressRepository
	notifier     notifService.NotificationService
	concurrency  int
	log          *zap.Logger
}

func NewWeaknessService(
	userRepo userRepo.UserRepository,
	progressRepo progressRepo.ProgressRepository,
	notifier notifService.NotificationService,
	concurrency int,
	log *zap.Logger,
) WeaknessService {
	return &weaknessService{
		userRepo:     userRepo,
		progressRepo: progressRepo,
		notifier:     notifier,
		concurrency:  concurrency,
		log:          log,
	}
}

func (s *weaknessService) ScanAll(ctx context.Context) (*batch.Report, error) {
	ids, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		s.log.Error("weakness scan: listing users failed", zap.Error(err))
		return nil, fmt.Errorf("list users: %w", err)
	}

	report := batch.Run(ctx, s.log, JobName, ids, s.concurrency,
		func(id uuid.UUID) string { return id.String() },
		s.ScanUser,
	)
	s.log.Info("weakness scan finished",
		zap.Int("users", report.Units),
		zap.Int("alerted", report.Done),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("took", time.Since(report.StartedAt)),
	)
	return report, nil
}

// ScanUser reports Done when at least one alert was appended.
func (s *weaknessService) ScanUser(ctx context.Context, userID uuid.UUID) (batch.Outcome, error) {
	entries, err := s.progressRepo.RecentEntries(ctx, userID, ScanWindow)
	if err != nil {
		return batch.Skipped, err
	}
	if len(entries) == 0 {
		return batch.Skipped, nil
	}

	f := Detect(entries)
	alerted := false

	if f.Timeouts > AlertThreshold {
		topic := f.TopTimeoutTopic
		if err := s.notifier.CreateNotification(ctx, &entity.Notification{
			UserID:      userID,
			Type:        entity.NotificationWeaknessAlert,
			Message:     fmt.Sprintf("You consistently hit TLE on %s problems. Review BFS optimizations or Dynamic Programming state reduction.", topic),
			TargetTopic: &topic,
		}); err != nil {
			return batch.Skipped, err
		}
		alerted = true
	}

	if f.EdgeCases > AlertThreshold {
		if err := s.notifier.CreateNotification(ctx, &entity.Notification{
			UserID:  userID,
			Type:    entity.NotificationWeaknessAlert,
			Message: edgeCaseMessage,
		}); err != nil {
			return batch.Skipped, err
		}
		alerted = true
	}

	if !alerted {
		return batch.Skipped, nil
	}
	return batch.Done, nil
}
