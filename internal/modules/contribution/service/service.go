package service

import (
	"context"
	"strings"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/contribution/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/contribution/repository"
	userRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	"github.com/dev-lov-oper/Clarix-AI/pkg/ratelimiter"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContributionService interface {
	Create(ctx context.Context, authorID uuid.UUID, req dto.CreateContributionRequest) (*entity.Contribution, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Contribution, error)
	ApplyAssessment(ctx context.Context, id uuid.UUID, req dto.AssessmentRequest) (*entity.Contribution, error)
}

const createAction = "contribution"

type contributionService struct {
	repo     repository.ContributionRepository
	userRepo userRepo.UserRepository
	limiter  *ratelimiter.Limiter
	cooldown time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewContributionService builds the service. A nil limiter or zero cooldown
// disables the per-author creation cooldown.
func NewContributionService(
	repo repository.ContributionRepository,
	userRepo userRepo.UserRepository,
	limiter *ratelimiter.Limiter,
	cooldown time.Duration,
	log *zap.Logger,
	now func() time.Time,
) ContributionService {
	if now == nil {
		now = time.Now
	}
	return &contributionService{
		repo:     repo,
		userRepo: userRepo,
		limiter:  limiter,
		cooldown: cooldown,
		log:      log,
		now:      now,
	}
}

func (s *contributionService) Create(ctx context.Context, authorID uuid.UUID, req dto.CreateContributionRequest) (*entity.Contribution, error) {
	if _, err := s.userRepo.FindByID(ctx, authorID); err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, authorID, createAction, s.cooldown); err != nil {
		return nil, err
	}
	created := false
	defer func() {
		if !created {
			_ = s.limiter.Clear(ctx, authorID, createAction)
		}
	}()

	name := strings.TrimSpace(req.Topic)
	topic := &entity.Topic{ID: entity.TopicID(name), Name: name}
	if err := s.repo.EnsureTopic(ctx, topic); err != nil {
		return nil, err
	}

	contribution := &entity.Contribution{
		TopicID:          topic.ID,
		SubTopic:         strings.TrimSpace(req.SubTopic),
		AuthorID:         authorID,
		Title:            strings.TrimSpace(req.Title),
		ValidationStatus: entity.ValidationUnvalidated,
		CreatedAt:        s.now(),
	}
	if err := s.repo.Create(ctx, contribution); err != nil {
		return nil, err
	}

	created = true
	return contribution, nil
}

func (s *contributionService) Get(ctx context.Context, id uuid.UUID) (*entity.Contribution, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *contributionService) ApplyAssessment(ctx context.Context, id uuid.UUID, req dto.AssessmentRequest) (*entity.Contribution, error) {
	err := s.repo.ApplyAssessment(ctx, id, repository.Assessment{
		AIRelevance:      req.AIRelevance,
		HasMisconception: req.HasMisconception,
		ValidationStatus: req.ValidationStatus,
		AnalyzedAt:       s.now(),
	})
	if err != nil {
		return nil, err
	}

	if req.ValidationStatus == entity.ValidationError {
		s.log.Warn("insight scorer reported an error", zap.String("contribution_id", id.String()))
	}

	return s.repo.FindByID(ctx, id)
}
