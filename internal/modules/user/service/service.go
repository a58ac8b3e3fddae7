package service

import (
	"context"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/user/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	// Provision creates the scoring profile of a freshly signed-up user
	// (reputation 0, Beginner). An existing profile is returned untouched.
	Provision(ctx context.Context, userID uuid.UUID, req dto.ProvisionRequest) (*entity.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	Touch(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	repo repository.UserRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewUserService(repo repository.UserRepository, log *zap.Logger, now func() time.Time) UserService {
	if now == nil {
		now = time.Now
	}
	return &userService{repo: repo, log: log, now: now}
}

func (s *userService) Provision(ctx context.Context, userID uuid.UUID, req dto.ProvisionRequest) (*entity.User, error) {
	user := &entity.User{
		ID:         userID,
		Username:   req.Username,
		Reputation: 0,
		Expertise:  entity.ExpertiseBeginner,
	}

	created, err := s.repo.EnsureUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("user provisioned", zap.String("user_id", userID.String()))
	}

	return s.repo.FindByID(ctx, userID)
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *userService) Touch(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Touch(ctx, userID, s.now())
}
