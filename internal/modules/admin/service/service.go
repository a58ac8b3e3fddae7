package service

import (
	"context"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/modules/admin/dto"
	userRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobRunner is the part of the scheduler the admin surface triggers.
type JobRunner interface {
	RunJobByName(ctx context.Context, name string) error
	JobNames() []string
}

type AdminService interface {
	ListJobs() *dto.JobListResponse
	RunJob(ctx context.Context, name string) (*dto.JobRunResponse, error)
	GrantRole(ctx context.Context, userID uuid.UUID, req dto.GrantRoleRequest) error
}

type adminService struct {
	jobs     JobRunner
	userRepo userRepo.UserRepository
	log      *zap.Logger
}

func NewAdminService(jobs JobRunner, userRepo userRepo.UserRepository, log *zap.Logger) AdminService {
	return &adminService{
		jobs:     jobs,
		userRepo: userRepo,
		log:      log,
	}
}

func (s *adminService) ListJobs() *dto.JobListResponse {
	return &dto.JobListResponse{Jobs: s.jobs.JobNames()}
}

func (s *adminService) RunJob(ctx context.Context, name string) (*dto.JobRunResponse, error) {
	start := time.Now()
	if err := s.jobs.RunJobByName(ctx, name); err != nil {
		return nil, err
	}
	return &dto.JobRunResponse{
		Job:      name,
		Status:   "completed",
		Duration: time.Since(start),
	}, nil
}

func (s *adminService) GrantRole(ctx context.Context, userID uuid.UUID, req dto.GrantRoleRequest) error {
	// surfaces ErrNotFound for unknown users
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.AddRole(ctx, userID, req.Role); err != nil {
		return err
	}
	s.log.Info("role granted", zap.String("user_id", userID.String()), zap.String("role", req.Role))
	return nil
}
