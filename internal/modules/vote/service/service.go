package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/repository"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/dev-lov-oper/Clarix-AI/pkg/dbretry"
	"github.com/dev-lov-oper/Clarix-AI/pkg/metrics"
	"github.com/dev-lov-oper/Clarix-AI/pkg/scoremath"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VoteService interface {
	CastVote(ctx context.Context, contributionID, voterID uuid.UUID, direction scoremath.Direction) (*dto.VoteResponse, error)
	GetVote(ctx context.Context, contributionID, voterID uuid.UUID) (*dto.VoteResponse, error)
}

type voteService struct {
	repo   repository.VoteRepository
	policy dbretry.Policy
	log    *zap.Logger
}

func NewVoteService(repo repository.VoteRepository, policy dbretry.Policy, log *zap.Logger) VoteService {
	return &voteService{repo: repo, policy: policy, log: log}
}

func (s *voteService) CastVote(ctx context.Context, contributionID, voterID uuid.UUID, direction scoremath.Direction) (*dto.VoteResponse, error) {
	attempt := 0
	out, err := dbretry.Operation(ctx, s.policy, func(ctx context.Context) (*repository.Outcome, error) {
		attempt++
		if attempt > 1 {
			metrics.VoteRetries.Inc()
		}
		return s.repo.ApplyVote(ctx, contributionID, voterID, direction)
	})
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			metrics.VotesProcessed.WithLabelValues("not_found").Inc()
			return nil, err
		case errors.Is(err, dbretry.ErrRetriesExhausted):
			metrics.VotesProcessed.WithLabelValues("contention").Inc()
			s.log.Warn("vote gave up after write conflicts",
				zap.String("contribution_id", contributionID.String()),
				zap.String("voter_id", voterID.String()),
				zap.Int("attempts", attempt),
			)
			return nil, fmt.Errorf("%w: %v", apperror.ErrContention, err)
		default:
			metrics.VotesProcessed.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("apply vote: %w", err)
		}
	}

	if !out.Changed {
		metrics.VotesProcessed.WithLabelValues("noop").Inc()
	} else {
		metrics.VotesProcessed.WithLabelValues("applied").Inc()
		s.log.Debug("vote applied",
			zap.String("contribution_id", contributionID.String()),
			zap.String("voter_id", voterID.String()),
			zap.Stringer("before", out.Before),
			zap.Stringer("after", out.After),
			zap.Float64("weight", out.Weight),
			zap.Float64("weighted_score", out.Contribution.WeightedScore),
		)
	}

	return &dto.VoteResponse{
		ContributionID: out.Contribution.ID,
		Direction:      out.After.String(),
		WeightedScore:  out.Contribution.WeightedScore,
		VoteCount:      out.Contribution.VoteCount,
		Changed:        out.Changed,
	}, nil
}

func (s *voteService) GetVote(ctx context.Context, contributionID, voterID uuid.UUID) (*dto.VoteResponse, error) {
	direction, err := s.repo.GetDirection(ctx, contributionID, voterID)
	if err != nil {
		return nil, err
	}

	return &dto.VoteResponse{
		ContributionID: contributionID,
		Direction:      direction.String(),
	}, nil
}
