package repository

import (
	"context"
	"errors"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/dev-lov-oper/Clarix-AI/pkg/dbretry"
	"github.com/dev-lov-oper/Clarix-AI/pkg/scoremath"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outcome describes one applied (or skipped) vote transition.
type Outcome struct {
	Contribution entity.Contribution
	Before       scoremath.Direction
	After        scoremath.Direction
	Weight       float64
	Changed      bool
}

type VoteRepository interface {
	GetDirection(ctx context.Context, contributionID, voterID uuid.UUID) (scoremath.Direction, error)
	// ApplyVote moves the voter to the given direction and adjusts the
	// contribution aggregates in one transaction. A concurrent write to the
	// same contribution makes it return dbretry.ErrConflict with nothing written.
	ApplyVote(ctx context.Context, contributionID, voterID uuid.UUID, after scoremath.Direction) (*Outcome, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) GetDirection(ctx context.Context, contributionID, voterID uuid.UUID) (scoremath.Direction, error) {
	return currentDirection(r.db.WithContext(ctx), contributionID, voterID)
}

// Find with a slice keeps GORM from logging "record not found" for the
// common no-vote case.
func currentDirection(db *gorm.DB, contributionID, voterID uuid.UUID) (scoremath.Direction, error) {
	var existing []entity.Vote
	err := db.Where("contribution_id = ? AND voter_id = ?", contributionID, voterID).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return scoremath.Absent, err
	}
	if len(existing) == 0 {
		return scoremath.Absent, nil
	}
	return scoremath.ParseDirection(existing[0].Direction), nil
}

func (r *voteRepository) ApplyVote(ctx context.Context, contributionID, voterID uuid.UUID, after scoremath.Direction) (*Outcome, error) {
	out := &Outcome{After: after}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", contributionID).First(&out.Contribution).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		var voter entity.User
		if err := tx.Select("id", "reputation", "expertise").Where("id = ?", voterID).First(&voter).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		before, err := currentDirection(tx, contributionID, voterID)
		if err != nil {
			return err
		}
		out.Before = before
		if before == after {
			return nil
		}

		c := &out.Contribution
		out.Weight = scoremath.VoteWeight(voter.Reputation, voter.Expertise, c.Relevance())
		score := scoremath.Round2(c.WeightedScore + scoremath.VoteDelta(before, after, out.Weight))
		count := c.VoteCount + scoremath.VoteCountDelta(before, after)
		if count < 0 {
			count = 0
		}

		res := tx.Model(&entity.Contribution{}).
			Where("id = ? AND version = ?", c.ID, c.Version).
			Updates(map[string]interface{}{
				"weighted_score": score,
				"vote_count":     count,
				"version":        c.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return dbretry.ErrConflict
		}

		switch {
		case after == scoremath.Absent:
			err = tx.Where("contribution_id = ? AND voter_id = ?", contributionID, voterID).
				Delete(&entity.Vote{}).Error
		case before == scoremath.Absent:
			err = tx.Create(&entity.Vote{
				ContributionID: contributionID,
				VoterID:        voterID,
				Direction:      after.String(),
			}).Error
		default:
			err = tx.Model(&entity.Vote{}).
				Where("contribution_id = ? AND voter_id = ?", contributionID, voterID).
				Update("direction", after.String()).Error
		}
		if err != nil {
			return err
		}

		c.WeightedScore = score
		c.VoteCount = count
		c.Version++
		out.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
