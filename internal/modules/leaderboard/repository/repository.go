package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaderboardRepository interface {
	ListTopicIDs(ctx context.Context) ([]string, error)
	// ContributionsSince loads only the columns the ranking needs.
	ContributionsSince(ctx context.Context, topicID string, since time.Time) ([]entity.Contribution, error)
	// ReplaceSnapshot overwrites every column of the topic's snapshot.
	ReplaceSnapshot(ctx context.Context, snapshot *entity.LeaderboardSnapshot) error
	GetSnapshot(ctx context.Context, topicID string) (*entity.LeaderboardSnapshot, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) ListTopicIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.Topic{}).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *leaderboardRepository) ContributionsSince(ctx context.Context, topicID string, since time.Time) ([]entity.Contribution, error) {
	var contributions []entity.Contribution
	err := r.db.WithContext(ctx).
		Select("id", "author_id", "weighted_score", "validation_status").
		Where("topic_id = ? AND created_at >= ?", topicID, since).
		Find(&contributions).Error
	return contributions, err
}

func (r *leaderboardRepository) ReplaceSnapshot(ctx context.Context, snapshot *entity.LeaderboardSnapshot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "topic_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"leaders", "period_start", "updated_at"}),
		}).
		Create(snapshot).Error
}

func (r *leaderboardRepository) GetSnapshot(ctx context.Context, topicID string) (*entity.LeaderboardSnapshot, error) {
	var snapshot entity.LeaderboardSnapshot
	if err := r.db.WithContext(ctx).Where("topic_id = ?", topicID).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &snapshot, nil
}
