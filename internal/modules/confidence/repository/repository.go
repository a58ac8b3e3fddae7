package repository

import (
	"context"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfidenceRepository interface {
	// Transaction runs fn against a repository bound to one DB transaction.
	Transaction(ctx context.Context, fn func(repo ConfidenceRepository) error) error
	// TopicHistory returns the user's history in a topic, most recent first.
	TopicHistory(ctx context.Context, userID uuid.UUID, topic string) ([]entity.HistoryEntry, error)
	// Find returns nil without error when no record exists yet.
	Find(ctx context.Context, userID uuid.UUID, topicID string) (*entity.ConfidenceRecord, error)
	Upsert(ctx context.Context, record *entity.ConfidenceRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.ConfidenceRecord, error)
}

type confidenceRepository struct {
	db *gorm.DB
}

func NewConfidenceRepository(db *gorm.DB) ConfidenceRepository {
	return &confidenceRepository{db: db}
}

func (r *confidenceRepository) Transaction(ctx context.Context, fn func(repo ConfidenceRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&confidenceRepository{db: tx})
	})
}

func (r *confidenceRepository) TopicHistory(ctx context.Context, userID uuid.UUID, topic string) ([]entity.HistoryEntry, error) {
	var entries []entity.HistoryEntry
	err := r.db.WithContext(ctx).
		Select("id", "status", "attempts", "created_at").
		Where("user_id = ? AND topic = ?", userID, topic).
		Order("created_at desc, id desc").
		Find(&entries).Error
	return entries, err
}

func (r *confidenceRepository) Find(ctx context.Context, userID uuid.UUID, topicID string) (*entity.ConfidenceRecord, error) {
	var records []entity.ConfidenceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Limit(1).
		Find(&records).Error
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

func (r *confidenceRepository) Upsert(ctx context.Context, record *entity.ConfidenceRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "topic_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"topic_name", "score", "solved_count", "error_rate", "decay_factor", "last_updated",
			}),
		}).
		Create(record).Error
}

func (r *confidenceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.ConfidenceRecord, error) {
	var records []entity.ConfidenceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("score desc, topic_id asc").
		Find(&records).Error
	return records, err
}
