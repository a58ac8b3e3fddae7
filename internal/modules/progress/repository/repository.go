package repository

import (
	"context"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	Transaction(ctx context.Context, fn func(repo ProgressRepository) error) error
	// FindEntry returns nil without error when the user never attempted the problem.
	FindEntry(ctx context.Context, userID uuid.UUID, problemID string) (*entity.HistoryEntry, error)
	SaveEntry(ctx context.Context, entry *entity.HistoryEntry) error
	// RecentEntries returns up to limit entries, most recent first.
	RecentEntries(ctx context.Context, userID uuid.UUID, limit int) ([]entity.HistoryEntry, error)
	FindStats(ctx context.Context, userID uuid.UUID) (*entity.UserStats, error)
	SaveStats(ctx context.Context, stats *entity.UserStats) error
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Transaction(ctx context.Context, fn func(repo ProgressRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&progressRepository{db: tx})
	})
}

func (r *progressRepository) FindEntry(ctx context.Context, userID uuid.UUID, problemID string) (*entity.HistoryEntry, error) {
	var entries []entity.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Limit(1).
		Find(&entries).Error
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

func (r *progressRepository) SaveEntry(ctx context.Context, entry *entity.HistoryEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *progressRepository) RecentEntries(ctx context.Context, userID uuid.UUID, limit int) ([]entity.HistoryEntry, error) {
	var entries []entity.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *progressRepository) FindStats(ctx context.Context, userID uuid.UUID) (*entity.UserStats, error) {
	var stats []entity.UserStats
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&stats).Error
	if err != nil || len(stats) == 0 {
		return nil, err
	}
	return &stats[0], nil
}

func (r *progressRepository) SaveStats(ctx context.Context, stats *entity.UserStats) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(stats).Error
}
