package repository

import (
	"context"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatRepository interface {
	CountCompletedSince(ctx context.Context, since time.Time) (int64, error)
	// AverageRelevanceSince is the mean insight relevance of contributions
	// analysed since the given time, 0 when there are none.
	AverageRelevanceSince(ctx context.Context, since time.Time) (float64, error)
	CountMisleadingSince(ctx context.Context, since time.Time) (int64, error)
	Upsert(ctx context.Context, stat *entity.DailyStat) error
	// ListRange returns days in [from, to] (YYYY-MM-DD, inclusive), oldest first.
	ListRange(ctx context.Context, from, to string) ([]entity.DailyStat, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) CountCompletedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.HistoryEntry{}).
		Where("status IN ? AND completed_at >= ?", []string{entity.StatusCompleted, entity.StatusAccepted}, since).
		Count(&count).Error
	return count, err
}

func (r *statRepository) AverageRelevanceSince(ctx context.Context, since time.Time) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&entity.Contribution{}).
		Select("COALESCE(AVG(ai_relevance), 0)").
		Where("analyzed_at >= ? AND ai_relevance IS NOT NULL", since).
		Scan(&avg).Error
	return avg, err
}

func (r *statRepository) CountMisleadingSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Contribution{}).
		Where("analyzed_at >= ? AND has_misconception = ?", since, true).
		Count(&count).Error
	return count, err
}

func (r *statRepository) Upsert(ctx context.Context, stat *entity.DailyStat) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			UpdateAll: true,
		}).
		Create(stat).Error
}

func (r *statRepository) ListRange(ctx context.Context, from, to string) ([]entity.DailyStat, error) {
	var stats []entity.DailyStat
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date asc").
		Find(&stats).Error
	return stats, err
}
