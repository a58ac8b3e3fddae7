package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Assessment is the set of fields the insight scorer may write.
type Assessment struct {
	AIRelevance      *int
	HasMisconception *bool
	ValidationStatus string
	AnalyzedAt       time.Time
}

type ContributionRepository interface {
	Create(ctx context.Context, contribution *entity.Contribution) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Contribution, error)
	EnsureTopic(ctx context.Context, topic *entity.Topic) error
	ApplyAssessment(ctx context.Context, id uuid.UUID, a Assessment) error
}

type contributionRepository struct {
	db *gorm.DB
}

func NewContributionRepository(db *gorm.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) Create(ctx context.Context, contribution *entity.Contribution) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(contribution).Error
}

func (r *contributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contribution, error) {
	var contribution entity.Contribution
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&contribution).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &contribution, nil
}

func (r *contributionRepository) EnsureTopic(ctx context.Context, topic *entity.Topic) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(topic).Error
}

// ApplyAssessment writes the scorer's verdict. Relevance is only stored while
// the column is still NULL. The version is bumped so an in-flight vote
// transaction re-reads the relevance it weighs with.
func (r *contributionRepository) ApplyAssessment(ctx context.Context, id uuid.UUID, a Assessment) error {
	updates := map[string]interface{}{
		"analyzed_at": a.AnalyzedAt,
		"version":     gorm.Expr("version + 1"),
	}
	if a.AIRelevance != nil {
		updates["ai_relevance"] = gorm.Expr("COALESCE(ai_relevance, ?)", *a.AIRelevance)
	}
	if a.HasMisconception != nil {
		updates["has_misconception"] = *a.HasMisconception
	}
	if a.ValidationStatus != "" {
		updates["validation_status"] = a.ValidationStatus
	}

	res := r.db.WithContext(ctx).
		Model(&entity.Contribution{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}
