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

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// EnsureUser inserts the user unless a row with the same id exists.
	// It reports whether a row was created.
	EnsureUser(ctx context.Context, user *entity.User) (bool, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
	AddRole(ctx context.Context, userID uuid.UUID, role string) error
	// PromoteTopicExpert adds the Topic Expert role and the topic to the
	// user's expert topics. Both are set unions.
	PromoteTopicExpert(ctx context.Context, userID uuid.UUID, topicID string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Preload("ExpertTopics").
		Preload("Badges").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EnsureUser(ctx context.Context, user *entity.User) (bool, error) {
	if user.Expertise == "" {
		user.Expertise = entity.ExpertiseBeginner
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(user)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("last_active_at", at).Error
}

func (r *userRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *userRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("last_active_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *userRepository) AddRole(ctx context.Context, userID uuid.UUID, role string) error {
	return addRole(r.db.WithContext(ctx), userID, role)
}

func (r *userRepository) PromoteTopicExpert(ctx context.Context, userID uuid.UUID, topicID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := addRole(tx, userID, entity.RoleTopicExpert); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&entity.UserExpertTopic{UserID: userID, TopicID: topicID}).Error
	})
}

func addRole(db *gorm.DB, userID uuid.UUID, role string) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.UserRole{UserID: userID, Role: role}).Error
}
