package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TopicRepository interface {
	// Create inserts the topic and reports false when the id already exists.
	Create(ctx context.Context, topic *entity.Topic) (bool, error)
	FindByID(ctx context.Context, id string) (*entity.Topic, error)
	FindAll(ctx context.Context, filter string) ([]entity.Topic, error)
}

type topicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *entity.Topic) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(topic)
	return res.RowsAffected > 0, res.Error
}

func (r *topicRepository) FindByID(ctx context.Context, id string) (*entity.Topic, error) {
	var topic entity.Topic
	if err := r.db.WithContext(ctx).First(&topic, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindAll(ctx context.Context, filter string) ([]entity.Topic, error) {
	var topics []entity.Topic
	query := r.db.WithContext(ctx).Order("name asc")

	if filter != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter)+"%")
	}

	if err := query.Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}
