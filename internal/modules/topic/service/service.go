package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/topic/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/topic/repository"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
)

type TopicService interface {
	CreateTopic(ctx context.Context, req dto.CreateTopicRequest) (*entity.Topic, error)
	GetAllTopics(ctx context.Context, filter dto.TopicFilter) ([]entity.Topic, error)
	GetTopic(ctx context.Context, id string) (*entity.Topic, error)
}

type topicService struct {
	repo repository.TopicRepository
}

func NewTopicService(repo repository.TopicRepository) TopicService {
	return &topicService{repo: repo}
}

func (s *topicService) CreateTopic(ctx context.Context, req dto.CreateTopicRequest) (*entity.Topic, error) {
	name := strings.TrimSpace(req.Name)
	topic := &entity.Topic{ID: entity.TopicID(name), Name: name}

	created, err := s.repo.Create(ctx, topic)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, apperror.New(http.StatusConflict, fmt.Sprintf("topic %s already exists", name), apperror.ErrBadRequest)
	}
	return topic, nil
}

func (s *topicService) GetAllTopics(ctx context.Context, filter dto.TopicFilter) ([]entity.Topic, error) {
	return s.repo.FindAll(ctx, strings.TrimSpace(filter.Search))
}

func (s *topicService) GetTopic(ctx context.Context, id string) (*entity.Topic, error) {
	return s.repo.FindByID(ctx, entity.TopicID(id))
}
