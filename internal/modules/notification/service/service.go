package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	notifRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/notification/repository"
	"github.com/dev-lov-oper/Clarix-AI/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel carrying a user's live notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	// CreateNotification appends the notification and publishes it to the
	// user's channel. Publishing is best effort.
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	log         *zap.Logger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         log,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}
	metrics.NotificationsEmitted.WithLabelValues(notification.Type).Inc()

	if s.redisClient == nil {
		return nil
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		s.log.Warn("failed to encode notification", zap.Error(err))
		return nil
	}
	if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
		s.log.Warn("failed to publish notification",
			zap.String("user_id", notification.UserID.String()),
			zap.Error(err),
		)
	}

	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
