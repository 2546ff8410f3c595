package service

import (
	"context"
	"encoding/json"

	"allmeet-api/core/cache"
	"allmeet-api/core/constants"
	coreEntity "allmeet-api/core/entity"
	"allmeet-api/core/logger"
	"allmeet-api/core/params"
	"allmeet-api/core/queue"
	"allmeet-api/modules/notification/dto"
	"allmeet-api/modules/notification/entity"
	"allmeet-api/modules/notification/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type NotificationService struct {
	repo  repository.NotificationRepositoryInterface
	cache *cache.Cache
	queue *queue.Queue
}

func NewNotificationService(repo repository.NotificationRepositoryInterface, c *cache.Cache, q *queue.Queue) *NotificationService {
	return &NotificationService{repo: repo, cache: c, queue: q}
}

// Create persists a notification synchronously.
func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) error {
	notif := &entity.Notification{
		UserID:        req.UserID,
		Type:          req.Type,
		Content:       req.Content,
		RelatedPostID: req.RelatedPostID,
		CourseID:      req.CourseID,
		IsRead:        false,
		BaseEntity:    coreEntity.NewBaseEntity(),
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		return err
	}
	s.bumpUnreadCounter(ctx, req.UserID)
	return nil
}

// Enqueue hands the notification to the task queue. Delivery is
// fire-and-forget from the caller's perspective; if the queue is unavailable
// the notification is written directly instead.
func (s *NotificationService) Enqueue(ctx context.Context, req *dto.CreateNotificationRequest) error {
	if s.queue == nil {
		return s.Create(ctx, req)
	}
	if err := s.queue.Enqueue(ctx, constants.TaskTypeNotificationDeliver, req); err != nil {
		logger.Warn("NotificationService:Enqueue falling back to direct write", "error", err)
		return s.Create(ctx, req)
	}
	return nil
}

// HandleDeliverTask is the asynq handler for queued notifications.
func (s *NotificationService) HandleDeliverTask(ctx context.Context, task *asynq.Task) error {
	var req dto.CreateNotificationRequest
	if err := json.Unmarshal(task.Payload(), &req); err != nil {
		return err
	}
	return s.Create(ctx, &req)
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	return s.repo.GetByUserID(ctx, userID, queryParams)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) error {
	if err := s.repo.MarkAsRead(ctx, userID, ids); err != nil {
		return err
	}
	s.invalidateUnreadCounter(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateUnreadCounter(ctx, userID)
	return nil
}

// CountUnread serves the unread badge from redis when possible, falling back
// to a database count.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	if s.cache != nil {
		if n, found, err := s.cache.GetInt(ctx, unreadKey(userID)); err == nil && found {
			return int(n), nil
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetInt(ctx, unreadKey(userID), int64(count), 0); err != nil {
			logger.Warn("NotificationService:CountUnread:CacheSet", "error", err)
		}
	}
	return count, nil
}

func (s *NotificationService) bumpUnreadCounter(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Increment(ctx, unreadKey(userID)); err != nil {
		logger.Warn("NotificationService:bumpUnreadCounter", "error", err)
	}
}

func (s *NotificationService) invalidateUnreadCounter(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, unreadKey(userID)); err != nil {
		logger.Warn("NotificationService:invalidateUnreadCounter", "error", err)
	}
}

func unreadKey(userID uuid.UUID) string {
	return constants.RedisKeyUnreadCount + userID.String()
}
