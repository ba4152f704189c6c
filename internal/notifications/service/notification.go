package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	notificationerrors "curbside/internal/notifications/errors"
	"curbside/internal/notifications/repository"
	"curbside/pkg/config"
	apperrors "curbside/pkg/errors"
	"curbside/pkg/events"
	"curbside/pkg/model"
)

// NotificationService turns pickup lifecycle events into feed entries and
// serves the feed back to the app.
type NotificationService interface {
	RecordFromEvent(ctx context.Context, event events.PickupEvent) error
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	cfg  *config.Config
}

func NewNotificationService(repo repository.NotificationRepository, cfg *config.Config) NotificationService {
	return &notificationService{
		repo: repo,
		cfg:  cfg,
	}
}

// RecordFromEvent builds a feed entry for one lifecycle event. Unknown event
// types are an error so the consumer can route the message to the DLQ instead
// of silently dropping it.
func (s *notificationService) RecordFromEvent(ctx context.Context, event events.PickupEvent) error {
	if event.UserID == "" {
		return fmt.Errorf("%w: missing user ID", notificationerrors.ErrUnsupportedEvent)
	}

	notification, err := buildNotification(event)
	if err != nil {
		return err
	}

	if err := s.repo.Insert(ctx, notification); err != nil {
		s.cfg.Log.Error("Failed to store notification",
			"user_id", event.UserID,
			"request_id", event.RequestID,
			"type", event.Type,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Notification stored",
		"id", notification.ID,
		"user_id", notification.UserID,
		"kind", notification.Kind,
	)
	return nil
}

func buildNotification(event events.PickupEvent) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:    event.UserID,
		RequestID: event.RequestID,
		CreatedAt: event.OccurredAt,
	}

	switch event.Type {
	case events.TypePickupCreated:
		notification.Kind = model.NotificationPickupCreated
		notification.Title = "Pickup scheduled"
		notification.Body = fmt.Sprintf("Your %s pickup is booked for %s at %s.", event.WasteType, event.Date, event.Time)
	case events.TypePickupRescheduled:
		notification.Kind = model.NotificationPickupRescheduled
		notification.Title = "Pickup rescheduled"
		notification.Body = fmt.Sprintf("Your %s pickup was moved to %s at %s.", event.WasteType, event.Date, event.Time)
	case events.TypePickupCancelled:
		notification.Kind = model.NotificationPickupCancelled
		notification.Title = "Pickup cancelled"
		if event.Reason != "" {
			notification.Body = fmt.Sprintf("Your %s pickup on %s at %s was cancelled: %s", event.WasteType, event.Date, event.Time, event.Reason)
		} else {
			notification.Body = fmt.Sprintf("Your %s pickup on %s at %s was cancelled.", event.WasteType, event.Date, event.Time)
		}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", notificationerrors.ErrUnsupportedEvent, event.Type)
	}

	return notification, nil
}

func (s *notificationService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Notification, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var notifications []*model.Notification
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count notifications", "user_id", userID, "error", errCount)
			errCount = apperrors.StoreUnavailable("Failed to count notifications", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		notifications, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list notifications", "user_id", userID, "error", errFind)
			errFind = apperrors.StoreUnavailable("Failed to retrieve notifications", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return notifications, count, nil
}

func (s *notificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to count unread notifications", "user_id", userID, "error", err)
		return 0, apperrors.StoreUnavailable("Failed to count unread notifications", err)
	}

	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if id == "" {
		return apperrors.InvalidInput("Notification ID cannot be empty")
	}
	if userID == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, notificationerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Notification", id)
		}
		if errors.Is(err, notificationerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid notification ID format")
		}
		s.cfg.Log.Error("Failed to mark notification read", "id", id, "error", err)
		return apperrors.StoreUnavailable("Failed to mark notification read", err)
	}

	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		s.cfg.Log.Error("Failed to mark notifications read", "user_id", userID, "error", err)
		return apperrors.StoreUnavailable("Failed to mark notifications read", err)
	}

	return nil
}
