package services

import (
	"context"

	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
	"github.com/anonto42/nano-thread/backend/pkg/metrics"
	"go.uber.org/zap"
)

// Event is a notification-worthy action. TargetID is the post for likes and replies.
type Event struct {
	RecipientID string
	ActorID     string
	Type        models.NotificationType
	TargetID    *uint
}

// Emitter is the single emission point mutating services use for notifications.
// Emit never fails: the triggering write has already committed.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// NotificationService stores, lists and read-marks notifications.
type NotificationService struct {
	notifications repositories.NotificationRepository
	decorator     Decorator
	log           *zap.Logger
}

func NewNotificationService(repo repositories.NotificationRepository, decorator Decorator, log *zap.Logger) *NotificationService {
	return &NotificationService{notifications: repo, decorator: decorator, log: log}
}

// Notify inserts the notification. A failed insert is logged and swallowed.
// Callers have already suppressed self-actions.
func (s *NotificationService) Notify(ctx context.Context, ev Event) {
	n := &models.Notification{
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		Type:        ev.Type,
		TargetID:    ev.TargetID,
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		metrics.NotificationsEmitted.WithLabelValues(string(ev.Type), "dropped").Inc()
		s.log.Warn("failed to store notification",
			zap.String("notification_type", string(ev.Type)),
			zap.String("recipient_id", ev.RecipientID),
			zap.String("actor_id", ev.ActorID),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsEmitted.WithLabelValues(string(ev.Type), "stored").Inc()
}

// Emit stores the notification inline.
func (s *NotificationService) Emit(ctx context.Context, ev Event) {
	s.Notify(ctx, ev)
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID string, page models.Page) ([]models.NotificationView, error) {
	rows, err := s.notifications.GetByRecipientID(ctx, recipientID, page)
	if err != nil {
		return nil, apperrors.Storage("failed to load notifications", err)
	}
	views := make([]models.NotificationView, len(rows))
	for i, row := range rows {
		views[i] = s.decorator.Notification(row)
	}
	return views, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.notifications.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return 0, apperrors.Storage("failed to count unread notifications", err)
	}
	return count, nil
}

// MarkRead is idempotent: an already-read, foreign or unknown id still succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID uint, recipientID string) error {
	if err := s.notifications.MarkAsRead(ctx, notificationID, recipientID); err != nil {
		return apperrors.Storage("failed to mark notification as read", err)
	}
	return nil
}

// MarkAllRead is idempotent.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	if err := s.notifications.MarkAllAsRead(ctx, recipientID); err != nil {
		return apperrors.Storage("failed to mark notifications as read", err)
	}
	return nil
}
