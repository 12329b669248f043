package repositories

import (
	"context"

	"github.com/anonto42/nano-thread/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID string, page models.Page) ([]models.NotificationRow, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uint, recipientID string) error
	MarkAllAsRead(ctx context.Context, recipientID string) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// GetByRecipientID returns notifications newest first, joined with the actor and the target post.
func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, page models.Page) ([]models.NotificationRow, error) {
	var rows []models.NotificationRow
	tx := r.db.WithContext(ctx).
		Table("notifications AS n").
		Select("n.*, a.display_name AS actor_name, a.avatar_ref AS actor_avatar, p.body AS post_body").
		Joins("LEFT JOIN users a ON a.user_id = n.actor_id").
		Joins("LEFT JOIN posts p ON p.id = n.target_id").
		Where("n.recipient_id = ?", recipientID).
		Order("n.created_at DESC, n.id DESC")
	err := paginate(tx, page).Scan(&rows).Error
	return rows, err
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Count(&count).Error
	return count, err
}

// MarkAsRead only touches unread rows owned by recipientID; zero rows affected is not an error.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, notificationID uint, recipientID string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", notificationID, recipientID, false).
		Update("is_read", true).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}
