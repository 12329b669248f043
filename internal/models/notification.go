package models

import "time"

type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationLike   NotificationType = "like"
	NotificationReply  NotificationType = "reply"
)

// Notification is a derived event. IsRead only ever goes from false to true.
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID string           `json:"recipient_id" gorm:"size:64;not null;index"`
	ActorID     string           `json:"actor_id" gorm:"size:64;not null"`
	Type        NotificationType `json:"type" gorm:"size:20;not null"`
	TargetID    *uint            `json:"target_id" gorm:"index"` // post ID for like/reply, nil for follow
	IsRead      bool             `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}

// NotificationRow is a notification joined with its actor and target post.
type NotificationRow struct {
	Notification
	ActorName   *string
	ActorAvatar *string
	PostBody    *string
}

// NotificationView is the response shape for the notification list.
type NotificationView struct {
	ID             uint             `json:"id"`
	Type           NotificationType `json:"type"`
	ActorID        string           `json:"actor_id"`
	ActorName      string           `json:"actor_name"`
	ActorAvatarURL string           `json:"actor_avatar_url"`
	TargetID       *uint            `json:"target_id,omitempty"`
	PostBody       *string          `json:"post_body,omitempty"`
	IsRead         bool             `json:"is_read"`
	CreatedAt      time.Time        `json:"created_at"`
}
