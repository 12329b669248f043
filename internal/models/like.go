package models

import "time"

// Like represents a like on a post. (PostID, UserID) is unique.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_like_post_user"`
	UserID    string    `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_like_post_user;index"`
	CreatedAt time.Time `json:"created_at"`
}
