package models

import "time"

// MaxPostBodyLength is counted in characters (runes), not bytes.
const MaxPostBodyLength = 255

// Post is a short text post. ParentPostID is fixed at creation; nil means top-level.
type Post struct {
	ID           uint      `json:"post_id" gorm:"primaryKey"`
	AuthorID     string    `json:"author_id" gorm:"size:64;not null;index"`
	Body         string    `json:"body" gorm:"size:255;not null"`
	ParentPostID *uint     `json:"parent_post_id" gorm:"index"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// CreatePostRequest defines the request body for creating a new post or reply
type CreatePostRequest struct {
	Body         string `json:"body" validate:"required"`
	ParentPostID *uint  `json:"parent_post_id,omitempty" validate:"omitempty,min=1"`
}

// PostRow is a post joined with its author and the viewer-relative aggregates,
// as scanned from the feed queries.
type PostRow struct {
	Post
	AuthorName     *string
	AuthorAvatar   *string
	ReplyCount     int64
	LikeCount      int64
	ViewerHasLiked bool
}

// DecoratedPost is the single response shape for every post the API returns.
type DecoratedPost struct {
	ID              uint      `json:"post_id"`
	AuthorID        string    `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	AuthorAvatarURL string    `json:"author_avatar_url"`
	Body            string    `json:"body"`
	ParentPostID    *uint     `json:"parent_post_id"`
	CreatedAt       time.Time `json:"created_at"`
	ReplyCount      int64     `json:"reply_count"`
	LikeCount       int64     `json:"like_count"`
	ViewerHasLiked  bool      `json:"viewer_has_liked"`
}

// Thread is a post with its ancestor chain (root first) and its direct replies (oldest first).
type Thread struct {
	Ancestors []DecoratedPost `json:"ancestors"`
	MainPost  DecoratedPost   `json:"main_post"`
	Replies   []DecoratedPost `json:"replies"`
}

// SearchResult bundles the two independent search result sets.
type SearchResult struct {
	Posts []DecoratedPost `json:"posts"`
	Users []UserSummary   `json:"users"`
}
