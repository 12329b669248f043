package services

import (
	"strings"

	"github.com/anonto42/nano-thread/backend/internal/models"
)

// Decorator turns store rows into response views. Every post, user and notification
// the API returns goes through it, so the avatar and display-name rules live in one place.
type Decorator struct {
	baseURL          string
	defaultAvatarURL string
}

// NewDecorator takes the public base URL that relative avatar paths are served under
// and the image shown for users without an avatar.
func NewDecorator(publicBaseURL, defaultAvatarURL string) Decorator {
	return Decorator{
		baseURL:          strings.TrimRight(publicBaseURL, "/"),
		defaultAvatarURL: defaultAvatarURL,
	}
}

func isAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// AvatarURL resolves a stored avatar reference to an absolute URL.
func (d Decorator) AvatarURL(ref *string) string {
	if ref == nil || *ref == "" {
		return d.defaultAvatarURL
	}
	if isAbsoluteURL(*ref) {
		return *ref
	}
	if !strings.HasPrefix(*ref, "/") {
		return d.baseURL + "/" + *ref
	}
	return d.baseURL + *ref
}

func displayName(name *string, fallback string) string {
	if name == nil || *name == "" {
		return fallback
	}
	return *name
}

func (d Decorator) Post(row models.PostRow) models.DecoratedPost {
	return models.DecoratedPost{
		ID:              row.ID,
		AuthorID:        row.AuthorID,
		AuthorName:      displayName(row.AuthorName, row.AuthorID),
		AuthorAvatarURL: d.AvatarURL(row.AuthorAvatar),
		Body:            row.Body,
		ParentPostID:    row.ParentPostID,
		CreatedAt:       row.CreatedAt,
		ReplyCount:      row.ReplyCount,
		LikeCount:       row.LikeCount,
		ViewerHasLiked:  row.ViewerHasLiked,
	}
}

func (d Decorator) Posts(rows []models.PostRow) []models.DecoratedPost {
	posts := make([]models.DecoratedPost, len(rows))
	for i, row := range rows {
		posts[i] = d.Post(row)
	}
	return posts
}

func (d Decorator) User(row models.UserRow) models.UserSummary {
	return models.UserSummary{
		UserID:                  row.UserID,
		Name:                    displayName(&row.DisplayName, row.UserID),
		Bio:                     row.Bio,
		AvatarURL:               d.AvatarURL(row.AvatarRef),
		IsFollowedByCurrentUser: row.IsFollowedByCurrentUser,
	}
}

func (d Decorator) Users(rows []models.UserRow) []models.UserSummary {
	users := make([]models.UserSummary, len(rows))
	for i, row := range rows {
		users[i] = d.User(row)
	}
	return users
}

func (d Decorator) Profile(row models.ProfileRow) models.UserProfile {
	summary := d.User(row.UserRow)
	return models.UserProfile{
		UserID:                  summary.UserID,
		Name:                    summary.Name,
		Bio:                     summary.Bio,
		AvatarURL:               summary.AvatarURL,
		Username:                "@" + row.UserID,
		FollowingCount:          row.FollowingCount,
		FollowersCount:          row.FollowersCount,
		IsFollowedByCurrentUser: row.IsFollowedByCurrentUser,
	}
}

// Notification decorates a notification. Only likes carry a snippet of the target post;
// replies and follows never do.
func (d Decorator) Notification(row models.NotificationRow) models.NotificationView {
	view := models.NotificationView{
		ID:             row.ID,
		Type:           row.Type,
		ActorID:        row.ActorID,
		ActorName:      displayName(row.ActorName, row.ActorID),
		ActorAvatarURL: d.AvatarURL(row.ActorAvatar),
		TargetID:       row.TargetID,
		IsRead:         row.IsRead,
		CreatedAt:      row.CreatedAt,
	}
	if row.Type == models.NotificationLike {
		view.PostBody = row.PostBody
	}
	return view
}
