package services

import (
	"testing"

	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestDecorator_AvatarURL(t *testing.T) {
	d := NewDecorator("http://localhost:8080/", testDefaultAvatar)

	tests := []struct {
		name string
		ref  *string
		want string
	}{
		{"unset", nil, testDefaultAvatar},
		{"empty", strPtr(""), testDefaultAvatar},
		{"absolute https", strPtr("https://img.example/a.png"), "https://img.example/a.png"},
		{"absolute http", strPtr("http://img.example/a.png"), "http://img.example/a.png"},
		{"relative rooted", strPtr("/uploads/avatars/a.png"), "http://localhost:8080/uploads/avatars/a.png"},
		{"relative bare", strPtr("uploads/avatars/a.png"), "http://localhost:8080/uploads/avatars/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.AvatarURL(tt.ref))
		})
	}
}

func TestDecorator_NotificationSnippetOnlyForLikes(t *testing.T) {
	d := NewDecorator(testBaseURL, testDefaultAvatar)
	target := uint(7)
	body := strPtr("the post")

	like := d.Notification(models.NotificationRow{
		Notification: models.Notification{ID: 1, ActorID: "bob", Type: models.NotificationLike, TargetID: &target},
		PostBody:     body,
	})
	assert.Equal(t, body, like.PostBody)
	assert.Equal(t, "bob", like.ActorName)

	reply := d.Notification(models.NotificationRow{
		Notification: models.Notification{ID: 2, ActorID: "bob", Type: models.NotificationReply, TargetID: &target},
		ActorName:    strPtr("Bobby"),
		PostBody:     body,
	})
	assert.Nil(t, reply.PostBody)
	assert.Equal(t, "Bobby", reply.ActorName)
	assert.Equal(t, &target, reply.TargetID)
}

func TestDecorator_Profile(t *testing.T) {
	d := NewDecorator(testBaseURL, testDefaultAvatar)
	p := d.Profile(models.ProfileRow{
		UserRow:        models.UserRow{UserID: "alice", Bio: "hi"},
		FollowingCount: 2,
		FollowersCount: 3,
	})
	assert.Equal(t, "@alice", p.Username)
	assert.Equal(t, "alice", p.Name)
	assert.Equal(t, testDefaultAvatar, p.AvatarURL)
	assert.EqualValues(t, 3, p.FollowersCount)
}
