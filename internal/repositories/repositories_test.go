package repositories_test

import (
	"context"
	"testing"

	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
	"github.com/anonto42/nano-thread/backend/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db            *gorm.DB
	users         *repositories.PostgresUserRepository
	posts         *repositories.PostgresPostRepository
	likes         *repositories.PostgresLikeRepository
	follows       *repositories.PostgresFollowRepository
	notifications repositories.NotificationRepository
}

func newFixture(t *testing.T) *fixture {
	db := testdb.Open(t)
	return &fixture{
		db:            db,
		users:         repositories.NewPostgresUserRepository(db),
		posts:         repositories.NewPostgresPostRepository(db),
		likes:         repositories.NewPostgresLikeRepository(db),
		follows:       repositories.NewPostgresFollowRepository(db),
		notifications: repositories.NewPostgresNotificationRepository(db),
	}
}

func (f *fixture) user(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, f.users.CreateUser(context.Background(), &models.User{UserID: id, DisplayName: name}))
}

func (f *fixture) post(t *testing.T, author, body string, parent *uint) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: author, Body: body, ParentPostID: parent}
	require.NoError(t, f.posts.CreatePost(context.Background(), p))
	return p
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice", "Alice")

	err := f.users.CreateUser(context.Background(), &models.User{UserID: "alice"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestUserRepository_UpdateMissingUser(t *testing.T) {
	f := newFixture(t)
	err := f.users.UpdateAvatarRef(context.Background(), "ghost", "/uploads/avatars/x.png")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserRepository_GetProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "alice", "Alice")
	f.user(t, "bob", "Bob")
	f.user(t, "carol", "Carol")
	require.NoError(t, f.follows.CreateFollow(ctx, &models.Follow{FollowerID: "bob", FollowingID: "alice"}))
	require.NoError(t, f.follows.CreateFollow(ctx, &models.Follow{FollowerID: "carol", FollowingID: "alice"}))
	require.NoError(t, f.follows.CreateFollow(ctx, &models.Follow{FollowerID: "alice", FollowingID: "bob"}))

	profile, err := f.users.GetProfile(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.EqualValues(t, 2, profile.FollowersCount)
	assert.EqualValues(t, 1, profile.FollowingCount)
	assert.True(t, profile.IsFollowedByCurrentUser)

	profile, err = f.users.GetProfile(ctx, "alice", "alice")
	require.NoError(t, err)
	assert.False(t, profile.IsFollowedByCurrentUser)

	_, err = f.users.GetProfile(ctx, "ghost", "alice")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserRepository_SearchUsers(t *testing.T) {
	f := newFixture(t)
	f.user(t, "zed", "Ann Lee")
	f.user(t, "annie", "Annie")
	f.user(t, "bob", "Bob")
	f.user(t, "x_y", "Under")

	rows, err := f.users.SearchUsers(context.Background(), "ANN", "bob", models.Page{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "annie", rows[0].UserID)
	assert.Equal(t, "zed", rows[1].UserID)

	rows, err = f.users.SearchUsers(context.Background(), "_", "bob", models.Page{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "x_y", rows[0].UserID)
}

func TestPostRepository_ListPostsFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "alice", "Alice")
	f.user(t, "bob", "")
	first := f.post(t, "alice", "hello world", nil)
	second := f.post(t, "bob", "100% sure", nil)
	reply := f.post(t, "bob", "Hello back", &first.ID)
	require.NoError(t, f.likes.CreateLike(ctx, &models.Like{PostID: first.ID, UserID: "bob"}))
	require.NoError(t, f.follows.CreateFollow(ctx, &models.Follow{FollowerID: "alice", FollowingID: "bob"}))

	global, err := f.posts.ListPosts(ctx, repositories.PostFilter{TopLevelOnly: true}, "bob", models.Page{})
	require.NoError(t, err)
	require.Len(t, global, 2)
	assert.Equal(t, second.ID, global[0].ID)
	assert.Equal(t, first.ID, global[1].ID)
	assert.EqualValues(t, 1, global[1].ReplyCount)
	assert.EqualValues(t, 1, global[1].LikeCount)
	assert.True(t, global[1].ViewerHasLiked)
	assert.False(t, global[0].ViewerHasLiked)

	following, err := f.posts.ListPosts(ctx, repositories.PostFilter{TopLevelOnly: true, FollowedBy: "alice"}, "alice", models.Page{})
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, second.ID, following[0].ID)

	replies, err := f.posts.ListPosts(ctx, repositories.PostFilter{RepliesOnly: true, AuthorID: "bob"}, "", models.Page{})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, reply.ID, replies[0].ID)

	search, err := f.posts.ListPosts(ctx, repositories.PostFilter{BodyContains: "HELLO"}, "", models.Page{})
	require.NoError(t, err)
	assert.Len(t, search, 2)

	search, err = f.posts.ListPosts(ctx, repositories.PostFilter{BodyContains: "%"}, "", models.Page{})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, second.ID, search[0].ID)

	paged, err := f.posts.ListPosts(ctx, repositories.PostFilter{}, "", models.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, second.ID, paged[0].ID)
}

func TestPostRepository_GetRepliesOldestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := f.post(t, "alice", "root", nil)
	r1 := f.post(t, "bob", "one", &root.ID)
	r2 := f.post(t, "carol", "two", &root.ID)

	replies, err := f.posts.GetReplies(ctx, root.ID, "")
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, r1.ID, replies[0].ID)
	assert.Equal(t, r2.ID, replies[1].ID)
	assert.Nil(t, replies[0].AuthorName)
}

func TestPostRepository_DeleteOwnedPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := f.post(t, "alice", "root", nil)
	reply := f.post(t, "bob", "reply", &root.ID)
	require.NoError(t, f.likes.CreateLike(ctx, &models.Like{PostID: root.ID, UserID: "bob"}))
	target := root.ID
	require.NoError(t, f.notifications.CreateNotification(ctx, &models.Notification{
		RecipientID: "alice", ActorID: "bob", Type: models.NotificationLike, TargetID: &target,
	}))
	require.NoError(t, f.notifications.CreateNotification(ctx, &models.Notification{
		RecipientID: "alice", ActorID: "bob", Type: models.NotificationFollow,
	}))

	assert.ErrorIs(t, f.posts.DeleteOwnedPost(ctx, root.ID, "bob"), repositories.ErrNotFound)
	assert.ErrorIs(t, f.posts.DeleteOwnedPost(ctx, 9999, "alice"), repositories.ErrNotFound)

	require.NoError(t, f.posts.DeleteOwnedPost(ctx, root.ID, "alice"))

	_, err := f.posts.GetPostByID(ctx, root.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	count, err := f.likes.GetLikesCountByPostID(ctx, root.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	remaining, err := f.notifications.GetByRecipientID(ctx, "alice", models.Page{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, models.NotificationFollow, remaining[0].Type)

	kept, err := f.posts.GetPostByID(ctx, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, *kept.ParentPostID)
}

func TestLikeRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.post(t, "alice", "likeable", nil)

	require.NoError(t, f.likes.CreateLike(ctx, &models.Like{PostID: p.ID, UserID: "bob"}))
	err := f.likes.CreateLike(ctx, &models.Like{PostID: p.ID, UserID: "bob"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	liked, err := f.likes.HasUserLikedPost(ctx, p.ID, "bob")
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, f.likes.DeleteLike(ctx, p.ID, "bob"))
	assert.ErrorIs(t, f.likes.DeleteLike(ctx, p.ID, "bob"), repositories.ErrNotFound)
}

func TestFollowRepository_ListsRelativeToViewer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, id := range []string{"alice", "bob", "carol", "dave"} {
		f.user(t, id, "")
	}
	require.NoError(t, f.follows.CreateFollow(ctx, &models.Follow{FollowerID: "bob", FollowingID: "alice"}))
	require.NoError(t, f.follows.CreateFollow(ctx, &models.Follow{FollowerID: "carol", FollowingID: "alice"}))
	require.NoError(t, f.follows.CreateFollow(ctx, &models.Follow{FollowerID: "dave", FollowingID: "carol"}))

	err := f.follows.CreateFollow(ctx, &models.Follow{FollowerID: "bob", FollowingID: "alice"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	followers, err := f.follows.GetFollowers(ctx, "alice", "dave")
	require.NoError(t, err)
	require.Len(t, followers, 2)
	flags := map[string]bool{}
	for _, u := range followers {
		flags[u.UserID] = u.IsFollowedByCurrentUser
	}
	assert.Equal(t, map[string]bool{"bob": false, "carol": true}, flags)

	following, err := f.follows.GetFollowing(ctx, "dave", "dave")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "carol", following[0].UserID)

	n, err := f.follows.GetFollowersCount(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, f.follows.DeleteFollow(ctx, "bob", "alice"))
	assert.ErrorIs(t, f.follows.DeleteFollow(ctx, "bob", "alice"), repositories.ErrNotFound)
}

func TestNotificationRepository_MarkAsReadScopedToRecipient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := &models.Notification{RecipientID: "alice", ActorID: "bob", Type: models.NotificationFollow}
	require.NoError(t, f.notifications.CreateNotification(ctx, n))

	require.NoError(t, f.notifications.MarkAsRead(ctx, n.ID, "mallory"))
	unread, err := f.notifications.GetUnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, f.notifications.MarkAsRead(ctx, n.ID, "alice"))
	require.NoError(t, f.notifications.MarkAsRead(ctx, n.ID, "alice"))
	unread, err = f.notifications.GetUnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, unread)
}
