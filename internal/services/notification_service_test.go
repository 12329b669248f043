package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNotificationService_MarkReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUsers(t, "alice", "bob")
	require.NoError(t, env.graph.Follow(ctx, "bob", "alice"))

	inbox := env.inbox(t, "alice")
	require.Len(t, inbox, 1)
	id := inbox[0].ID

	unread, err := env.notifications.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, env.notifications.MarkRead(ctx, id, "alice"))
	require.NoError(t, env.notifications.MarkRead(ctx, id, "alice"))
	require.NoError(t, env.notifications.MarkRead(ctx, 9999, "alice"))
	require.NoError(t, env.notifications.MarkRead(ctx, id, "bob"))

	unread, err = env.notifications.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, unread)
	assert.True(t, env.inbox(t, "alice")[0].IsRead)
}

func TestNotificationService_MarkAllReadAndOrdering(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUsers(t, "alice", "bob", "carol")
	post := env.createPost(t, "alice", "hi", nil)
	require.NoError(t, env.graph.Follow(ctx, "bob", "alice"))
	require.NoError(t, env.engagement.Like(ctx, post.ID, "carol"))

	inbox := env.inbox(t, "alice")
	require.Len(t, inbox, 2)
	assert.Equal(t, models.NotificationLike, inbox[0].Type)
	assert.Equal(t, models.NotificationFollow, inbox[1].Type)

	require.NoError(t, env.notifications.MarkAllRead(ctx, "alice"))
	require.NoError(t, env.notifications.MarkAllRead(ctx, "alice"))
	unread, err := env.notifications.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, unread)

	page, err := env.notifications.List(ctx, "alice", models.Page{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

type mockNotificationRepository struct {
	mock.Mock
	repositories.NotificationRepository
}

func (m *mockNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func TestNotificationService_NotifySwallowsStoreFailure(t *testing.T) {
	repo := &mockNotificationRepository{}
	repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.RecipientID == "alice" && n.Type == models.NotificationFollow
	})).Return(errors.New("connection refused")).Once()

	svc := NewNotificationService(repo, NewDecorator(testBaseURL, testDefaultAvatar), zaptest.NewLogger(t))
	assert.NotPanics(t, func() {
		svc.Emit(context.Background(), Event{RecipientID: "alice", ActorID: "bob", Type: models.NotificationFollow})
	})
	repo.AssertExpectations(t)
}

func TestFollowService_NotificationFailureDoesNotFailFollow(t *testing.T) {
	env := newTestEnv(t)
	env.createUsers(t, "alice", "bob")

	repo := &mockNotificationRepository{}
	repo.On("CreateNotification", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	failing := NewNotificationService(repo, env.decorator, zaptest.NewLogger(t))
	graph := NewFollowService(env.follows, env.users, failing, env.decorator)

	require.NoError(t, graph.Follow(context.Background(), "alice", "bob"))
	following, err := graph.IsFollowing(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.True(t, following)
}
