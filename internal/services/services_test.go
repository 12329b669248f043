package services

import (
	"context"
	"sync"
	"testing"

	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
	"github.com/anonto42/nano-thread/backend/internal/testdb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testBaseURL       = "http://api.test"
	testDefaultAvatar = "https://cdn.test/default.png"
)

type testEnv struct {
	users         *repositories.PostgresUserRepository
	posts         *repositories.PostgresPostRepository
	likes         *repositories.PostgresLikeRepository
	follows       *repositories.PostgresFollowRepository
	notifications *NotificationService
	threads       *ThreadService
	engagement    *EngagementService
	graph         *FollowService
	feed          *FeedService
	decorator     Decorator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testdb.Open(t)
	log := zaptest.NewLogger(t)
	decorator := NewDecorator(testBaseURL, testDefaultAvatar)

	env := &testEnv{
		users:     repositories.NewPostgresUserRepository(db),
		posts:     repositories.NewPostgresPostRepository(db),
		likes:     repositories.NewPostgresLikeRepository(db),
		follows:   repositories.NewPostgresFollowRepository(db),
		decorator: decorator,
	}
	env.notifications = NewNotificationService(repositories.NewPostgresNotificationRepository(db), decorator, log)
	env.threads = NewThreadService(env.posts, env.notifications, decorator, log)
	env.engagement = NewEngagementService(env.likes, env.posts, env.notifications)
	env.graph = NewFollowService(env.follows, env.users, env.notifications, decorator)
	env.feed = NewFeedService(env.posts, env.users, decorator)
	return env
}

func (e *testEnv) createUsers(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, e.users.CreateUser(context.Background(), &models.User{UserID: id, DisplayName: id}))
	}
}

func (e *testEnv) createPost(t *testing.T, author, body string, parent *uint) *models.Post {
	t.Helper()
	p, err := e.threads.CreatePost(context.Background(), author, body, parent)
	require.NoError(t, err)
	return p
}

func (e *testEnv) inbox(t *testing.T, userID string) []models.NotificationView {
	t.Helper()
	list, err := e.notifications.List(context.Background(), userID, models.Page{})
	require.NoError(t, err)
	return list
}

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingEmitter) Emit(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingEmitter) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
