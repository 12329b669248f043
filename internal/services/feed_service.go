package services

import (
	"context"
	"strings"

	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
)

// FeedService assembles decorated post listings and search results for a viewer.
type FeedService struct {
	posts     repositories.PostRepository
	users     repositories.UserRepository
	decorator Decorator
}

func NewFeedService(posts repositories.PostRepository, users repositories.UserRepository, decorator Decorator) *FeedService {
	return &FeedService{posts: posts, users: users, decorator: decorator}
}

func (s *FeedService) list(ctx context.Context, filter repositories.PostFilter, viewerID string, page models.Page) ([]models.DecoratedPost, error) {
	rows, err := s.posts.ListPosts(ctx, filter, viewerID, page)
	if err != nil {
		return nil, apperrors.Storage("failed to load posts", err)
	}
	return s.decorator.Posts(rows), nil
}

// GlobalFeed is every top-level post, newest first.
func (s *FeedService) GlobalFeed(ctx context.Context, viewerID string, page models.Page) ([]models.DecoratedPost, error) {
	return s.list(ctx, repositories.PostFilter{TopLevelOnly: true}, viewerID, page)
}

// FollowingFeed is the top-level posts of users the viewer follows. The viewer's own
// posts are not included.
func (s *FeedService) FollowingFeed(ctx context.Context, viewerID string, page models.Page) ([]models.DecoratedPost, error) {
	return s.list(ctx, repositories.PostFilter{TopLevelOnly: true, FollowedBy: viewerID}, viewerID, page)
}

func (s *FeedService) UserPosts(ctx context.Context, userID, viewerID string, page models.Page) ([]models.DecoratedPost, error) {
	return s.list(ctx, repositories.PostFilter{TopLevelOnly: true, AuthorID: userID}, viewerID, page)
}

func (s *FeedService) UserReplies(ctx context.Context, userID, viewerID string, page models.Page) ([]models.DecoratedPost, error) {
	return s.list(ctx, repositories.PostFilter{RepliesOnly: true, AuthorID: userID}, viewerID, page)
}

func normalizeQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", apperrors.Validation("search query must not be empty")
	}
	return q, nil
}

// SearchPosts matches top-level posts and replies whose body contains query, case-insensitively.
func (s *FeedService) SearchPosts(ctx context.Context, query, viewerID string, page models.Page) ([]models.DecoratedPost, error) {
	q, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repositories.PostFilter{BodyContains: q}, viewerID, page)
}

// SearchUsers matches users whose id or display name contains query.
func (s *FeedService) SearchUsers(ctx context.Context, query, viewerID string, page models.Page) ([]models.UserSummary, error) {
	q, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}
	rows, err := s.users.SearchUsers(ctx, q, viewerID, page)
	if err != nil {
		return nil, apperrors.Storage("failed to search users", err)
	}
	return s.decorator.Users(rows), nil
}

func (s *FeedService) Search(ctx context.Context, query, viewerID string, page models.Page) (*models.SearchResult, error) {
	posts, err := s.SearchPosts(ctx, query, viewerID, page)
	if err != nil {
		return nil, err
	}
	users, err := s.SearchUsers(ctx, query, viewerID, page)
	if err != nil {
		return nil, err
	}
	return &models.SearchResult{Posts: posts, Users: users}, nil
}
