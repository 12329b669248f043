package services

import (
	"context"
	"errors"

	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
)

// FollowService maintains the directed follow graph.
type FollowService struct {
	follows   repositories.FollowRepository
	users     repositories.UserRepository
	emitter   Emitter
	decorator Decorator
}

func NewFollowService(follows repositories.FollowRepository, users repositories.UserRepository, emitter Emitter, decorator Decorator) *FollowService {
	return &FollowService{follows: follows, users: users, emitter: emitter, decorator: decorator}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return apperrors.Validation("you cannot follow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, followingID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Storage("failed to load user", err)
	}

	err := s.follows.CreateFollow(ctx, &models.Follow{FollowerID: followerID, FollowingID: followingID})
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperrors.Conflict("already following this user")
	}
	if err != nil {
		return apperrors.Storage("failed to follow user", err)
	}

	s.emitter.Emit(ctx, Event{RecipientID: followingID, ActorID: followerID, Type: models.NotificationFollow})
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID string) error {
	err := s.follows.DeleteFollow(ctx, followerID, followingID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("not following this user")
	}
	if err != nil {
		return apperrors.Storage("failed to unfollow user", err)
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	ok, err := s.follows.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return false, apperrors.Storage("failed to load follow status", err)
	}
	return ok, nil
}

func (s *FollowService) FollowersCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.follows.GetFollowersCount(ctx, userID)
	if err != nil {
		return 0, apperrors.Storage("failed to count followers", err)
	}
	return n, nil
}

func (s *FollowService) FollowingCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.follows.GetFollowingCount(ctx, userID)
	if err != nil {
		return 0, apperrors.Storage("failed to count following", err)
	}
	return n, nil
}

// Followers lists who follows userID. The follow flag on each entry is relative to viewerID.
func (s *FollowService) Followers(ctx context.Context, userID, viewerID string) ([]models.UserSummary, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.follows.GetFollowers(ctx, userID, viewerID)
	if err != nil {
		return nil, apperrors.Storage("failed to load followers", err)
	}
	return s.decorator.Users(rows), nil
}

// Following lists whom userID follows. The follow flag on each entry is relative to viewerID.
func (s *FollowService) Following(ctx context.Context, userID, viewerID string) ([]models.UserSummary, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.follows.GetFollowing(ctx, userID, viewerID)
	if err != nil {
		return nil, apperrors.Storage("failed to load following", err)
	}
	return s.decorator.Users(rows), nil
}

func (s *FollowService) requireUser(ctx context.Context, userID string) error {
	_, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("user not found")
	}
	if err != nil {
		return apperrors.Storage("failed to load user", err)
	}
	return nil
}
