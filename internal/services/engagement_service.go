package services

import (
	"context"
	"errors"

	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
)

// EngagementService is the like ledger.
type EngagementService struct {
	likes   repositories.LikeRepository
	posts   repositories.PostRepository
	emitter Emitter
}

func NewEngagementService(likes repositories.LikeRepository, posts repositories.PostRepository, emitter Emitter) *EngagementService {
	return &EngagementService{likes: likes, posts: posts, emitter: emitter}
}

// Like records that userID likes postID. A second like is a Conflict; concurrent
// duplicates are settled by the unique index.
func (s *EngagementService) Like(ctx context.Context, postID uint, userID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("post not found")
	}
	if err != nil {
		return apperrors.Storage("failed to load post", err)
	}

	err = s.likes.CreateLike(ctx, &models.Like{PostID: postID, UserID: userID})
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperrors.Conflict("post already liked")
	}
	if err != nil {
		return apperrors.Storage("failed to like post", err)
	}

	if post.AuthorID != userID {
		target := post.ID
		s.emitter.Emit(ctx, Event{
			RecipientID: post.AuthorID,
			ActorID:     userID,
			Type:        models.NotificationLike,
			TargetID:    &target,
		})
	}
	return nil
}

func (s *EngagementService) Unlike(ctx context.Context, postID uint, userID string) error {
	err := s.likes.DeleteLike(ctx, postID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("like not found")
	}
	if err != nil {
		return apperrors.Storage("failed to unlike post", err)
	}
	return nil
}

func (s *EngagementService) LikeCount(ctx context.Context, postID uint) (int64, error) {
	count, err := s.likes.GetLikesCountByPostID(ctx, postID)
	if err != nil {
		return 0, apperrors.Storage("failed to count likes", err)
	}
	return count, nil
}

func (s *EngagementService) HasLiked(ctx context.Context, postID uint, userID string) (bool, error) {
	liked, err := s.likes.HasUserLikedPost(ctx, postID, userID)
	if err != nil {
		return false, apperrors.Storage("failed to load like status", err)
	}
	return liked, nil
}
