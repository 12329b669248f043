package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
	"go.uber.org/zap"
)

// ThreadService creates, deletes and reconstructs reply threads.
type ThreadService struct {
	posts     repositories.PostRepository
	emitter   Emitter
	decorator Decorator
	log       *zap.Logger
}

func NewThreadService(posts repositories.PostRepository, emitter Emitter, decorator Decorator, log *zap.Logger) *ThreadService {
	return &ThreadService{posts: posts, emitter: emitter, decorator: decorator, log: log}
}

func validatePostBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return apperrors.Validation("post body must not be empty")
	}
	if utf8.RuneCountInString(body) > models.MaxPostBodyLength {
		return apperrors.Validation("post body must be at most 255 characters")
	}
	return nil
}

// CreatePost stores a post, or a reply when parentPostID is set. Replying to someone
// else's post notifies its author.
func (s *ThreadService) CreatePost(ctx context.Context, authorID, body string, parentPostID *uint) (*models.Post, error) {
	if err := validatePostBody(body); err != nil {
		return nil, err
	}

	var parent *models.Post
	if parentPostID != nil {
		p, err := s.posts.GetPostByID(ctx, *parentPostID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Validation("parent post does not exist")
		}
		if err != nil {
			return nil, apperrors.Storage("failed to load parent post", err)
		}
		parent = p
	}

	post := &models.Post{AuthorID: authorID, Body: body, ParentPostID: parentPostID}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Storage("failed to create post", err)
	}

	if parent != nil && parent.AuthorID != authorID {
		target := parent.ID
		s.emitter.Emit(ctx, Event{
			RecipientID: parent.AuthorID,
			ActorID:     authorID,
			Type:        models.NotificationReply,
			TargetID:    &target,
		})
	}
	return post, nil
}

// GetPost returns a single post decorated for viewerID.
func (s *ThreadService) GetPost(ctx context.Context, postID uint, viewerID string) (*models.DecoratedPost, error) {
	row, err := s.posts.GetPostRow(ctx, postID, viewerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("post not found")
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load post", err)
	}
	post := s.decorator.Post(*row)
	return &post, nil
}

// GetThread returns the post, its ancestors root-first and its replies oldest-first,
// all decorated for viewerID. A missing ancestor ends the walk without error.
func (s *ThreadService) GetThread(ctx context.Context, postID uint, viewerID string) (*models.Thread, error) {
	main, err := s.posts.GetPostRow(ctx, postID, viewerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("post not found")
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load post", err)
	}

	ancestors, err := s.ancestors(ctx, main, viewerID)
	if err != nil {
		return nil, err
	}

	replies, err := s.posts.GetReplies(ctx, postID, viewerID)
	if err != nil {
		return nil, apperrors.Storage("failed to load replies", err)
	}

	return &models.Thread{
		Ancestors: s.decorator.Posts(ancestors),
		MainPost:  s.decorator.Post(*main),
		Replies:   s.decorator.Posts(replies),
	}, nil
}

func (s *ThreadService) ancestors(ctx context.Context, post *models.PostRow, viewerID string) ([]models.PostRow, error) {
	var chain []models.PostRow
	seen := map[uint]bool{post.ID: true}
	current := post
	for current.ParentPostID != nil && !seen[*current.ParentPostID] {
		parentID := *current.ParentPostID
		parent, err := s.posts.GetPostRow(ctx, parentID, viewerID)
		if errors.Is(err, repositories.ErrNotFound) {
			s.log.Debug("ancestor chain broken", zap.Uint("post_id", current.ID), zap.Uint("missing_parent_id", parentID))
			break
		}
		if err != nil {
			return nil, apperrors.Storage("failed to load ancestor post", err)
		}
		seen[parentID] = true
		chain = append([]models.PostRow{*parent}, chain...)
		current = parent
	}
	return chain, nil
}

// DeletePost removes a post owned by requestingUserID. Someone else's post is reported
// as not found so its existence does not leak.
func (s *ThreadService) DeletePost(ctx context.Context, postID uint, requestingUserID string) error {
	err := s.posts.DeleteOwnedPost(ctx, postID, requestingUserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("post not found")
	}
	if err != nil {
		return apperrors.Storage("failed to delete post", err)
	}
	return nil
}
