package repositories

import (
	"context"

	"github.com/anonto42/nano-thread/backend/internal/models"
	"gorm.io/gorm"
)

// PostFilter selects which posts a feed query returns. Zero values mean "no constraint".
type PostFilter struct {
	TopLevelOnly bool
	RepliesOnly  bool
	AuthorID     string
	FollowedBy   string // restrict to authors this user follows
	BodyContains string // case-insensitive substring
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostRow(ctx context.Context, id uint, viewerID string) (*models.PostRow, error)
	GetReplies(ctx context.Context, parentID uint, viewerID string) ([]models.PostRow, error)
	ListPosts(ctx context.Context, filter PostFilter, viewerID string, page models.Page) ([]models.PostRow, error)
	DeleteOwnedPost(ctx context.Context, id uint, authorID string) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// postRowColumns selects a PostRow for alias p joined to users u; the argument is the viewer id.
const postRowColumns = `p.*, u.display_name AS author_name, u.avatar_ref AS author_avatar,
	(SELECT COUNT(*) FROM posts r WHERE r.parent_post_id = p.id) AS reply_count,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
	EXISTS (SELECT 1 FROM likes vl WHERE vl.post_id = p.id AND vl.user_id = ?) AS viewer_has_liked`

func (r *PostgresPostRepository) rows(ctx context.Context, viewerID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts AS p").
		Select(postRowColumns, viewerID).
		Joins("LEFT JOIN users u ON u.user_id = p.author_id")
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error)
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// GetPostRow loads one post with author and viewer-relative aggregates.
func (r *PostgresPostRepository) GetPostRow(ctx context.Context, id uint, viewerID string) (*models.PostRow, error) {
	var rows []models.PostRow
	if err := r.rows(ctx, viewerID).Where("p.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// GetReplies returns the direct replies of parentID, oldest first.
func (r *PostgresPostRepository) GetReplies(ctx context.Context, parentID uint, viewerID string) ([]models.PostRow, error) {
	var rows []models.PostRow
	err := r.rows(ctx, viewerID).
		Where("p.parent_post_id = ?", parentID).
		Order("p.created_at ASC, p.id ASC").
		Scan(&rows).Error
	return rows, err
}

// ListPosts returns posts matching filter, newest first.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, filter PostFilter, viewerID string, page models.Page) ([]models.PostRow, error) {
	tx := r.rows(ctx, viewerID)
	if filter.TopLevelOnly {
		tx = tx.Where("p.parent_post_id IS NULL")
	}
	if filter.RepliesOnly {
		tx = tx.Where("p.parent_post_id IS NOT NULL")
	}
	if filter.AuthorID != "" {
		tx = tx.Where("p.author_id = ?", filter.AuthorID)
	}
	if filter.FollowedBy != "" {
		tx = tx.Where("p.author_id IN (SELECT f.following_id FROM follows f WHERE f.follower_id = ?)", filter.FollowedBy)
	}
	if filter.BodyContains != "" {
		tx = tx.Where(`LOWER(p.body) LIKE LOWER(?) ESCAPE '\'`, containsPattern(filter.BodyContains))
	}

	var rows []models.PostRow
	err := paginate(tx.Order("p.created_at DESC, p.id DESC"), page).Scan(&rows).Error
	return rows, err
}

// DeleteOwnedPost removes the post when authorID wrote it, together with its likes and
// the notifications pointing at it. Replies written by others are left in place.
// A missing post and a post owned by someone else both yield ErrNotFound.
func (r *PostgresPostRepository) DeleteOwnedPost(ctx context.Context, id uint, authorID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND author_id = ?", id, authorID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("target_id = ? AND type IN ?", id,
			[]string{string(models.NotificationLike), string(models.NotificationReply)}).
			Delete(&models.Notification{}).Error
	})
}
