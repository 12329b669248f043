package repositories

import (
	"context"

	"github.com/anonto42/nano-thread/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowers(ctx context.Context, userID, viewerID string) ([]models.UserRow, error)
	GetFollowing(ctx context.Context, userID, viewerID string) ([]models.UserRow, error)
	GetFollowersCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return translate(r.db.WithContext(ctx).Create(follow).Error)
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowers lists who follows userID; the follow flag is relative to viewerID.
func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID, viewerID string) ([]models.UserRow, error) {
	return r.listEdges(ctx, "f.follower_id", "f.following_id", userID, viewerID)
}

// GetFollowing lists whom userID follows; the follow flag is relative to viewerID.
func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID, viewerID string) ([]models.UserRow, error) {
	return r.listEdges(ctx, "f.following_id", "f.follower_id", userID, viewerID)
}

func (r *PostgresFollowRepository) listEdges(ctx context.Context, joinColumn, matchColumn, userID, viewerID string) ([]models.UserRow, error) {
	var users []models.UserRow
	err := r.db.WithContext(ctx).
		Table("users AS u").
		Select(userRowColumns, viewerID).
		Joins("INNER JOIN follows f ON u.user_id = "+joinColumn).
		Where(matchColumn+" = ?", userID).
		Order("f.created_at DESC, f.id DESC").
		Scan(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}
