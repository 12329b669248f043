package repositories

import (
	"context"

	"github.com/anonto42/nano-thread/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	LinkFirebaseUID(ctx context.Context, userID, firebaseUID string) error
	UpdateProfile(ctx context.Context, userID, displayName, bio string) error
	UpdateAvatarRef(ctx context.Context, userID, avatarRef string) error
	GetProfile(ctx context.Context, userID, viewerID string) (*models.ProfileRow, error)
	SearchUsers(ctx context.Context, query, viewerID string, page models.Page) ([]models.UserRow, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// userRowColumns selects a UserRow for alias u; the single argument is the viewer id.
const userRowColumns = `u.user_id, u.display_name, u.bio, u.avatar_ref,
	EXISTS (SELECT 1 FROM follows vf WHERE vf.follower_id = ? AND vf.following_id = u.user_id) AS is_followed_by_current_user`

// CreateUser inserts a user; an existing user id yields ErrDuplicate.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) LinkFirebaseUID(ctx context.Context, userID, firebaseUID string) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{"firebase_uid": firebaseUID})
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, userID, displayName, bio string) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{"display_name": displayName, "bio": bio})
}

// UpdateAvatarRef repoints the user's avatar in a single statement.
func (r *PostgresUserRepository) UpdateAvatarRef(ctx context.Context, userID, avatarRef string) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{"avatar_ref": avatarRef})
}

func (r *PostgresUserRepository) updateColumns(ctx context.Context, userID string, columns map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", userID).Updates(columns)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProfile loads a user with follow counts and whether viewerID follows them.
func (r *PostgresUserRepository) GetProfile(ctx context.Context, userID, viewerID string) (*models.ProfileRow, error) {
	var rows []models.ProfileRow
	err := r.db.WithContext(ctx).
		Table("users AS u").
		Select(userRowColumns+`,
			(SELECT COUNT(*) FROM follows f1 WHERE f1.follower_id = u.user_id) AS following_count,
			(SELECT COUNT(*) FROM follows f2 WHERE f2.following_id = u.user_id) AS followers_count`, viewerID).
		Where("u.user_id = ?", userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// SearchUsers matches the id or display name case-insensitively, ordered by id.
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query, viewerID string, page models.Page) ([]models.UserRow, error) {
	pattern := containsPattern(query)
	var users []models.UserRow
	tx := r.db.WithContext(ctx).
		Table("users AS u").
		Select(userRowColumns, viewerID).
		Where(`LOWER(u.user_id) LIKE LOWER(?) ESCAPE '\' OR LOWER(u.display_name) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern).
		Order("u.user_id ASC")
	if err := paginate(tx, page).Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
