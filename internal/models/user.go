package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the identity record. UserID is both the public handle and the login identifier.
type User struct {
	UserID       string    `json:"user_id" gorm:"primaryKey;size:64"`
	DisplayName  string    `json:"name" gorm:"size:50"`
	Bio          string    `json:"bio" gorm:"size:160"`
	AvatarRef    *string   `json:"-" gorm:"size:512"`
	PasswordHash string    `json:"-"`
	FirebaseUID  *string   `json:"-" gorm:"uniqueIndex"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Name returns the display name, falling back to the user id.
func (u *User) Name() string {
	if u.DisplayName == "" {
		return u.UserID
	}
	return u.DisplayName
}

type RegisterRequest struct {
	UserID   string `json:"user_id" validate:"required,min=3,max=64,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest exchanges a firebase ID token for a local JWT. UserID is only
// consulted when the firebase account is not linked yet.
type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
	UserID  string `json:"user_id,omitempty" validate:"omitempty,min=3,max=64,alphanum"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
	Bio  string `json:"bio" validate:"max=160"`
}

// UserSummary is a row in follow lists and user search results.
type UserSummary struct {
	UserID                  string `json:"user_id"`
	Name                    string `json:"name"`
	Bio                     string `json:"bio"`
	AvatarURL               string `json:"avatar_url"`
	IsFollowedByCurrentUser bool   `json:"is_followed_by_current_user"`
}

// UserProfile is the profile page view, decorated relative to the requesting viewer.
type UserProfile struct {
	UserID                  string `json:"user_id"`
	Name                    string `json:"name"`
	Bio                     string `json:"bio"`
	AvatarURL               string `json:"avatar_url"`
	Username                string `json:"username"`
	FollowingCount          int64  `json:"following"`
	FollowersCount          int64  `json:"followers"`
	IsFollowedByCurrentUser bool   `json:"is_followed_by_current_user"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// UserRow is a user joined with the viewer-relative follow flag.
type UserRow struct {
	UserID                  string
	DisplayName             string
	Bio                     string
	AvatarRef               *string
	IsFollowedByCurrentUser bool
}

// ProfileRow is a UserRow with the follow graph counts.
type ProfileRow struct {
	UserRow
	FollowingCount int64
	FollowersCount int64
}
