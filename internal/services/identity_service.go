package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxDisplayNameLength = 50
	maxBioLength         = 160
)

// IDTokenVerifier verifies firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// IdentityService handles registration, login and profiles.
type IdentityService struct {
	users      repositories.UserRepository
	verifier   IDTokenVerifier
	decorator  Decorator
	jwtSecret  []byte
	jwtTTL     time.Duration
	defaultBio string
	log        *zap.Logger
}

// IdentityConfig holds token and default-profile settings.
type IdentityConfig struct {
	JWTSecret  string
	JWTTTL     time.Duration
	DefaultBio string
}

// NewIdentityService builds the service. verifier may be nil when firebase is not configured.
func NewIdentityService(users repositories.UserRepository, verifier IDTokenVerifier, decorator Decorator, cfg IdentityConfig, log *zap.Logger) *IdentityService {
	return &IdentityService{
		users:      users,
		verifier:   verifier,
		decorator:  decorator,
		jwtSecret:  []byte(cfg.JWTSecret),
		jwtTTL:     cfg.JWTTTL,
		defaultBio: cfg.DefaultBio,
		log:        log,
	}
}

// Register creates a local account and returns a token for it.
func (s *IdentityService) Register(ctx context.Context, userID, password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Validation("password cannot be used")
	}

	user := &models.User{
		UserID:       userID,
		DisplayName:  userID,
		Bio:          s.defaultBio,
		PasswordHash: string(hashedPassword),
	}
	if err := s.createUser(ctx, user); err != nil {
		return "", err
	}
	s.log.Info("user registered", zap.String("user_id", userID))
	return s.generateJWT(userID)
}

func (s *IdentityService) createUser(ctx context.Context, user *models.User) error {
	err := s.users.CreateUser(ctx, user)
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperrors.Conflict("user id already taken")
	}
	if err != nil {
		return apperrors.Storage("failed to create user", err)
	}
	return nil
}

// Login checks the password and returns a signed token.
func (s *IdentityService) Login(ctx context.Context, userID, password string) (string, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", apperrors.Unauthorized("invalid user id or password")
	}
	if err != nil {
		return "", apperrors.Storage("failed to load user", err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", apperrors.Unauthorized("invalid user id or password")
	}
	return s.generateJWT(user.UserID)
}

// FirebaseLogin exchanges a firebase ID token for a local token. An unlinked firebase
// account gets a new user named userID.
func (s *IdentityService) FirebaseLogin(ctx context.Context, idToken, userID string) (string, error) {
	token, err := s.verifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return s.generateJWT(user.UserID)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return "", apperrors.Storage("failed to load user", err)
	}

	if userID == "" {
		return "", apperrors.Validation("user_id is required for a new account")
	}
	displayName := userID
	if name, ok := token.Claims["name"].(string); ok && strings.TrimSpace(name) != "" {
		displayName = truncateRunes(strings.TrimSpace(name), maxDisplayNameLength)
	}
	uid := token.UID
	newUser := &models.User{
		UserID:      userID,
		DisplayName: displayName,
		Bio:         s.defaultBio,
		FirebaseUID: &uid,
	}
	if err := s.createUser(ctx, newUser); err != nil {
		return "", err
	}
	s.log.Info("user registered via firebase", zap.String("user_id", userID))
	return s.generateJWT(userID)
}

// LinkFirebase binds the firebase account behind idToken to an existing local user.
func (s *IdentityService) LinkFirebase(ctx context.Context, userID, idToken string) error {
	token, err := s.verifyIDToken(ctx, idToken)
	if err != nil {
		return err
	}
	err = s.users.LinkFirebaseUID(ctx, userID, token.UID)
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.Conflict("firebase account already linked to another user")
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound("user not found")
	case err != nil:
		return apperrors.Storage("failed to link firebase account", err)
	}
	return nil
}

func (s *IdentityService) verifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if s.verifier == nil {
		return nil, apperrors.Unauthorized("firebase login is not enabled")
	}
	token, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.log.Debug("firebase token rejected", zap.Error(err))
		return nil, apperrors.Unauthorized("invalid firebase ID token")
	}
	return token, nil
}

// GetProfile returns userID's profile as seen by viewerID.
func (s *IdentityService) GetProfile(ctx context.Context, userID, viewerID string) (*models.UserProfile, error) {
	row, err := s.users.GetProfile(ctx, userID, viewerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load profile", err)
	}
	profile := s.decorator.Profile(*row)
	return &profile, nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, userID, name, bio string) (*models.UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLength {
		return nil, apperrors.Validation("name must be between 1 and 50 characters")
	}
	if utf8.RuneCountInString(bio) > maxBioLength {
		return nil, apperrors.Validation("bio must be at most 160 characters")
	}

	err := s.users.UpdateProfile(ctx, userID, name, bio)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.Storage("failed to update profile", err)
	}
	return s.GetProfile(ctx, userID, userID)
}

// ParseToken validates a token issued by this service and returns its user id.
func (s *IdentityService) ParseToken(tokenString string) (string, error) {
	return ParseJWT(tokenString, s.jwtSecret)
}

func (s *IdentityService) generateJWT(userID string) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Storage("failed to sign token", err)
	}
	return signed, nil
}

// ParseJWT verifies an HS256 token signed with secret and returns the user id claim.
func ParseJWT(tokenString string, secret []byte) (string, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", apperrors.Unauthorized("invalid token")
	}
	return claims.UserID, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
