package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/anonto42/nano-thread/backend/internal/blob"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
	"github.com/anonto42/nano-thread/backend/pkg/metrics"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxAvatarBytes bounds an uploaded avatar image.
const MaxAvatarBytes = 5 << 20

// UploadsPrefix is the public path prefix under which owned blobs are served.
const UploadsPrefix = "/uploads/"

var (
	allowedAvatarTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
	}
	allowedAvatarExts = map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
		".gif":  true,
	}
	sniffedAvatarTypes = []string{"image/jpeg", "image/png", "image/gif"}
)

// AvatarUpload is an uploaded file as received from the client.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AvatarService replaces a user's avatar image across the blob store and the user record.
type AvatarService struct {
	users     repositories.UserRepository
	blobs     blob.Store
	decorator Decorator
	log       *zap.Logger
	now       func() time.Time
}

func NewAvatarService(users repositories.UserRepository, blobs blob.Store, decorator Decorator, log *zap.Logger) *AvatarService {
	return &AvatarService{users: users, blobs: blobs, decorator: decorator, log: log, now: time.Now}
}

// BlobKeyForRef maps an owned avatar ref such as "/uploads/avatars/a.png" to its blob key.
// Absolute URLs are not owned and yield ok=false.
func BlobKeyForRef(ref string) (key string, ok bool) {
	if ref == "" || isAbsoluteURL(ref) {
		return "", false
	}
	key = strings.TrimPrefix(ref, "/")
	key = strings.TrimPrefix(key, strings.TrimPrefix(UploadsPrefix, "/"))
	return key, key != ""
}

func validateAvatar(upload AvatarUpload) error {
	if len(upload.Data) == 0 {
		return apperrors.Validation("no file uploaded")
	}
	if len(upload.Data) > MaxAvatarBytes {
		return apperrors.TooLarge("avatar must be at most 5MB")
	}
	declared := strings.ToLower(strings.TrimSpace(strings.Split(upload.ContentType, ";")[0]))
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedAvatarTypes[declared] || !allowedAvatarExts[ext] {
		return apperrors.Validation("only jpeg, jpg, png and gif images are allowed")
	}
	detected := mimetype.Detect(upload.Data)
	for _, t := range sniffedAvatarTypes {
		if detected.Is(t) {
			return nil
		}
	}
	return apperrors.Validation("file content is not a supported image")
}

// Replace stores upload as the new avatar of userID and returns its resolved URL.
// A failed user update deletes the new blob again; a failed cleanup of the previous
// blob is only logged.
func (s *AvatarService) Replace(ctx context.Context, userID string, upload AvatarUpload) (string, error) {
	var (
		oldRef string
		newKey string
		newRef string
	)

	steps := []step{
		{
			name: "load-current-avatar",
			run: func(ctx context.Context) error {
				user, err := s.users.GetUserByID(ctx, userID)
				if errors.Is(err, repositories.ErrNotFound) {
					return apperrors.NotFound("user not found")
				}
				if err != nil {
					return apperrors.Storage("failed to load user", err)
				}
				if user.AvatarRef != nil {
					oldRef = *user.AvatarRef
				}
				return nil
			},
		},
		{
			name: "validate-upload",
			run: func(ctx context.Context) error {
				return validateAvatar(upload)
			},
		},
		{
			name: "store-new-blob",
			run: func(ctx context.Context) error {
				ext := strings.ToLower(filepath.Ext(upload.Filename))
				newKey = fmt.Sprintf("avatars/%s-%d-%s%s", userID, s.now().UnixMilli(), uuid.NewString(), ext)
				newRef = UploadsPrefix + newKey
				if err := s.blobs.Put(ctx, newKey, mimetype.Detect(upload.Data).String(), upload.Data); err != nil {
					return apperrors.Storage("failed to store avatar", err)
				}
				return nil
			},
			compensate: func(ctx context.Context) error {
				err := s.blobs.Delete(ctx, newKey)
				if err != nil && !errors.Is(err, blob.ErrNotFound) {
					metrics.AvatarCleanupFailures.Inc()
					return err
				}
				s.log.Info("removed unreferenced avatar blob", zap.String("user_id", userID), zap.String("blob_key", newKey))
				return nil
			},
		},
		{
			name: "point-user-at-new-blob",
			run: func(ctx context.Context) error {
				err := s.users.UpdateAvatarRef(ctx, userID, newRef)
				if errors.Is(err, repositories.ErrNotFound) {
					return apperrors.NotFound("user not found")
				}
				if err != nil {
					return apperrors.Storage("failed to update avatar", err)
				}
				return nil
			},
		},
	}

	if err := runSteps(ctx, s.log, "avatar-replacement", steps); err != nil {
		s.recordFailure(userID, err)
		return "", err
	}

	s.removeOldBlob(ctx, userID, oldRef)
	metrics.AvatarReplacements.WithLabelValues("replaced").Inc()
	return s.decorator.AvatarURL(&newRef), nil
}

func (s *AvatarService) recordFailure(userID string, err error) {
	var stepErr *StepError
	switch {
	case apperrors.KindOf(err) == apperrors.KindValidation, apperrors.KindOf(err) == apperrors.KindPayloadTooLarge:
		metrics.AvatarReplacements.WithLabelValues("rejected").Inc()
	case errors.As(err, &stepErr) && stepErr.Compensated:
		metrics.AvatarReplacements.WithLabelValues("compensated").Inc()
		s.log.Warn("avatar replacement rolled back", zap.String("user_id", userID), zap.String("step", stepErr.Step), zap.Error(err))
	default:
		metrics.AvatarReplacements.WithLabelValues("failed").Inc()
		s.log.Error("avatar replacement failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// removeOldBlob is best-effort: the new avatar is already active.
func (s *AvatarService) removeOldBlob(ctx context.Context, userID, oldRef string) {
	key, owned := BlobKeyForRef(oldRef)
	if !owned {
		return
	}
	err := s.blobs.Delete(context.WithoutCancel(ctx), key)
	if err == nil || errors.Is(err, blob.ErrNotFound) {
		return
	}
	metrics.AvatarCleanupFailures.Inc()
	s.log.Warn("failed to delete previous avatar",
		zap.String("user_id", userID),
		zap.String("blob_key", key),
		zap.Error(err),
	)
}

// Open returns the owned blob behind an uploads path such as "avatars/a.png".
func (s *AvatarService) Open(ctx context.Context, key string) (*blob.Object, error) {
	obj, err := s.blobs.Get(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, apperrors.NotFound("file not found")
	}
	if err != nil {
		return nil, apperrors.Storage("failed to read file", err)
	}
	return obj, nil
}
