package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	token, _ := args.Get(0).(*auth.Token)
	return token, args.Error(1)
}

func newIdentity(t *testing.T, env *testEnv, verifier IDTokenVerifier) *IdentityService {
	return NewIdentityService(env.users, verifier, env.decorator, IdentityConfig{
		JWTSecret:  "test-secret",
		JWTTTL:     time.Hour,
		DefaultBio: "Nice to meet you!",
	}, zaptest.NewLogger(t))
}

func TestIdentityService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newIdentity(t, env, nil)

	token, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)
	userID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)

	_, err = svc.Register(ctx, "alice", "another pass")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	token, err = svc.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login(ctx, "alice", "wrong horse")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = svc.Login(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	profile, err := svc.GetProfile(ctx, "alice", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Name)
	assert.Equal(t, "Nice to meet you!", profile.Bio)
	assert.Equal(t, testDefaultAvatar, profile.AvatarURL)
	assert.Equal(t, "@alice", profile.Username)
}

func TestIdentityService_ParseTokenRejectsForeignSecret(t *testing.T) {
	env := newTestEnv(t)
	svc := newIdentity(t, env, nil)
	token, err := svc.Register(context.Background(), "alice", "correct horse")
	require.NoError(t, err)

	_, err = ParseJWT(token, []byte("other-secret"))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestIdentityService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUsers(t, "alice")
	svc := newIdentity(t, env, nil)

	profile, err := svc.UpdateProfile(ctx, "alice", "  Alice A.  ", "gopher")
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", profile.Name)
	assert.Equal(t, "gopher", profile.Bio)

	_, err = svc.UpdateProfile(ctx, "alice", "   ", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.UpdateProfile(ctx, "alice", strings.Repeat("n", 51), "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.UpdateProfile(ctx, "alice", "Alice", strings.Repeat("b", 161))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.UpdateProfile(ctx, "ghost", "Ghost", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIdentityService_FirebaseLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	verifier := &mockVerifier{}
	verifier.On("VerifyIDToken", mock.Anything, "good-token").
		Return(&auth.Token{UID: "fb-123", Claims: map[string]interface{}{"name": "Alice Firebase"}}, nil)
	verifier.On("VerifyIDToken", mock.Anything, "bad-token").
		Return(nil, errors.New("token expired"))
	svc := newIdentity(t, env, verifier)

	_, err := svc.FirebaseLogin(ctx, "bad-token", "alice")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.FirebaseLogin(ctx, "good-token", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	token, err := svc.FirebaseLogin(ctx, "good-token", "alice")
	require.NoError(t, err)
	userID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)

	token, err = svc.FirebaseLogin(ctx, "good-token", "")
	require.NoError(t, err)
	userID, err = svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)

	profile, err := svc.GetProfile(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice Firebase", profile.Name)
	verifier.AssertExpectations(t)
}

func TestIdentityService_LinkFirebase(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUsers(t, "alice", "bob")
	verifier := &mockVerifier{}
	verifier.On("VerifyIDToken", mock.Anything, "alice-token").Return(&auth.Token{UID: "fb-alice"}, nil)
	svc := newIdentity(t, env, verifier)

	require.NoError(t, svc.LinkFirebase(ctx, "alice", "alice-token"))
	assert.ErrorIs(t, svc.LinkFirebase(ctx, "bob", "alice-token"), apperrors.ErrConflict)

	token, err := svc.FirebaseLogin(ctx, "alice-token", "")
	require.NoError(t, err)
	userID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestIdentityService_FirebaseDisabled(t *testing.T) {
	env := newTestEnv(t)
	svc := newIdentity(t, env, nil)
	_, err := svc.FirebaseLogin(context.Background(), "any", "alice")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
