package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("wrapped: %w", Conflict("dup"))))
	assert.Equal(t, KindStorage, KindOf(errors.New("boom")))
}

func TestIsMatchesByKind(t *testing.T) {
	err := NotFound("post not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestStorageHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	err := Storage("failed to load feed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load feed", MessageOf(err))
	assert.Equal(t, "internal server error", MessageOf(cause))
}
