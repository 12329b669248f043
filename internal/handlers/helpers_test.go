package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPError_MapsKinds(t *testing.T) {
	tests := []struct {
		err      error
		status   int
		category string
		message  string
	}{
		{apperrors.Validation("bad"), http.StatusBadRequest, "validation", "bad"},
		{apperrors.Conflict("dup"), http.StatusConflict, "conflict", "dup"},
		{apperrors.NotFound("gone"), http.StatusNotFound, "not_found", "gone"},
		{apperrors.TooLarge("big"), http.StatusRequestEntityTooLarge, "payload_too_large", "big"},
		{apperrors.Unauthorized("who"), http.StatusUnauthorized, "unauthorized", "who"},
		{apperrors.Storage("failed to save", errors.New("pq: secret detail")), http.StatusInternalServerError, "storage_failure", "failed to save"},
		{errors.New("raw driver error"), http.StatusInternalServerError, "storage_failure", "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			var he *echo.HTTPError
			require.ErrorAs(t, httpError(tt.err), &he)
			assert.Equal(t, tt.status, he.Code)
			assert.Equal(t, map[string]string{"category": tt.category, "message": tt.message}, he.Message)
			assert.Equal(t, tt.err, he.Internal)
		})
	}
}

func TestPageFromQuery(t *testing.T) {
	e := echo.New()
	parse := func(query string) (models.Page, error) {
		req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		return pageFromQuery(e.NewContext(req, httptest.NewRecorder()))
	}

	page, err := parse("")
	require.NoError(t, err)
	assert.Equal(t, models.Page{}, page)

	page, err = parse("limit=20&offset=40")
	require.NoError(t, err)
	assert.Equal(t, models.Page{Limit: 20, Offset: 40}, page)

	for _, bad := range []string{"limit=0", "limit=101", "limit=x", "offset=-1"} {
		_, err = parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, getUserIDFromContext(c))
	c.Set(UserIDKey, "alice")
	assert.Equal(t, "alice", getUserIDFromContext(c))
}
