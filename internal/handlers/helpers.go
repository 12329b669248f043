package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// UserIDKey is the echo context key the auth middleware stores the caller's user id under.
const UserIDKey = "userID"

const maxPageLimit = 100

func getUserIDFromContext(c echo.Context) string {
	userID, _ := c.Get(UserIDKey).(string)
	return userID
}

var statusByKind = map[apperrors.Kind]int{
	apperrors.KindValidation:      http.StatusBadRequest,
	apperrors.KindConflict:        http.StatusConflict,
	apperrors.KindNotFound:        http.StatusNotFound,
	apperrors.KindPayloadTooLarge: http.StatusRequestEntityTooLarge,
	apperrors.KindUnauthorized:    http.StatusUnauthorized,
	apperrors.KindStorage:         http.StatusInternalServerError,
}

// httpError renders a service error as {"category", "message"}. The cause stays
// internal so the request logger records it without exposing it to the client.
func httpError(err error) error {
	kind := apperrors.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return echo.NewHTTPError(status, map[string]string{
		"category": string(kind),
		"message":  apperrors.MessageOf(err),
	}).SetInternal(err)
}

func badRequest(message string) error {
	return httpError(apperrors.Validation(message))
}

// bindAndValidate binds the request body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request payload")
	}
	return c.Validate(req)
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, badRequest("invalid " + name)
	}
	return uint(id), nil
}

// pageFromQuery reads ?limit and ?offset. A missing limit means no limit.
func pageFromQuery(c echo.Context) (models.Page, error) {
	var page models.Page
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageLimit {
			return page, badRequest("limit must be between 1 and 100")
		}
		page.Limit = limit
	}
	if raw := c.QueryParam("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return page, badRequest("offset must not be negative")
		}
		page.Offset = offset
	}
	return page, nil
}
