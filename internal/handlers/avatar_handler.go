package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/nano-thread/backend/internal/apperrors"
	"github.com/anonto42/nano-thread/backend/internal/services"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
)

// AvatarHandler uploads avatars and serves stored avatar files
type AvatarHandler struct {
	avatars *services.AvatarService
}

// NewAvatarHandler creates a new AvatarHandler
func NewAvatarHandler(avatars *services.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

var errAvatarTooLarge = apperrors.TooLarge("avatar must be at most 5MB")

// AvatarBodyLimit caps the request body at limit and reports an oversized body
// with the same structured error as an oversized file.
func AvatarBodyLimit(limit string) echo.MiddlewareFunc {
	bodyLimit := eMiddleware.BodyLimit(limit)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := bodyLimit(next)
		return func(c echo.Context) error {
			err := limited(c)
			if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
				return httpError(errAvatarTooLarge)
			}
			return err
		}
	}
}

// RegisterAvatarRoutes registers the upload route on the authenticated group
func (h *AvatarHandler) RegisterAvatarRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/profile/avatar", h.UploadAvatar, m...)
}

// RegisterFileRoutes registers the public file route
func (h *AvatarHandler) RegisterFileRoutes(e *echo.Echo) {
	e.GET("/uploads/avatars/:name", h.ServeAvatar)
}

// UploadAvatar replaces the caller's avatar with the multipart file field "avatar"
func (h *AvatarHandler) UploadAvatar(c echo.Context) error {
	fh, err := c.FormFile("avatar")
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return httpError(errAvatarTooLarge)
	}
	if err != nil {
		return badRequest("no file uploaded")
	}
	if fh.Size > services.MaxAvatarBytes {
		return httpError(errAvatarTooLarge)
	}

	file, err := fh.Open()
	if err != nil {
		return badRequest("could not read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxAvatarBytes+1))
	if err != nil {
		return badRequest("could not read uploaded file")
	}

	url, err := h.avatars.Replace(c.Request().Context(), getUserIDFromContext(c), services.AvatarUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar_url": url})
}

// ServeAvatar streams a stored avatar
func (h *AvatarHandler) ServeAvatar(c echo.Context) error {
	name := c.Param("name")
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return httpError(apperrors.NotFound("file not found"))
	}

	obj, err := h.avatars.Open(c.Request().Context(), "avatars/"+name)
	if err != nil {
		return httpError(err)
	}
	defer obj.Close()

	if obj.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Stream(http.StatusOK, obj.ContentType, obj)
}
