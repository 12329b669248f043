package handlers

import (
	"net/http"

	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profiles and per-user listings
type UserHandler struct {
	identity *services.IdentityService
	feed     *services.FeedService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(identity *services.IdentityService, feed *services.FeedService) *UserHandler {
	return &UserHandler{identity: identity, feed: feed}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.POST("/profile/firebase-link", h.LinkFirebase)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/posts", h.GetUserPosts)
	g.GET("/users/:id/replies", h.GetUserReplies)
}

// GetUser returns another user's profile relative to the caller
func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.identity.GetProfile(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	profile, err := h.identity.GetProfile(c.Request().Context(), userID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's name and bio
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.identity.UpdateProfile(c.Request().Context(), getUserIDFromContext(c), req.Name, req.Bio)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// LinkFirebase binds a firebase account to the authenticated user
func (h *UserHandler) LinkFirebase(c echo.Context) error {
	var req struct {
		IDToken string `json:"id_token" validate:"required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.identity.LinkFirebase(c.Request().Context(), getUserIDFromContext(c), req.IDToken); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) GetUserPosts(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	posts, err := h.feed.UserPosts(c.Request().Context(), c.Param("id"), getUserIDFromContext(c), page)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *UserHandler) GetUserReplies(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	posts, err := h.feed.UserReplies(c.Request().Context(), c.Param("id"), getUserIDFromContext(c), page)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}
