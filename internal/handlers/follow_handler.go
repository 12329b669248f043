package handlers

import (
	"net/http"

	"github.com/anonto42/nano-thread/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow and the follow lists
type FollowHandler struct {
	graph *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *services.FollowService) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.Follow)
	g.DELETE("/users/:id/follow", h.Unfollow)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// Follow makes the caller follow :id
func (h *FollowHandler) Follow(c echo.Context) error {
	if err := h.graph.Follow(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"following": true})
}

// Unfollow removes the caller's follow of :id
func (h *FollowHandler) Unfollow(c echo.Context) error {
	if err := h.graph.Unfollow(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"following": false})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	users, err := h.graph.Followers(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	users, err := h.graph.Following(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}
