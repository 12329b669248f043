package handlers

import (
	"net/http"

	"github.com/anonto42/nano-thread/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	engagement *services.EngagementService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(engagement *services.EngagementService) *LikeHandler {
	return &LikeHandler{engagement: engagement}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
}

// LikePost handles liking a post
func (h *LikeHandler) LikePost(c echo.Context) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.engagement.Like(c.Request().Context(), postID, getUserIDFromContext(c)); err != nil {
		return httpError(err)
	}
	return h.likeState(c, http.StatusCreated, postID, true)
}

// UnlikePost handles unliking a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.engagement.Unlike(c.Request().Context(), postID, getUserIDFromContext(c)); err != nil {
		return httpError(err)
	}
	return h.likeState(c, http.StatusOK, postID, false)
}

func (h *LikeHandler) likeState(c echo.Context, status int, postID uint, liked bool) error {
	count, err := h.engagement.LikeCount(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(status, echo.Map{"post_id": postID, "like_count": count, "viewer_has_liked": liked})
}
