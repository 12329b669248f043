package handlers

import (
	"net/http"

	"github.com/anonto42/nano-thread/backend/internal/models"
	"github.com/anonto42/nano-thread/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts and threads
type PostHandler struct {
	threads *services.ThreadService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(threads *services.ThreadService) *PostHandler {
	return &PostHandler{threads: threads}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a top-level post or, with parent_post_id, a reply
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)
	created, err := h.threads.CreatePost(ctx, userID, req.Body, req.ParentPostID)
	if err != nil {
		return httpError(err)
	}
	post, err := h.threads.GetPost(ctx, created.ID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost returns the thread around a post: ancestors, the post itself and its replies
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	thread, err := h.threads.GetThread(c.Request().Context(), postID, getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, thread)
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.threads.DeletePost(c.Request().Context(), postID, getUserIDFromContext(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
