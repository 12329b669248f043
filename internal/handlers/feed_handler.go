package handlers

import (
	"net/http"

	"github.com/anonto42/nano-thread/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the global and following feeds and search
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts", h.GetGlobalFeed)
	g.GET("/posts/following", h.GetFollowingFeed)
	g.GET("/search", h.Search)
	g.GET("/search/:target", h.SearchTarget)
}

func (h *FeedHandler) GetGlobalFeed(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	posts, err := h.feed.GlobalFeed(c.Request().Context(), getUserIDFromContext(c), page)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *FeedHandler) GetFollowingFeed(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	posts, err := h.feed.FollowingFeed(c.Request().Context(), getUserIDFromContext(c), page)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// Search returns matching posts and users for ?q
func (h *FeedHandler) Search(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	result, err := h.feed.Search(c.Request().Context(), c.QueryParam("q"), getUserIDFromContext(c), page)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// SearchTarget searches only posts or only users
func (h *FeedHandler) SearchTarget(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	ctx, query, viewerID := c.Request().Context(), c.QueryParam("q"), getUserIDFromContext(c)

	switch c.Param("target") {
	case "posts":
		posts, err := h.feed.SearchPosts(ctx, query, viewerID, page)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, posts)
	case "users":
		users, err := h.feed.SearchUsers(ctx, query, viewerID, page)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, users)
	}
	return badRequest("search target must be posts or users")
}
