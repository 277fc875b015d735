package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_feed/internal/domain"
)

// PostSource supplies the posts for the blog endpoint. Implementations must
// always return a usable list.
type PostSource interface {
	LatestPosts(ctx context.Context) []domain.Post
}

type BlogResponse struct {
	Posts []domain.Post `json:"posts"`
}

type Handler struct {
	posts PostSource
}

func NewHandler(posts PostSource) *Handler {
	return &Handler{posts: posts}
}

// GetPosts answers 200 on both live and fallback paths.
func (h *Handler) GetPosts(c *gin.Context) {
	posts := h.posts.LatestPosts(c.Request.Context())
	if posts == nil {
		posts = []domain.Post{}
	}
	c.JSON(http.StatusOK, BlogResponse{Posts: posts})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
