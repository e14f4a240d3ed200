package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"microblog/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	pingMessage = "hello world!"

	// responseCacheTTL matches the 30s freshness window the post listing
	// tolerates; the cache is fail-safe, so an unavailable redis just
	// means every request recomputes.
	responseCacheTTL = 30 * time.Second

	jsonContentType = "application/json; charset=utf-8"

	errInvalidLimit  = "invalid 'limit'; expected an integer"
	errInvalidCursor = "invalid 'cursor'; expected an RFC3339 timestamp"
)

type createPostRequest struct {
	Title string `json:"title" binding:"required"`
}

// @Summary      Liveness check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /ping [get]
func (h *Handler) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": pingMessage})
}

// @Summary      List posts
// @Description  Cursor-paginated, newest first. 'cursor' is the created_at of the last post from the previous page; only strictly older posts are returned. 'limit' is clamped to 10.
// @Tags         posts
// @Produce      json
// @Param        limit   query     int     false  "Page size (max 10)"
// @Param        cursor  query     string  false  "created_at of the last post of the previous page (RFC3339)"
// @Success      200     {object}  service.PostPage
// @Failure      400     {object}  map[string]string
// @Failure      500     {object}  apperr.Error
// @Router       /posts [get]
func (h *Handler) listPosts(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 0
	if qs := c.Query("limit"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLimit})
			return
		}
		limit = v
	}

	var cursor *time.Time
	if qs := c.Query("cursor"); qs != "" {
		t, err := time.Parse(time.RFC3339Nano, qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidCursor})
			return
		}
		cursor = &t
	}

	cacheKey := fmt.Sprintf("posts:%d:%s", limit, c.Query("cursor"))
	if body := h.cache.Get(ctx, cacheKey); body != nil {
		c.Data(http.StatusOK, jsonContentType, body)
		return
	}

	page, err := h.services.Posts.List(ctx, limit, cursor)
	if err != nil {
		h.internalError(c, "posts_list_failed", err, "limit", limit)
		return
	}

	h.resolveAuthors(ctx, c, page.Posts)

	body, err := json.Marshal(page)
	if err != nil {
		h.internalError(c, "posts_marshal_failed", err)
		return
	}
	h.cache.Set(ctx, cacheKey, body, responseCacheTTL)
	c.Data(http.StatusOK, jsonContentType, body)
}

// resolveAuthors attaches each post's author via the per-request batch
// loader: one lookup call per post from here, one underlying query for
// the distinct usernames of the whole page.
func (h *Handler) resolveAuthors(ctx context.Context, c *gin.Context, posts []models.Post) {
	l := userLoaderFrom(c)
	if l == nil {
		return
	}

	var wg sync.WaitGroup
	for i := range posts {
		wg.Add(1)
		go func(p *models.Post) {
			defer wg.Done()
			u, err := l.Load(ctx, p.AuthorUsername)
			if err != nil {
				if h.log != nil {
					h.log.Errorw("author_load_failed", "err", err, "username", p.AuthorUsername)
				}
				return
			}
			p.Author = u
		}(&posts[i])
	}
	wg.Wait()
}

// @Summary      Create post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        body  body      createPostRequest  true  "Post payload"
// @Success      200   {object}  models.Post
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  apperr.Error
// @Failure      500   {object}  apperr.Error
// @Router       /api/v1/posts [post]
// @Security     BearerAuth
func (h *Handler) createPost(c *gin.Context) {
	var input createPostRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	identity, _ := currentIdentity(c)
	post, err := h.services.Posts.Create(c.Request.Context(), identity.Username, input.Title)
	if err != nil {
		h.internalError(c, "post_create_failed", err, "username", identity.Username)
		return
	}
	c.JSON(http.StatusOK, post)
}
