package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreatePostRequest is the publish payload. Content may be rich text.
type CreatePostRequest struct {
	Title   string `json:"title" binding:"required" example:"Hello"`
	Content string `json:"content" binding:"required" example:"<p>World</p>"`
}

// CommentRequest is the payload of POST /posts/:id/comment.
type CommentRequest struct {
	Text string `json:"text" binding:"required" example:"Nice post"`
}

// @Summary      List posts
// @Description  All posts, newest first. Public.
// @Tags         posts
// @Produce      json
// @Success      200  {array}   models.Post
// @Failure      500  {object}  map[string]string
// @Router       /posts [get]
func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.services.ListPosts(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "posts_list_failed", "Error fetching posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// @Summary      Search posts
// @Description  Posts ranked by weighted term frequency; title hits weigh more than body hits.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        query  query     string  true  "free-text query"
// @Success      200    {array}   models.Post
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /posts/search [get]
func (h *Handler) searchPosts(c *gin.Context) {
	posts, err := h.services.SearchPosts(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.respondError(c, err, "posts_search_failed", "Error searching posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// @Summary      Publish a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body      CreatePostRequest  true  "post"
// @Success      201    {object}  models.Post
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /posts [post]
func (h *Handler) createPost(c *gin.Context) {
	var input CreatePostRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	p, err := h.services.CreatePost(c.Request.Context(), currentUserID(c), input.Title, input.Content)
	if err != nil {
		h.respondError(c, err, "posts_create_failed", "Error creating post", "user_id", currentUserID(c))
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary      Get a post
// @Description  Includes isLiked, isSaved and isFollowingAuthor for the caller.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "post id"
// @Success      200  {object}  models.PostDetail
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *Handler) getPost(c *gin.Context) {
	d, err := h.services.GetPost(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "posts_get_failed", "Error fetching post", "post_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Toggle like
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "post id"
// @Success      200  {object}  map[string]int  "likes"
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/like [post]
func (h *Handler) likePost(c *gin.Context) {
	n, err := h.services.ToggleLike(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "posts_like_failed", "Server error", "post_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": n})
}

// @Summary      Comment on a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string          true  "post id"
// @Param        input  body      CommentRequest  true  "comment"
// @Success      201    {array}   models.Comment
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /posts/{id}/comment [post]
func (h *Handler) commentPost(c *gin.Context) {
	var input CommentRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	comments, err := h.services.AddComment(c.Request.Context(), c.Param("id"), currentUserID(c), input.Text)
	if err != nil {
		h.respondError(c, err, "posts_comment_failed", "Server error", "post_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusCreated, comments)
}

// @Summary      Toggle save to the default reading list
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "post id"
// @Success      200  {object}  map[string]bool  "isSaved"
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/save [post]
func (h *Handler) savePost(c *gin.Context) {
	saved, err := h.services.ToggleSave(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "posts_save_failed", "Server error", "post_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"isSaved": saved})
}
