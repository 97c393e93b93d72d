package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mediumish/internal/service"
)

const maxLeaderboardLimit = 100

// UpdateProfileRequest holds optional profile fields. An omitted field is
// left unchanged; "bio": "" clears the bio.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" example:"alicia"`
	Bio      *string `json:"bio,omitempty" example:"I write about Go."`
}

// CreateListRequest is the payload of POST /users/lists.
type CreateListRequest struct {
	Name string `json:"name" binding:"required" example:"Weekend reads"`
}

// @Summary      Toggle follow
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "user to follow"
// @Success      200  {object}  map[string]bool  "isFollowing"
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id}/follow [post]
func (h *Handler) followUser(c *gin.Context) {
	following, err := h.services.ToggleFollow(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "users_follow_failed", "Server error", "target_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFollowing": following})
}

// @Summary      Public profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "user id"
// @Success      200     {object}  map[string]models.PublicUser  "user"
// @Failure      404     {object}  map[string]string
// @Router       /users/profile/{userId} [get]
func (h *Handler) getProfile(c *gin.Context) {
	u, err := h.services.GetProfile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err, "users_profile_failed", "Server error", "user_id", c.Param("userId"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// @Summary      Update own profile
// @Description  Returns the updated profile and a token carrying the new username.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body      UpdateProfileRequest  true  "fields to change"
// @Success      200    {object}  map[string]interface{}  "user, token"
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Router       /users/profile [put]
func (h *Handler) updateProfile(c *gin.Context) {
	var input UpdateProfileRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	u, token, err := h.services.UpdateProfile(c.Request.Context(), currentUserID(c), service.ProfileUpdate{
		Username: input.Username,
		Bio:      input.Bio,
	})
	if err != nil {
		h.respondError(c, err, "users_update_profile_failed", "Server error updating profile", "user_id", currentUserID(c))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
}

// @Summary      Most-followed users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "entries to return (default 10)"
// @Success      200    {array}   models.LeaderboardEntry
// @Router       /leaderboard [get]
func (h *Handler) leaderboard(c *gin.Context) {
	limit := service.DefaultLeaderboardSize
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= maxLeaderboardLimit {
			limit = v
		}
	}

	entries, err := h.services.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err, "leaderboard_failed", "Server error")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary      Reading lists with resolved posts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.LibraryList
// @Failure      404  {object}  map[string]string
// @Router       /users/library [get]
func (h *Handler) library(c *gin.Context) {
	lists, err := h.services.GetLibrary(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "users_library_failed", "Server error", "user_id", currentUserID(c))
		return
	}
	c.JSON(http.StatusOK, lists)
}

// @Summary      Create a reading list
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body      CreateListRequest  true  "list name"
// @Success      201    {array}   models.ReadingList
// @Failure      400    {object}  map[string]string
// @Router       /users/lists [post]
func (h *Handler) createList(c *gin.Context) {
	var input CreateListRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	lists, err := h.services.CreateList(c.Request.Context(), currentUserID(c), input.Name)
	if err != nil {
		h.respondError(c, err, "users_create_list_failed", "Server error", "user_id", currentUserID(c))
		return
	}
	c.JSON(http.StatusCreated, lists)
}

// @Summary      Own statistics
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.UserStats
// @Router       /users/stats [get]
func (h *Handler) stats(c *gin.Context) {
	s, err := h.services.Stats(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "users_stats_failed", "Server error", "user_id", currentUserID(c))
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary      Notifications for the caller
// @Description  No notification source exists yet; always an empty list.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   object
// @Failure      401  {object}  map[string]string
// @Router       /notifications [get]
func (h *Handler) notifications(c *gin.Context) {
	c.JSON(http.StatusOK, []struct{}{})
}
