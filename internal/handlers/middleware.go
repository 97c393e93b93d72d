package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mediumish/internal/session"
)

// Context keys set by userIdMiddleware.
const (
	ctxUserID   = "userId"
	ctxEmail    = "email"
	ctxUsername = "username"
)

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	ident, err := h.services.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		if h.log != nil {
			if session.IsExpired(err) {
				h.log.Infow("auth_token_expired", "path", c.FullPath())
			} else {
				h.log.Infow("auth_token_rejected", "path", c.FullPath(), "err", err)
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(ctxUserID, ident.UserID)
	c.Set(ctxEmail, ident.Email)
	c.Set(ctxUsername, ident.Username)
	c.Next()
}

// currentUserID returns the id stored by userIdMiddleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
