package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mediumish/internal/apperr"
)

var statusByKind = map[apperr.Kind]int{
	apperr.BadRequest:       http.StatusBadRequest,
	apperr.Unauthorized:     http.StatusUnauthorized,
	apperr.NotFound:         http.StatusNotFound,
	apperr.Conflict:         http.StatusConflict,
	apperr.InvalidOrExpired: http.StatusBadRequest,
}

func statusFor(err error) int {
	if code, ok := statusByKind[apperr.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// respondError maps a service error to its HTTP status. Internal errors are
// logged under logKey and answered with fallback so that driver or mailer
// details never reach the client.
func (h *Handler) respondError(c *gin.Context, err error, logKey, fallback string, kv ...interface{}) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		if h.log != nil {
			fields := append([]interface{}{"err", err}, kv...)
			h.log.Errorw(logKey, fields...)
		}
		msg := fallback
		if m, ok := apperr.MessageOf(err); ok && m != "" {
			msg = m
		}
		c.JSON(code, gin.H{"error": msg})
		return
	}

	if h.log != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Infow(logKey, fields...)
	}
	msg, _ := apperr.MessageOf(err)
	c.JSON(code, gin.H{"error": msg})
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return false
	}
	return true
}
