package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mediumish/internal/service"
)

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Email    string `json:"email" binding:"required" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"s3cr3t"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"s3cr3t"`
}

// ForgotPasswordRequest asks for a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required" example:"alice@example.com"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      RegisterRequest  true  "credentials"
// @Success      201    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Router       /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input RegisterRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	id, err := h.services.Register(c.Request.Context(), service.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		h.respondError(c, err, "auth_register_failed", "Server error", "username", input.Username)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "userId": id})
}

// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      LoginRequest  true  "credentials"
// @Success      200    {object}  service.LoginResult
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	res, err := h.services.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondError(c, err, "auth_login_failed", "Server error", "email", input.Email)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary      Request a password reset link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      ForgotPasswordRequest  true  "email"
// @Success      200    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *Handler) forgotPassword(c *gin.Context) {
	var input ForgotPasswordRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	if err := h.services.RequestPasswordReset(c.Request.Context(), input.Email); err != nil {
		h.respondError(c, err, "auth_forgot_password_failed", "Error sending email", "email", input.Email)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent."})
}

// @Summary      Reset password with a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      ResetPasswordRequest  true  "token and new password"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *Handler) resetPassword(c *gin.Context) {
	var input ResetPasswordRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	if err := h.services.CompletePasswordReset(c.Request.Context(), input.Token, input.NewPassword); err != nil {
		h.respondError(c, err, "auth_reset_password_failed", "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been updated successfully."})
}
