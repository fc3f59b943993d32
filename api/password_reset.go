package api

import (
	"celengan/service"

	"github.com/gin-gonic/gin"
)

// PasswordResetHandler forgot-password endpoints
type PasswordResetHandler struct {
	resets *service.PasswordResetService
}

// NewPasswordResetHandler creates the password reset handler
func NewPasswordResetHandler(resets *service.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{resets: resets}
}

// RequestResetRequest asks for a reset mail
type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email" example:"budi@example.com"`
}

// ResetPasswordRequest sets a new password with an emailed token
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// RequestPasswordReset mails a reset link
// @Summary Request password reset
// @Description Mails a single-use reset link. Answers the same whether or not the email is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RequestResetRequest true "email"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 409 {object} Response "EMAIL_DISABLED"
// @Router /api/auth/password/forgot [post]
func (h *PasswordResetHandler) RequestPasswordReset(c *gin.Context) {
	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.resets.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "could not send reset email")
		return
	}
	SuccessWithMessage(c, "if the email is registered, a reset link has been sent", nil)
}

// ResetPassword sets a new password with a reset token
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "token and new password"
// @Success 200 {object} Response
// @Failure 400 {object} Response "INVALID_RESET_TOKEN"
// @Router /api/auth/password/reset [post]
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.resets.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err, "could not reset password")
		return
	}
	SuccessWithMessage(c, "password has been reset, please log in", nil)
}
