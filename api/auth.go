package api

import (
	"celengan/config"
	"celengan/middleware"
	"celengan/models"
	"celengan/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler registration, login and session
type AuthHandler struct {
	cfg   *config.Config
	users *service.UserService
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(cfg *config.Config, users *service.UserService) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users}
}

// RegisterRequest sign-up payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100" example:"Budi"`
	Email    string `json:"email" binding:"required,email" example:"budi@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"rahasia123"`
}

// LoginRequest credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"budi@example.com"`
	Password string `json:"password" binding:"required" example:"rahasia123"`
}

// LoginResponse session token and the logged-in user
type LoginResponse struct {
	Token    string      `json:"token"`
	UserInfo models.User `json:"user_info"`
}

// ChangePasswordRequest password change payload
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// Register creates a user with default accounts and categories
// @Summary Register
// @Description Creates a user and seeds three accounts and ten categories
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "registration"
// @Success 201 {object} Response{data=models.User}
// @Failure 400 {object} Response
// @Failure 409 {object} Response "email already registered"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err, "registration failed")
		return
	}
	Created(c, "registered", user)
}

// Login checks credentials and starts a session
// @Summary Login
// @Description Returns a session token and sets it as an HttpOnly cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "credentials"
// @Success 200 {object} Response{data=LoginResponse}
// @Failure 401 {object} Response
// @Failure 429 {object} Response
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "login failed")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "could not create session")
		return
	}
	setSessionCookie(c, token, h.cfg.JWT.ExpireTime)

	Success(c, LoginResponse{Token: token, UserInfo: *user})
}

// Logout clears the session cookie
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} Response
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	SuccessWithMessage(c, "logged out", nil)
}

// GetProfile current user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User}
// @Failure 401 {object} Response
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "could not load profile")
		return
	}
	Success(c, user)
}

// ChangePassword replaces the current user's password
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "passwords"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response "old password is wrong"
// @Router /api/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	err := h.users.ChangePassword(c.Request.Context(), middleware.GetCurrentUserID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		respondError(c, err, "could not change password")
		return
	}
	SuccessWithMessage(c, "password changed", nil)
}
