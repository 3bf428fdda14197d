package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/myadmit/admit-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	googleClientID string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, googleClientID string) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		googleClientID: googleClientID,
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates an unverified account and queues the verification mail.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.Register(c.Request.Context(), &req); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// GoogleLogin godoc
// POST /api/v1/auth/google-login
// Verifies a Google ID token and signs in (or signs up) its account.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req model.GoogleLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.GoogleLogin(c.Request.Context(), &req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// GoogleConfig godoc
// GET /api/v1/auth/google-config
func (h *AuthHandler) GoogleConfig(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"client_id": h.googleClientID})
}

// ValidateToken godoc
// POST /api/v1/auth/validate-token
// Returns the decoded claims of a JWT.
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	var req model.TokenRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims, err := h.authService.ValidateSession(c.Request.Context(), req.Token)
	if errors.Is(err, service.ErrTokenRevoked) {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRevoked)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"valid": true, "claims": claims})
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes the caller's token until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	if err := h.authService.RevokeToken(c.Request.Context(), claims); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// VerifyEmail godoc
// POST /api/v1/auth/verify-email
// Issues a new verification token and mails it.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req model.EmailRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.RequestVerification(c.Request.Context(), req.Email); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Verification email sent"})
}

// ConfirmEmail godoc
// POST /api/v1/auth/confirm-email
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var req model.TokenRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.ConfirmEmail(c.Request.Context(), req.Token); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// ForgotPassword godoc
// POST /api/v1/auth/forgot-password
// Mails a password reset link valid for one hour.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.EmailRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password reset email sent"})
}

// ResetPassword godoc
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password reset successfully"})
}
