package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/myadmit/admit-backend/internal/validator"
)

// MailHandler queues transactional and contact mails.
type MailHandler struct {
	authService *service.AuthService
	mailService *service.MailService
}

func NewMailHandler(authService *service.AuthService, mailService *service.MailService) *MailHandler {
	return &MailHandler{
		authService: authService,
		mailService: mailService,
	}
}

// SendVerification godoc
// POST /api/v1/user/send-verification-email
// Re-sends the verification mail to the signed-in user.
func (h *MailHandler) SendVerification(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	if err := h.authService.RequestVerification(c.Request.Context(), claims.Email); err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Verification email sent"})
}

// SendPasswordReset godoc
// POST /api/v1/user/send-password-reset-email
func (h *MailHandler) SendPasswordReset(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), claims.Email); err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Password reset email sent"})
}

// Contact godoc
// POST /api/v1/static/contact
// Forwards a contact-form message to the support inbox.
func (h *MailHandler) Contact(c *gin.Context) {
	var req model.ContactRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.mailService.SendContact(c.Request.Context(), req.Email, req.Subject, req.Message); err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Message sent successfully"})
}
