package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/middleware"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
)

type errorMapping struct {
	err    error
	status int
	code   response.ErrCode
}

// serviceErrors translates service sentinels into HTTP responses. The first
// match wins, so more specific errors come first.
var serviceErrors = []errorMapping{
	// ─── Auth ──────────────────────────────────────────────────────────
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},
	{service.ErrInvalidGoogleToken, http.StatusUnauthorized, response.ErrInvalidGoogleToken},
	{service.ErrPasswordNotSet, http.StatusBadRequest, response.ErrPasswordNotSet},
	{service.ErrInvalidToken, http.StatusBadRequest, response.ErrInvalidToken},
	{service.ErrUserNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrForbidden, http.StatusForbidden, response.ErrForbidden},

	// ─── Profile & Files ───────────────────────────────────────────────
	{service.ErrProfileNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrUnsupportedFile, http.StatusBadRequest, response.ErrUnsupportedFile},
	{service.ErrInvalidDocumentType, http.StatusBadRequest, response.ErrInvalidDocumentType},
	{service.ErrFileLimitReached, http.StatusBadRequest, response.ErrFileLimitReached},
	{service.ErrAdditionalDocsReached, http.StatusBadRequest, response.ErrAdditionalDocsReached},
	{service.ErrFileNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrFileTooLarge, http.StatusBadRequest, response.ErrFileTooLarge},

	// ─── Catalog ───────────────────────────────────────────────────────
	{service.ErrUniversityNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrProgramNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrQuestionNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrDuplicateEntry, http.StatusConflict, response.ErrConflict},

	// ─── Applications ──────────────────────────────────────────────────
	{service.ErrApplicationNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrApplicationLimit, http.StatusForbidden, response.ErrApplicationLimit},
	{service.ErrProgramRequired, http.StatusBadRequest, response.ErrProgramRequired},
	{service.ErrApplicationExists, http.StatusConflict, response.ErrApplicationExists},
	{service.ErrInvalidDeadline, http.StatusBadRequest, response.ErrInvalidDeadline},
	{service.ErrInvalidQuestion, http.StatusBadRequest, response.ErrInvalidQuestion},
	{service.ErrOnlyCustomDeletable, http.StatusForbidden, response.ErrOnlyCustomDeletable},
	{service.ErrNoteNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrInvalidNote, http.StatusBadRequest, response.ErrInvalidNote},
	{service.ErrAnswerNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrInvalidAnswerStatus, http.StatusBadRequest, response.ErrInvalidAnswerStatus},
	{service.ErrNoAIQuestions, http.StatusBadRequest, response.ErrNoAIQuestions},
	{service.ErrGenerationInProgress, http.StatusConflict, response.ErrGenerationInProgress},
	// A failed run wraps its cause, so it has to match before the cause does.
	{service.ErrGenerationFailed, http.StatusInternalServerError, response.ErrGenerationFailed},
	{service.ErrNoSuggestions, http.StatusBadRequest, response.ErrInvalidAIResponse},
	{service.ErrInvalidAIResponse, http.StatusInternalServerError, response.ErrInvalidAIResponse},

	// ─── Recommendations ───────────────────────────────────────────────
	{service.ErrResumeRequired, http.StatusBadRequest, response.ErrResumeRequired},
	{service.ErrTextRequired, http.StatusBadRequest, response.ErrValidation},
	{service.ErrNoRecommendations, http.StatusInternalServerError, response.ErrNoRecommendations},

	// ─── Billing ───────────────────────────────────────────────────────
	{service.ErrCustomerNotFound, http.StatusNotFound, response.ErrCustomerNotFound},
	{service.ErrNoActiveSubscription, http.StatusNotFound, response.ErrNoActiveSubscription},
}

// failWithError writes the response for a service error. Client errors carry
// the error text; anything unmapped becomes a 500 and is attached to the
// context for the request logger.
func failWithError(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				_ = c.Error(err)
				response.Fail(c, m.status, m.code)
				return
			}
			response.FailWithMessage(c, m.status, m.code, err.Error())
			return
		}
	}
	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// requireClaims returns the caller's claims, writing a 401 when absent.
func requireClaims(c *gin.Context) (*service.Claims, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}
	return claims, true
}

// parseUUIDParam reads a UUID path parameter, writing a 400 when malformed.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
