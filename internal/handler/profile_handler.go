package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/myadmit/admit-backend/internal/validator"
)

// ProfileHandler serves the applicant profile, questionnaire and resume text.
type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfile godoc
// GET /api/v1/user/profile
// Returns the profile with signed picture and CV links.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	view, err := h.profileService.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// SaveAnswer godoc
// POST /api/v1/user/profile
// Stores one questionnaire answer.
func (h *ProfileHandler) SaveAnswer(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	var req model.ProfileAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	profile, err := h.profileService.SaveAnswer(c.Request.Context(), claims.UserID, claims.Email, &req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// GetPersonal godoc
// GET /api/v1/user/personal-profile
func (h *ProfileHandler) GetPersonal(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	personal, err := h.profileService.GetPersonal(c.Request.Context(), claims.UserID, claims.Email)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, personal)
}

// UpdatePersonal godoc
// POST /api/v1/user/personal-profile
// Merges personal info and replaces education and work experience.
func (h *ProfileHandler) UpdatePersonal(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	var req model.PersonalProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.profileService.UpdatePersonal(c.Request.Context(), claims.UserID, claims.Email, &req); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Personal profile updated successfully"})
}

// GetResumeText godoc
// GET /api/v1/user/resume-text
func (h *ProfileHandler) GetResumeText(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	text, err := h.profileService.GetResumeText(c.Request.Context(), claims.UserID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"resume_text": text})
}

// SetResumeText godoc
// PUT /api/v1/user/resume-text
func (h *ProfileHandler) SetResumeText(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	var req model.ResumeTextRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.profileService.SetResumeText(c.Request.Context(), claims.UserID, claims.Email, req.ResumeText); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Resume text saved"})
}

// CalculateCompletion godoc
// POST /api/v1/user/calculate-profile-completion
func (h *ProfileHandler) CalculateCompletion(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	score, err := h.profileService.RecalculateCompletion(c.Request.Context(), claims.UserID, claims.Email)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"profile_completion_score": score})
}
