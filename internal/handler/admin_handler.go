package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/myadmit/admit-backend/internal/validator"
)

// AdminHandler handles catalog maintenance. Every route sits behind RequireAdmin.
type AdminHandler struct {
	catalogService *service.CatalogService
	fileService    *service.FileService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(catalogService *service.CatalogService, fileService *service.FileService) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		fileService:    fileService,
	}
}

// ─── Universities ──────────────────────────────────────────────────────────

// CreateUniversity godoc
// POST /api/v1/admin/university
func (h *AdminHandler) CreateUniversity(c *gin.Context) {
	var req model.UniversityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	u, err := h.catalogService.CreateUniversity(c.Request.Context(), &req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

// UpdateUniversity godoc
// PUT /api/v1/admin/university/:id
func (h *AdminHandler) UpdateUniversity(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UniversityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	u, err := h.catalogService.UpdateUniversity(c.Request.Context(), id, &req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// UploadUniversityLogo godoc
// POST /api/v1/admin/university/:id/logo
// Stores a multipart "file" image and sets it as the university logo.
func (h *AdminHandler) UploadUniversityLogo(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	key, err := h.fileService.UploadLogo(ctx, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		failWithError(c, err)
		return
	}

	u, err := h.catalogService.SetUniversityLogo(ctx, id, key)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// DeleteUniversity godoc
// DELETE /api/v1/admin/university/:id
func (h *AdminHandler) DeleteUniversity(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteUniversity(c.Request.Context(), id); err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "University deleted successfully"})
}

// ─── Programs ──────────────────────────────────────────────────────────────

// ListPrograms godoc
// GET /api/v1/admin/programs?id=&university_id=
func (h *AdminHandler) ListPrograms(c *gin.Context) {
	listPrograms(c, h.catalogService, true)
}

// CreateProgram godoc
// POST /api/v1/admin/programs
func (h *AdminHandler) CreateProgram(c *gin.Context) {
	var req model.ProgramRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, err := h.catalogService.CreateProgram(c.Request.Context(), &req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// UpdateProgram godoc
// PUT /api/v1/admin/programs/:id
func (h *AdminHandler) UpdateProgram(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.ProgramRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, err := h.catalogService.UpdateProgram(c.Request.Context(), id, &req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// DeleteProgram godoc
// DELETE /api/v1/admin/programs/:id
func (h *AdminHandler) DeleteProgram(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProgram(c.Request.Context(), id); err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Program deleted successfully"})
}

// ─── Profile questions ─────────────────────────────────────────────────────

// CreateProfileSection godoc
// POST /api/v1/admin/profile-questions/sections
func (h *AdminHandler) CreateProfileSection(c *gin.Context) {
	var req model.ProfileSectionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	section, err := h.catalogService.CreateProfileSection(c.Request.Context(), &req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, section)
}

// CreateProfileQuestion godoc
// POST /api/v1/admin/profile-questions
func (h *AdminHandler) CreateProfileQuestion(c *gin.Context) {
	var req model.ProfileQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.catalogService.CreateProfileQuestion(c.Request.Context(), &req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, q)
}
