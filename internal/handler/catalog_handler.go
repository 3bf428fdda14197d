package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/middleware"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
)

// CatalogHandler serves the read-only catalog: universities, programs and
// profile questions.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GetUniversities godoc
// GET /api/v1/static/university?id=&name=
// Returns one university when id or name is given, otherwise all of them.
func (h *CatalogHandler) GetUniversities(c *gin.Context) {
	ctx := c.Request.Context()
	rawID, name := c.Query("id"), c.Query("name")

	if rawID == "" && name == "" {
		list, err := h.catalogService.ListUniversities(ctx)
		if err != nil {
			failWithError(c, err)
			return
		}
		response.Success(c, http.StatusOK, list)
		return
	}

	var id *uuid.UUID
	if rawID != "" {
		parsed, err := uuid.Parse(rawID)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		id = &parsed
	}

	u, err := h.catalogService.GetUniversity(ctx, id, name)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// GetPrograms godoc
// GET /api/v1/static/programs?id=&university_id=
// With id (an application ID) returns that application's program and needs
// a signed-in owner. Otherwise lists the programs of a university, or all.
func (h *CatalogHandler) GetPrograms(c *gin.Context) {
	listPrograms(c, h.catalogService, false)
}

// GetProfileQuestions godoc
// GET /api/v1/static/profile-questions
func (h *CatalogHandler) GetProfileQuestions(c *gin.Context) {
	questions, err := h.catalogService.ListProfileQuestions(c.Request.Context())
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// GetProfileSections godoc
// GET /api/v1/static/profile-questions/sections
func (h *CatalogHandler) GetProfileSections(c *gin.Context) {
	sections, err := h.catalogService.ListProfileSections(c.Request.Context())
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sections)
}

// GetProfileQuestion godoc
// GET /api/v1/static/profile-questions/:id
func (h *CatalogHandler) GetProfileQuestion(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	q, err := h.catalogService.GetProfileQuestion(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// listPrograms is shared by the public and admin program listings. Admins
// may look up the program of any application.
func listPrograms(c *gin.Context, catalog *service.CatalogService, isAdmin bool) {
	ctx := c.Request.Context()

	if rawID := c.Query("id"); rawID != "" {
		appID, err := uuid.Parse(rawID)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		claims := middleware.GetClaims(c)
		if claims == nil {
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		program, err := catalog.ProgramForApplication(ctx, appID, claims.UserID, isAdmin || claims.IsAdmin)
		if err != nil {
			failWithError(c, err)
			return
		}
		response.Success(c, http.StatusOK, program)
		return
	}

	var universityID *uuid.UUID
	if raw := c.Query("university_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		universityID = &parsed
	}

	programs, err := catalog.ListPrograms(ctx, universityID)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, programs)
}
