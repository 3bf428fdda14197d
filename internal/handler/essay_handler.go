package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/myadmit/admit-backend/internal/validator"
)

// EssayHandler exposes AI drafting, refinement and suggestions.
type EssayHandler struct {
	essayService *service.EssayService
}

func NewEssayHandler(essayService *service.EssayService) *EssayHandler {
	return &EssayHandler{essayService: essayService}
}

// Generate godoc
// GET|POST /api/v1/user/application/:id/generate-ai-answers
// Drafts an answer for every AI-enabled question. Progress is streamed on
// /ws/v1/applications/:id/generation while the request runs.
func (h *EssayHandler) Generate(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.essayService.Generate(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Refine godoc
// POST /api/v1/user/application/:id/questions/:question_id/refine-ai-answer
func (h *EssayHandler) Refine(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	var req model.RefineRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	refined, err := h.essayService.Refine(c.Request.Context(), claims.UserID, id, questionID, req.Prompt)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"refined_answer": refined})
}

// Suggestions godoc
// POST /api/v1/user/application/:id/questions/:question_id/ai-suggestions
func (h *EssayHandler) Suggestions(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	var req model.SuggestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	suggestions, err := h.essayService.Suggestions(c.Request.Context(), claims.UserID, id, questionID, req.Answer)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"suggestions": suggestions})
}
