package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/myadmit/admit-backend/internal/validator"
)

type RecommendationHandler struct {
	recommendationService *service.RecommendationService
}

func NewRecommendationHandler(recommendationService *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

// Recommend godoc
// POST /api/v1/static/recommendation
// Suggests reach, target and safety schools from the stored resume text.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	var req model.RecommendationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lists, err := h.recommendationService.Recommend(c.Request.Context(), claims.UserID, req.CareerGoals)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lists)
}

// Extract godoc
// POST /api/v1/static/ai-extract
// Turns pasted resume text into structured profile fields.
func (h *RecommendationHandler) Extract(c *gin.Context) {
	var req model.ExtractRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	data, err := h.recommendationService.Extract(c.Request.Context(), req.Text)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, data)
}
