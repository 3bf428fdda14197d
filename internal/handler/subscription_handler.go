package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/myadmit/admit-backend/internal/validator"
)

// SubscriptionHandler handles Stripe plan state and checkout.
type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Get godoc
// GET /api/v1/user/subscription
// Returns the stored subscription, or null on the free plan.
func (h *SubscriptionHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}

// Refresh godoc
// GET /api/v1/user/refresh-subscription
// Syncs the subscription from Stripe.
func (h *SubscriptionHandler) Refresh(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Refresh(c.Request.Context(), claims.UserID)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}

// Session godoc
// POST /api/v1/user/stripe-session
// Returns a billing portal URL for subscribers and a checkout URL otherwise.
func (h *SubscriptionHandler) Session(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	var req model.StripeSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	url, err := h.subscriptionService.Session(c.Request.Context(), claims.UserID, req.PriceID)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url})
}
