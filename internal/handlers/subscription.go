// internal/handlers/subscription.go
package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bluedwarf/platform/internal/services"
	"github.com/bluedwarf/platform/internal/utils"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// GET /subscription/tiers
func (h *SubscriptionHandler) GetTiers(c *gin.Context) {
	utils.SuccessResponse(c, h.subscriptionService.Tiers())
}

type createPaymentIntentRequest struct {
	AgentID uuid.UUID `json:"agent_id" binding:"required"`
	Tier    string    `json:"tier"`
}

// POST /subscription/create-payment-intent
func (h *SubscriptionHandler) CreatePaymentIntent(c *gin.Context) {
	var req createPaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if req.Tier == "" {
		req.Tier = "basic"
	}

	response, err := h.subscriptionService.CreatePaymentIntent(req.AgentID, req.Tier)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

type confirmPaymentRequest struct {
	PaymentIntentID string    `json:"payment_intent_id" binding:"required"`
	AgentID         uuid.UUID `json:"agent_id" binding:"required"`
}

// POST /subscription/confirm-payment
func (h *SubscriptionHandler) ConfirmPayment(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	agent, details, err := h.subscriptionService.ConfirmPayment(req.PaymentIntentID, req.AgentID)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":              "Subscription activated successfully",
		"agent":                agent,
		"subscription_details": details,
	})
}

type upgradeRequest struct {
	AgentID uuid.UUID `json:"agent_id" binding:"required"`
	NewTier string    `json:"new_tier" binding:"required"`
}

// POST /subscription/upgrade
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	var req upgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	response, err := h.subscriptionService.Upgrade(req.AgentID, req.NewTier)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

type cancelRequest struct {
	AgentID   uuid.UUID `json:"agent_id" binding:"required"`
	Immediate bool      `json:"immediate"`
}

// POST /subscription/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	response, err := h.subscriptionService.Cancel(req.AgentID, req.Immediate)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// GET /subscription/billing-history
func (h *SubscriptionHandler) GetBillingHistory(c *gin.Context) {
	agentID, err := uuid.Parse(c.Query("agent_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent_id", nil)
		return
	}

	agent, history, err := h.subscriptionService.BillingHistory(agentID)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"agent":           agent,
		"billing_history": history,
	})
}

// POST /subscription/webhook
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read payload", nil)
		return
	}

	if err := h.subscriptionService.HandleWebhook(payload, c.GetHeader("Stripe-Signature")); err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"status": "success"})
}
