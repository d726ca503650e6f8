// internal/handlers/agent.go
package handlers

import (
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bluedwarf/platform/internal/models"
	"github.com/bluedwarf/platform/internal/services"
	"github.com/bluedwarf/platform/internal/utils"
)

type AgentHandler struct {
	agentService        *services.AgentService
	verificationService *services.VerificationService
	subscriptionService *services.SubscriptionService
}

func NewAgentHandler(agentService *services.AgentService, verificationService *services.VerificationService, subscriptionService *services.SubscriptionService) *AgentHandler {
	return &AgentHandler{
		agentService:        agentService,
		verificationService: verificationService,
		subscriptionService: subscriptionService,
	}
}

// POST /agents/register
func (h *AgentHandler) Register(c *gin.Context) {
	var req services.RegisterAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.agentService.Register(&req)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

func (h *AgentHandler) formFile(c *gin.Context, field string) (multipart.File, *multipart.FileHeader, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		utils.BadRequestResponse(c, "No "+field+" provided", nil)
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read "+field, nil)
		return nil, nil, false
	}

	return file, header, true
}

// POST /agents/:id/upload-license
func (h *AgentHandler) UploadLicense(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, header, ok := h.formFile(c, "license_document")
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.verificationService.UploadLicenseDocument(c.Request.Context(), id, file, header)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /agents/:id/upload-id
func (h *AgentHandler) UploadIDDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, header, ok := h.formFile(c, "id_document")
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.verificationService.UploadIDDocument(c.Request.Context(), id, file, header)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /agents/:id/upload-live-photo
func (h *AgentHandler) UploadLivePhoto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, header, ok := h.formFile(c, "live_photo")
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.verificationService.UploadLivePhoto(c.Request.Context(), id, file, header)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

type activateSubscriptionRequest struct {
	PaymentVerified bool `json:"payment_verified"`
}

// POST /agents/:id/activate-subscription
func (h *AgentHandler) ActivateSubscription(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req activateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	agent, err := h.subscriptionService.Activate(id, req.PaymentVerified)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Subscription activated successfully",
		"agent":   agent,
	})
}

// GET /agents/:id/leads
func (h *AgentHandler) GetLeads(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status := models.LeadStatus(c.Query("status"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	leads, err := h.agentService.Leads(id, status, limit)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"leads": leads,
		"count": len(leads),
	})
}

// POST /agents/:id/update-lead-status
func (h *AgentHandler) UpdateLeadStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	lead, err := h.agentService.UpdateLeadStatus(id, &req)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Lead status updated successfully",
		"lead":    lead,
	})
}

// GET /agents/search
func (h *AgentHandler) Search(c *gin.Context) {
	minRating, _ := strconv.ParseFloat(c.DefaultQuery("min_rating", "0"), 64)

	params := services.AgentSearchParams{
		State:     c.Query("state"),
		City:      c.Query("city"),
		Specialty: c.Query("specialty"),
		MinRating: minRating,
	}
	pagination := utils.GetPaginationParams(c)
	if c.Query("sort") == "" {
		pagination.Sort = "rating"
	}

	agents, total, err := h.agentService.Search(params, pagination)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(agents, total, pagination))
}

// GET /agents/:id/profile
func (h *AgentHandler) GetProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.agentService.Profile(id)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}
