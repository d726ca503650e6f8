// internal/handlers/valuation.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bluedwarf/platform/internal/services"
	"github.com/bluedwarf/platform/internal/utils"
)

type ValuationHandler struct {
	valuationService *services.ValuationService
	agentService     *services.AgentService
	leadService      *services.LeadService
}

func NewValuationHandler(valuationService *services.ValuationService, agentService *services.AgentService, leadService *services.LeadService) *ValuationHandler {
	return &ValuationHandler{
		valuationService: valuationService,
		agentService:     agentService,
		leadService:      leadService,
	}
}

type valuationRequest struct {
	Address string `json:"address"`
}

// POST /api/valuation
func (h *ValuationHandler) GetValuation(c *gin.Context) {
	var req valuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.valuationService.Valuate(c.Request.Context(), req.Address)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /api/properties/:id
func (h *ValuationHandler) GetProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.valuationService.GetProperty(id)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /api/market-trends/:id
func (h *ValuationHandler) GetMarketTrends(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	trends, err := h.valuationService.MarketTrends(id)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, trends)
}

// POST /api/leads
func (h *ValuationHandler) CreateLead(c *gin.Context) {
	var req services.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	lead, err := h.leadService.Create(&req)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.CreatedResponse(c, lead)
}

type nearbySearchRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	PropertyType string  `json:"property_type"`
}

// POST /api/agents/search
func (h *ValuationHandler) SearchNearbyAgents(c *gin.Context) {
	var req nearbySearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	agents, err := h.agentService.SearchNearby(req.Latitude, req.Longitude, req.PropertyType)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"agents": agents,
		"count":  len(agents),
	})
}
