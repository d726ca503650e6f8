// internal/handlers/lead.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bluedwarf/platform/internal/services"
	"github.com/bluedwarf/platform/internal/utils"
)

type LeadHandler struct {
	leadService *services.LeadService
}

func NewLeadHandler(leadService *services.LeadService) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
	}
}

// POST /leads/distribute
func (h *LeadHandler) Distribute(c *gin.Context) {
	var req services.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.leadService.Distribute(&req)
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /leads/performance
func (h *LeadHandler) GetPerformance(c *gin.Context) {
	if raw := c.Query("agent_id"); raw != "" {
		agentID, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid agent_id", nil)
			return
		}

		metrics, err := h.leadService.AgentPerformance(agentID)
		if err != nil {
			translateError(c, err)
			return
		}

		utils.SuccessResponse(c, metrics)
		return
	}

	metrics, err := h.leadService.PlatformPerformance()
	if err != nil {
		translateError(c, err)
		return
	}

	utils.SuccessResponse(c, metrics)
}
