// internal/services/lead_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bluedwarf/platform/internal/config"
	"github.com/bluedwarf/platform/internal/models"
	"github.com/bluedwarf/platform/internal/utils"
)

type LeadService struct {
	db  *gorm.DB
	cfg *config.Config
}

type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type CreateLeadRequest struct {
	PropertyID    uuid.UUID       `json:"property_id" validate:"required"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string          `json:"customer_phone"`
	LeadType      models.LeadType `json:"lead_type"`
	Message       string          `json:"message"`
}

type DistributeRequest struct {
	PropertyID   uuid.UUID       `json:"property_id" validate:"required"`
	LeadType     models.LeadType `json:"lead_type"`
	CustomerInfo CustomerInfo    `json:"customer_info"`
}

type DistributedLead struct {
	Agent *models.Agent        `json:"agent"`
	Lead  *models.PropertyLead `json:"lead"`
}

type DistributeResult struct {
	Message       string            `json:"message"`
	DistributedTo []DistributedLead `json:"distributed_to"`
	Property      *models.Property  `json:"property"`
}

func NewLeadService(db *gorm.DB, cfg *config.Config) *LeadService {
	return &LeadService{
		db:  db,
		cfg: cfg,
	}
}

// Create records a customer inquiry and assigns it to the best available
// agent.
func (s *LeadService) Create(req *CreateLeadRequest) (*models.PropertyLead, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	leadType := req.LeadType
	if leadType == "" {
		leadType = models.LeadTypeValuation
	}
	if !models.ValidLeadType(leadType) {
		return nil, fmt.Errorf("%w: invalid lead type %q", ErrInvalidInput, leadType)
	}

	var property models.Property
	if err := s.db.First(&property, "id = ?", req.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: property %s", ErrNotFound, req.PropertyID)
		}
		return nil, fmt.Errorf("failed to fetch property: %w", err)
	}

	lead := &models.PropertyLead{
		PropertyID:    property.ID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		LeadType:      leadType,
		Message:       req.Message,
		Status:        models.LeadStatusNew,
		Priority:      models.LeadPriorityMedium,
	}

	agents, err := qualifiedAgents(s.db, 1)
	if err != nil {
		return nil, err
	}
	if len(agents) > 0 {
		best := agents[0]
		lead.AgentID = &best.ID
		lead.Status = models.LeadStatusAssigned
		best.LeadsReceived++
		if err := s.db.Save(&best).Error; err != nil {
			return nil, fmt.Errorf("failed to update agent metrics: %w", err)
		}
	}

	if err := s.db.Create(lead).Error; err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	return lead, nil
}

// Distribute fans one inquiry out to the best qualified agents in the
// property's area, respecting each tier's monthly lead quota. The batch is
// not atomic: a failure partway leaves earlier assignments in place.
func (s *LeadService) Distribute(req *DistributeRequest) (*DistributeResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	leadType := req.LeadType
	if leadType == "" {
		leadType = models.LeadTypeValuation
	}
	if !models.ValidLeadType(leadType) {
		return nil, fmt.Errorf("%w: invalid lead type %q", ErrInvalidInput, leadType)
	}

	var property models.Property
	if err := s.db.First(&property, "id = ?", req.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: property %s", ErrNotFound, req.PropertyID)
		}
		return nil, fmt.Errorf("failed to fetch property: %w", err)
	}

	qualified, err := qualifiedAgents(s.db, 0)
	if err != nil {
		return nil, err
	}

	areaAgents := make([]models.Agent, 0, len(qualified))
	for _, agent := range qualified {
		if s.servesRegion(agent.ServiceAreas) {
			areaAgents = append(areaAgents, agent)
		}
	}

	if len(areaAgents) == 0 {
		return nil, fmt.Errorf("%w: no qualified agents found in the area", ErrNotFound)
	}

	maxAgents := s.cfg.Distribution.MaxAgentsPerLead
	if maxAgents <= 0 {
		maxAgents = 3
	}
	if len(areaAgents) > maxAgents {
		areaAgents = areaAgents[:maxAgents]
	}

	distributed := []DistributedLead{}
	for i := range areaAgents {
		agent := &areaAgents[i]

		tier, ok := s.cfg.Tier(string(agent.SubscriptionTier))
		if !ok {
			logrus.WithField("agent_id", agent.ID).Warnf("Agent has unknown tier %q; skipping", agent.SubscriptionTier)
			continue
		}

		if tier.LeadLimit != -1 {
			count, err := s.monthlyLeadCount(agent.ID)
			if err != nil {
				return nil, err
			}
			if count >= int64(tier.LeadLimit) {
				continue
			}
		}

		priority := models.LeadPriorityMedium
		if agent.SubscriptionTier == models.TierEnterprise {
			priority = models.LeadPriorityHigh
		}

		lead := &models.PropertyLead{
			PropertyID:    property.ID,
			AgentID:       &agent.ID,
			CustomerName:  req.CustomerInfo.Name,
			CustomerEmail: req.CustomerInfo.Email,
			CustomerPhone: req.CustomerInfo.Phone,
			LeadType:      leadType,
			Message:       req.CustomerInfo.Message,
			Status:        models.LeadStatusAssigned,
			Priority:      priority,
		}

		if err := s.db.Create(lead).Error; err != nil {
			return nil, fmt.Errorf("failed to create lead: %w", err)
		}

		agent.LeadsReceived++
		if err := s.db.Save(agent).Error; err != nil {
			return nil, fmt.Errorf("failed to update agent metrics: %w", err)
		}

		distributed = append(distributed, DistributedLead{Agent: agent, Lead: lead})
	}

	return &DistributeResult{
		Message:       fmt.Sprintf("Lead distributed to %d qualified agents", len(distributed)),
		DistributedTo: distributed,
		Property:      &property,
	}, nil
}

// servesRegion matches the agent's service areas against the configured
// region tokens. A token match stands in for real geographic matching.
func (s *LeadService) servesRegion(areas models.StringList) bool {
	for _, area := range areas {
		for _, token := range s.cfg.Distribution.RegionTokens {
			if strings.Contains(area, token) {
				return true
			}
		}
	}
	return false
}

func (s *LeadService) monthlyLeadCount(agentID uuid.UUID) (int64, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var count int64
	err := s.db.Model(&models.PropertyLead{}).
		Where("agent_id = ? AND created_at >= ?", agentID, monthStart).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count monthly leads: %w", err)
	}
	return count, nil
}

// AgentPerformance summarizes one agent's lead funnel.
func (s *LeadService) AgentPerformance(agentID uuid.UUID) (models.JSONB, error) {
	var agent models.Agent
	if err := s.db.First(&agent, "id = ?", agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: agent %s", ErrNotFound, agentID)
		}
		return nil, fmt.Errorf("failed to fetch agent: %w", err)
	}

	var totalLeads, convertedLeads int64
	if err := s.db.Model(&models.PropertyLead{}).Where("agent_id = ?", agentID).Count(&totalLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	if err := s.db.Model(&models.PropertyLead{}).
		Where("agent_id = ? AND status = ?", agentID, models.LeadStatusConverted).
		Count(&convertedLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to count converted leads: %w", err)
	}

	monthlyLeads, err := s.monthlyLeadCount(agentID)
	if err != nil {
		return nil, err
	}

	var conversionRate float64
	if totalLeads > 0 {
		conversionRate = float64(convertedLeads) / float64(totalLeads) * 100
	}

	leadLimit := 0
	if tier, ok := s.cfg.Tier(string(agent.SubscriptionTier)); ok {
		leadLimit = tier.LeadLimit
	}

	return models.JSONB{
		"agent": &agent,
		"performance": models.JSONB{
			"total_leads":       totalLeads,
			"converted_leads":   convertedLeads,
			"monthly_leads":     monthlyLeads,
			"conversion_rate":   conversionRate,
			"subscription_tier": agent.SubscriptionTier,
			"lead_limit":        leadLimit,
		},
	}, nil
}

// PlatformPerformance summarizes the lead funnel across all agents.
func (s *LeadService) PlatformPerformance() (models.JSONB, error) {
	var activeAgents, totalLeads, convertedLeads int64

	if err := s.db.Model(&models.Agent{}).Where("subscription_active = ?", true).Count(&activeAgents).Error; err != nil {
		return nil, fmt.Errorf("failed to count active agents: %w", err)
	}
	if err := s.db.Model(&models.PropertyLead{}).Count(&totalLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	if err := s.db.Model(&models.PropertyLead{}).
		Where("status = ?", models.LeadStatusConverted).Count(&convertedLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to count converted leads: %w", err)
	}

	var conversionRate float64
	if totalLeads > 0 {
		conversionRate = float64(convertedLeads) / float64(totalLeads) * 100
	}

	return models.JSONB{
		"platform_performance": models.JSONB{
			"active_agents":            activeAgents,
			"total_leads":              totalLeads,
			"total_converted":          convertedLeads,
			"platform_conversion_rate": conversionRate,
		},
	}, nil
}
