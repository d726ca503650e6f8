// internal/services/agent_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bluedwarf/platform/internal/config"
	"github.com/bluedwarf/platform/internal/database"
	"github.com/bluedwarf/platform/internal/models"
	"github.com/bluedwarf/platform/internal/utils"
)

// Per-area surcharge beyond the bundled three service areas.
const extraServiceAreaFee = 25

type AgentService struct {
	db  *gorm.DB
	cfg *config.Config
}

type RegisterAgentRequest struct {
	Name             string   `json:"name" validate:"required"`
	Email            string   `json:"email" validate:"required,email"`
	Phone            string   `json:"phone,omitempty"`
	LicenseNumber    string   `json:"license_number" validate:"required"`
	LicenseState     string   `json:"license_state" validate:"required,us_state"`
	Brokerage        string   `json:"brokerage,omitempty"`
	YearsExperience  int      `json:"years_experience,omitempty"`
	Specialties      []string `json:"specialties,omitempty"`
	ServiceAreas     []string `json:"service_areas,omitempty"`
	SubscriptionTier string   `json:"subscription_tier,omitempty"`
}

type RegisterAgentResponse struct {
	Agent     *models.Agent `json:"agent"`
	NextSteps []string      `json:"next_steps"`
}

type AgentSearchParams struct {
	State     string
	City      string
	Specialty string
	MinRating float64
}

type AgentProfile struct {
	Agent              *models.Agent         `json:"agent"`
	PerformanceMetrics models.JSONB          `json:"performance_metrics"`
	RecentLeads        []models.PropertyLead `json:"recent_leads"`
}

type UpdateLeadStatusRequest struct {
	LeadID uuid.UUID         `json:"lead_id" validate:"required"`
	Status models.LeadStatus `json:"status" validate:"required"`
}

func NewAgentService(db *gorm.DB, cfg *config.Config) *AgentService {
	return &AgentService{
		db:  db,
		cfg: cfg,
	}
}

func (s *AgentService) Register(req *RegisterAgentRequest) (*RegisterAgentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Check if agent already exists
	var existing models.Agent
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: agent with this email already exists", ErrInvalidInput)
	}

	tierKey := req.SubscriptionTier
	if tierKey == "" {
		tierKey = string(models.TierBasic)
	}
	tier, ok := s.cfg.Tier(tierKey)
	if !ok {
		return nil, fmt.Errorf("%w: invalid subscription tier %q", ErrInvalidInput, tierKey)
	}

	agent := &models.Agent{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		LicenseNumber:    req.LicenseNumber,
		LicenseState:     req.LicenseState,
		Brokerage:        req.Brokerage,
		YearsExperience:  req.YearsExperience,
		Specialties:      models.StringList(req.Specialties),
		ServiceAreas:     models.StringList(req.ServiceAreas),
		SubscriptionTier: models.SubscriptionTier(tierKey),
		MonthlyFee:       SubscriptionFee(tier.Price, len(req.ServiceAreas)),
	}

	if err := s.db.Create(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return &RegisterAgentResponse{
		Agent: agent,
		NextSteps: []string{
			"Upload professional license document",
			"Upload government-issued ID",
			"Take live verification photo",
			"Complete subscription payment",
		},
	}, nil
}

// SubscriptionFee is the tier base fee plus a surcharge for each service
// area beyond the bundled three.
func SubscriptionFee(basePrice int64, serviceAreaCount int) float64 {
	fee := float64(basePrice)
	if serviceAreaCount > 3 {
		fee += float64((serviceAreaCount - 3) * extraServiceAreaFee)
	}
	return fee
}

func (s *AgentService) GetAgent(id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := s.db.First(&agent, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: agent %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch agent: %w", err)
	}
	return &agent, nil
}

// Search returns active, fully verified agents matching the criteria,
// best-rated first.
func (s *AgentService) Search(params AgentSearchParams, pagination utils.PaginationParams) ([]models.Agent, int64, error) {
	query := s.db.Model(&models.Agent{}).Where(
		"subscription_active = ? AND license_verified = ? AND identity_verified = ? AND rating >= ?",
		true, true, true, params.MinRating,
	)

	if params.State != "" {
		query = query.Where("license_state = ?", params.State)
	}
	if params.City != "" {
		query = query.Where("CAST(service_areas AS TEXT) LIKE ?", "%"+params.City+"%")
	}
	if params.Specialty != "" {
		query = query.Where("CAST(specialties AS TEXT) LIKE ?", "%"+params.Specialty+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count agents: %w", err)
	}

	query = utils.ApplySort(query, pagination, []string{"rating", "years_experience", "created_at"})

	var agents []models.Agent
	if err := utils.ApplyPagination(query, pagination).Find(&agents).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search agents: %w", err)
	}
	return agents, total, nil
}

// SearchNearby is the location-keyed lookup used by the valuation page. The
// coordinates are accepted for interface stability but matching is not yet
// geographic.
func (s *AgentService) SearchNearby(latitude, longitude float64, propertyType string) ([]models.Agent, error) {
	return qualifiedAgents(s.db, 5)
}

func (s *AgentService) Profile(id uuid.UUID) (*AgentProfile, error) {
	agent, err := s.GetAgent(id)
	if err != nil {
		return nil, err
	}

	var totalLeads, convertedLeads int64
	if err := s.db.Model(&models.PropertyLead{}).Where("agent_id = ?", id).Count(&totalLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	if err := s.db.Model(&models.PropertyLead{}).
		Where("agent_id = ? AND status = ?", id, models.LeadStatusConverted).
		Count(&convertedLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to count converted leads: %w", err)
	}

	var conversionRate float64
	if totalLeads > 0 {
		conversionRate = float64(convertedLeads) / float64(totalLeads) * 100
	}

	var recentLeads []models.PropertyLead
	if err := s.db.Where("agent_id = ?", id).
		Order("created_at DESC").Limit(10).Find(&recentLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent leads: %w", err)
	}

	return &AgentProfile{
		Agent: agent,
		PerformanceMetrics: models.JSONB{
			"total_leads":         totalLeads,
			"converted_leads":     convertedLeads,
			"conversion_rate":     conversionRate,
			"client_satisfaction": agent.Rating,
		},
		RecentLeads: recentLeads,
	}, nil
}

func (s *AgentService) Leads(agentID uuid.UUID, status models.LeadStatus, limit int) ([]models.PropertyLead, error) {
	if _, err := s.GetAgent(agentID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := s.db.Where("agent_id = ?", agentID)
	if status != "" {
		if !models.ValidLeadStatus(status) {
			return nil, fmt.Errorf("%w: invalid lead status %q", ErrInvalidInput, status)
		}
		query = query.Where("status = ?", status)
	}

	var leads []models.PropertyLead
	if err := query.Order("created_at DESC").Limit(limit).Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return leads, nil
}

// UpdateLeadStatus moves a lead through its lifecycle. The conversion
// counter only moves on a transition into converted, so replaying the same
// update cannot double-count.
func (s *AgentService) UpdateLeadStatus(agentID uuid.UUID, req *UpdateLeadStatusRequest) (*models.PropertyLead, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !models.ValidLeadStatus(req.Status) {
		return nil, fmt.Errorf("%w: invalid lead status %q", ErrInvalidInput, req.Status)
	}

	agent, err := s.GetAgent(agentID)
	if err != nil {
		return nil, err
	}

	var lead models.PropertyLead
	if err := s.db.Where("id = ? AND agent_id = ?", req.LeadID, agentID).First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, req.LeadID)
		}
		return nil, fmt.Errorf("failed to fetch lead: %w", err)
	}

	converted := req.Status == models.LeadStatusConverted && lead.Status != models.LeadStatusConverted
	lead.Status = req.Status

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Save(&lead).Error; err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}
		if converted {
			agent.LeadsConverted++
			if err := tx.Save(agent).Error; err != nil {
				return fmt.Errorf("failed to update agent metrics: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &lead, nil
}
