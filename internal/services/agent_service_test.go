// internal/services/agent_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/bluedwarf/platform/internal/models"
	"github.com/bluedwarf/platform/internal/utils"
)

type AgentServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AgentService
}

func (suite *AgentServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.service = NewAgentService(suite.db, testConfig())
}

func defaultPagination() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "rating", Order: "desc"}
}

func (suite *AgentServiceTestSuite) registerRequest() *RegisterAgentRequest {
	return &RegisterAgentRequest{
		Name:          "Jordan Miles",
		Email:         "jordan@example.com",
		LicenseNumber: "1234567",
		LicenseState:  "TX",
		ServiceAreas:  []string{"Austin, TX"},
	}
}

func (suite *AgentServiceTestSuite) TestRegisterCreatesAgent() {
	result, err := suite.service.Register(suite.registerRequest())
	require.NoError(suite.T(), err)

	assert.NotZero(suite.T(), result.Agent.ID)
	assert.Equal(suite.T(), models.TierBasic, result.Agent.SubscriptionTier)
	assert.Equal(suite.T(), 99.0, result.Agent.MonthlyFee)
	assert.False(suite.T(), result.Agent.SubscriptionActive)
	assert.False(suite.T(), result.Agent.LicenseVerified)
	assert.Len(suite.T(), result.NextSteps, 4)
}

func (suite *AgentServiceTestSuite) TestRegisterRejectsDuplicateEmail() {
	_, err := suite.service.Register(suite.registerRequest())
	require.NoError(suite.T(), err)

	_, err = suite.service.Register(suite.registerRequest())
	assert.True(suite.T(), errors.Is(err, ErrInvalidInput))
}

func (suite *AgentServiceTestSuite) TestRegisterRejectsInvalidState() {
	req := suite.registerRequest()
	req.LicenseState = "Texas"

	_, err := suite.service.Register(req)
	assert.True(suite.T(), errors.Is(err, ErrInvalidInput))
}

func (suite *AgentServiceTestSuite) TestRegisterRejectsUnknownTier() {
	req := suite.registerRequest()
	req.SubscriptionTier = "platinum"

	_, err := suite.service.Register(req)
	assert.True(suite.T(), errors.Is(err, ErrInvalidInput))
}

func (suite *AgentServiceTestSuite) TestRegisterAppliesServiceAreaSurcharge() {
	req := suite.registerRequest()
	req.SubscriptionTier = "premium"
	req.ServiceAreas = []string{"Austin, TX", "Round Rock, TX", "Cedar Park, TX", "Pflugerville, TX"}

	result, err := suite.service.Register(req)
	require.NoError(suite.T(), err)

	// 199 base plus 25 for the fourth area
	assert.Equal(suite.T(), 224.0, result.Agent.MonthlyFee)
}

func (suite *AgentServiceTestSuite) TestSearchFiltersUnverifiedAgents() {
	newQualifiedAgent(suite.T(), suite.db, "good@example.com", models.TierBasic, 4.9)

	pending := &models.Agent{
		Name:          "Pending",
		Email:         "pending@example.com",
		LicenseNumber: "9999999",
		LicenseState:  "TX",
	}
	require.NoError(suite.T(), suite.db.Create(pending).Error)

	agents, total, err := suite.service.Search(AgentSearchParams{State: "TX"}, defaultPagination())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), total)
	require.Len(suite.T(), agents, 1)
	assert.Equal(suite.T(), "good@example.com", agents[0].Email)
}

func (suite *AgentServiceTestSuite) TestSearchByCityAndRating() {
	newQualifiedAgent(suite.T(), suite.db, "austin@example.com", models.TierBasic, 4.9)
	low := newQualifiedAgent(suite.T(), suite.db, "low@example.com", models.TierBasic, 3.0)
	low.ServiceAreas = models.StringList{"Dallas, TX"}
	require.NoError(suite.T(), suite.db.Save(low).Error)

	agents, _, err := suite.service.Search(AgentSearchParams{City: "Austin", MinRating: 4.0}, defaultPagination())
	require.NoError(suite.T(), err)
	require.Len(suite.T(), agents, 1)
	assert.Equal(suite.T(), "austin@example.com", agents[0].Email)
}

func (suite *AgentServiceTestSuite) TestLeadsStatusFilter() {
	agent := newQualifiedAgent(suite.T(), suite.db, "agent@example.com", models.TierBasic, 4.9)
	property := newTestProperty(suite.T(), suite.db, "42 Pine Rd")

	for _, status := range []models.LeadStatus{models.LeadStatusAssigned, models.LeadStatusContacted} {
		lead := &models.PropertyLead{
			PropertyID: property.ID,
			AgentID:    &agent.ID,
			LeadType:   models.LeadTypeValuation,
			Status:     status,
			Priority:   models.LeadPriorityMedium,
		}
		require.NoError(suite.T(), suite.db.Create(lead).Error)
	}

	leads, err := suite.service.Leads(agent.ID, models.LeadStatusContacted, 0)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), leads, 1)
	assert.Equal(suite.T(), models.LeadStatusContacted, leads[0].Status)

	_, err = suite.service.Leads(agent.ID, "bogus", 0)
	assert.True(suite.T(), errors.Is(err, ErrInvalidInput))
}

func (suite *AgentServiceTestSuite) TestUpdateLeadStatusConversionIsIdempotent() {
	agent := newQualifiedAgent(suite.T(), suite.db, "agent@example.com", models.TierBasic, 4.9)
	property := newTestProperty(suite.T(), suite.db, "42 Pine Rd")

	lead := &models.PropertyLead{
		PropertyID: property.ID,
		AgentID:    &agent.ID,
		LeadType:   models.LeadTypeValuation,
		Status:     models.LeadStatusAssigned,
		Priority:   models.LeadPriorityMedium,
	}
	require.NoError(suite.T(), suite.db.Create(lead).Error)

	req := &UpdateLeadStatusRequest{LeadID: lead.ID, Status: models.LeadStatusConverted}

	updated, err := suite.service.UpdateLeadStatus(agent.ID, req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.LeadStatusConverted, updated.Status)

	// Replaying the same transition must not double-count
	_, err = suite.service.UpdateLeadStatus(agent.ID, req)
	require.NoError(suite.T(), err)

	var fresh models.Agent
	require.NoError(suite.T(), suite.db.First(&fresh, "id = ?", agent.ID).Error)
	assert.Equal(suite.T(), 1, fresh.LeadsConverted)
}

func (suite *AgentServiceTestSuite) TestUpdateLeadStatusChecksOwnership() {
	agent := newQualifiedAgent(suite.T(), suite.db, "agent@example.com", models.TierBasic, 4.9)
	other := newQualifiedAgent(suite.T(), suite.db, "other@example.com", models.TierBasic, 4.5)
	property := newTestProperty(suite.T(), suite.db, "42 Pine Rd")

	lead := &models.PropertyLead{
		PropertyID: property.ID,
		AgentID:    &other.ID,
		LeadType:   models.LeadTypeValuation,
		Status:     models.LeadStatusAssigned,
		Priority:   models.LeadPriorityMedium,
	}
	require.NoError(suite.T(), suite.db.Create(lead).Error)

	_, err := suite.service.UpdateLeadStatus(agent.ID, &UpdateLeadStatusRequest{
		LeadID: lead.ID,
		Status: models.LeadStatusContacted,
	})
	assert.True(suite.T(), errors.Is(err, ErrNotFound))
}

func (suite *AgentServiceTestSuite) TestProfileComputesConversionRate() {
	agent := newQualifiedAgent(suite.T(), suite.db, "agent@example.com", models.TierBasic, 4.9)
	property := newTestProperty(suite.T(), suite.db, "42 Pine Rd")

	statuses := []models.LeadStatus{
		models.LeadStatusConverted,
		models.LeadStatusAssigned,
		models.LeadStatusAssigned,
		models.LeadStatusClosed,
	}
	for _, status := range statuses {
		lead := &models.PropertyLead{
			PropertyID: property.ID,
			AgentID:    &agent.ID,
			LeadType:   models.LeadTypeValuation,
			Status:     status,
			Priority:   models.LeadPriorityMedium,
		}
		require.NoError(suite.T(), suite.db.Create(lead).Error)
	}

	profile, err := suite.service.Profile(agent.ID)
	require.NoError(suite.T(), err)
	assert.InDelta(suite.T(), 25.0, profile.PerformanceMetrics["conversion_rate"].(float64), 0.001)
	assert.Len(suite.T(), profile.RecentLeads, 4)
}

func TestAgentServiceSuite(t *testing.T) {
	suite.Run(t, new(AgentServiceTestSuite))
}

func TestSubscriptionFee(t *testing.T) {
	assert.Equal(t, 99.0, SubscriptionFee(99, 0))
	assert.Equal(t, 99.0, SubscriptionFee(99, 3))
	assert.Equal(t, 124.0, SubscriptionFee(99, 4))
	assert.Equal(t, 249.0, SubscriptionFee(199, 5))
}
