// internal/services/valuation_service_test.go
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/bluedwarf/platform/internal/models"
	"github.com/bluedwarf/platform/internal/providers"
)

type ValuationServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ValuationService
}

func (suite *ValuationServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.service = NewValuationService(
		suite.db,
		testConfig(),
		providers.NewMockGeocoder(42),
		providers.NewMockListingFeed(42),
		providers.NewMockRecordsFeed(42),
	)
}

func (suite *ValuationServiceTestSuite) TestValuateRequiresAddress() {
	_, err := suite.service.Valuate(context.Background(), "   ")
	assert.True(suite.T(), errors.Is(err, ErrInvalidInput))
}

func (suite *ValuationServiceTestSuite) TestValuatePersistsProperty() {
	result, err := suite.service.Valuate(context.Background(), "123 Main St, Austin, TX")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), result.Cached)
	assert.NotZero(suite.T(), result.Property.ID)
	assert.Greater(suite.T(), result.Property.EstimatedValue, int64(0))
	assert.GreaterOrEqual(suite.T(), result.Property.ConfidenceScore, 0.60)

	var count int64
	suite.db.Model(&models.Property{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *ValuationServiceTestSuite) TestValuateServesCachedResult() {
	first, err := suite.service.Valuate(context.Background(), "123 Main St, Austin, TX")
	require.NoError(suite.T(), err)

	// Same address with different spacing and casing hits the cache
	second, err := suite.service.Valuate(context.Background(), "  123  main st,  austin, tx ")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), second.Cached)
	assert.Equal(suite.T(), first.Property.ID, second.Property.ID)
	assert.Equal(suite.T(), first.Property.EstimatedValue, second.Property.EstimatedValue)
}

func (suite *ValuationServiceTestSuite) TestValuateRefreshesStaleProperty() {
	first, err := suite.service.Valuate(context.Background(), "123 Main St, Austin, TX")
	require.NoError(suite.T(), err)

	stale := time.Now().Add(-25 * time.Hour)
	err = suite.db.Model(&models.Property{}).
		Where("id = ?", first.Property.ID).
		UpdateColumn("updated_at", stale).Error
	require.NoError(suite.T(), err)

	second, err := suite.service.Valuate(context.Background(), "123 Main St, Austin, TX")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), second.Cached)
	assert.Equal(suite.T(), first.Property.ID, second.Property.ID)

	var count int64
	suite.db.Model(&models.Property{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *ValuationServiceTestSuite) TestValuateReturnsQualifiedAgentsOnly() {
	newQualifiedAgent(suite.T(), suite.db, "verified@example.com", models.TierBasic, 4.8)

	unverified := &models.Agent{
		Name:               "Unverified",
		Email:              "unverified@example.com",
		LicenseNumber:      "7654321",
		LicenseState:       "TX",
		SubscriptionActive: true,
	}
	require.NoError(suite.T(), suite.db.Create(unverified).Error)

	result, err := suite.service.Valuate(context.Background(), "123 Main St, Austin, TX")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), result.Agents, 1)
	assert.Equal(suite.T(), "verified@example.com", result.Agents[0].Email)
}

func (suite *ValuationServiceTestSuite) TestGetPropertyNotFound() {
	_, err := suite.service.GetProperty(newTestProperty(suite.T(), suite.db, "1 Elm St").ID)
	require.NoError(suite.T(), err)

	_, err = suite.service.GetProperty(uuid.New())
	assert.True(suite.T(), errors.Is(err, ErrNotFound))
}

func (suite *ValuationServiceTestSuite) TestMarketTrendsDerivesFromStoredData() {
	property := &models.Property{
		Address:           "9 Oak Ln",
		NormalizedAddress: NormalizeAddress("9 Oak Ln"),
		EstimatedValue:    400000,
		EstimatedRent:     2000,
		ConfidenceScore:   0.9,
		MarketTrends: models.JSONB{
			"price_appreciation": 5.2,
			"days_on_market":     float64(15),
		},
	}
	require.NoError(suite.T(), suite.db.Create(property).Error)

	trends, err := suite.service.MarketTrends(property.ID)
	require.NoError(suite.T(), err)

	// 2000 * 12 / 400000 * 100 = 6%
	assert.InDelta(suite.T(), 6.0, trends.RentalYield, 0.001)
	assert.Equal(suite.T(), "Strong", trends.InvestmentAnalysis["market_strength"])

	// 2000 - 400000*0.005 = 0 monthly cash flow
	assert.InDelta(suite.T(), 0.0, trends.InvestmentAnalysis["cash_flow_potential"].(float64), 0.001)
}

func TestValuationServiceSuite(t *testing.T) {
	suite.Run(t, new(ValuationServiceTestSuite))
}

func TestNormalizeAddress(t *testing.T) {
	normalized := NormalizeAddress("  123  main   st,  austin, tx ")
	assert.Equal(t, "123 Main St, Austin, Tx", normalized)

	// Idempotent
	assert.Equal(t, normalized, NormalizeAddress(normalized))
}

func TestAgeMultiplier(t *testing.T) {
	tests := []struct {
		age  int
		want float64
	}{
		{0, 1.05},
		{4, 1.05},
		{5, 1.0},
		{14, 1.0},
		{15, 0.95},
		{29, 0.95},
		{30, 0.90},
		{80, 0.90},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeMultiplier(tt.age), "age %d", tt.age)
	}
}

func TestConfidenceScore(t *testing.T) {
	// Perfect agreement clamps at the ceiling
	assert.Equal(t, 0.98, ConfidenceScore([]int64{400000, 400000, 400000}))

	// Wild disagreement clamps at the floor
	assert.Equal(t, 0.70, ConfidenceScore([]int64{100000, 900000, 500000}))

	// Fewer than two positive sources is a flat 0.60
	assert.Equal(t, 0.60, ConfidenceScore([]int64{400000, 0, 0}))
	assert.Equal(t, 0.60, ConfidenceScore(nil))

	// Mid-range spread lands between the clamps
	score := ConfidenceScore([]int64{400000, 440000, 420000})
	assert.Greater(t, score, 0.70)
	assert.Less(t, score, 0.98)
}

func TestCalculateValuation(t *testing.T) {
	listing := &providers.ListingData{
		ValueEstimate: 500000,
		YearBuilt:     2023,
	}
	records := &providers.RecordsData{
		MarketValue:   480000,
		AssessedValue: 450000,
	}

	// 500000*0.40 + 480000*0.35 + 450000*0.25 = 480500, then the new
	// construction premium
	value, confidence := CalculateValuation(listing, records, 2025)
	assert.Equal(t, int64(float64(480500)*1.05), value)
	assert.Greater(t, confidence, 0.70)
}

func TestPricePerSquareFoot(t *testing.T) {
	assert.Equal(t, 250.0, PricePerSquareFoot(500000, 2000))
	assert.Equal(t, 0.0, PricePerSquareFoot(500000, 0))
}
