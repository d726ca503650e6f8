// internal/services/valuation_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/bluedwarf/platform/internal/config"
	"github.com/bluedwarf/platform/internal/models"
	"github.com/bluedwarf/platform/internal/providers"
)

// Freshness window for cached valuations. Repeat requests inside the window
// return the stored record verbatim; agents are looked up fresh every time.
const valuationCacheWindow = 24 * time.Hour

// Ensemble weights over the three source values.
const (
	weightListingValue    = 0.40
	weightRecordsMarket   = 0.35
	weightRecordsAssessed = 0.25
)

type ValuationService struct {
	db          *gorm.DB
	cfg         *config.Config
	geocoder    providers.Geocoder
	listingFeed providers.ListingFeed
	recordsFeed providers.RecordsFeed
}

type ValuationResult struct {
	Property *models.Property `json:"property"`
	Agents   []models.Agent   `json:"agents"`
	Cached   bool             `json:"cached"`
}

type MarketTrendsResult struct {
	CurrentValue       int64        `json:"current_value"`
	ConfidenceScore    float64      `json:"confidence_score"`
	PricePerSqft       float64      `json:"price_per_sqft"`
	EstimatedRent      int64        `json:"estimated_rent"`
	RentalYield        float64      `json:"rental_yield"`
	MarketTrends       models.JSONB `json:"market_trends"`
	ComparableSales    models.JSONB `json:"comparable_sales"`
	InvestmentAnalysis models.JSONB `json:"investment_analysis"`
}

func NewValuationService(db *gorm.DB, cfg *config.Config, geocoder providers.Geocoder, listingFeed providers.ListingFeed, recordsFeed providers.RecordsFeed) *ValuationService {
	return &ValuationService{
		db:          db,
		cfg:         cfg,
		geocoder:    geocoder,
		listingFeed: listingFeed,
		recordsFeed: recordsFeed,
	}
}

var addressTitleCaser = cases.Title(language.AmericanEnglish)

// NormalizeAddress collapses whitespace and title-cases the address. The
// result is the lookup key for cached valuations. Idempotent.
func NormalizeAddress(address string) string {
	collapsed := strings.Join(strings.Fields(address), " ")
	return addressTitleCaser.String(collapsed)
}

func (s *ValuationService) Valuate(ctx context.Context, address string) (*ValuationResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}

	normalized := NormalizeAddress(address)

	var existing models.Property
	err := s.db.Where("normalized_address = ?", normalized).First(&existing).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up property: %w", err)
	}

	if found && time.Since(existing.UpdatedAt) < valuationCacheWindow {
		agents, err := s.qualifiedAgents(5)
		if err != nil {
			return nil, err
		}
		return &ValuationResult{Property: &existing, Agents: agents, Cached: true}, nil
	}

	// External calls are bounded; a stuck feed surfaces as an error instead
	// of blocking the request.
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Providers.TimeoutSeconds)*time.Second)
	defer cancel()

	coords, err := s.geocoder.Geocode(callCtx, address)
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}

	listing, err := s.listingFeed.Lookup(callCtx, address)
	if err != nil {
		return nil, fmt.Errorf("listing feed lookup failed: %w", err)
	}

	records, err := s.recordsFeed.Lookup(callCtx, address)
	if err != nil {
		return nil, fmt.Errorf("records feed lookup failed: %w", err)
	}

	estimatedValue, confidence := CalculateValuation(listing, records, time.Now().Year())

	property := &existing
	if !found {
		property = &models.Property{
			Address:           address,
			NormalizedAddress: normalized,
		}
	}

	property.Latitude = coords.Latitude
	property.Longitude = coords.Longitude
	property.Bedrooms = listing.Bedrooms
	property.Bathrooms = listing.Bathrooms
	property.SquareFeet = listing.SquareFootage
	property.LotSize = listing.LotSize
	property.YearBuilt = listing.YearBuilt
	property.PropertyType = listing.PropertyType
	property.EstimatedValue = estimatedValue
	property.ConfidenceScore = confidence
	property.EstimatedRent = listing.RentEstimate
	property.PricePerSqft = PricePerSquareFoot(estimatedValue, listing.SquareFootage)
	property.MarketTrends = toJSONB(records.Neighborhood)
	property.ComparableSales = models.JSONB{"comparables": listing.Comparables}
	property.ListingFeedData = toJSONB(listing)
	property.RecordsFeedData = toJSONB(records)

	if err := s.db.Save(property).Error; err != nil {
		return nil, fmt.Errorf("failed to persist property: %w", err)
	}

	agents, err := s.qualifiedAgents(5)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"property_id":     property.ID,
		"estimated_value": estimatedValue,
		"confidence":      confidence,
	}).Info("Valuation computed")

	return &ValuationResult{Property: property, Agents: agents, Cached: false}, nil
}

// CalculateValuation combines the two feeds into a single estimate plus a
// confidence score.
func CalculateValuation(listing *providers.ListingData, records *providers.RecordsData, currentYear int) (int64, float64) {
	weighted := float64(listing.ValueEstimate)*weightListingValue +
		float64(records.MarketValue)*weightRecordsMarket +
		float64(records.AssessedValue)*weightRecordsAssessed

	multiplier := AgeMultiplier(currentYear - listing.YearBuilt)
	finalValue := int64(weighted * multiplier)

	confidence := ConfidenceScore([]int64{listing.ValueEstimate, records.MarketValue, records.AssessedValue})

	return finalValue, confidence
}

// AgeMultiplier adjusts the ensemble for property age. New construction
// carries a premium, older stock a discount.
func AgeMultiplier(age int) float64 {
	switch {
	case age < 5:
		return 1.05
	case age < 15:
		return 1.0
	case age < 30:
		return 0.95
	default:
		return 0.90
	}
}

// ConfidenceScore expresses estimator agreement. With at least two positive
// sources it is 1 - spread/mean clamped to [0.70, 0.98]; otherwise a flat
// 0.60.
func ConfidenceScore(sourceValues []int64) float64 {
	var positive []int64
	for _, v := range sourceValues {
		if v > 0 {
			positive = append(positive, v)
		}
	}

	if len(positive) < 2 {
		return 0.60
	}

	minVal, maxVal, sum := positive[0], positive[0], int64(0)
	for _, v := range positive {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		sum += v
	}

	mean := float64(sum) / float64(len(positive))
	confidence := 1.0 - float64(maxVal-minVal)/mean

	if confidence < 0.70 {
		confidence = 0.70
	}
	if confidence > 0.98 {
		confidence = 0.98
	}
	return confidence
}

// PricePerSquareFoot guards against divide-by-zero for records with no
// square footage.
func PricePerSquareFoot(value int64, squareFeet int) float64 {
	if squareFeet == 0 {
		return 0
	}
	return float64(value) / float64(squareFeet)
}

func (s *ValuationService) GetProperty(id uuid.UUID) (*ValuationResult, error) {
	var property models.Property
	if err := s.db.First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: property %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch property: %w", err)
	}

	agents, err := s.qualifiedAgents(5)
	if err != nil {
		return nil, err
	}

	return &ValuationResult{Property: &property, Agents: agents, Cached: false}, nil
}

// MarketTrends builds the analytics view from stored valuation data. All
// figures derive from persisted fields; nothing here calls a feed.
func (s *ValuationService) MarketTrends(id uuid.UUID) (*MarketTrendsResult, error) {
	var property models.Property
	if err := s.db.First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: property %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch property: %w", err)
	}

	var rentalYield float64
	if property.EstimatedValue > 0 {
		rentalYield = float64(property.EstimatedRent) * 12 / float64(property.EstimatedValue) * 100
	}

	var monthlyCost float64
	if property.EstimatedValue > 0 {
		monthlyCost = float64(property.EstimatedValue) * 0.005
	}

	appreciation, _ := property.MarketTrends["price_appreciation"].(float64)
	daysOnMarket := 0
	if d, ok := property.MarketTrends["days_on_market"].(float64); ok {
		daysOnMarket = int(d)
	}

	marketStrength := "Weak"
	switch {
	case daysOnMarket > 0 && daysOnMarket < 20:
		marketStrength = "Strong"
	case daysOnMarket > 0 && daysOnMarket < 35:
		marketStrength = "Moderate"
	}

	return &MarketTrendsResult{
		CurrentValue:    property.EstimatedValue,
		ConfidenceScore: property.ConfidenceScore,
		PricePerSqft:    property.PricePerSqft,
		EstimatedRent:   property.EstimatedRent,
		RentalYield:     rentalYield,
		MarketTrends:    property.MarketTrends,
		ComparableSales: property.ComparableSales,
		InvestmentAnalysis: models.JSONB{
			"cap_rate":              rentalYield,
			"cash_flow_potential":   float64(property.EstimatedRent) - monthlyCost,
			"appreciation_forecast": appreciation,
			"market_strength":       marketStrength,
		},
	}, nil
}

// qualifiedAgents returns active, fully verified agents ordered by rating.
// Shared by the valuation views and the lead flows.
func (s *ValuationService) qualifiedAgents(limit int) ([]models.Agent, error) {
	return qualifiedAgents(s.db, limit)
}

func qualifiedAgents(db *gorm.DB, limit int) ([]models.Agent, error) {
	var agents []models.Agent
	query := db.Where("subscription_active = ? AND license_verified = ? AND identity_verified = ?", true, true, true).
		Order("rating DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch qualified agents: %w", err)
	}
	return agents, nil
}

// toJSONB keeps raw feed payloads as opaque blobs for later display.
func toJSONB(v interface{}) models.JSONB {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out models.JSONB
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
