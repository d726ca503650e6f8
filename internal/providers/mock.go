// internal/providers/mock.go
package providers

import (
	"context"
	"math/rand"
	"sync"
)

// Mock providers stand in for the real vendor integrations. They generate
// plausible figures from a seedable source so tests can pin outcomes.

type MockGeocoder struct {
	mtx sync.Mutex
	rng *rand.Rand
}

func NewMockGeocoder(seed int64) *MockGeocoder {
	return &MockGeocoder{rng: rand.New(rand.NewSource(seed))}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}

	g.mtx.Lock()
	defer g.mtx.Unlock()

	// Jitter around the launch market's center
	return Coordinates{
		Latitude:  30.2672 + (g.rng.Float64()-0.5)*0.2,
		Longitude: -97.7431 + (g.rng.Float64()-0.5)*0.2,
	}, nil
}

type MockListingFeed struct {
	mtx sync.Mutex
	rng *rand.Rand
}

func NewMockListingFeed(seed int64) *MockListingFeed {
	return &MockListingFeed{rng: rand.New(rand.NewSource(seed))}
}

func (f *MockListingFeed) Lookup(ctx context.Context, address string) (*ListingData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	halfBath := float64(0)
	if f.rng.Intn(2) == 1 {
		halfBath = 0.5
	}

	propertyTypes := []string{"Single Family", "Townhouse", "Condo"}

	return &ListingData{
		Bedrooms:      2 + f.rng.Intn(4),
		Bathrooms:     float64(1+f.rng.Intn(4)) + halfBath,
		SquareFootage: 1200 + f.rng.Intn(2301),
		LotSize:       float64(5000 + f.rng.Intn(10001)),
		YearBuilt:     1980 + f.rng.Intn(41),
		PropertyType:  propertyTypes[f.rng.Intn(len(propertyTypes))],
		RentEstimate:  int64(2000 + f.rng.Intn(3001)),
		ValueEstimate: int64(300000 + f.rng.Intn(500001)),
		Comparables: []ComparableSale{
			{
				Address:       "Similar Property 1",
				SalePrice:     int64(280000 + f.rng.Intn(470001)),
				SaleDate:      "2024-06-15",
				SquareFootage: 1100 + f.rng.Intn(2101),
			},
			{
				Address:       "Similar Property 2",
				SalePrice:     int64(290000 + f.rng.Intn(470001)),
				SaleDate:      "2024-07-20",
				SquareFootage: 1150 + f.rng.Intn(2151),
			},
		},
	}, nil
}

type MockRecordsFeed struct {
	mtx sync.Mutex
	rng *rand.Rand
}

func NewMockRecordsFeed(seed int64) *MockRecordsFeed {
	return &MockRecordsFeed{rng: rand.New(rand.NewSource(seed))}
}

func (f *MockRecordsFeed) Lookup(ctx context.Context, address string) (*RecordsData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	return &RecordsData{
		AssessedValue: int64(250000 + f.rng.Intn(450001)),
		MarketValue:   int64(300000 + f.rng.Intn(500001)),
		TaxAmount:     int64(3000 + f.rng.Intn(9001)),
		LastSalePrice: int64(280000 + f.rng.Intn(470001)),
		LastSaleDate:  "2023-08-15",
		Neighborhood: NeighborhoodStats{
			MedianHomeValue:   int64(350000 + f.rng.Intn(300001)),
			PriceAppreciation: 3.5 + f.rng.Float64()*4.7,
			DaysOnMarket:      15 + f.rng.Intn(31),
		},
	}, nil
}

type MockLicenseBoard struct{}

func NewMockLicenseBoard() *MockLicenseBoard {
	return &MockLicenseBoard{}
}

func (b *MockLicenseBoard) VerifyLicense(ctx context.Context, licenseNumber, state, agentName string) (*LicenseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !ValidLicenseFormat(licenseNumber, state) {
		return &LicenseResult{
			Verified: false,
			Status:   "Invalid",
			Error:    "License number format invalid",
		}, nil
	}

	return &LicenseResult{
		Verified:       true,
		Status:         "Active",
		LicenseType:    "Real Estate Salesperson",
		ExpirationDate: "2025-12-31",
	}, nil
}

// IdentityMatchThreshold is the minimum comparison confidence for the
// identity track to verify.
const IdentityMatchThreshold = 0.85

type MockIdentityVerifier struct {
	// Confidence returned for any complete document pair.
	Confidence float64
}

func NewMockIdentityVerifier() *MockIdentityVerifier {
	return &MockIdentityVerifier{Confidence: 0.95}
}

func (v *MockIdentityVerifier) Compare(ctx context.Context, idDocumentPath, livePhotoPath string) (*IdentityResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if idDocumentPath == "" || livePhotoPath == "" {
		return &IdentityResult{
			Verified: false,
			Error:    "Missing documents",
		}, nil
	}

	return &IdentityResult{
		Verified:        v.Confidence > IdentityMatchThreshold,
		ConfidenceScore: v.Confidence,
		MatchDetails: map[string]interface{}{
			"facial_match":     v.Confidence > IdentityMatchThreshold,
			"document_quality": "High",
			"photo_quality":    "High",
		},
	}, nil
}
