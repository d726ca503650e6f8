// internal/providers/providers.go
package providers

import "context"

// External collaborators are modeled as injected capabilities so core logic
// never depends on a concrete vendor. Mock implementations live in this
// package; real adapters would wrap the vendors' HTTP APIs.

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

// ListingFeed is valuation data feed A: listing-style attributes, a rent
// estimate, a value estimate, and comparable sales.
type ListingFeed interface {
	Lookup(ctx context.Context, address string) (*ListingData, error)
}

// RecordsFeed is valuation data feed B: public-records figures (assessed and
// market value, taxes, last sale) plus neighborhood statistics.
type RecordsFeed interface {
	Lookup(ctx context.Context, address string) (*RecordsData, error)
}

// LicenseBoard checks a license against the issuing state's licensing board.
type LicenseBoard interface {
	VerifyLicense(ctx context.Context, licenseNumber, state, agentName string) (*LicenseResult, error)
}

// IdentityVerifier compares an ID document against a live photo and returns
// a match confidence.
type IdentityVerifier interface {
	Compare(ctx context.Context, idDocumentPath, livePhotoPath string) (*IdentityResult, error)
}

type ComparableSale struct {
	Address       string `json:"address"`
	SalePrice     int64  `json:"sale_price"`
	SaleDate      string `json:"sale_date"`
	SquareFootage int    `json:"square_footage"`
}

type ListingData struct {
	Bedrooms      int              `json:"bedrooms"`
	Bathrooms     float64          `json:"bathrooms"`
	SquareFootage int              `json:"square_footage"`
	LotSize       float64          `json:"lot_size"`
	YearBuilt     int              `json:"year_built"`
	PropertyType  string           `json:"property_type"`
	RentEstimate  int64            `json:"rent_estimate"`
	ValueEstimate int64            `json:"value_estimate"`
	Comparables   []ComparableSale `json:"comparables"`
}

type NeighborhoodStats struct {
	MedianHomeValue   int64   `json:"median_home_value"`
	PriceAppreciation float64 `json:"price_appreciation"`
	DaysOnMarket      int     `json:"days_on_market"`
}

type RecordsData struct {
	AssessedValue int64             `json:"assessed_value"`
	MarketValue   int64             `json:"market_value"`
	TaxAmount     int64             `json:"tax_amount"`
	LastSalePrice int64             `json:"last_sale_price"`
	LastSaleDate  string            `json:"last_sale_date"`
	Neighborhood  NeighborhoodStats `json:"neighborhood"`
}

type LicenseResult struct {
	Verified            bool   `json:"verified"`
	Status              string `json:"status"`
	LicenseType         string `json:"license_type,omitempty"`
	ExpirationDate      string `json:"expiration_date,omitempty"`
	DisciplinaryActions string `json:"disciplinary_actions,omitempty"`
	Error               string `json:"error,omitempty"`
}

type IdentityResult struct {
	Verified        bool                   `json:"verified"`
	ConfidenceScore float64                `json:"confidence_score"`
	MatchDetails    map[string]interface{} `json:"match_details,omitempty"`
	Error           string                 `json:"error,omitempty"`
}
