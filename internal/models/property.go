// internal/models/property.go
package models

type Property struct {
	BaseModel
	Address           string  `json:"address" gorm:"size:255;not null"`
	NormalizedAddress string  `json:"normalized_address" gorm:"uniqueIndex;size:255;not null"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`

	// Physical attributes
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	SquareFeet   int     `json:"square_feet"`
	LotSize      float64 `json:"lot_size"`
	YearBuilt    int     `json:"year_built"`
	PropertyType string  `json:"property_type" gorm:"size:50"`

	// Valuation results
	EstimatedValue  int64   `json:"estimated_value"`
	ConfidenceScore float64 `json:"confidence_score"`
	EstimatedRent   int64   `json:"estimated_rent"`
	PricePerSqft    float64 `json:"price_per_sqft"`

	// Market context retained for display; raw feed payloads kept verbatim
	MarketTrends    JSONB `json:"market_trends" gorm:"type:jsonb"`
	ComparableSales JSONB `json:"comparable_sales" gorm:"type:jsonb"`
	ListingFeedData JSONB `json:"-" gorm:"type:jsonb"`
	RecordsFeedData JSONB `json:"-" gorm:"type:jsonb"`

	Leads []PropertyLead `json:"leads,omitempty" gorm:"foreignKey:PropertyID"`
}
