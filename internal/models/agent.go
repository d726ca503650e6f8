// internal/models/agent.go
package models

import "time"

type Agent struct {
	BaseModel
	Name          string `json:"name" gorm:"size:100;not null"`
	Email         string `json:"email" gorm:"uniqueIndex;size:120;not null"`
	Phone         string `json:"phone" gorm:"size:20"`
	LicenseNumber string `json:"license_number" gorm:"size:50;not null"`
	LicenseState  string `json:"license_state" gorm:"size:2;not null"`

	// Verification state. Both flags are monotonic: once a track verifies it
	// is never unset by any flow.
	LicenseVerified     bool   `json:"license_verified" gorm:"default:false"`
	IdentityVerified    bool   `json:"identity_verified" gorm:"default:false"`
	LicenseDocumentPath string `json:"-" gorm:"size:255"`
	IDDocumentPath      string `json:"-" gorm:"size:255"`
	LivePhotoPath       string `json:"-" gorm:"size:255"`

	// Professional info
	Brokerage       string     `json:"brokerage" gorm:"size:100"`
	YearsExperience int        `json:"years_experience"`
	Specialties     StringList `json:"specialties" gorm:"type:jsonb"`
	ServiceAreas    StringList `json:"service_areas" gorm:"type:jsonb"`

	// Subscription state
	SubscriptionTier   SubscriptionTier `json:"subscription_tier" gorm:"type:varchar(20);default:'basic'"`
	MonthlyFee         float64          `json:"monthly_fee"`
	SubscriptionActive bool             `json:"subscription_active" gorm:"default:false"`
	SubscriptionStart  *time.Time       `json:"subscription_start"`
	SubscriptionEnd    *time.Time       `json:"subscription_end"`
	StripeCustomerID   string           `json:"-" gorm:"size:100"`
	CancelAtPeriodEnd  bool             `json:"cancel_at_period_end" gorm:"default:false"`

	// Performance counters
	LeadsReceived  int     `json:"leads_received" gorm:"default:0"`
	LeadsConverted int     `json:"leads_converted" gorm:"default:0"`
	Rating         float64 `json:"rating" gorm:"default:5.0"`
	ReviewsCount   int     `json:"reviews_count" gorm:"default:0"`

	Leads []PropertyLead `json:"leads,omitempty" gorm:"foreignKey:AgentID"`
}

// FullyVerified reports whether both verification tracks have completed.
// Subscription activation is gated on this.
func (a *Agent) FullyVerified() bool {
	return a.LicenseVerified && a.IdentityVerified
}
