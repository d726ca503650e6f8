// internal/services/services_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bluedwarf/platform/internal/config"
	"github.com/bluedwarf/platform/internal/models"
)

// setupTestDB opens a throwaway in-memory database. Each caller gets its
// own named database so suites cannot see each other's rows.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Property{}, &models.Agent{}, &models.PropertyLead{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Providers: config.ProviderConfig{
			TimeoutSeconds: 5,
		},
		Distribution: config.DistributionConfig{
			RegionTokens:     []string{"TX", "Austin"},
			MaxAgentsPerLead: 3,
		},
		Tiers: config.DefaultTiers(),
	}
}

// newQualifiedAgent inserts an active, fully verified agent ready to
// receive leads.
func newQualifiedAgent(t *testing.T, db *gorm.DB, email string, tier models.SubscriptionTier, rating float64) *models.Agent {
	t.Helper()

	agent := &models.Agent{
		Name:               "Agent " + email,
		Email:              email,
		LicenseNumber:      "1234567",
		LicenseState:       "TX",
		LicenseVerified:    true,
		IdentityVerified:   true,
		ServiceAreas:       models.StringList{"Austin, TX"},
		SubscriptionTier:   tier,
		SubscriptionActive: true,
		Rating:             rating,
	}
	if err := db.Create(agent).Error; err != nil {
		t.Fatalf("failed to create test agent: %v", err)
	}
	return agent
}

func newTestProperty(t *testing.T, db *gorm.DB, address string) *models.Property {
	t.Helper()

	property := &models.Property{
		Address:           address,
		NormalizedAddress: NormalizeAddress(address),
		EstimatedValue:    450000,
		ConfidenceScore:   0.9,
		EstimatedRent:     2500,
	}
	if err := db.Create(property).Error; err != nil {
		t.Fatalf("failed to create test property: %v", err)
	}
	return property
}
