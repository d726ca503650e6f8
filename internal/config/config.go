// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	Server       ServerConfig
	Database     DatabaseConfig
	AWS          AWSConfig
	Payment      PaymentConfig
	Providers    ProviderConfig
	Distribution DistributionConfig
	Tiers        map[string]TierConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    int
	WriteTimeout   int
	IdleTimeout    int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
	LocalUploadDir  string
}

type PaymentConfig struct {
	StripeSecretKey      string
	StripePublishableKey string
	StripeWebhookSecret  string
}

// ProviderConfig bounds the synchronous calls to external collaborators
// (valuation feeds, geocoder, license board, identity check).
type ProviderConfig struct {
	TimeoutSeconds int
}

// DistributionConfig carries the service-area matching tokens. The token
// match is a stand-in for real geographic matching; the defaults mirror the
// launch market.
type DistributionConfig struct {
	RegionTokens     []string
	MaxAgentsPerLead int
}

// TierConfig is one row of the immutable subscription tier table.
// LeadLimit of -1 means unlimited.
type TierConfig struct {
	Name      string
	Price     int64
	LeadLimit int
	Features  []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "bluedwarf"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "bluedwarf-agent-documents"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
			LocalUploadDir:  getEnv("LOCAL_UPLOAD_DIR", "uploads/agents"),
		},
		Payment: PaymentConfig{
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			StripeWebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Providers: ProviderConfig{
			TimeoutSeconds: getEnvAsInt("PROVIDER_TIMEOUT", 10),
		},
		Distribution: DistributionConfig{
			RegionTokens:     getEnvAsSlice("DISTRIBUTION_REGION_TOKENS", []string{"TX", "Austin"}),
			MaxAgentsPerLead: getEnvAsInt("DISTRIBUTION_MAX_AGENTS", 3),
		},
		Tiers: DefaultTiers(),
	}

	return config, config.Validate()
}

// DefaultTiers returns the subscription tier table.
func DefaultTiers() map[string]TierConfig {
	return map[string]TierConfig{
		"basic": {
			Name:      "Basic",
			Price:     99,
			LeadLimit: 10,
			Features: []string{
				"Up to 10 leads per month",
				"Basic agent profile",
				"Email support",
				"Single service area",
			},
		},
		"premium": {
			Name:      "Premium",
			Price:     199,
			LeadLimit: 50,
			Features: []string{
				"Up to 50 leads per month",
				"Enhanced agent profile",
				"Priority support",
				"Up to 3 service areas",
				"Advanced analytics",
				"Featured listing placement",
			},
		},
		"enterprise": {
			Name:      "Enterprise",
			Price:     399,
			LeadLimit: -1,
			Features: []string{
				"Unlimited leads",
				"Premium agent profile",
				"24/7 phone support",
				"Unlimited service areas",
				"Advanced analytics & reporting",
				"Priority lead distribution",
				"Custom branding options",
				"API access",
			},
		},
	}
}

// Tier looks up a tier by key.
func (c *Config) Tier(key string) (TierConfig, bool) {
	tier, ok := c.Tiers[key]
	return tier, ok
}

func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database password is required in production")
		}
		if c.Payment.StripeSecretKey == "" {
			return fmt.Errorf("stripe secret key is required in production")
		}
		if c.Payment.StripeWebhookSecret == "" {
			return fmt.Errorf("stripe webhook secret is required in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
