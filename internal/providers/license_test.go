// internal/providers/license_test.go
package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidLicenseFormat(t *testing.T) {
	tests := []struct {
		license string
		state   string
		want    bool
	}{
		{"123456", "TX", true},
		{"12345678", "TX", true},
		{"12345", "TX", false},
		{"123456789", "TX", false},
		{"AB123456", "TX", false},

		{"12345678", "CA", true},
		{"1234567", "CA", false},

		{"SL1234567", "FL", true},
		{"S1234567", "FL", false},
		{"SL123456", "FL", false},

		{"1234567", "NY", true},
		{"12345678", "NY", true},
		{"123456", "NY", false},

		// Unlisted states use the generic pattern
		{"ABC123", "WA", true},
		{"A1B2C3D4E5", "WA", true},
		{"AB12", "WA", false},
		{"abc123", "WA", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidLicenseFormat(tt.license, tt.state),
			"license %q state %s", tt.license, tt.state)
	}
}

func TestMockLicenseBoard(t *testing.T) {
	board := NewMockLicenseBoard()

	result, err := board.VerifyLicense(context.Background(), "1234567", "TX", "Jordan Miles")
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "Active", result.Status)

	result, err = board.VerifyLicense(context.Background(), "bad", "TX", "Jordan Miles")
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "Invalid", result.Status)
}

func TestMockIdentityVerifierThreshold(t *testing.T) {
	verifier := NewMockIdentityVerifier()

	result, err := verifier.Compare(context.Background(), "ids/doc.png", "live-photos/selfie.jpg")
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, 0.95, result.ConfidenceScore)

	verifier.Confidence = IdentityMatchThreshold
	result, err = verifier.Compare(context.Background(), "ids/doc.png", "live-photos/selfie.jpg")
	require.NoError(t, err)
	assert.False(t, result.Verified)
}

func TestMockIdentityVerifierRequiresBothDocuments(t *testing.T) {
	verifier := NewMockIdentityVerifier()

	result, err := verifier.Compare(context.Background(), "", "live-photos/selfie.jpg")
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.NotEmpty(t, result.Error)
}

func TestMockFeedsAreSeedable(t *testing.T) {
	a, err := NewMockListingFeed(7).Lookup(context.Background(), "123 Main St")
	require.NoError(t, err)
	b, err := NewMockListingFeed(7).Lookup(context.Background(), "123 Main St")
	require.NoError(t, err)

	assert.Equal(t, a.ValueEstimate, b.ValueEstimate)
	assert.Equal(t, a.YearBuilt, b.YearBuilt)
}

func TestMockProvidersHonorContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockGeocoder(1).Geocode(ctx, "123 Main St")
	assert.Error(t, err)

	_, err = NewMockRecordsFeed(1).Lookup(ctx, "123 Main St")
	assert.Error(t, err)
}
