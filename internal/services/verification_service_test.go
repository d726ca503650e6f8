// internal/services/verification_service_test.go
package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/bluedwarf/platform/internal/config"
	"github.com/bluedwarf/platform/internal/models"
	"github.com/bluedwarf/platform/internal/providers"
)

type VerificationServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	cfg      *config.Config
	verifier *providers.MockIdentityVerifier
	service  *VerificationService
}

func (suite *VerificationServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.cfg = testConfig()
	suite.cfg.AWS.LocalUploadDir = suite.T().TempDir()

	storage, err := NewStorageService(suite.cfg)
	require.NoError(suite.T(), err)

	suite.verifier = providers.NewMockIdentityVerifier()
	suite.service = NewVerificationService(
		suite.db, suite.cfg, storage,
		providers.NewMockLicenseBoard(), suite.verifier,
	)
}

func (suite *VerificationServiceTestSuite) newAgent(licenseNumber, state string) *models.Agent {
	agent := &models.Agent{
		Name:          "Jordan Miles",
		Email:         "jordan@example.com",
		LicenseNumber: licenseNumber,
		LicenseState:  state,
	}
	require.NoError(suite.T(), suite.db.Create(agent).Error)
	return agent
}

func uploadFixture(t *testing.T, filename string) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("document", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake document bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, header, err := req.FormFile("document")
	require.NoError(t, err)
	return file, header
}

func (suite *VerificationServiceTestSuite) TestLicenseUploadVerifiesValidLicense() {
	agent := suite.newAgent("1234567", "TX")
	file, header := uploadFixture(suite.T(), "license.pdf")
	defer file.Close()

	result, err := suite.service.UploadLicenseDocument(context.Background(), agent.ID, file, header)
	require.NoError(suite.T(), err)

	assert.True(suite.T(), result.VerificationResult.Verified)
	assert.Equal(suite.T(), "Active", result.VerificationResult.Status)
	assert.True(suite.T(), result.Agent.LicenseVerified)
	assert.NotEmpty(suite.T(), result.Agent.LicenseDocumentPath)
}

func (suite *VerificationServiceTestSuite) TestLicenseUploadRejectsBadFormat() {
	agent := suite.newAgent("12", "TX")
	file, header := uploadFixture(suite.T(), "license.pdf")
	defer file.Close()

	result, err := suite.service.UploadLicenseDocument(context.Background(), agent.ID, file, header)
	require.NoError(suite.T(), err)

	assert.False(suite.T(), result.VerificationResult.Verified)
	assert.False(suite.T(), result.Agent.LicenseVerified)
	// Document is kept for manual review even when the check fails
	assert.NotEmpty(suite.T(), result.Agent.LicenseDocumentPath)
}

func (suite *VerificationServiceTestSuite) TestLicenseUploadRejectsDisallowedFileType() {
	agent := suite.newAgent("1234567", "TX")
	file, header := uploadFixture(suite.T(), "license.exe")
	defer file.Close()

	_, err := suite.service.UploadLicenseDocument(context.Background(), agent.ID, file, header)
	assert.ErrorIs(suite.T(), err, ErrInvalidInput)
}

func (suite *VerificationServiceTestSuite) TestLivePhotoBeforeIDDocumentDefersComparison() {
	agent := suite.newAgent("1234567", "TX")
	file, header := uploadFixture(suite.T(), "selfie.jpg")
	defer file.Close()

	result, err := suite.service.UploadLivePhoto(context.Background(), agent.ID, file, header)
	require.NoError(suite.T(), err)

	assert.Nil(suite.T(), result.VerificationResult)
	assert.False(suite.T(), result.Agent.IdentityVerified)
}

func (suite *VerificationServiceTestSuite) TestIdentityVerifiesWhenBothDocumentsPresent() {
	agent := suite.newAgent("1234567", "TX")

	idFile, idHeader := uploadFixture(suite.T(), "passport.png")
	defer idFile.Close()
	_, err := suite.service.UploadIDDocument(context.Background(), agent.ID, idFile, idHeader)
	require.NoError(suite.T(), err)

	photoFile, photoHeader := uploadFixture(suite.T(), "selfie.jpg")
	defer photoFile.Close()
	result, err := suite.service.UploadLivePhoto(context.Background(), agent.ID, photoFile, photoHeader)
	require.NoError(suite.T(), err)

	require.NotNil(suite.T(), result.VerificationResult)
	assert.True(suite.T(), result.VerificationResult.Verified)
	assert.True(suite.T(), result.Agent.IdentityVerified)
}

func (suite *VerificationServiceTestSuite) TestIdentityBelowThresholdStaysUnverified() {
	suite.verifier.Confidence = 0.80

	agent := suite.newAgent("1234567", "TX")

	idFile, idHeader := uploadFixture(suite.T(), "passport.png")
	defer idFile.Close()
	_, err := suite.service.UploadIDDocument(context.Background(), agent.ID, idFile, idHeader)
	require.NoError(suite.T(), err)

	photoFile, photoHeader := uploadFixture(suite.T(), "selfie.jpg")
	defer photoFile.Close()
	result, err := suite.service.UploadLivePhoto(context.Background(), agent.ID, photoFile, photoHeader)
	require.NoError(suite.T(), err)

	require.NotNil(suite.T(), result.VerificationResult)
	assert.False(suite.T(), result.VerificationResult.Verified)
	assert.False(suite.T(), result.Agent.IdentityVerified)
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceTestSuite))
}
