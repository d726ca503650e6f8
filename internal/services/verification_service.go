// internal/services/verification_service.go
package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bluedwarf/platform/internal/config"
	"github.com/bluedwarf/platform/internal/models"
	"github.com/bluedwarf/platform/internal/providers"
)

// VerificationService runs the two independent verification tracks. The
// license track needs one document plus a board check; the identity track
// needs an ID document and a live photo before the comparison runs. Both
// flags are monotonic.
type VerificationService struct {
	db               *gorm.DB
	cfg              *config.Config
	storage          *StorageService
	licenseBoard     providers.LicenseBoard
	identityVerifier providers.IdentityVerifier
}

type LicenseUploadResult struct {
	Message            string                   `json:"message"`
	VerificationResult *providers.LicenseResult `json:"verification_result"`
	Agent              *models.Agent            `json:"agent"`
}

type IdentityUploadResult struct {
	Message            string                    `json:"message"`
	VerificationResult *providers.IdentityResult `json:"verification_result,omitempty"`
	Agent              *models.Agent             `json:"agent"`
}

func NewVerificationService(db *gorm.DB, cfg *config.Config, storage *StorageService, licenseBoard providers.LicenseBoard, identityVerifier providers.IdentityVerifier) *VerificationService {
	return &VerificationService{
		db:               db,
		cfg:              cfg,
		storage:          storage,
		licenseBoard:     licenseBoard,
		identityVerifier: identityVerifier,
	}
}

func (s *VerificationService) UploadLicenseDocument(ctx context.Context, agentID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*LicenseUploadResult, error) {
	agent, err := s.fetchAgent(agentID)
	if err != nil {
		return nil, err
	}

	upload, err := s.storage.UploadFile(file, header, DocumentUploadOptions(DocumentLicense))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	agent.LicenseDocumentPath = upload.Key

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	result, err := s.licenseBoard.VerifyLicense(callCtx, agent.LicenseNumber, agent.LicenseState, agent.Name)
	if err != nil {
		return nil, fmt.Errorf("license board check failed: %w", err)
	}

	if result.Verified {
		agent.LicenseVerified = true
	}

	if err := s.db.Save(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"agent_id": agent.ID,
		"verified": result.Verified,
	}).Info("License document processed")

	return &LicenseUploadResult{
		Message:            "License document uploaded successfully",
		VerificationResult: result,
		Agent:              agent,
	}, nil
}

func (s *VerificationService) UploadIDDocument(ctx context.Context, agentID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*IdentityUploadResult, error) {
	agent, err := s.fetchAgent(agentID)
	if err != nil {
		return nil, err
	}

	upload, err := s.storage.UploadFile(file, header, DocumentUploadOptions(DocumentID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	agent.IDDocumentPath = upload.Key

	if err := s.db.Save(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	return &IdentityUploadResult{
		Message: "ID document uploaded successfully",
		Agent:   agent,
	}, nil
}

// UploadLivePhoto stores the live photo and, once both identity documents
// are present, runs the comparison.
func (s *VerificationService) UploadLivePhoto(ctx context.Context, agentID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*IdentityUploadResult, error) {
	agent, err := s.fetchAgent(agentID)
	if err != nil {
		return nil, err
	}

	upload, err := s.storage.UploadFile(file, header, DocumentUploadOptions(DocumentLivePhoto))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	agent.LivePhotoPath = upload.Key

	if agent.IDDocumentPath == "" {
		if err := s.db.Save(agent).Error; err != nil {
			return nil, fmt.Errorf("failed to update agent: %w", err)
		}
		return &IdentityUploadResult{
			Message: "Live photo uploaded successfully",
			Agent:   agent,
		}, nil
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	result, err := s.identityVerifier.Compare(callCtx, agent.IDDocumentPath, agent.LivePhotoPath)
	if err != nil {
		return nil, fmt.Errorf("identity comparison failed: %w", err)
	}

	if result.Verified {
		agent.IdentityVerified = true
	}

	if err := s.db.Save(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"agent_id":   agent.ID,
		"verified":   result.Verified,
		"confidence": result.ConfidenceScore,
	}).Info("Identity comparison processed")

	return &IdentityUploadResult{
		Message:            "Live photo uploaded and identity comparison completed",
		VerificationResult: result,
		Agent:              agent,
	}, nil
}

func (s *VerificationService) fetchAgent(id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := s.db.First(&agent, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: agent %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch agent: %w", err)
	}
	return &agent, nil
}

func (s *VerificationService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(s.cfg.Providers.TimeoutSeconds)*time.Second)
}
