package labresults

import (
	"context"
	"fmt"
	"time"

	"github.com/Mcnoble1/Medisphere-sub002/internal/anchor"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/repository"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// Service implements lab result recording and verification. Unlike
// claim transitions, lab-result anchoring is a timeline append with
// anchor.PolicyIgnore: the primary record write stands even when the
// anchor submission fails, and the anchor reference is simply absent
// until a later submission succeeds.
type Service struct {
	repo     *repository.LabResultsRepository
	writer   *anchor.Writer
	verifier *anchor.Verifier
	topicID  string
	logger   *logger.Logger
}

// NewService creates a new lab results service
func NewService(
	repo *repository.LabResultsRepository,
	writer *anchor.Writer,
	verifier *anchor.Verifier,
	topicID string,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		writer:   writer,
		verifier: verifier,
		topicID:  topicID,
		logger:   log,
	}
}

// CreateLabResult records a lab result. When the raw document bytes are
// supplied, the record hash is computed here; otherwise the caller's
// hash (from the upload pipeline) is trusted for storage but never for
// verification, which always recomputes from fetched content.
func (s *Service) CreateLabResult(ctx context.Context, result *types.LabResult, document []byte) (*types.LabResult, error) {
	if result.PatientID == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "patient ID is required", nil)
	}
	if result.TestType == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "test type is required", nil)
	}
	if result.ContentID == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "content ID is required", nil)
	}

	if len(document) > 0 {
		result.RecordHash = anchor.HashBytes(document)
	}
	if result.RecordHash == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "record hash or document bytes are required", nil)
	}

	created, err := s.repo.Create(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("lab result creation failed: %w", err)
	}

	transactionID, err := s.writer.SubmitEventWithPolicy(ctx, s.topicID, &types.LabResultEventPayload{
		EventType:   types.EventLabResultCreated,
		LabResultID: created.ID,
		PatientID:   created.PatientID,
		RecordHash:  created.RecordHash,
		IPFSCid:     created.ContentID,
		Timestamp:   time.Now(),
	}, anchor.PolicyIgnore)
	if err != nil {
		// Unreachable under PolicyIgnore; kept so a policy change here
		// cannot silently drop errors.
		return nil, err
	}

	if transactionID != "" {
		if err := s.repo.SetAnchorReference(ctx, created.ID, transactionID); err != nil {
			s.logger.WithError(err).Warn("Failed to store lab result anchor reference")
		} else {
			created.AnchorReference = transactionID
		}
		s.logger.Anchor(string(types.EventLabResultCreated), created.ID, s.topicID, transactionID, true)
	}

	return created, nil
}

// GetLabResult retrieves a lab result
func (s *Service) GetLabResult(ctx context.Context, resultID string) (*types.LabResult, error) {
	return s.repo.GetByID(ctx, resultID)
}

// VerifyLabResult reconciles the lab result's anchored hash with the
// content recomputed from storage
func (s *Service) VerifyLabResult(ctx context.Context, resultID string) (*types.AuthenticityVerdict, error) {
	result, err := s.repo.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.verifier.Verify(ctx, result.AnchorReference)
	if err != nil {
		return nil, err
	}

	s.logger.Verification(resultID, result.AnchorReference, verdict.Success, verdict.Reason)
	return verdict, nil
}
