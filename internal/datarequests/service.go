package datarequests

import (
	"context"
	"fmt"
	"time"

	"github.com/Mcnoble1/Medisphere-sub002/internal/anchor"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/repository"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// Service records data-sharing requests. A request is anchored once at
// creation with the fatal policy: an unanchored data request has no
// audit value, so the write fails with the submission.
type Service struct {
	repo     *repository.DataRequestsRepository
	writer   *anchor.Writer
	verifier *anchor.Verifier
	topicID  string
	logger   *logger.Logger
}

// NewService creates a new data requests service
func NewService(
	repo *repository.DataRequestsRepository,
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

// CreateDataRequest anchors and persists a new data-sharing request
func (s *Service) CreateDataRequest(ctx context.Context, req *types.DataRequest) (*types.DataRequest, error) {
	if req.RequesterID == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "requester ID is required", nil)
	}
	if req.PatientID == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "patient ID is required", nil)
	}

	transactionID, err := s.writer.SubmitEventWithPolicy(ctx, s.topicID, map[string]interface{}{
		"eventType":   types.EventDataRequested,
		"requestId":   req.ID,
		"requesterId": req.RequesterID,
		"patientId":   req.PatientID,
		"purpose":     req.Purpose,
		"timestamp":   time.Now(),
	}, anchor.PolicyFatal)
	if err != nil {
		return nil, fmt.Errorf("data request anchoring failed: %w", err)
	}

	req.AnchorReference = transactionID

	created, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("data request creation failed: %w", err)
	}

	s.logger.Anchor(string(types.EventDataRequested), created.ID, s.topicID, transactionID, true)
	return created, nil
}

// GetDataRequest retrieves a data request
func (s *Service) GetDataRequest(ctx context.Context, requestID string) (*types.DataRequest, error) {
	return s.repo.GetByID(ctx, requestID)
}

// VerifyDataRequest reconciles the request's anchor against the log
// and content store
func (s *Service) VerifyDataRequest(ctx context.Context, requestID string) (*types.AuthenticityVerdict, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	return s.verifier.Verify(ctx, req.AnchorReference)
}
