package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/Mcnoble1/Medisphere-sub002/internal/anchor"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/repository"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// Service implements the claim workflow: PENDING -> APPROVED -> PAID,
// or PENDING -> REJECTED. Every state change anchors one event to the
// consensus log and appends one history entry before the new status is
// considered committed. Claim-event anchoring is fatal: a failed
// submission fails the whole transition (anchor.PolicyFatal), unlike
// the lab-result timeline appends which are best-effort.
type Service struct {
	repo     *repository.ClaimsRepository
	writer   *anchor.Writer
	verifier *anchor.Verifier
	topicID  string
	logger   *logger.Logger
}

// NewService creates a new claims workflow service
func NewService(
	repo *repository.ClaimsRepository,
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

// CreateClaim files a new claim. The CLAIM_CREATED event is anchored
// first; only a successfully acknowledged submission is persisted, so a
// stored claim always carries a resolvable anchor reference. A crash
// between submit and persist leaves an orphan log entry, which is
// harmless in an append-only trail, and the caller retries the create.
func (s *Service) CreateClaim(ctx context.Context, claim *types.Claim) (*types.Claim, error) {
	if claim.PatientID == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "patient ID is required", nil)
	}
	if claim.InsurerID == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "insurer ID is required", nil)
	}
	if claim.AmountRequested <= 0 {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "amount requested must be positive", nil)
	}

	s.logger.WithClaim(claim.ID).Info("Filing claim")

	transactionID, err := s.writer.SubmitEventWithPolicy(ctx, s.topicID, &types.ClaimEventPayload{
		EventType:       types.EventClaimCreated,
		ClaimID:         claim.ID,
		PatientID:       claim.PatientID,
		AmountRequested: claim.AmountRequested,
		RecordHash:      claim.RecordHash,
		IPFSCid:         claim.ContentID,
		Timestamp:       time.Now(),
	}, anchor.PolicyFatal)
	if err != nil {
		return nil, fmt.Errorf("claim anchoring failed: %w", err)
	}

	claim.AnchorReference = transactionID

	created, err := s.repo.Create(ctx, claim)
	if err != nil {
		return nil, fmt.Errorf("claim creation failed: %w", err)
	}

	if err := s.repo.AppendHistory(ctx, &types.ClaimHistoryEntry{
		ClaimID:         created.ID,
		EventType:       types.EventClaimCreated,
		AnchorReference: transactionID,
	}); err != nil {
		return nil, fmt.Errorf("claim history append failed: %w", err)
	}

	s.logger.Anchor(string(types.EventClaimCreated), created.ID, s.topicID, transactionID, true)
	return created, nil
}

// GetClaim retrieves a claim with its anchor history
func (s *Service) GetClaim(ctx context.Context, claimID string) (*types.Claim, error) {
	return s.repo.GetByID(ctx, claimID)
}

// ApproveClaim transitions a claim from PENDING to APPROVED. The
// transition is gated on a passing authenticity verdict: the claim's
// anchored hash must match the content recomputed from storage.
func (s *Service) ApproveClaim(ctx context.Context, claimID string) (*types.Claim, error) {
	claim, err := s.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if claim.Status != types.ClaimStatusPending {
		return nil, types.NewConflictError(types.ErrCodeConflict,
			fmt.Sprintf("claim %s cannot be approved from status %s", claimID, claim.Status))
	}

	verdict, err := s.verifier.Verify(ctx, claim.AnchorReference)
	if err != nil {
		return nil, fmt.Errorf("authenticity check could not run: %w", err)
	}
	if !verdict.Success {
		return nil, types.NewValidationError(types.ErrCodeValidationFailed,
			fmt.Sprintf("claim failed authenticity verification: %s", verdict.Reason),
			map[string]interface{}{"validation": verdict})
	}

	return s.transition(ctx, claim, types.ClaimStatusApproved, types.EventClaimApproved)
}

// RejectClaim transitions a claim from PENDING to REJECTED
func (s *Service) RejectClaim(ctx context.Context, claimID string) (*types.Claim, error) {
	claim, err := s.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if claim.Status != types.ClaimStatusPending {
		return nil, types.NewConflictError(types.ErrCodeConflict,
			fmt.Sprintf("claim %s cannot be rejected from status %s", claimID, claim.Status))
	}

	return s.transition(ctx, claim, types.ClaimStatusRejected, types.EventClaimRejected)
}

// PayClaim transitions a claim from APPROVED to PAID
func (s *Service) PayClaim(ctx context.Context, claimID string) (*types.Claim, error) {
	claim, err := s.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if claim.Status != types.ClaimStatusApproved {
		return nil, types.NewConflictError(types.ErrCodeConflict,
			fmt.Sprintf("claim %s cannot be paid from status %s", claimID, claim.Status))
	}

	return s.transition(ctx, claim, types.ClaimStatusPaid, types.EventClaimPaid)
}

// ValidateClaim runs the authenticity reconciler against the claim's
// stored anchor reference and returns the verdict verbatim
func (s *Service) ValidateClaim(ctx context.Context, claimID string) (*types.AuthenticityVerdict, error) {
	claim, err := s.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.verifier.Verify(ctx, claim.AnchorReference)
	if err != nil {
		return nil, err
	}

	s.logger.Verification(claimID, claim.AnchorReference, verdict.Success, verdict.Reason)
	return verdict, nil
}

// transition anchors the event and persists the new status plus one
// history entry. Anchor failure aborts the transition before any local
// state changes.
func (s *Service) transition(ctx context.Context, claim *types.Claim, status types.ClaimStatus, eventType types.AnchorEventType) (*types.Claim, error) {
	transactionID, err := s.writer.SubmitEventWithPolicy(ctx, s.topicID, &types.ClaimEventPayload{
		EventType:       eventType,
		ClaimID:         claim.ID,
		PatientID:       claim.PatientID,
		AmountRequested: claim.AmountRequested,
		Timestamp:       time.Now(),
	}, anchor.PolicyFatal)
	if err != nil {
		return nil, fmt.Errorf("claim anchoring failed: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, claim.ID, status); err != nil {
		return nil, fmt.Errorf("claim status update failed: %w", err)
	}

	if err := s.repo.AppendHistory(ctx, &types.ClaimHistoryEntry{
		ClaimID:         claim.ID,
		EventType:       eventType,
		AnchorReference: transactionID,
	}); err != nil {
		return nil, fmt.Errorf("claim history append failed: %w", err)
	}

	s.logger.Anchor(string(eventType), claim.ID, s.topicID, transactionID, true)

	claim.Status = status
	claim.History = append(claim.History, types.ClaimHistoryEntry{
		ClaimID:         claim.ID,
		EventType:       eventType,
		AnchorReference: transactionID,
		RecordedAt:      time.Now(),
	})
	return claim, nil
}
