package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// ClaimsRepository handles claim persistence and the append-only anchor
// history trail
type ClaimsRepository struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewClaimsRepository creates a new claims repository
func NewClaimsRepository(db *sql.DB, log *logger.Logger) *ClaimsRepository {
	return &ClaimsRepository{
		db:     db,
		logger: log,
	}
}

// Create inserts a new claim. The caller is expected to have anchored
// the CLAIM_CREATED event already; the returned reference is stored
// with the claim.
func (r *ClaimsRepository) Create(ctx context.Context, claim *types.Claim) (*types.Claim, error) {
	if claim.ID == "" {
		claim.ID = uuid.New().String()
	}
	claim.Status = types.ClaimStatusPending
	claim.CreatedAt = time.Now()
	claim.UpdatedAt = claim.CreatedAt

	query := `
		INSERT INTO claims (
			id, patient_id, insurer_id, description, amount_requested,
			status, anchor_reference, content_id, record_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		claim.ID,
		claim.PatientID,
		claim.InsurerID,
		claim.Description,
		claim.AmountRequested,
		claim.Status,
		claim.AnchorReference,
		claim.ContentID,
		claim.RecordHash,
		claim.CreatedAt,
		claim.UpdatedAt,
	).Scan(&claim.ID, &claim.CreatedAt, &claim.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}

	r.logger.Info("Created claim", "claimID", claim.ID, "patientID", claim.PatientID)
	return claim, nil
}

// GetByID retrieves a claim by ID, including its anchor history in
// insertion order
func (r *ClaimsRepository) GetByID(ctx context.Context, claimID string) (*types.Claim, error) {
	query := `
		SELECT id, patient_id, insurer_id, description, amount_requested,
			   status, anchor_reference, content_id, record_hash, created_at, updated_at
		FROM claims
		WHERE id = $1`

	var claim types.Claim
	var anchorRef, contentID, recordHash sql.NullString

	err := r.db.QueryRowContext(ctx, query, claimID).Scan(
		&claim.ID,
		&claim.PatientID,
		&claim.InsurerID,
		&claim.Description,
		&claim.AmountRequested,
		&claim.Status,
		&anchorRef,
		&contentID,
		&recordHash,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("claim not found: %s", claimID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve claim: %w", err)
	}

	claim.AnchorReference = anchorRef.String
	claim.ContentID = contentID.String
	claim.RecordHash = recordHash.String

	history, err := r.GetHistory(ctx, claimID)
	if err != nil {
		return nil, err
	}
	claim.History = history

	return &claim, nil
}

// UpdateStatus persists a claim status transition
func (r *ClaimsRepository) UpdateStatus(ctx context.Context, claimID string, status types.ClaimStatus) error {
	query := `UPDATE claims SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), claimID)
	if err != nil {
		return fmt.Errorf("failed to update claim status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("claim not found: %s", claimID))
	}

	r.logger.Info("Updated claim status", "claimID", claimID, "status", status)
	return nil
}

// AppendHistory appends one anchor history entry to a claim's trail.
// Entries are never updated or deleted.
func (r *ClaimsRepository) AppendHistory(ctx context.Context, entry *types.ClaimHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}

	query := `
		INSERT INTO claim_anchor_history (id, claim_id, event_type, anchor_reference, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ClaimID,
		entry.EventType,
		entry.AnchorReference,
		entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append claim history: %w", err)
	}

	r.logger.Info("Appended claim history entry", "claimID", entry.ClaimID, "eventType", entry.EventType)
	return nil
}

// GetHistory retrieves a claim's anchor history in insertion order
func (r *ClaimsRepository) GetHistory(ctx context.Context, claimID string) ([]types.ClaimHistoryEntry, error) {
	query := `
		SELECT id, claim_id, event_type, anchor_reference, recorded_at
		FROM claim_anchor_history
		WHERE claim_id = $1
		ORDER BY recorded_at ASC`

	rows, err := r.db.QueryContext(ctx, query, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve claim history: %w", err)
	}
	defer rows.Close()

	var entries []types.ClaimHistoryEntry
	for rows.Next() {
		var entry types.ClaimHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ClaimID,
			&entry.EventType,
			&entry.AnchorReference,
			&entry.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan claim history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claim history: %w", err)
	}

	return entries, nil
}

// ListByPatient retrieves all claims for a patient
func (r *ClaimsRepository) ListByPatient(ctx context.Context, patientID string) ([]*types.Claim, error) {
	query := `
		SELECT id, patient_id, insurer_id, description, amount_requested,
			   status, anchor_reference, content_id, record_hash, created_at, updated_at
		FROM claims
		WHERE patient_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []*types.Claim
	for rows.Next() {
		var claim types.Claim
		var anchorRef, contentID, recordHash sql.NullString
		if err := rows.Scan(
			&claim.ID,
			&claim.PatientID,
			&claim.InsurerID,
			&claim.Description,
			&claim.AmountRequested,
			&claim.Status,
			&anchorRef,
			&contentID,
			&recordHash,
			&claim.CreatedAt,
			&claim.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claim.AnchorReference = anchorRef.String
		claim.ContentID = contentID.String
		claim.RecordHash = recordHash.String
		claims = append(claims, &claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claims: %w", err)
	}

	return claims, nil
}
