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

// LabResultsRepository handles lab result persistence
type LabResultsRepository struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewLabResultsRepository creates a new lab results repository
func NewLabResultsRepository(db *sql.DB, log *logger.Logger) *LabResultsRepository {
	return &LabResultsRepository{
		db:     db,
		logger: log,
	}
}

// Create inserts a new lab result record
func (r *LabResultsRepository) Create(ctx context.Context, result *types.LabResult) (*types.LabResult, error) {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	result.CreatedAt = time.Now()

	query := `
		INSERT INTO lab_results (
			id, patient_id, doctor_id, test_type, content_id,
			record_hash, anchor_reference, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		result.ID,
		result.PatientID,
		result.DoctorID,
		result.TestType,
		result.ContentID,
		result.RecordHash,
		result.AnchorReference,
		result.CreatedAt,
	).Scan(&result.ID, &result.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create lab result: %w", err)
	}

	r.logger.Info("Created lab result", "labResultID", result.ID, "patientID", result.PatientID)
	return result, nil
}

// GetByID retrieves a lab result by ID
func (r *LabResultsRepository) GetByID(ctx context.Context, resultID string) (*types.LabResult, error) {
	query := `
		SELECT id, patient_id, doctor_id, test_type, content_id,
			   record_hash, anchor_reference, created_at
		FROM lab_results
		WHERE id = $1`

	var result types.LabResult
	var doctorID, anchorRef sql.NullString

	err := r.db.QueryRowContext(ctx, query, resultID).Scan(
		&result.ID,
		&result.PatientID,
		&doctorID,
		&result.TestType,
		&result.ContentID,
		&result.RecordHash,
		&anchorRef,
		&result.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("lab result not found: %s", resultID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lab result: %w", err)
	}

	result.DoctorID = doctorID.String
	result.AnchorReference = anchorRef.String

	return &result, nil
}

// SetAnchorReference records the anchor reference after a successful
// late submission. Used by the non-fatal anchoring path where the
// record is persisted before the anchor lands.
func (r *LabResultsRepository) SetAnchorReference(ctx context.Context, resultID, anchorReference string) error {
	query := `UPDATE lab_results SET anchor_reference = $1 WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, anchorReference, resultID)
	if err != nil {
		return fmt.Errorf("failed to set lab result anchor reference: %w", err)
	}

	return nil
}
