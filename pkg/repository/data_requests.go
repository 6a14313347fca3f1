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

// DataRequestsRepository handles data-sharing request persistence
type DataRequestsRepository struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewDataRequestsRepository creates a new data requests repository
func NewDataRequestsRepository(db *sql.DB, log *logger.Logger) *DataRequestsRepository {
	return &DataRequestsRepository{
		db:     db,
		logger: log,
	}
}

// Create inserts a new data request
func (r *DataRequestsRepository) Create(ctx context.Context, req *types.DataRequest) (*types.DataRequest, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = "PENDING"
	}
	req.CreatedAt = time.Now()

	query := `
		INSERT INTO data_requests (
			id, requester_id, patient_id, purpose, status,
			content_id, anchor_reference, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		req.ID,
		req.RequesterID,
		req.PatientID,
		req.Purpose,
		req.Status,
		req.ContentID,
		req.AnchorReference,
		req.CreatedAt,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create data request: %w", err)
	}

	r.logger.Info("Created data request", "requestID", req.ID, "requesterID", req.RequesterID)
	return req, nil
}

// GetByID retrieves a data request by ID
func (r *DataRequestsRepository) GetByID(ctx context.Context, requestID string) (*types.DataRequest, error) {
	query := `
		SELECT id, requester_id, patient_id, purpose, status,
			   content_id, anchor_reference, created_at
		FROM data_requests
		WHERE id = $1`

	var req types.DataRequest
	var purpose, contentID, anchorRef sql.NullString

	err := r.db.QueryRowContext(ctx, query, requestID).Scan(
		&req.ID,
		&req.RequesterID,
		&req.PatientID,
		&purpose,
		&req.Status,
		&contentID,
		&anchorRef,
		&req.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("data request not found: %s", requestID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve data request: %w", err)
	}

	req.Purpose = purpose.String
	req.ContentID = contentID.String
	req.AnchorReference = anchorRef.String

	return &req, nil
}
