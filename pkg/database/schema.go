package database

import (
	"context"
	"fmt"
)

// CreateSchema creates the database schema for claims and anchored records
func (db *DB) CreateSchema(ctx context.Context) error {
	db.logger.Info("Creating database schema...")

	if err := db.createExtensions(ctx); err != nil {
		return fmt.Errorf("failed to create extensions: %w", err)
	}

	tables := []string{
		createClaimsTable,
		createClaimAnchorHistoryTable,
		createLabResultsTable,
		createDataRequestsTable,
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		createClaimsIndexes,
		createClaimAnchorHistoryIndexes,
		createLabResultsIndexes,
		createDataRequestsIndexes,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	db.logger.Info("Database schema created successfully")
	return nil
}

// createExtensions creates required PostgreSQL extensions
func (db *DB) createExtensions(ctx context.Context) error {
	extensions := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}

	for _, ext := range extensions {
		if _, err := db.ExecContext(ctx, ext); err != nil {
			return fmt.Errorf("failed to create extension: %w", err)
		}
	}

	return nil
}

// SQL DDL statements for table creation
const (
	createClaimsTable = `
		CREATE TABLE IF NOT EXISTS claims (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			patient_id VARCHAR(100) NOT NULL,
			insurer_id VARCHAR(100) NOT NULL,
			description TEXT,
			amount_requested NUMERIC(12,2) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			anchor_reference VARCHAR(200),
			content_id VARCHAR(200),
			record_hash VARCHAR(64),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`

	createClaimAnchorHistoryTable = `
		CREATE TABLE IF NOT EXISTS claim_anchor_history (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			claim_id UUID NOT NULL REFERENCES claims(id),
			event_type VARCHAR(50) NOT NULL,
			anchor_reference VARCHAR(200) NOT NULL,
			recorded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`

	createLabResultsTable = `
		CREATE TABLE IF NOT EXISTS lab_results (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			patient_id VARCHAR(100) NOT NULL,
			doctor_id VARCHAR(100),
			test_type VARCHAR(100) NOT NULL,
			content_id VARCHAR(200) NOT NULL,
			record_hash VARCHAR(64) NOT NULL,
			anchor_reference VARCHAR(200),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`

	createDataRequestsTable = `
		CREATE TABLE IF NOT EXISTS data_requests (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			requester_id VARCHAR(100) NOT NULL,
			patient_id VARCHAR(100) NOT NULL,
			purpose TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			content_id VARCHAR(200),
			anchor_reference VARCHAR(200),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`
)

// SQL DDL statements for index creation
const (
	createClaimsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_claims_patient_id ON claims(patient_id);
		CREATE INDEX IF NOT EXISTS idx_claims_insurer_id ON claims(insurer_id);
		CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);`

	createClaimAnchorHistoryIndexes = `
		CREATE INDEX IF NOT EXISTS idx_claim_anchor_history_claim_id ON claim_anchor_history(claim_id);
		CREATE INDEX IF NOT EXISTS idx_claim_anchor_history_recorded_at ON claim_anchor_history(recorded_at);`

	createLabResultsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_lab_results_patient_id ON lab_results(patient_id);`

	createDataRequestsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_data_requests_patient_id ON data_requests(patient_id);
		CREATE INDEX IF NOT EXISTS idx_data_requests_requester_id ON data_requests(requester_id);`
)
