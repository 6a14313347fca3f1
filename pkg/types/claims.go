package types

import "time"

// ClaimStatus represents the lifecycle state of an insurance claim.
// PAID and REJECTED are terminal.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "PENDING"
	ClaimStatusApproved ClaimStatus = "APPROVED"
	ClaimStatusRejected ClaimStatus = "REJECTED"
	ClaimStatusPaid     ClaimStatus = "PAID"
)

// Claim is an insurance claim filed by a patient against an insurer.
// AnchorReference holds the transaction id of the CLAIM_CREATED anchor;
// every later state change appends one ClaimHistoryEntry with its own
// reference. ContentID addresses the claim document in off-box storage.
type Claim struct {
	ID              string              `json:"id"`
	PatientID       string              `json:"patientId"`
	InsurerID       string              `json:"insurerId"`
	Description     string              `json:"description,omitempty"`
	AmountRequested float64             `json:"amountRequested"`
	Status          ClaimStatus         `json:"status"`
	AnchorReference string              `json:"anchorReference,omitempty"`
	ContentID       string              `json:"contentId,omitempty"`
	RecordHash      string              `json:"recordHash,omitempty"`
	History         []ClaimHistoryEntry `json:"history,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// ClaimHistoryEntry is one append-only audit-trail item on a claim.
// Entries are never removed or reordered.
type ClaimHistoryEntry struct {
	ID              string          `json:"id"`
	ClaimID         string          `json:"claimId"`
	EventType       AnchorEventType `json:"eventType"`
	AnchorReference string          `json:"anchorReference"`
	RecordedAt      time.Time       `json:"recordedAt"`
}

// LabResult is a laboratory result record. The result document lives in
// content-addressed storage under ContentID; RecordHash is the SHA-256
// of the document bytes at write time and is also embedded in the
// anchored event so the verifier never has to trust this local copy.
type LabResult struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patientId"`
	DoctorID        string    `json:"doctorId,omitempty"`
	TestType        string    `json:"testType"`
	ContentID       string    `json:"contentId"`
	RecordHash      string    `json:"recordHash"`
	AnchorReference string    `json:"anchorReference,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// DataRequest is a data-sharing request between platform parties,
// anchored once at creation.
type DataRequest struct {
	ID              string    `json:"id"`
	RequesterID     string    `json:"requesterId"`
	PatientID       string    `json:"patientId"`
	Purpose         string    `json:"purpose,omitempty"`
	Status          string    `json:"status"`
	ContentID       string    `json:"contentId,omitempty"`
	AnchorReference string    `json:"anchorReference,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
