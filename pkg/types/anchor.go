package types

import "time"

// AnchorEventType tags an anchored event with the state change that
// produced it.
type AnchorEventType string

const (
	EventClaimCreated     AnchorEventType = "CLAIM_CREATED"
	EventClaimApproved    AnchorEventType = "CLAIM_APPROVED"
	EventClaimRejected    AnchorEventType = "CLAIM_REJECTED"
	EventClaimPaid        AnchorEventType = "CLAIM_PAID"
	EventLabResultCreated AnchorEventType = "LAB_RESULT_CREATED"
	EventDataRequested    AnchorEventType = "DATA_REQUEST_CREATED"
)

// LogEntry is one message retrieved from the mirror node's read path.
// Entries are fetched on demand and never persisted by the verifier.
type LogEntry struct {
	Message            string `json:"message"` // base64-encoded payload as returned by the mirror node
	ConsensusTimestamp string `json:"consensus_timestamp"`
	TopicID            string `json:"topic_id"`
	SequenceNumber     int64  `json:"sequence_number"`
}

// AuthenticityVerdict is the outcome of one reconciliation run. It is
// computed fresh on every call and never stored, so a verdict can never
// go stale. A false Success with populated hashes means "checked and it
// failed"; infrastructure failures surface as errors, not verdicts.
type AuthenticityVerdict struct {
	Success      bool   `json:"success"`
	Reason       string `json:"reason"`
	ClaimedHash  string `json:"claimedHash,omitempty"`
	ComputedHash string `json:"computedHash,omitempty"`
	ContentID    string `json:"contentId,omitempty"`
}

// ClaimEventPayload is the event shape anchored for claim state
// changes. The anchor writer accepts any JSON-serializable value; this
// is the shape the claims service submits.
type ClaimEventPayload struct {
	EventType       AnchorEventType `json:"eventType"`
	ClaimID         string          `json:"claimId"`
	PatientID       string          `json:"patientId,omitempty"`
	AmountRequested float64         `json:"amountRequested,omitempty"`
	RecordHash      string          `json:"recordHash,omitempty"`
	IPFSCid         string          `json:"ipfsCid,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// LabResultEventPayload is the event shape anchored when a lab result
// is recorded.
type LabResultEventPayload struct {
	EventType   AnchorEventType `json:"eventType"`
	LabResultID string          `json:"labResultId"`
	PatientID   string          `json:"patientId,omitempty"`
	RecordHash  string          `json:"recordHash"`
	IPFSCid     string          `json:"ipfsCid,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// TimelineEntry is one reconstructed item of a claim's audit-aggregate
// response: the stored history entry plus the decoded mirror view of
// its anchored message. Error is populated inline when the mirror read
// for this entry failed; a bad entry never sinks the whole batch.
type TimelineEntry struct {
	EventType     AnchorEventType `json:"eventType"`
	RecordedAt    time.Time       `json:"recordedAt"`
	HCSMessageID  string          `json:"hcsMessageId"`
	MirrorDecoded interface{}     `json:"mirrorDecoded"`
	Error         string          `json:"error,omitempty"`
}
