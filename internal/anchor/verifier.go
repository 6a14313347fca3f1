package anchor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// Verdict reason strings. These are part of the API response surface.
const (
	ReasonNoAnchorReference = "No anchor reference on record"
	ReasonNoLogMessages     = "No log messages found for transaction"
	ReasonMissingFields     = "Log message does not contain expected fields"
	ReasonVerified          = "Record verified: content hash matches anchored hash"
	ReasonHashMismatch      = "Hash mismatch: content hash does not match anchored hash"
)

// Verifier reconciles a stored record against the consensus log and
// content-addressed storage. It never trusts a hash held in the local
// database: the claimed hash always comes from the anchored log message
// and the computed hash is always recomputed from fetched content.
type Verifier struct {
	reader  LogReader
	fetcher ContentFetcher
	topicID string
	logger  *logger.Logger
}

// NewVerifier creates a new authenticity verifier
func NewVerifier(reader LogReader, fetcher ContentFetcher, topicID string, log *logger.Logger) *Verifier {
	return &Verifier{
		reader:  reader,
		fetcher: fetcher,
		topicID: topicID,
		logger:  log,
	}
}

// Verify runs one reconciliation against the anchor reference.
//
// Anticipated non-authenticity outcomes (missing reference, no log
// messages, malformed payload, hash mismatch) come back as a verdict
// with Success false and never as an error. Infrastructure failures
// (mirror node or content store unreachable) come back as an error and
// never as a verdict: "could not check" must stay distinguishable from
// "checked and it failed".
func (v *Verifier) Verify(ctx context.Context, anchorReference string) (*types.AuthenticityVerdict, error) {
	if anchorReference == "" {
		return &types.AuthenticityVerdict{
			Success: false,
			Reason:  ReasonNoAnchorReference,
		}, nil
	}

	entries, err := v.reader.FetchByTransactionID(ctx, v.topicID, anchorReference)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return &types.AuthenticityVerdict{
			Success: false,
			Reason:  ReasonNoLogMessages,
		}, nil
	}

	// One submit produces one message; if the mirror ever returns more
	// than one entry for a transaction id, only the first is considered.
	payload := DecodeMessage(&entries[0])

	claimedHash, contentID, ok := ExtractAnchorClaim(payload)
	if !ok {
		return &types.AuthenticityVerdict{
			Success: false,
			Reason:  ReasonMissingFields,
		}, nil
	}

	content, err := v.fetcher.Fetch(ctx, contentID)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(content)
	computedHash := hex.EncodeToString(sum[:])

	verdict := &types.AuthenticityVerdict{
		Success:      computedHash == claimedHash,
		ClaimedHash:  claimedHash,
		ComputedHash: computedHash,
		ContentID:    contentID,
	}
	if verdict.Success {
		verdict.Reason = ReasonVerified
	} else {
		verdict.Reason = ReasonHashMismatch
	}

	v.logger.Verification("", anchorReference, verdict.Success, verdict.Reason)
	return verdict, nil
}

// HashBytes computes the lowercase hex SHA-256 digest used throughout
// the anchoring flow
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
