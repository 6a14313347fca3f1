package anchor

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

func entryWithBase64(payload string) *types.LogEntry {
	return &types.LogEntry{
		Message:            base64.StdEncoding.EncodeToString([]byte(payload)),
		ConsensusTimestamp: "1700000000.000000001",
		TopicID:            "0.0.1234",
		SequenceNumber:     1,
	}
}

func TestDecodeMessage_RoundTripJSON(t *testing.T) {
	original := map[string]interface{}{
		"eventType":  "CLAIM_CREATED",
		"claimId":    "claim-1",
		"recordHash": "abc123",
		"ipfsCid":    "QmTest",
		"amount":     float64(2500),
	}

	serialized, err := json.Marshal(original)
	require.NoError(t, err)

	decoded := DecodeMessage(entryWithBase64(string(serialized)))

	assert.Equal(t, original, decoded)
}

func TestDecodeMessage_NonJSONReturnsRawText(t *testing.T) {
	decoded := DecodeMessage(entryWithBase64("not json"))

	assert.Equal(t, "not json", decoded)
}

func TestDecodeMessage_NilEntry(t *testing.T) {
	assert.Nil(t, DecodeMessage(nil))
}

func TestDecodeMessage_EmptyMessage(t *testing.T) {
	assert.Nil(t, DecodeMessage(&types.LogEntry{}))
}

func TestDecodeMessage_InvalidBase64ReturnsField(t *testing.T) {
	entry := &types.LogEntry{Message: "%%%not-base64%%%"}

	decoded := DecodeMessage(entry)

	assert.Equal(t, "%%%not-base64%%%", decoded)
}

func TestExtractAnchorClaim_AliasPriority(t *testing.T) {
	// recordHash must win over hash when both are present
	payload := map[string]interface{}{
		"recordHash": "primary",
		"hash":       "secondary",
		"ipfsCid":    "QmPrimary",
		"cid":        "QmSecondary",
	}

	claimedHash, contentID, ok := ExtractAnchorClaim(payload)

	require.True(t, ok)
	assert.Equal(t, "primary", claimedHash)
	assert.Equal(t, "QmPrimary", contentID)
}

func TestExtractAnchorClaim_SnakeCaseAliases(t *testing.T) {
	payload := map[string]interface{}{
		"record_hash": "abc123",
		"ipfs_cid":    "QmSnake",
	}

	claimedHash, contentID, ok := ExtractAnchorClaim(payload)

	require.True(t, ok)
	assert.Equal(t, "abc123", claimedHash)
	assert.Equal(t, "QmSnake", contentID)
}

func TestExtractAnchorClaim_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{}
	}{
		{"missing hash", map[string]interface{}{"ipfsCid": "Qm1"}},
		{"missing cid", map[string]interface{}{"recordHash": "abc"}},
		{"empty object", map[string]interface{}{}},
		{"raw text payload", "not json"},
		{"nil payload", nil},
		{"non-string hash", map[string]interface{}{"recordHash": float64(42), "ipfsCid": "Qm1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := ExtractAnchorClaim(tt.payload)
			assert.False(t, ok)
		})
	}
}

func TestDecodeMessage_JSONArrayPayload(t *testing.T) {
	decoded := DecodeMessage(entryWithBase64(`[1,2,3]`))

	assert.Equal(t, []interface{}{float64(1), float64(2), float64(3)}, decoded)
}
