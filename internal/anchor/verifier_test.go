package anchor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// MockLogReader mocks the mirror node read path
type MockLogReader struct {
	mock.Mock
}

func (m *MockLogReader) FetchByTransactionID(ctx context.Context, topicID, transactionID string) ([]types.LogEntry, error) {
	args := m.Called(ctx, topicID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.LogEntry), args.Error(1)
}

// MockContentFetcher mocks the content store
type MockContentFetcher struct {
	mock.Mock
}

func (m *MockContentFetcher) Fetch(ctx context.Context, contentID string) ([]byte, error) {
	args := m.Called(ctx, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func anchoredEntry(t *testing.T, payload map[string]interface{}) types.LogEntry {
	t.Helper()
	serialized, err := json.Marshal(payload)
	require.NoError(t, err)
	return types.LogEntry{
		Message:        base64.StdEncoding.EncodeToString(serialized),
		TopicID:        "0.0.1234",
		SequenceNumber: 1,
	}
}

func newTestVerifier(reader LogReader, fetcher ContentFetcher) *Verifier {
	return NewVerifier(reader, fetcher, "0.0.1234", logger.New("verifier-test", "error"))
}

func TestVerify_HappyPath(t *testing.T) {
	// SHA-256 of "hello world"
	content := []byte("hello world")
	claimedHash := HashBytes(content)

	reader := new(MockLogReader)
	fetcher := new(MockContentFetcher)

	reader.On("FetchByTransactionID", mock.Anything, "0.0.1234", "tx-1").Return([]types.LogEntry{
		anchoredEntry(t, map[string]interface{}{"recordHash": claimedHash, "ipfsCid": "Qm1"}),
	}, nil)
	fetcher.On("Fetch", mock.Anything, "Qm1").Return(content, nil)

	verdict, err := newTestVerifier(reader, fetcher).Verify(context.Background(), "tx-1")

	require.NoError(t, err)
	assert.True(t, verdict.Success)
	assert.Equal(t, ReasonVerified, verdict.Reason)
	assert.Equal(t, claimedHash, verdict.ClaimedHash)
	assert.Equal(t, claimedHash, verdict.ComputedHash)
	assert.Equal(t, "Qm1", verdict.ContentID)
}

func TestVerify_TamperDetection(t *testing.T) {
	original := []byte("original content")
	tampered := []byte("original contenT")
	claimedHash := HashBytes(original)

	reader := new(MockLogReader)
	fetcher := new(MockContentFetcher)

	reader.On("FetchByTransactionID", mock.Anything, "0.0.1234", "tx-1").Return([]types.LogEntry{
		anchoredEntry(t, map[string]interface{}{"recordHash": claimedHash, "ipfsCid": "Qm1"}),
	}, nil)
	fetcher.On("Fetch", mock.Anything, "Qm1").Return(tampered, nil)

	verdict, err := newTestVerifier(reader, fetcher).Verify(context.Background(), "tx-1")

	require.NoError(t, err)
	assert.False(t, verdict.Success)
	assert.Equal(t, ReasonHashMismatch, verdict.Reason)
	assert.Equal(t, claimedHash, verdict.ClaimedHash)
	assert.Equal(t, HashBytes(tampered), verdict.ComputedHash)
	assert.NotEqual(t, verdict.ClaimedHash, verdict.ComputedHash)
}

func TestVerify_MissingReferenceShortCircuits(t *testing.T) {
	reader := new(MockLogReader)
	fetcher := new(MockContentFetcher)

	verdict, err := newTestVerifier(reader, fetcher).Verify(context.Background(), "")

	require.NoError(t, err)
	assert.False(t, verdict.Success)
	assert.Equal(t, ReasonNoAnchorReference, verdict.Reason)

	// No network call may happen for a missing reference
	reader.AssertNotCalled(t, "FetchByTransactionID", mock.Anything, mock.Anything, mock.Anything)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestVerify_NoLogMessages(t *testing.T) {
	reader := new(MockLogReader)
	fetcher := new(MockContentFetcher)

	reader.On("FetchByTransactionID", mock.Anything, "0.0.1234", "tx-1").Return([]types.LogEntry{}, nil)

	verdict, err := newTestVerifier(reader, fetcher).Verify(context.Background(), "tx-1")

	require.NoError(t, err)
	assert.False(t, verdict.Success)
	assert.Equal(t, ReasonNoLogMessages, verdict.Reason)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestVerify_MissingFieldsIsVerdict(t *testing.T) {
	reader := new(MockLogReader)
	fetcher := new(MockContentFetcher)

	reader.On("FetchByTransactionID", mock.Anything, "0.0.1234", "tx-1").Return([]types.LogEntry{
		anchoredEntry(t, map[string]interface{}{"eventType": "CLAIM_CREATED"}),
	}, nil)

	verdict, err := newTestVerifier(reader, fetcher).Verify(context.Background(), "tx-1")

	require.NoError(t, err)
	assert.False(t, verdict.Success)
	assert.Equal(t, ReasonMissingFields, verdict.Reason)
}

func TestVerify_LogReadErrorPropagates(t *testing.T) {
	reader := new(MockLogReader)
	fetcher := new(MockContentFetcher)

	readErr := &types.LogReadError{TopicID: "0.0.1234", TransactionID: "tx-1", Cause: errors.New("timeout")}
	reader.On("FetchByTransactionID", mock.Anything, "0.0.1234", "tx-1").Return(nil, readErr)

	verdict, err := newTestVerifier(reader, fetcher).Verify(context.Background(), "tx-1")

	assert.Nil(t, verdict)
	var logReadErr *types.LogReadError
	require.ErrorAs(t, err, &logReadErr)
}

func TestVerify_ContentFetchErrorIsNotAVerdict(t *testing.T) {
	reader := new(MockLogReader)
	fetcher := new(MockContentFetcher)

	reader.On("FetchByTransactionID", mock.Anything, "0.0.1234", "tx-1").Return([]types.LogEntry{
		anchoredEntry(t, map[string]interface{}{"recordHash": "abc123", "ipfsCid": "Qm1"}),
	}, nil)
	fetchErr := &types.ContentFetchError{ContentID: "Qm1", Cause: errors.New("gateway returned status 504")}
	fetcher.On("Fetch", mock.Anything, "Qm1").Return(nil, fetchErr)

	verdict, err := newTestVerifier(reader, fetcher).Verify(context.Background(), "tx-1")

	assert.Nil(t, verdict)
	var contentErr *types.ContentFetchError
	require.ErrorAs(t, err, &contentErr)
}

func TestVerify_FirstEntryWins(t *testing.T) {
	content := []byte("first entry content")
	claimedHash := HashBytes(content)

	reader := new(MockLogReader)
	fetcher := new(MockContentFetcher)

	reader.On("FetchByTransactionID", mock.Anything, "0.0.1234", "tx-1").Return([]types.LogEntry{
		anchoredEntry(t, map[string]interface{}{"recordHash": claimedHash, "ipfsCid": "QmFirst"}),
		anchoredEntry(t, map[string]interface{}{"recordHash": "other", "ipfsCid": "QmSecond"}),
	}, nil)
	fetcher.On("Fetch", mock.Anything, "QmFirst").Return(content, nil)

	verdict, err := newTestVerifier(reader, fetcher).Verify(context.Background(), "tx-1")

	require.NoError(t, err)
	assert.True(t, verdict.Success)
	assert.Equal(t, "QmFirst", verdict.ContentID)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, "QmSecond")
}

func TestVerify_Deterministic(t *testing.T) {
	content := []byte("stable content")
	claimedHash := HashBytes(content)

	reader := new(MockLogReader)
	fetcher := new(MockContentFetcher)

	reader.On("FetchByTransactionID", mock.Anything, "0.0.1234", "tx-1").Return([]types.LogEntry{
		anchoredEntry(t, map[string]interface{}{"recordHash": claimedHash, "ipfsCid": "Qm1"}),
	}, nil)
	fetcher.On("Fetch", mock.Anything, "Qm1").Return(content, nil)

	v := newTestVerifier(reader, fetcher)

	first, err := v.Verify(context.Background(), "tx-1")
	require.NoError(t, err)
	second, err := v.Verify(context.Background(), "tx-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHashBytes_LowercaseHex(t *testing.T) {
	digest := HashBytes([]byte("hello world"))

	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", digest)
}
