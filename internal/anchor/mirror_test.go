package anchor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/config"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

func newTestMirrorClient(serverURL string) *MirrorClient {
	return NewMirrorClient(&config.HederaConfig{
		MirrorNodeURL:  serverURL,
		TopicID:        "0.0.9999",
		TimeoutSeconds: 15,
	}, logger.New("mirror-test", "error"))
}

func TestFetchByTransactionID_ReturnsMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/topics/0.0.1234/messages", r.URL.Path)
		assert.Equal(t, "tx-1", r.URL.Query().Get("transactionid"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []map[string]interface{}{
				{
					"message":             "eyJrIjoidiJ9",
					"consensus_timestamp": "1700000000.000000001",
					"topic_id":            "0.0.1234",
					"sequence_number":     7,
				},
			},
		})
	}))
	defer server.Close()

	client := newTestMirrorClient(server.URL)

	messages, err := client.FetchByTransactionID(context.Background(), "0.0.1234", "tx-1")

	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "eyJrIjoidiJ9", messages[0].Message)
	assert.Equal(t, int64(7), messages[0].SequenceNumber)
}

func TestFetchByTransactionID_EmptyResultIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"messages": []interface{}{}})
	}))
	defer server.Close()

	client := newTestMirrorClient(server.URL)

	messages, err := client.FetchByTransactionID(context.Background(), "0.0.1234", "tx-1")

	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestFetchByTransactionID_DefaultTopicFallback(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]interface{}{"messages": []interface{}{}})
	}))
	defer server.Close()

	client := newTestMirrorClient(server.URL)

	_, err := client.FetchByTransactionID(context.Background(), "", "tx-1")

	require.NoError(t, err)
	assert.Equal(t, "/api/v1/topics/0.0.9999/messages", requestedPath)
}

func TestFetchByTransactionID_Non2xxIsLogReadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestMirrorClient(server.URL)

	_, err := client.FetchByTransactionID(context.Background(), "0.0.1234", "tx-1")

	var readErr *types.LogReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "0.0.1234", readErr.TopicID)
	assert.Equal(t, "tx-1", readErr.TransactionID)
}

func TestFetchByTransactionID_UnreachableHostIsLogReadError(t *testing.T) {
	client := newTestMirrorClient("http://127.0.0.1:1")

	_, err := client.FetchByTransactionID(context.Background(), "0.0.1234", "tx-1")

	var readErr *types.LogReadError
	require.ErrorAs(t, err, &readErr)
}

func TestFetchByTransactionID_EmptyTransactionID(t *testing.T) {
	client := newTestMirrorClient("http://example.invalid")

	_, err := client.FetchByTransactionID(context.Background(), "0.0.1234", "")

	require.Error(t, err)
	var platformErr *types.PlatformError
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, types.ErrorTypeValidation, platformErr.Type)
}
