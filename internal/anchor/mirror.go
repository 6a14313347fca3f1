package anchor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/config"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// LogReader is the read path against the consensus log's mirror
type LogReader interface {
	FetchByTransactionID(ctx context.Context, topicID, transactionID string) ([]types.LogEntry, error)
}

// MirrorClient reads topic messages from a Hedera mirror node over its
// REST interface
type MirrorClient struct {
	baseURL        string
	defaultTopicID string
	httpClient     *http.Client
	logger         *logger.Logger
}

// NewMirrorClient creates a new mirror node client
func NewMirrorClient(cfg *config.HederaConfig, log *logger.Logger) *MirrorClient {
	return &MirrorClient{
		baseURL:        cfg.MirrorNodeURL,
		defaultTopicID: cfg.TopicID,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: log,
	}
}

// mirrorMessagesResponse is the mirror node response envelope
type mirrorMessagesResponse struct {
	Messages []types.LogEntry `json:"messages"`
}

// FetchByTransactionID queries the mirror node for the messages
// produced by one submit transaction. An empty result is not an error;
// transport failures, timeouts and non-2xx responses surface as
// LogReadError. No retry is attempted at this layer.
func (c *MirrorClient) FetchByTransactionID(ctx context.Context, topicID, transactionID string) ([]types.LogEntry, error) {
	if topicID == "" {
		topicID = c.defaultTopicID
	}
	if topicID == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "topic ID is required and no default is configured", nil)
	}
	if transactionID == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "transaction ID is required", nil)
	}

	endpoint := fmt.Sprintf("%s/api/v1/topics/%s/messages?transactionid=%s",
		c.baseURL, url.PathEscape(topicID), url.QueryEscape(transactionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &types.LogReadError{TopicID: topicID, TransactionID: transactionID, Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.LogReadError{TopicID: topicID, TransactionID: transactionID, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &types.LogReadError{
			TopicID:       topicID,
			TransactionID: transactionID,
			Cause:         fmt.Errorf("mirror node returned status %d", resp.StatusCode),
		}
	}

	var body mirrorMessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &types.LogReadError{TopicID: topicID, TransactionID: transactionID, Cause: err}
	}

	c.logger.Info("Fetched mirror node messages", "topicID", topicID, "transactionID", transactionID, "count", len(body.Messages))
	return body.Messages, nil
}
