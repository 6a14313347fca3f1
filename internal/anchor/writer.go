package anchor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/config"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// FailurePolicy decides what a call site does when anchor submission
// fails. Claim state changes use PolicyFatal: the enclosing write fails
// with the submission. Timeline appends such as lab-result anchoring
// use PolicyIgnore: the failure is logged and the primary write stands.
type FailurePolicy string

const (
	PolicyFatal  FailurePolicy = "fatal"
	PolicyIgnore FailurePolicy = "ignore"
)

// Submitter is the write path to the consensus log
type Submitter interface {
	Submit(ctx context.Context, topicID string, message []byte) (string, error)
}

// Writer anchors event payloads to the consensus log and returns the
// opaque transaction reference acknowledged by the log
type Writer struct {
	submitter      Submitter
	defaultTopicID string
	logger         *logger.Logger
}

// NewWriter creates a new anchor writer
func NewWriter(submitter Submitter, defaultTopicID string, log *logger.Logger) *Writer {
	return &Writer{
		submitter:      submitter,
		defaultTopicID: defaultTopicID,
		logger:         log,
	}
}

// SubmitEvent serializes the event to JSON, submits it to the topic and
// returns the transaction reference. Failures surface as SubmitError.
func (w *Writer) SubmitEvent(ctx context.Context, topicID string, event interface{}) (string, error) {
	if topicID == "" {
		topicID = w.defaultTopicID
	}

	message, err := json.Marshal(event)
	if err != nil {
		return "", &types.SubmitError{TopicID: topicID, Cause: fmt.Errorf("event is not serializable: %w", err)}
	}

	transactionID, err := w.submitter.Submit(ctx, topicID, message)
	if err != nil {
		return "", &types.SubmitError{TopicID: topicID, Cause: err}
	}

	w.logger.Anchor("submit", "", topicID, transactionID, true)
	return transactionID, nil
}

// SubmitEventWithPolicy applies the call site's failure policy. Under
// PolicyIgnore a failed submission returns an empty reference and no
// error; the caller persists the record without an anchor.
func (w *Writer) SubmitEventWithPolicy(ctx context.Context, topicID string, event interface{}, policy FailurePolicy) (string, error) {
	transactionID, err := w.SubmitEvent(ctx, topicID, event)
	if err != nil {
		if policy == PolicyIgnore {
			w.logger.WithError(err).Warn("Anchor submission failed; continuing per call-site policy")
			return "", nil
		}
		return "", err
	}
	return transactionID, nil
}

// RelaySubmitter submits topic messages through the platform's HCS
// submit relay over HTTP
type RelaySubmitter struct {
	relayURL   string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewRelaySubmitter creates a new relay submitter
func NewRelaySubmitter(cfg *config.HederaConfig, log *logger.Logger) *RelaySubmitter {
	return &RelaySubmitter{
		relayURL: cfg.SubmitRelayURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: log,
	}
}

// relaySubmitRequest is the relay's submit envelope
type relaySubmitRequest struct {
	TopicID string `json:"topicId"`
	Message string `json:"message"` // base64-encoded payload
}

// relaySubmitResponse is the relay's acknowledgment
type relaySubmitResponse struct {
	TransactionID string `json:"transactionId"`
}

// Submit posts the message to the relay and returns the acknowledged
// transaction id
func (s *RelaySubmitter) Submit(ctx context.Context, topicID string, message []byte) (string, error) {
	if s.relayURL == "" {
		return "", fmt.Errorf("submit relay URL is not configured")
	}

	payload, err := json.Marshal(relaySubmitRequest{
		TopicID: topicID,
		Message: base64.StdEncoding.EncodeToString(message),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal submit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.relayURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("submit relay returned status %d", resp.StatusCode)
	}

	var ack relaySubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return "", fmt.Errorf("failed to decode submit acknowledgment: %w", err)
	}
	if ack.TransactionID == "" {
		return "", fmt.Errorf("submit relay acknowledged without a transaction id")
	}

	return ack.TransactionID, nil
}
