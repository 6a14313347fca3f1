package anchor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/config"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// ContentFetcher retrieves bytes from content-addressed storage
type ContentFetcher interface {
	Fetch(ctx context.Context, contentID string) ([]byte, error)
}

// GatewayClient fetches content from an IPFS HTTP gateway by CID
type GatewayClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewGatewayClient creates a new IPFS gateway client
func NewGatewayClient(cfg *config.IPFSConfig, log *logger.Logger) *GatewayClient {
	return &GatewayClient{
		baseURL: strings.TrimRight(cfg.GatewayURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: log,
	}
}

// Fetch retrieves the raw bytes addressed by contentID. A leading
// ipfs:// prefix is accepted and stripped. All failures surface as
// ContentFetchError; they are a different failure class from a hash
// mismatch and must never be reported as a verification verdict.
func (c *GatewayClient) Fetch(ctx context.Context, contentID string) ([]byte, error) {
	if contentID == "" {
		return nil, &types.ContentFetchError{ContentID: contentID, Cause: fmt.Errorf("content ID is empty")}
	}

	cid := strings.TrimPrefix(contentID, "ipfs://")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+cid, nil)
	if err != nil {
		return nil, &types.ContentFetchError{ContentID: contentID, Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.ContentFetchError{ContentID: contentID, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &types.ContentFetchError{
			ContentID: contentID,
			Cause:     fmt.Errorf("gateway returned status %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.ContentFetchError{ContentID: contentID, Cause: err}
	}

	c.logger.Info("Fetched content from gateway", "contentID", cid, "bytes", len(data))
	return data, nil
}
