package loyverse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.loyverse.com/v1.0"
	defaultTimeout = 15 * time.Second

	// maxResponseSize caps how much of the platform response is read (10MB)
	maxResponseSize = 10 * 1024 * 1024
)

// ClientConfig contains configuration for the commerce platform client
type ClientConfig struct {
	// AccessToken authenticates against the platform API
	AccessToken string
	// BaseURL is the platform API root (overridable for tests)
	BaseURL string
	// Timeout bounds each platform request
	Timeout time.Duration
	// Logger for request diagnostics
	Logger *zap.Logger
}

// Client reads receipts back from the commerce platform. The webhook push
// is the primary feed; this client serves the operator resend path.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new platform client
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil || config.AccessToken == "" {
		return nil, fmt.Errorf("platform access token is required")
	}

	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// FetchLatestReceipt returns the raw body of the most recent receipt query.
//
// The payload shape matches the webhook push ({"receipts": [...]}), so the
// result feeds straight into the same parse path.
func (c *Client) FetchLatestReceipt(ctx context.Context) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/receipts?%s", c.config.BaseURL, url.Values{
		"limit":    {"1"},
		"order_by": {"-created_at"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build platform request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read platform response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("platform receipt query rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, fmt.Errorf("platform receipt query returned status %d", resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("platform receipt query returned invalid JSON")
	}

	c.logger.Debug("latest receipt fetched", zap.Int("bytes", len(body)))

	return body, nil
}
