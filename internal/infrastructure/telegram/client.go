package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 30 * time.Second

	// maxResponseSize caps how much of the bot API response is read (1MB)
	maxResponseSize = 1 * 1024 * 1024
)

// ClientConfig contains configuration for the bot API client
type ClientConfig struct {
	// BotToken authenticates against the bot API
	BotToken string
	// BaseURL is the bot API root (overridable for tests)
	BaseURL string
	// Timeout bounds each delivery attempt
	Timeout time.Duration
	// Logger for delivery diagnostics
	Logger *zap.Logger
}

// Client delivers rendered receipt images to a chat via the Telegram bot API
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// DeliveryOutcome records how one delivery attempt concluded. A rejection
// from the bot API is an outcome, not an error; errors are reserved for
// transport and file failures.
type DeliveryOutcome struct {
	Delivered  bool
	StatusCode int
	Detail     string
}

// apiResponse is the bot API result envelope
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewClient creates a new bot API client
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil || config.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
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

// SendPhoto uploads the image file to the chat as a photo.
//
// The returned outcome reflects the bot API verdict. Only failures before a
// response exists (unreadable file, request build, transport) return an error.
func (c *Client) SendPhoto(ctx context.Context, chatID string, imagePath string) (*DeliveryOutcome, error) {
	if chatID == "" {
		return nil, fmt.Errorf("telegram chat ID is required")
	}

	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt image: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", chatID); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	part, err := writer.CreateFormFile("photo", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read receipt image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendPhoto", c.config.BaseURL, c.config.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("delivery request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read delivery response: %w", err)
	}

	outcome := &DeliveryOutcome{
		StatusCode: resp.StatusCode,
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err == nil {
		outcome.Delivered = parsed.OK
		outcome.Detail = parsed.Description
	} else {
		outcome.Delivered = resp.StatusCode >= 200 && resp.StatusCode < 300
		outcome.Detail = string(respBody)
	}

	if outcome.Delivered {
		c.logger.Info("receipt delivered to chat",
			zap.String("chat_id", chatID),
			zap.Int("status", resp.StatusCode))
	} else {
		c.logger.Warn("receipt delivery rejected",
			zap.String("chat_id", chatID),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", outcome.Detail))
	}

	return outcome, nil
}
