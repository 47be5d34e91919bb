// Package messageapi talks to the remote guest map message API.
package messageapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/observability"
)

const serviceLabel = "messages"

// Client implements guestmap.MessageStore against one API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a message API client for baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// BaseURL returns the endpoint this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches every message, in the order the API returns them.
func (c *Client) List(ctx context.Context) ([]domain.Message, error) {
	var messages []domain.Message
	if err := c.do(ctx, "list", http.MethodGet, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Create posts a new message. The response is decoded but its content is
// not checked; the API owns the record.
func (c *Client) Create(ctx context.Context, msg domain.NewMessage) (domain.Message, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("encode message: %w", err)
	}

	var created domain.Message
	if err := c.do(ctx, "create", http.MethodPost, body, &created); err != nil {
		return domain.Message{}, err
	}
	return created, nil
}

func (c *Client) do(ctx context.Context, operation, method string, body []byte, out any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.UpstreamRequests.WithLabelValues(serviceLabel, operation, observability.Outcome(err)).Inc()
		c.metrics.UpstreamDuration.WithLabelValues(serviceLabel, operation).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s messages request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: message API status %d: %s", domain.ErrUpstream, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	c.logger.Debug("Message API call finished", "operation", operation, "status", resp.StatusCode, "duration", time.Since(start))
	return nil
}
