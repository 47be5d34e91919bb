// Package ipapi resolves an approximate position from an IP address using
// the ipapi.co JSON API.
package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/observability"
)

const serviceLabel = "ipapi"

// DefaultBaseURL is the public ipapi endpoint.
const DefaultBaseURL = "https://ipapi.co"

// Client implements guestmap.IPLocator.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an ipapi client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

type lookupResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
}

// Lookup returns the position of ip. Private, loopback and empty addresses
// are looked up as the caller's own public address.
func (c *Client) Lookup(ctx context.Context, ip string) (coords domain.Coordinates, err error) {
	start := time.Now()
	defer func() {
		c.metrics.UpstreamRequests.WithLabelValues(serviceLabel, "lookup", observability.Outcome(err)).Inc()
		c.metrics.UpstreamDuration.WithLabelValues(serviceLabel, "lookup").Observe(time.Since(start).Seconds())
	}()

	reqURL := c.baseURL + "/json/"
	if IsPublic(ip) {
		reqURL = c.baseURL + "/" + url.PathEscape(ip) + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("ip lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinates{}, fmt.Errorf("%w: ip lookup status %d", domain.ErrLocationUnavailable, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode ip lookup response: %w", err)
	}
	if body.Error {
		return domain.Coordinates{}, fmt.Errorf("%w: ip lookup: %s", domain.ErrLocationUnavailable, body.Reason)
	}
	if body.Latitude == nil || body.Longitude == nil {
		return domain.Coordinates{}, fmt.Errorf("%w: ip lookup returned no coordinates", domain.ErrLocationUnavailable)
	}

	c.logger.Debug("IP lookup finished", "duration", time.Since(start))
	return domain.Coordinates{Latitude: *body.Latitude, Longitude: *body.Longitude}, nil
}

// IsPublic reports whether ip is a globally routable address worth looking up
// by value.
func IsPublic(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !(parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() ||
		parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast())
}
