package messageapi

import (
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/nfrund/guestmap/internal/guestmap"
	"github.com/nfrund/guestmap/internal/observability"
)

// Selector picks the local API when the widget is served from localhost and
// the production API otherwise.
type Selector struct {
	local      *Client
	production *Client
}

// NewSelector creates clients for both endpoints.
func NewSelector(localURL, productionURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Selector {
	return &Selector{
		local:      NewClient(localURL, timeout, metrics, logger.With("endpoint", "local")),
		production: NewClient(productionURL, timeout, metrics, logger.With("endpoint", "production")),
	}
}

// ForHost implements guestmap.StoreSelector.
func (s *Selector) ForHost(host string) guestmap.MessageStore {
	return s.Client(host)
}

// Client returns the concrete client for host.
func (s *Selector) Client(host string) *Client {
	if IsLocalhost(host) {
		return s.local
	}
	return s.production
}

// IsLocalhost reports whether host (optionally with a port) names localhost.
func IsLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.EqualFold(host, "localhost")
}
