package guestmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nfrund/guestmap/internal/domain"
)

// Geolocator is the primary location source, normally the browser's
// geolocation API as reported by the page.
type Geolocator interface {
	Locate(ctx context.Context) (domain.Coordinates, error)
}

// IPLocator is the fallback location source keyed by client IP address.
// An empty IP asks for the location of the caller's own public address.
type IPLocator interface {
	Lookup(ctx context.Context, ip string) (domain.Coordinates, error)
}

// ReportedPosition is a geolocation result reported by the browser. A nil
// Coordinates means the browser lookup failed (denied, timed out or
// unsupported) and Reason says why.
type ReportedPosition struct {
	Coordinates *domain.Coordinates
	Reason      string
}

// Locate implements Geolocator.
func (p ReportedPosition) Locate(context.Context) (domain.Coordinates, error) {
	if p.Coordinates == nil {
		reason := p.Reason
		if reason == "" {
			reason = "no position reported"
		}
		return domain.Coordinates{}, fmt.Errorf("%w: %s", domain.ErrLocationUnavailable, reason)
	}
	if err := checkCoordinates(*p.Coordinates); err != nil {
		return domain.Coordinates{}, err
	}
	return *p.Coordinates, nil
}

// Unavailable is a Geolocator that always fails. The CLI uses it when no
// position is given so resolution goes straight to the IP fallback.
type Unavailable struct{}

func (Unavailable) Locate(context.Context) (domain.Coordinates, error) {
	return domain.Coordinates{}, fmt.Errorf("%w: geolocation not supported", domain.ErrLocationUnavailable)
}

func checkCoordinates(c domain.Coordinates) error {
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: coordinates out of range (%v, %v)", domain.ErrLocationUnavailable, c.Latitude, c.Longitude)
	}
	return nil
}

// Resolver determines the viewer location once per widget instance: the
// primary geolocator first, then the IP fallback.
type Resolver struct {
	fallback IPLocator
	logger   *slog.Logger
}

// NewResolver creates a Resolver using fallback when geolocation fails.
func NewResolver(fallback IPLocator, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{fallback: fallback, logger: logger.With("component", "resolver")}
}

// Resolve returns the updated viewer location. If an attempt was already
// made, current is returned unchanged. When both sources fail the location
// stays unresolved at the default world view and the joined error is
// returned alongside it.
func (r *Resolver) Resolve(ctx context.Context, current domain.ViewerLocation, primary Geolocator, clientIP string) (domain.ViewerLocation, error) {
	if current.Attempted {
		return current, nil
	}

	coords, primaryErr := primary.Locate(ctx)
	if primaryErr == nil {
		return current.Resolve(coords, domain.SourceGeolocation), nil
	}
	r.logger.Debug("Geolocation failed, using IP fallback", "error", primaryErr)

	if r.fallback == nil {
		return current.GiveUp(), primaryErr
	}
	coords, fallbackErr := r.fallback.Lookup(ctx, clientIP)
	if fallbackErr != nil {
		return current.GiveUp(), errors.Join(primaryErr, fallbackErr)
	}
	if err := checkCoordinates(coords); err != nil {
		return current.GiveUp(), errors.Join(primaryErr, err)
	}
	return current.Resolve(coords, domain.SourceIP), nil
}
