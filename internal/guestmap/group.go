package guestmap

import (
	"strconv"

	"github.com/nfrund/guestmap/internal/domain"
)

// CoordinatePair is the structural grouping key: two messages share a group
// exactly when their latitudes and longitudes compare equal as floats.
type CoordinatePair struct {
	Latitude  float64
	Longitude float64
}

// CoordinateKey keys a message by its exact coordinate pair.
func CoordinateKey(m domain.Message) CoordinatePair {
	return CoordinatePair{Latitude: m.Latitude, Longitude: m.Longitude}
}

// ConcatenatedKey reproduces the widget's historical key: the raw latitude
// and longitude rendered back to back with no separator. Distinct pairs can
// collide, e.g. (1, 23) and (12, 3) both yield "123".
func ConcatenatedKey(m domain.Message) string {
	return formatCoordinate(m.Latitude) + formatCoordinate(m.Longitude)
}

func formatCoordinate(f float64) string {
	if f == 0 {
		// Negative zero prints as "0" in the original rendering.
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// GroupByLocation clusters messages by key, preserving the order in which
// each key was first seen. The first message for a key becomes the group's
// representative; later messages are appended to Others in arrival order.
func GroupByLocation[K comparable](messages []domain.Message, key func(domain.Message) K) []domain.LocationGroup {
	groups := make([]domain.LocationGroup, 0, len(messages))
	index := make(map[K]int, len(messages))

	for _, msg := range messages {
		k := key(msg)
		if i, seen := index[k]; seen {
			groups[i].Others = append(groups[i].Others, msg)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, domain.LocationGroup{Representative: msg})
	}
	return groups
}

// Group applies the configured keying strategy.
func Group(messages []domain.Message, legacyKeys bool) []domain.LocationGroup {
	if legacyKeys {
		return GroupByLocation(messages, ConcatenatedKey)
	}
	return GroupByLocation(messages, CoordinateKey)
}
