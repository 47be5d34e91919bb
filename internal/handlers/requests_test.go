package handlers

import (
	"testing"

	"github.com/nfrund/guestmap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationReport_Validate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		report  LocationReport
		wantErr bool
	}{
		{"coordinates", LocationReport{Latitude: "48.8566", Longitude: "2.3522"}, false},
		{"failure reason", LocationReport{Error: "User denied Geolocation"}, false},
		{"empty", LocationReport{}, false},
		{"latitude only", LocationReport{Latitude: "48.8"}, true},
		{"out of range", LocationReport{Latitude: "91", Longitude: "0"}, true},
		{"not a number", LocationReport{Latitude: "north", Longitude: "0"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.report)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocationReport_Position(t *testing.T) {
	pos, err := LocationReport{Latitude: "48.8566", Longitude: "2.3522"}.Position()
	require.NoError(t, err)
	require.NotNil(t, pos.Coordinates)
	assert.Equal(t, domain.Coordinates{Latitude: 48.8566, Longitude: 2.3522}, *pos.Coordinates)

	pos, err = LocationReport{Error: "timeout"}.Position()
	require.NoError(t, err)
	assert.Nil(t, pos.Coordinates)
	assert.Equal(t, "timeout", pos.Reason)
}

func TestNewViewerResponse(t *testing.T) {
	v := domain.DefaultViewerLocation().Resolve(domain.Coordinates{Latitude: 1, Longitude: 2}, domain.SourceIP)
	assert.Equal(t, ViewerResponse{Latitude: 1, Longitude: 2, Zoom: 13, Resolved: true, Source: "ip"}, NewViewerResponse(v))
}
