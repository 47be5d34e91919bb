package handlers

import (
	"github.com/nfrund/guestmap/internal/domain"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GroupResponse is one map marker: a coordinate and its rendered popup.
type GroupResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
	PopupHTML string  `json:"popupHTML"`
}

// GroupsResponse lists the markers in the order their coordinates were
// first seen.
type GroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// ViewerResponse is the viewer location the map should centre on.
type ViewerResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      int     `json:"zoom"`
	Resolved  bool    `json:"resolved"`
	Source    string  `json:"source,omitempty"`
}

// NewViewerResponse creates a ViewerResponse from a domain.ViewerLocation.
func NewViewerResponse(v domain.ViewerLocation) ViewerResponse {
	return ViewerResponse{
		Latitude:  v.Latitude,
		Longitude: v.Longitude,
		Zoom:      v.Zoom,
		Resolved:  v.Resolved,
		Source:    string(v.Source),
	}
}
