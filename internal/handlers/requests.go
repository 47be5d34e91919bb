package handlers

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/guestmap"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

// LocationReport is the browser's geolocation result. Either both
// coordinates are set, or Error says why the lookup failed.
type LocationReport struct {
	Latitude  string `form:"latitude" validate:"required_with=Longitude,omitempty,latitude"`
	Longitude string `form:"longitude" validate:"required_with=Latitude,omitempty,longitude"`
	Error     string `form:"error" validate:"max=200"`
}

// Position converts the report into a geolocator for the resolver.
func (r LocationReport) Position() (guestmap.ReportedPosition, error) {
	if r.Latitude == "" {
		return guestmap.ReportedPosition{Reason: r.Error}, nil
	}
	lat, err := strconv.ParseFloat(r.Latitude, 64)
	if err != nil {
		return guestmap.ReportedPosition{}, fmt.Errorf("parse latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(r.Longitude, 64)
	if err != nil {
		return guestmap.ReportedPosition{}, fmt.Errorf("parse longitude: %w", err)
	}
	return guestmap.ReportedPosition{
		Coordinates: &domain.Coordinates{Latitude: lat, Longitude: lng},
	}, nil
}
