package domain

const (
	// DefaultLatitude and DefaultLongitude centre the map before the viewer's
	// location is known.
	DefaultLatitude  = 51.505
	DefaultLongitude = -0.09

	// WorldZoom is the zoom level of the unresolved world view.
	WorldZoom = 3
	// CityZoom is the zoom level used once the viewer's location is resolved.
	CityZoom = 13
)

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationSource records how a viewer location was obtained.
type LocationSource string

const (
	SourceNone        LocationSource = ""
	SourceGeolocation LocationSource = "geolocation"
	SourceIP          LocationSource = "ip"
)

// ViewerLocation is the coordinate used to centre the map and tag new
// submissions.
type ViewerLocation struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Resolved  bool           `json:"resolved"`
	Zoom      int            `json:"zoom"`
	Source    LocationSource `json:"source,omitempty"`
	Attempted bool           `json:"attempted"`
}

// DefaultViewerLocation returns the unresolved world view.
func DefaultViewerLocation() ViewerLocation {
	return ViewerLocation{
		Latitude:  DefaultLatitude,
		Longitude: DefaultLongitude,
		Zoom:      WorldZoom,
	}
}

// Coordinates returns the current centre, which is the default coordinate
// while the location is unresolved.
func (v ViewerLocation) Coordinates() Coordinates {
	return Coordinates{Latitude: v.Latitude, Longitude: v.Longitude}
}

// Resolve adopts the given coordinates and raises the zoom to city level.
func (v ViewerLocation) Resolve(c Coordinates, source LocationSource) ViewerLocation {
	v.Latitude = c.Latitude
	v.Longitude = c.Longitude
	v.Resolved = true
	v.Zoom = CityZoom
	v.Source = source
	v.Attempted = true
	return v
}

// GiveUp marks the resolution attempt as spent while keeping the default view.
func (v ViewerLocation) GiveUp() ViewerLocation {
	v.Attempted = true
	return v
}
