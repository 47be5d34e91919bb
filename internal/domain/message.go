package domain

// Message is a single geotagged entry contributed by a visitor. Messages are
// created by the remote message API and never modified or deleted here.
type Message struct {
	ID        string  `json:"_id"`
	Name      string  `json:"name"`
	Message   string  `json:"message"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinates returns the message position.
func (m Message) Coordinates() Coordinates {
	return Coordinates{Latitude: m.Latitude, Longitude: m.Longitude}
}

// NewMessage is the payload POSTed to the remote message API.
type NewMessage struct {
	Name      string  `json:"name"`
	Message   string  `json:"message"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationGroup clusters messages that share exactly the same coordinates.
// The first message seen at a coordinate is the representative; later ones
// are kept in Others in arrival order.
type LocationGroup struct {
	Representative Message   `json:"representative"`
	Others         []Message `json:"others,omitempty"`
}

// Messages returns the representative followed by the other messages.
func (g LocationGroup) Messages() []Message {
	all := make([]Message, 0, len(g.Others)+1)
	all = append(all, g.Representative)
	return append(all, g.Others...)
}

// DraftMessage is the mutable form input of a widget. Submitting does not
// clear it; only a new widget instance starts with an empty draft.
type DraftMessage struct {
	Name    string `json:"name" form:"name" validate:"required,jsmin=1,jsmax=500"`
	Message string `json:"message" form:"message" validate:"required,jsmin=1,jsmax=500"`
}
