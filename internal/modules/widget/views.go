package widget

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/guestmap"
	appmiddleware "github.com/nfrund/guestmap/internal/middleware"
	"github.com/nfrund/guestmap/web/src/templates/layouts"
	"github.com/samber/lo"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

const (
	panelID       = "guestmap-panel"
	panelSelector = "#" + panelID
	minPollDelay  = 100 * time.Millisecond
)

// WidgetPage is the map, its panel and the load-error banner for one widget
// instance.
func WidgetPage(st guestmap.WidgetState, assetVersion string) g.Node {
	headers, _ := json.Marshal(map[string]string{appmiddleware.HeaderWidgetInstance: st.InstanceID})

	return Div(
		ID("guestmap"),
		Data("instance", st.InstanceID),
		Data("latitude", formatCoord(st.Viewer.Latitude)),
		Data("longitude", formatCoord(st.Viewer.Longitude)),
		Data("zoom", strconv.Itoa(st.Viewer.Zoom)),
		Data("groups-url", "/widget/groups"),
		Data("location-url", "/widget/location"),
		Data("viewer-icon", layouts.AssetURL("/static/pin.svg", assetVersion)),
		Data("message-icon", layouts.AssetURL("/static/message.svg", assetVersion)),
		g.Attr("hx-headers", string(headers)),
		Div(ID("map")),
		Panel(st, 0, assetVersion),
		Div(
			ID("guestmap-load-error"),
			Class("guestmap-load-error"),
			g.Attr("hidden"),
			g.Text("Could not load messages. "),
			A(ID("guestmap-load-retry"), Href("#"), g.Text("Try again")),
		),
	)
}

// Panel renders the side card for the current submission state. poll is the
// delay before an acknowledged submission asks for its status again.
func Panel(st guestmap.WidgetState, poll time.Duration, assetVersion string) g.Node {
	var body g.Node
	switch st.Submission.State {
	case domain.StateSending:
		body = sendingView(max(poll, minPollDelay), assetVersion)
	case domain.StateSent:
		body = sentView()
	case domain.StateFailed:
		body = failedView()
	default:
		body = formView(st.Draft, st.Viewer.Attempted)
	}
	return Div(ID(panelID), Class("guestmap-panel"), body)
}

// formView keeps Send disabled until the location attempt has finished; the
// shell enables it once its location report returns.
func formView(draft domain.DraftMessage, located bool) g.Node {
	return g.Group([]g.Node{
		H1(g.Text("Welcome to Guest map")),
		P(g.Text("Leave a message with your location!")),
		Form(
			hx.Post("/widget/messages"),
			hx.Target(panelSelector),
			hx.Swap("outerHTML"),
			hx.Indicator("#guestmap-sending"),
			Label(For("guestmap-name"), g.Text("Name")),
			Input(Type("text"), ID("guestmap-name"), Name("name"), Value(draft.Name), Placeholder("Enter your name")),
			Label(For("guestmap-message"), g.Text("Message")),
			Textarea(ID("guestmap-message"), Name("message"), Placeholder("Enter a message"), g.Text(draft.Message)),
			Button(ID("guestmap-send"), Type("submit"), g.If(!located, Disabled()), g.Text("Send")),
			Span(ID("guestmap-sending"), Class("htmx-indicator"), g.Text("Sending...")),
		),
		P(Class("guestmap-footer"), g.Text("Thanks for stopping by")),
	})
}

func sendingView(poll time.Duration, assetVersion string) g.Node {
	return Div(
		Class("guestmap-sending"),
		hx.Get("/widget/status"),
		hx.Trigger(fmt.Sprintf("load delay:%dms", poll.Milliseconds())),
		hx.Target(panelSelector),
		hx.Swap("outerHTML"),
		Img(Src(layouts.AssetURL("/static/message.svg", assetVersion)), Alt("")),
		P(g.Text("Sending your message...")),
	)
}

func sentView() g.Node {
	return g.Group([]g.Node{
		H1(g.Text("Thanks for submitting a message")),
		P(g.Text("Thanks for stopping by")),
	})
}

func failedView() g.Node {
	return g.Group([]g.Node{
		P(Class("guestmap-error"), g.Text("Your message could not be sent.")),
		Button(
			Type("button"),
			hx.Get("/widget/form"),
			hx.Target(panelSelector),
			hx.Swap("outerHTML"),
			g.Text("Try again"),
		),
	})
}

// Popup lists every message at one coordinate, representative first.
func Popup(group domain.LocationGroup) g.Node {
	return Div(
		Class("guestmap-popup"),
		g.Group(lo.Map(group.Messages(), func(m domain.Message, _ int) g.Node {
			return P(Em(g.Text(m.Name)), g.Text(": "+m.Message))
		})),
	)
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
