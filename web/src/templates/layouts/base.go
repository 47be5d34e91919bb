package layouts

import (
	"github.com/nfrund/guestmap/internal/view"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/components"
	"maragu.dev/gomponents/html"
)

const (
	leafletCSS = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"
	leafletJS  = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"
	htmxJS     = "https://unpkg.com/htmx.org@2.0.4"
)

// BaseProps configures the page shell.
type BaseProps struct {
	Title        string
	AssetVersion string
	Flashes      []view.FlashMessage
}

// Base is the HTML page shell: Leaflet, htmx and the widget's own assets.
func Base(props BaseProps, body ...g.Node) g.Node {
	return components.HTML5(components.HTML5Props{
		Title:    CalculateTitle(props.Title),
		Language: "en",
		Head: []g.Node{
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.Link(html.Rel("stylesheet"), html.Href(leafletCSS)),
			html.Link(html.Rel("stylesheet"), html.Href(AssetURL("/static/app.css", props.AssetVersion))),
			html.Script(html.Src(leafletJS)),
			html.Script(html.Src(htmxJS)),
			html.Script(html.Src(AssetURL("/static/app.js", props.AssetVersion)), html.Defer()),
		},
		Body: []g.Node{
			view.AdaptTemplToGomponent(view.FlashPartial(props.Flashes)),
			g.Group(body),
		},
	})
}
