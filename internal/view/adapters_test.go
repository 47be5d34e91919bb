package view_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/nfrund/guestmap/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

func TestAdaptGomponentToTempl(t *testing.T) {
	var buf bytes.Buffer
	c := view.AdaptGomponentToTempl(html.Span(html.Class("pin"), g.Text("Ada")))
	require.NoError(t, c.Render(context.Background(), &buf))
	assert.Equal(t, `<span class="pin">Ada</span>`, buf.String())
}

func TestAdaptTemplToGomponent(t *testing.T) {
	component := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<em>hi</em>")
		return err
	})

	var buf bytes.Buffer
	node := html.Div(view.AdaptTemplToGomponent(component))
	require.NoError(t, node.Render(&buf))
	assert.Equal(t, "<div><em>hi</em></div>", buf.String())
}
