package rendering

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

func TestRenderComponent(t *testing.T) {
	r := NewUniversalRenderer()

	out, err := r.RenderComponent(context.Background(), html.P(g.Text("Thanks for stopping by")))
	require.NoError(t, err)
	assert.Equal(t, "<p>Thanks for stopping by</p>", string(out))

	_, err = r.RenderComponent(context.Background(), 42)
	assert.ErrorContains(t, err, "unsupported component type: int")
}

func TestRenderPage(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	r := NewUniversalRenderer()
	require.NoError(t, r.RenderPage(c, http.StatusCreated, html.Div(g.Text("ok"))))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, echo.MIMETextHTMLCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "<div>ok</div>", rec.Body.String())
}

func TestEchoRender(t *testing.T) {
	e := echo.New()
	e.Renderer = NewUniversalRenderer()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, c.Render(http.StatusOK, "", html.Span(g.Text("x"))))
	assert.Equal(t, "<span>x</span>", rec.Body.String())
}
