package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/guestmap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticInstance struct {
	id string
	ok bool
}

func (s staticInstance) CurrentInstance(echo.Context) (string, bool) { return s.id, s.ok }

func TestRequireWidget(t *testing.T) {
	okHandler := func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(InstanceContextKey).(string))
	}

	t.Run("matching instance passes", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/widget/status", nil)
		req.Header.Set(HeaderWidgetInstance, "abc")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireWidget(staticInstance{id: "abc", ok: true})(okHandler)(c)
		require.NoError(t, err)
		assert.Equal(t, "abc", rec.Body.String())
	})

	t.Run("query parameter is accepted", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/widget/groups?instance=abc", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireWidget(staticInstance{id: "abc", ok: true})(okHandler)(c)
		assert.NoError(t, err)
	})

	t.Run("old page is rejected", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/widget/messages", nil)
		req.Header.Set(HeaderWidgetInstance, "old")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireWidget(staticInstance{id: "new", ok: true})(okHandler)(c)
		var he *echo.HTTPError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, http.StatusConflict, he.Code)
		assert.True(t, errors.Is(he.Internal, domain.ErrStaleWidget))
		assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))
	})

	t.Run("missing session is rejected", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/widget/status", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		err := RequireWidget(staticInstance{})(okHandler)(c)
		var he *echo.HTTPError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, http.StatusConflict, he.Code)
	})
}

func TestLoggerMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	rec.Header().Set(echo.HeaderXRequestID, "req-1")
	c := e.NewContext(req, rec)

	var seen bool
	err := Logger(nil)(func(c echo.Context) error {
		seen = FromContext(c.Request().Context()) != nil
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, seen)
}
