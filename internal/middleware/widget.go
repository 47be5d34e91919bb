package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/view"
)

// HeaderWidgetInstance carries the widget instance ID on every htmx request
// the page makes.
const HeaderWidgetInstance = "X-Guestmap-Instance"

// InstanceContextKey is where RequireWidget stores the verified instance ID.
const InstanceContextKey = "widget_instance"

// InstanceSource returns the instance ID held in the caller's session, or
// false when there is none.
type InstanceSource interface {
	CurrentInstance(c echo.Context) (string, bool)
}

// RequireWidget rejects widget requests that do not come from the page's
// current widget instance. A second tab or an old page gets 409 Conflict
// and is told to reload.
func RequireWidget(sessions InstanceSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			current, ok := sessions.CurrentInstance(c)
			if !ok {
				return echo.NewHTTPError(http.StatusConflict, "widget session expired, reload the page").
					SetInternal(domain.ErrStaleWidget)
			}

			claimed := c.Request().Header.Get(HeaderWidgetInstance)
			if claimed == "" {
				claimed = c.QueryParam("instance")
			}
			if claimed != current {
				FromContext(c.Request().Context()).Info("Stale widget request rejected",
					"claimed", claimed, "current", current)
				view.SetFlashError(c, "This page was out of date and has been reloaded.")
				c.Response().Header().Set("HX-Refresh", "true")
				return echo.NewHTTPError(http.StatusConflict, "this page is out of date, reload to continue").
					SetInternal(domain.ErrStaleWidget)
			}

			c.Set(InstanceContextKey, current)
			return next(c)
		}
	}
}
