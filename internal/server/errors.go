package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/guestmap/internal/handlers"
	appmiddleware "github.com/nfrund/guestmap/internal/middleware"
)

// setupErrorHandling installs an HTTPErrorHandler that answers with an
// ErrorResponse and logs unexpected errors with a stack trace.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		logger := appmiddleware.FromContext(c.Request().Context())

		code := http.StatusInternalServerError
		message := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			}
			if code >= http.StatusInternalServerError {
				logger.Error("Request failed",
					"status", code,
					"error", err.Error(),
					"path", c.Request().URL.Path)
			} else if he.Internal != nil {
				logger.Info("Request rejected",
					"status", code,
					"error", he.Internal.Error(),
					"path", c.Request().URL.Path)
			}
		} else {
			logger.Error("Internal Server Error (Unhandled)",
				slog.String("error", err.Error()),
				slog.String("path", c.Request().URL.Path),
				slog.String("stack_trace", string(debug.Stack())))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handlers.ErrorResponse{
			Code:    errorCode(code),
			Message: message,
		})
	}
}

func errorCode(status int) string {
	return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
}
