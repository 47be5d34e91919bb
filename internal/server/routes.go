package server

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/guestmap/internal/assets"
	"github.com/prometheus/client_golang/prometheus"
)

// registerRoutes sets up the routes that do not belong to a module.
func (s *Server) registerRoutes(store *assets.Store, reg *prometheus.Registry) {
	s.E.GET("/static/*", assets.NewFileHandler(store).Serve)

	s.E.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: reg,
	}))

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
