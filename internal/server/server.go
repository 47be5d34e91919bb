package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/guestmap/internal/assets"
	"github.com/nfrund/guestmap/internal/config"
	"github.com/nfrund/guestmap/internal/handlers"
	appmiddleware "github.com/nfrund/guestmap/internal/middleware"
	"github.com/nfrund/guestmap/internal/module"
	"github.com/nfrund/guestmap/internal/rendering"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
)

// Dependencies holds everything the server needs from the entrypoint.
type Dependencies struct {
	Config   config.Provider
	Logger   *slog.Logger
	Injector do.Injector
	Registry *prometheus.Registry
	Renderer rendering.Renderer
	Assets   *assets.Store
	// Clock drives the session sweeper; nil means the real clock.
	Clock clockwork.Clock
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	injector do.Injector
	logger   *slog.Logger
	modules  []module.Module

	sweeper   *sessionSweeper
	stopSweep context.CancelFunc
}

// New creates a new Server with its core middleware and routes.
func New(deps Dependencies) (*Server, error) {
	if deps.Config == nil || deps.Injector == nil || deps.Registry == nil || deps.Assets == nil {
		return nil, errors.New("server: config, injector, registry and assets are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = rendering.NewUniversalRenderer()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = echoRenderer(renderer)
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(appmiddleware.Logger(logger))
	e.Use(middleware.Recover())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "guestmap",
		Subsystem:  "http",
		Registerer: deps.Registry,
	}))

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	dir := sessionDir(deps.Config)
	store, err := newSessionStore(deps.Config, dir)
	if err != nil {
		return nil, err
	}
	e.Use(session.Middleware(store))
	do.ProvideValue[sessions.Store](deps.Injector, store)

	s := &Server{
		E:        e,
		Cfg:      deps.Config,
		injector: deps.Injector,
		logger:   logger,
		sweeper:  newSessionSweeper(afero.NewOsFs(), dir, sessionMaxAge, clock, logger),
	}
	s.registerRoutes(deps.Assets, deps.Registry)
	return s, nil
}

// InitModules registers every module with the injector, then boots them in
// order on the root route group.
func (s *Server) InitModules(ctx context.Context, modules []module.Module) error {
	for _, m := range modules {
		if err := m.Register(s.injector); err != nil {
			return fmt.Errorf("register module %s: %w", m.Name(), err)
		}
		s.logger.Debug("Module registered", "module", m.Name())
	}

	root := s.E.Group("")
	for _, m := range modules {
		if err := m.Boot(ctx, root, s.injector); err != nil {
			return fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
		s.logger.Info("Module booted", "module", m.Name())
	}
	s.modules = modules
	return nil
}

// echoRenderer exposes the universal renderer through echo.Renderer.
func echoRenderer(r rendering.Renderer) echo.Renderer {
	if er, ok := r.(echo.Renderer); ok {
		return er
	}
	return rendering.NewUniversalRenderer()
}
