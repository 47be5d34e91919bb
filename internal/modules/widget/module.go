package widget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/guestmap/internal/activity"
	"github.com/nfrund/guestmap/internal/config"
	"github.com/nfrund/guestmap/internal/guestmap"
	"github.com/nfrund/guestmap/internal/ipapi"
	"github.com/nfrund/guestmap/internal/messageapi"
	appmiddleware "github.com/nfrund/guestmap/internal/middleware"
	"github.com/nfrund/guestmap/internal/module"
	"github.com/nfrund/guestmap/internal/observability"
	"github.com/nfrund/guestmap/internal/pubsub"
	"github.com/nfrund/guestmap/internal/rendering"
	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/trace"
)

// Module implements module.Module for the guest map widget.
type Module struct {
	module.BaseModule
	cancel context.CancelFunc
}

// New creates a new instance of the widget module.
func New() *Module {
	return &Module{}
}

// Name returns the unique name for the module.
func (m *Module) Name() string {
	return "widget"
}

// Register provides the message API selector, the IP locator, the widget
// service, its session store and its handler. The sessions.Store itself is
// provided by the server. Services already provided, such as fakes in
// tests, are kept.
func (m *Module) Register(i do.Injector) error {
	if _, err := do.Invoke[guestmap.StoreSelector](i); err != nil {
		do.Provide(i, func(i do.Injector) (guestmap.StoreSelector, error) {
			cfg := do.MustInvoke[config.Provider](i)
			return messageapi.NewSelector(
				cfg.GetMessagesAPILocalURL(),
				cfg.GetMessagesAPIURL(),
				cfg.GetHTTPTimeout(),
				do.MustInvoke[*observability.Metrics](i),
				do.MustInvoke[*slog.Logger](i),
			), nil
		})
	}

	if _, err := do.Invoke[guestmap.IPLocator](i); err != nil {
		do.Provide(i, func(i do.Injector) (guestmap.IPLocator, error) {
			cfg := do.MustInvoke[config.Provider](i)
			metrics := do.MustInvoke[*observability.Metrics](i)
			client := ipapi.NewClient(cfg.GetIPAPIURL(), cfg.GetHTTPTimeout(), metrics, do.MustInvoke[*slog.Logger](i))
			return ipapi.NewCachedLocator(client, cfg.GetIPCacheSize(), metrics), nil
		})
	}

	do.Provide(i, func(i do.Injector) (*guestmap.Service, error) {
		cfg := do.MustInvoke[config.Provider](i)
		logger := do.MustInvoke[*slog.Logger](i)
		return guestmap.NewService(guestmap.Dependencies{
			Stores:     do.MustInvoke[guestmap.StoreSelector](i),
			Resolver:   guestmap.NewResolver(do.MustInvoke[guestmap.IPLocator](i), logger),
			Validator:  guestmap.NewValidator(),
			Publisher:  do.MustInvoke[pubsub.Publisher](i),
			Clock:      do.MustInvoke[clockwork.Clock](i),
			Tracer:     do.MustInvoke[trace.Tracer](i),
			Logger:     logger,
			SentDelay:  cfg.GetSentDelay(),
			LegacyKeys: cfg.GetLegacyCoordinateKey(),
		}), nil
	})

	do.Provide(i, func(i do.Injector) (*SessionStore, error) {
		store, err := do.Invoke[sessions.Store](i)
		if err != nil {
			return nil, fmt.Errorf("widget sessions: %w", err)
		}
		return NewSessionStore(store), nil
	})

	do.Provide(i, func(i do.Injector) (*Handler, error) {
		return NewHandler(
			do.MustInvoke[*guestmap.Service](i),
			do.MustInvoke[*SessionStore](i),
			do.MustInvoke[rendering.Renderer](i),
			do.MustInvoke[AssetVersioner](i),
		), nil
	})
	return nil
}

// Boot starts the activity subscriber and registers the widget routes.
func (m *Module) Boot(ctx context.Context, g *echo.Group, i do.Injector) error {
	ctx, m.cancel = context.WithCancel(ctx)

	sub := activity.NewSubscriber(
		do.MustInvoke[pubsub.Subscriber](i),
		do.MustInvoke[*observability.Metrics](i),
		do.MustInvoke[*slog.Logger](i),
	)
	if err := sub.Start(ctx); err != nil {
		return err
	}

	h := do.MustInvoke[*Handler](i)
	slog.Info("Booting widget module: setting up routes")

	g.GET("/", h.Page)

	w := g.Group("/widget", appmiddleware.RequireWidget(h.Sessions()))
	w.GET("/groups", h.Groups)
	w.POST("/location", h.Location)
	w.POST("/messages", h.Messages, appmiddleware.RateLimiter())
	w.GET("/status", h.Status)
	w.GET("/form", h.Form)
	return nil
}

// Shutdown stops the activity subscriber.
func (m *Module) Shutdown(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}
