package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/nfrund/guestmap/internal/assets"
	"github.com/nfrund/guestmap/internal/config"
	"github.com/nfrund/guestmap/internal/modules/widget"
	"github.com/nfrund/guestmap/internal/observability"
	"github.com/nfrund/guestmap/internal/pubsub"
	"github.com/nfrund/guestmap/internal/rendering"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/trace"
)

// Core holds the application-wide services shared by the server and the modules.
type Core struct {
	Injector do.Injector
	Registry *prometheus.Registry
	Renderer rendering.Renderer
	Assets   *assets.Store
	Bus      *pubsub.WatermillBridge

	shutdownTracing func(context.Context) error
}

// Options customise NewCore. Zero values select the production choices.
type Options struct {
	// Clock defaults to the real clock.
	Clock clockwork.Clock
	// Assets defaults to the embedded bundle overlaid by ASSETS_DIR.
	Assets *assets.Store
}

// NewCore builds the core services and provides them to a new injector.
func NewCore(ctx context.Context, cfg config.Provider, logger *slog.Logger, embedded AssetSource, opts Options) (*Core, error) {
	tracer, shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.GetTracingEnabled(),
		ServiceName: cfg.GetServiceName(),
		ZipkinURL:   cfg.GetZipkinURL(),
	})
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	store := opts.Assets
	if store == nil {
		store, err = embedded.Open(cfg.GetAssetsDir(), logger)
		if err != nil {
			return nil, err
		}
		if dir := cfg.GetAssetsDir(); dir != "" {
			if err := store.Watch(ctx, dir); err != nil {
				logger.Warn("Asset overlay not watched", "directory", dir, "error", err)
			}
		}
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	bus := pubsub.NewWatermillBridgeWithTracer(tracer)
	renderer := rendering.NewUniversalRenderer()

	i := do.New()
	do.ProvideValue[config.Provider](i, cfg)
	do.ProvideValue(i, logger)
	do.ProvideValue(i, metrics)
	do.ProvideValue[trace.Tracer](i, tracer)
	do.ProvideValue[clockwork.Clock](i, clock)
	do.ProvideValue[pubsub.Publisher](i, bus)
	do.ProvideValue[pubsub.Subscriber](i, bus)
	do.ProvideValue[rendering.Renderer](i, renderer)
	do.ProvideValue[widget.AssetVersioner](i, store)

	return &Core{
		Injector:        i,
		Registry:        reg,
		Renderer:        renderer,
		Assets:          store,
		Bus:             bus,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Close releases the event bus and flushes traces.
func (c *Core) Close(ctx context.Context) error {
	return errors.Join(c.Bus.Close(), c.shutdownTracing(ctx))
}
