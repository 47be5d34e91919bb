package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nfrund/guestmap/internal/app"
	"github.com/nfrund/guestmap/internal/config"
	"github.com/nfrund/guestmap/internal/logging"
	"github.com/nfrund/guestmap/internal/server"
	"github.com/nfrund/guestmap/web"
)

func main() {
	logger := logging.New()
	if err := run(logger, config.New()); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	core, err := app.NewCore(ctx, cfg, logger, app.EmbeddedAssets{FS: web.FS}, app.Options{})
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := core.Close(closeCtx); err != nil {
			logger.Warn("Error while closing application", "error", err)
		}
	}()

	s, err := server.New(server.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Injector: core.Injector,
		Registry: core.Registry,
		Renderer: core.Renderer,
		Assets:   core.Assets,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if err := s.InitModules(ctx, app.NewModules()); err != nil {
		return err
	}
	return s.Start(cfg.GetServerAddr())
}
