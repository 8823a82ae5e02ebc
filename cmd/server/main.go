package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/janisto/hello-server/internal/platform/config"
	applog "github.com/janisto/hello-server/internal/platform/logging"
	"github.com/janisto/hello-server/internal/platform/server"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	// Run blocks until SIGINT/SIGTERM and exits non-zero if startup fails,
	// e.g. when the port is already bound.
	fx.New(options()).Run()
}

func options() fx.Option {
	return fx.Options(
		applog.Module,
		fx.Provide(config.Load),
		fx.Invoke(logStartup),
		server.Module,
	)
}

func logStartup(log *zap.Logger, cfg config.Config) {
	log.Info("starting server", zap.String("version", Version), zap.String("addr", cfg.Addr()))
}
