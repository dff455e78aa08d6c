package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/studyzone/studyzone-api/config"
	"golang.org/x/sync/errgroup"
)

// ServiceOrchestrationConfig groups dependencies for running enabled services.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown runs the enabled services until a shutdown signal
// arrives, then stops them gracefully.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	var server *http.Server
	if cfg.Config.IsHTTPServerEnabled() {
		server = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
	}

	if cfg.Config.IsPrunerEnabled() {
		logger.Info("starting chat retention pruner")
		g.Go(func() error {
			return cfg.Services.Pruner.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(context.Background(), server, logger)
	})

	err := g.Wait()

	if sink := cfg.Services.Observability.MetricsSink; sink != nil {
		if cerr := sink.Close(); cerr != nil {
			logger.Error("close metrics sink failed", "error", cerr)
		}
	}

	return err
}
