package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/printops/printserver/internal/app"
	"github.com/printops/printserver/internal/config"
	httpserver "github.com/printops/printserver/internal/http"
)

// RunServer starts the HTTPS server with graceful shutdown support.
// Loads configuration, initializes the DI container, and starts the TLS
// server plus the metrics server when enabled. A bad TLS keypair or an
// unreadable credential snapshot fails here, before any listener is opened.
// Blocks until SIGINT/SIGTERM or a fatal server error.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("store_driver", cfg.StoreDriver),
	)

	defer closeContainer(container, logger)

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTPS server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	// Stop both servers once the context is cancelled, whether by a shutdown
	// signal or by the other goroutines failing.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return shutdownServers(server, metricsServer, cfg)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// shutdownServers stops both servers within the configured timeout.
func shutdownServers(
	server *httpserver.Server,
	metricsServer *httpserver.MetricsServer,
	cfg *config.Config,
) error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
	defer shutdownCancel()

	var shutdownErrors []error

	if err := server.Shutdown(shutdownCtx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return errors.Join(shutdownErrors...)
	}
	return nil
}
