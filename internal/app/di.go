// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/printops/printserver/internal/audit"
	authRepository "github.com/printops/printserver/internal/auth/repository"
	authService "github.com/printops/printserver/internal/auth/service"
	authUsecase "github.com/printops/printserver/internal/auth/usecase"
	"github.com/printops/printserver/internal/config"
	"github.com/printops/printserver/internal/database"
	"github.com/printops/printserver/internal/gate"
	"github.com/printops/printserver/internal/http"
	"github.com/printops/printserver/internal/metrics"
	"github.com/printops/printserver/internal/printer/backend"
	printerHTTP "github.com/printops/printserver/internal/printer/http"
)

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily on first access.
type Container struct {
	config *config.Config

	// Infrastructure
	logger    *slog.Logger
	db        *sql.DB
	txManager database.TxManager

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Domain components (initialized in di_auth.go and di_printer.go)
	cachedFileStore *authRepository.FileStore
	secretVerifier  authService.SecretVerifier
	userRepo        authUsecase.UserRepository
	grantRepo       authUsecase.GrantRepository
	credentialUC    authUsecase.CredentialUseCase
	accessUC        authUsecase.AccessUseCase
	auditRecorder   audit.Recorder
	dispatcher      *gate.Dispatcher
	printerBackend  backend.PrinterBackend
	printerHandler  *printerHTTP.PrinterHandler
	httpServer      *http.Server
	metricsServer   *http.MetricsServer
	metricsShutdown func(ctx context.Context) error

	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsInit         sync.Once
	businessMetricsInit sync.Once
	userRepoInit        sync.Once
	grantRepoInit       sync.Once
	credentialUCInit    sync.Once
	accessUCInit        sync.Once
	auditRecorderInit   sync.Once
	dispatcherInit      sync.Once
	backendInit         sync.Once
	printerHandlerInit  sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection. Returns nil without error when the
// store driver is file-backed: no component needs a database in that mode.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		if c.config.StoreDriver == config.StoreDriverFile {
			return
		}
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager. Requires a database-backed store.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = err
			return
		}
		if db == nil {
			c.initErrors["txManager"] = fmt.Errorf("transaction manager requires a database store, driver is %q", c.config.StoreDriver)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
			return
		}
		c.metricsProvider = provider
		c.metricsShutdown = provider.Shutdown
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. Falls back to a
// no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		c.businessMetrics = bm
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// MetricsServer returns the metrics HTTP server, or nil when metrics are
// disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// HTTPServer returns the API server with all routes registered. This
// initializes the full dependency graph; a bad TLS keypair fails here, before
// any listener is opened.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsShutdown != nil {
		if err := c.metricsShutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a structured JSON logger based on the configured level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB opens the database connection for the configured driver.
func (c *Container) initDB() (*sql.DB, error) {
	driver, err := sqlDriverName(c.config.StoreDriver)
	if err != nil {
		return nil, err
	}

	return database.Connect(database.Config{
		Driver:             driver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
}

// initHTTPServer assembles the full server: TLS, middleware, and routes.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	tlsConfig, err := http.NewTLSConfig(
		c.config.TLSCertPath,
		c.config.TLSKeyPath,
		c.config.TLSClientCAPath,
	)
	if err != nil {
		return nil, err
	}

	db, err := c.DB()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, tlsConfig, logger)
	router := server.Router()

	if corsMiddleware := http.CreateCORSMiddleware(
		c.config.CORSEnabled,
		c.config.CORSAllowOrigins,
		logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace))
	}

	handler, err := c.PrinterHandler()
	if err != nil {
		return nil, err
	}
	handler.RegisterRoutes(router)

	return server, nil
}

// sqlDriverName maps a store driver to its database/sql driver name.
func sqlDriverName(storeDriver string) (string, error) {
	switch storeDriver {
	case config.StoreDriverPostgres:
		return "postgres", nil
	case config.StoreDriverMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported store driver: %q", storeDriver)
	}
}
