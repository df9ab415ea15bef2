// Package http provides the TLS HTTP server and request middleware.
package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/printops/printserver/internal/errors"
)

// Server is the API server. It only ever serves TLS: construction fails when
// the keypair cannot be loaded, so a misconfigured server never comes up in
// the clear.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewTLSConfig builds the server TLS configuration from PEM files. When
// clientCAPath is non-empty, client certificates are required and verified
// against that CA bundle.
func NewTLSConfig(certPath, keyPath, clientCAPath string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load TLS keypair")
	}

	tlsConfig := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}

	if clientCAPath != "" {
		caPEM, err := os.ReadFile(clientCAPath)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to read client CA bundle")
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, apperrors.New("client CA bundle contains no certificates")
		}

		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tlsConfig, nil
}

// NewServer creates the API server. db may be nil when the credential store
// is file-backed; readiness then skips the database ping.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	tlsConfig *tls.Config,
	logger *slog.Logger,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))

	server := &Server{
		router: router,
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			TLSConfig:    tlsConfig,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			// Handshake failures and dropped connections go to the
			// structured log instead of stderr.
			ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
	}

	router.GET("/health", server.healthHandler)
	router.GET("/ready", server.readinessHandler)

	return server
}

// Router returns the underlying router for handler registration and
// additional middleware. Middleware added here applies to routes registered
// after it.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the TLS server and blocks until shutdown or failure.
func (s *Server) Start(ctx context.Context) error {
	if s.server.TLSConfig == nil {
		return apperrors.New("refusing to start without TLS configuration")
	}

	s.logger.Info("starting https server", slog.String("addr", s.server.Addr))

	// Certificates come from TLSConfig; no file paths here.
	if err := s.server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down https server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness, pinging the database when one is
// configured.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
