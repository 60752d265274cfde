package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/bahria/bahria-go/internal/analysis"
	mw "github.com/bahria/bahria-go/internal/api/middleware"
	v2 "github.com/bahria/bahria-go/internal/api/v2"
	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/logging"
	"github.com/bahria/bahria-go/internal/observability"
	"github.com/bahria/bahria-go/internal/ocean"
	"github.com/bahria/bahria-go/internal/species"
)

// Server is the HTTP server for BAHRIA.
// It manages the Echo framework instance, middleware, and all HTTP routes.
type Server struct {
	echo     *echo.Echo
	config   *Config
	settings *conf.Settings
	slogger  *slog.Logger

	// Dependencies
	species  species.Store
	ocean    ocean.Provider
	analysis *analysis.Service
	metrics  *observability.Metrics

	apiController *v2.Controller

	wg        sync.WaitGroup
	startTime time.Time
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithMetrics sets the metrics instance used for request metrics.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithOceanProvider sets the SST provider exposed by /api/v2/ocean/sst.
func WithOceanProvider(p ocean.Provider) ServerOption {
	return func(s *Server) {
		s.ocean = p
	}
}

// New creates a new HTTP server with the given settings and options.
func New(settings *conf.Settings, store species.Store, service *analysis.Service, opts ...ServerOption) (*Server, error) {
	config := ConfigFromSettings(settings)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	s := &Server{
		config:    config,
		settings:  settings,
		species:   store,
		analysis:  service,
		slogger:   logging.ForService("server"),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}

	s.slogger.Info("HTTP server initialized",
		"address", config.Address(),
		"debug", config.Debug,
	)

	return s, nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())

	if s.metrics != nil {
		s.echo.Use(mw.NewRequestMetrics(s.metrics.HTTP))
	}

	s.echo.Use(mw.NewRequestLogger(s.slogger))

	securityConfig := mw.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = s.config.AllowedOrigins

	s.echo.Use(mw.NewCORS(securityConfig))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewSecureHeaders(securityConfig))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	s.echo.GET("/health", s.healthCheck)

	apiController, err := v2.New(s.echo, s.settings, s.species, s.ocean, s.analysis)
	if err != nil {
		return fmt.Errorf("failed to initialize API v2: %w", err)
	}
	s.apiController = apiController

	s.slogger.Info("Routes initialized", "api_version", "v2")
	return nil
}

// healthCheck handles the server health check endpoint.
func (s *Server) healthCheck(c echo.Context) error {
	uptime := time.Since(s.startTime)

	return c.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        s.settings.Version,
		"build_date":     s.settings.BuildDate,
		"uptime":         uptime.String(),
		"uptime_seconds": uptime.Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// Start begins serving HTTP requests in a background goroutine and returns
// once the listener is bound. Use Shutdown() to stop the server.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address(), err)
	}
	s.echo.Listener = listener

	s.wg.Go(func() {
		if err := s.serve(); err != nil {
			s.slogger.Error("Server error", "error", err)
		}
	})

	s.slogger.Info("HTTP server starting", "address", listener.Addr().String())
	return nil
}

// serve blocks until the server is shut down.
func (s *Server) serve() error {
	err := s.echo.Start("")
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.echo.Listener == nil {
		return nil
	}
	return s.echo.Listener.Addr()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.slogger.Error("Error during server shutdown", "error", err)
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.wg.Wait()

	if s.apiController != nil {
		s.apiController.Shutdown()
	}

	s.slogger.Info("Server shutdown complete")
	return nil
}

// APIController returns the v2 API controller.
func (s *Server) APIController() *v2.Controller {
	return s.apiController
}

// Echo returns the underlying Echo instance.
// This is useful for testing or advanced configuration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
