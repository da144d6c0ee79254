// Package api provides the HTTP API server for assetd.
// It uses the Echo framework to serve the REST endpoints for assets, the IP
// pool and the rack/switch/port topology.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"evalgo.org/assetd/internal/auth"
	"evalgo.org/assetd/internal/config"
	"evalgo.org/assetd/internal/importer"
	"evalgo.org/assetd/internal/inventory"
	"evalgo.org/assetd/internal/logging"
	"evalgo.org/assetd/internal/metrics"
	"evalgo.org/assetd/internal/network"
	"evalgo.org/assetd/internal/storage"
	"evalgo.org/assetd/internal/validation"
	"evalgo.org/assetd/internal/version"
)

// Server represents the assetd API server.
type Server struct {
	echo       *echo.Echo
	config     *config.Config
	log        zerolog.Logger
	storage    *storage.Storage
	inventory  *inventory.Store
	network    *network.Allocator
	importer   *importer.Importer
	metrics    *metrics.Metrics
	authMiddle *auth.Middleware
}

// New creates a new API server over an open storage. m may be nil, in
// which case /metrics is not served.
func New(cfg *config.Config, store *storage.Storage, log zerolog.Logger, m *metrics.Metrics) *Server {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = validation.New()

	server := &Server{
		echo:       e,
		config:     cfg,
		log:        logging.For(log, "api"),
		storage:    store,
		inventory:  inventory.NewStore(store, log, m),
		network:    network.NewAllocator(store, log),
		importer:   importer.New(store, log, m),
		metrics:    m,
		authMiddle: auth.NewMiddleware(cfg.Security),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.echo.Use(RequestLogger(s.log))
	s.echo.Use(middleware.Recover())

	if s.metrics != nil {
		s.echo.Use(s.metrics.Middleware)
	}

	s.echo.Use(SecurityHeaders)

	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}

	s.echo.Use(ValidateContentType)
	s.echo.Use(ValidateAcceptHeader)
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	v1 := s.echo.Group("/api/v1", s.authMiddle.RequireAuth)
	write := s.authMiddle.RequireWrite
	withID := ValidateIDFormat("id")

	assets := v1.Group("/assets")
	assets.GET("", s.listAssets)
	assets.POST("", s.createAsset, write)
	assets.POST("/upload", s.uploadAssets, write)
	assets.GET("/:id", s.getAsset, withID)
	assets.PUT("/:id", s.updateAsset, withID, write)
	assets.DELETE("/:id", s.deleteAsset, withID, write)
	assets.POST("/:id/upload-bitlocker", s.uploadBitLocker, withID, write)
	assets.POST("/:id/replace", s.replaceAsset, withID, write)

	pools := v1.Group("/ip-pools")
	pools.GET("", s.listPool)
	pools.POST("", s.createPoolAddress, write)
	pools.GET("/:id", s.getPoolAddress, withID)
	pools.PUT("/:id", s.updatePoolAddress, withID, write)
	pools.DELETE("/:id", s.deletePoolAddress, withID, write)
	pools.POST("/:id/assignment", s.assignPoolAddress, withID, write)
	pools.DELETE("/:id/assignment", s.unassignPoolAddress, withID, write)

	v1.GET("/ips", s.availableIPs)

	vlans := v1.Group("/vlans")
	vlans.GET("", s.listVlans)
	vlans.POST("", s.createVlan, write)
	vlans.DELETE("/:id", s.deleteVlan, withID, write)

	racks := v1.Group("/racks")
	racks.GET("", s.listRacks)
	racks.POST("", s.createRack, write)
	racks.GET("/:id", s.getRack, withID)
	racks.PUT("/:id", s.updateRack, withID, write)
	racks.DELETE("/:id", s.deleteRack, withID, write)
	racks.GET("/:id/next-lan-id", s.nextLANID, withID)

	switches := v1.Group("/switches")
	switches.GET("", s.listSwitches)
	switches.POST("", s.createSwitch, write)
	switches.GET("/:id", s.getSwitch, withID)
	switches.PUT("/:id", s.updateSwitch, withID, write)
	switches.DELETE("/:id", s.deleteSwitch, withID, write)

	ports := v1.Group("/ports")
	ports.GET("", s.listPorts)
	ports.POST("", s.createPort, write)
	ports.GET("/:id", s.getPort, withID)
	ports.PUT("/:id", s.updatePort, withID, write)
	ports.DELETE("/:id", s.deletePort, withID, write)
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.log.Info().
		Str("addr", addr).
		Str("driver", s.config.Database.Driver).
		Bool("tls", s.config.Server.TLSEnabled).
		Bool("auth", s.authMiddle.Enabled()).
		Str("version", version.Version).
		Msg("starting assetd API server")

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	var err error
	if s.config.Server.TLSEnabled {
		err = s.echo.StartTLS(addr, s.config.Server.TLSCert, s.config.Server.TLSKey)
	} else {
		err = s.echo.Start(addr)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server and closes the storage.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down assetd API server")

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	if err := s.storage.Close(); err != nil {
		return fmt.Errorf("error closing storage: %w", err)
	}

	s.log.Info().Msg("server shutdown complete")
	return nil
}

// healthCheck handles GET /health
func (s *Server) healthCheck(c echo.Context) error {
	if err := s.storage.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:  "unhealthy",
			Service: "assetd",
			Version: version.Version,
			Error:   "database connection failed",
		})
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Service:  "assetd",
		Version:  version.Version,
		Database: s.config.Database.Driver,
	})
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
