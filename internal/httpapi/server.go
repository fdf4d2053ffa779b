// Package httpapi exposes the decision-support operations over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/assessment"
	"github.com/fyrsmithlabs/haccpd/internal/catalog"
	"github.com/fyrsmithlabs/haccpd/internal/resolver"
	"github.com/fyrsmithlabs/haccpd/internal/retriever"
	"github.com/fyrsmithlabs/haccpd/internal/suggest"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server wires the retrieval, resolution, questionnaire and persistence
// layers behind the JSON API.
type Server struct {
	echo      *echo.Echo
	logger    *zap.Logger
	config    Config
	version   string
	library   *retriever.Library
	resolver  *resolver.Resolver
	suggester *suggest.Suggester
	store     *assessment.Store
	catalog   *catalog.Catalog
}

// Deps bundles the components the server serves. Library, Resolver,
// Suggester and Store are required; Catalog may be nil, which disables
// the catalog routes.
type Deps struct {
	Library   *retriever.Library
	Resolver  *resolver.Resolver
	Suggester *suggest.Suggester
	Store     *assessment.Store
	Catalog   *catalog.Catalog
	Version   string
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(cfg Config, deps Deps, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Library == nil || deps.Resolver == nil || deps.Suggester == nil || deps.Store == nil {
		return nil, fmt.Errorf("library, resolver, suggester and store are required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			status := c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}
			RequestsTotal.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			RequestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(duration.Seconds())

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:      e,
		logger:    logger,
		config:    cfg,
		version:   deps.Version,
		library:   deps.Library,
		resolver:  deps.Resolver,
		suggester: deps.Suggester,
		store:     deps.Store,
		catalog:   deps.Catalog,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")

	v1.POST("/steps/similar", s.handleSimilarSteps)
	v1.POST("/hazards/resolve", s.handleResolveHazards)
	v1.POST("/questionnaire/evaluate", s.handleEvaluate)
	v1.POST("/monitoring-plan/suggest", s.handleSuggestPlan)

	v1.POST("/assessments", s.handleCreateAssessment)
	v1.GET("/assessments", s.handleListAssessments)
	v1.GET("/assessments/:id", s.handleGetAssessment)
	v1.POST("/assessments/:id/perigos", s.handleAddHazard)
	v1.PUT("/assessments/:id/perigos/:entryID", s.handleUpdateHazard)
	v1.PUT("/assessments/:id/perigos/:entryID/formulario-h", s.handleSaveFormH)
	v1.PUT("/assessments/:id/perigos/:entryID/formulario-i", s.handleSaveFormI)
	v1.POST("/assessments/init-formulario-h", s.handleInitFormH)

	if s.catalog != nil {
		v1.POST("/catalog/produtos", s.handleCreateProduto)
		v1.GET("/catalog/produtos", s.handleListProdutos)
		v1.POST("/catalog/chain", s.handleEnsureChain)
		v1.PUT("/catalog/perigos/:id/formulario-h", s.handleCatalogSaveFormH)
		v1.GET("/catalog/perigos/:id/formulario-h", s.handleCatalogGetFormH)
	}
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
