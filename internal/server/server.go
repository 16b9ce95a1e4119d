// Package server exposes the pipeline over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scenegen/internal/config"
	"scenegen/internal/logging"
	"scenegen/internal/perception"
	"scenegen/internal/pipeline"
	"scenegen/internal/types"
)

// Runner executes one pipeline request.
type Runner interface {
	Run(ctx context.Context, req types.GenerationRequest, target pipeline.TargetFunc) (*pipeline.Result, error)
}

// Server is the HTTP surface. Handlers share nothing but the runner.
type Server struct {
	runner   Runner
	cfg      *config.Config
	catalog  *perception.Catalog
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	tempDir  string
	remove   func(string) error
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithCatalog lists catalog models on GET /models.
func WithCatalog(c *perception.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithGatherer serves g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the access logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the router.
func New(runner Runner, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		cfg:      cfg,
		catalog:  perception.DefaultCatalog(),
		gatherer: prometheus.DefaultGatherer,
		logger:   zap.NewNop(),
		tempDir:  cfg.GetTempDir(),
		remove:   os.Remove,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID())
	r.Use(accessLog(s.logger))
	r.Use(gin.Recovery())

	if origins := s.cfg.Server.CORSOrigins; len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", requestIDHeader}
		corsConfig.ExposeHeaders = []string{scriptHeader, filenameHeader, modelHeader, requestIDHeader, "Content-Disposition"}
		r.Use(cors.New(corsConfig))
	}

	r.GET("/healthz", s.handleHealth)
	r.GET("/models", s.handleModels)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	limited := r.Group("/")
	if rps := s.cfg.Server.RateLimitRPS; rps > 0 {
		limited.Use(rateLimit(rps, s.cfg.Server.RateLimitBurst))
	}
	limited.POST("/generate-scene", s.handleGenerate)
	limited.POST("/refine-scene", s.handleRefine)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.tempDir, 0755); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.GetReadTimeout(),
		WriteTimeout: s.cfg.GetWriteTimeout(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Server("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Server("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
