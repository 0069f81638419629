package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shop-demo/pkg/auth"
	"shop-demo/pkg/catalog"
	"shop-demo/pkg/config"
	"shop-demo/pkg/diagnostics"
	"shop-demo/pkg/handlers"
	"shop-demo/pkg/logging"
	"shop-demo/pkg/orders"
	"shop-demo/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the collaborators the router is built from
type Deps struct {
	Config  *config.Config
	Placer  *orders.Placer
	Metrics *diagnostics.Metrics
	Tracer  tracing.Tracer
	Logger  *zap.Logger
}

// NewRouter wires every route of the shop API
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if d.Placer == nil {
		d.Placer = orders.NewPlacer(cfg.Orders.IDLimit)
	}
	if d.Metrics == nil {
		d.Metrics = diagnostics.NewMetrics()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	authService := auth.New(&cfg.Auth)
	h := handlers.New(cfg.Message, catalog.New(cfg.Catalog), authService, d.Placer, d.Metrics, d.Logger)

	r := gin.New()
	// Unknown methods on known paths, and paths with a stray trailing
	// slash, fall through to the client page too.
	r.HandleMethodNotAllowed = false
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(gin.Recovery())
	r.Use(logging.Middleware(d.Logger))
	r.Use(d.Metrics.Middleware())
	if d.Tracer != nil {
		r.Use(tracing.Middleware(d.Tracer))
	}
	r.Use(cors.New(corsConfig(cfg.CORS)))
	r.Use(authService.Identify())

	r.GET("/static/*filepath", h.Asset)
	r.HEAD("/static/*filepath", h.Asset)

	// API routes
	api := r.Group("/api")
	{
		api.GET("/message", h.Message)
		api.GET("/products", h.ListProducts)
		api.POST("/login", h.Login)
		api.POST("/orders", h.PlaceOrder)
	}

	r.NoRoute(h.Fallback)

	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", logging.RequestIDHeader)
	c.ExposeHeaders = []string{logging.RequestIDHeader}

	if len(cfg.AllowOrigins) == 0 || (len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	return c
}

// Server runs the router until its context is cancelled
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func New(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting shop API", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
