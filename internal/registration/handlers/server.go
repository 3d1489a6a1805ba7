package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gartstein/eventreg/internal/registration/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and the gin engine serving the API.
type Server struct {
	httpServer   *http.Server
	engine       *gin.Engine
	logger       *zap.Logger
	httpEndpoint string
}

// NewServer constructs a Server listening on the given port.
func NewServer(httpPort int, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(cors.Default())

	endpoint := fmt.Sprintf(":%d", httpPort)
	return &Server{
		httpServer:   &http.Server{Addr: endpoint, Handler: engine},
		engine:       engine,
		logger:       logger,
		httpEndpoint: endpoint,
	}
}

// RegisterRoutes wires the handler into the API routes. Admin routes
// require an admin token; event management requires a company token.
func (s *Server) RegisterRoutes(h *Handler) {
	api := s.engine.Group("/api")

	api.GET("/events", h.ListEvents)
	api.POST("/events", auth.Middleware(h.jwtSecret, auth.RoleCompany), h.CreateEvent)
	api.PUT("/events", auth.Middleware(h.jwtSecret, auth.RoleCompany), h.UpdateEvent)
	api.POST("/events/register", h.Register)
	api.POST("/login", h.CompanyLogin)

	companies := api.Group("/companies", auth.Middleware(h.jwtSecret, auth.RoleAdmin))
	companies.GET("", h.ListCompanies)
	companies.POST("", h.CreateCompany)
	companies.PUT("", h.UpdateCompany)
	companies.DELETE("", h.DeleteCompany)
}

// Engine exposes the underlying gin engine, used by tests to drive requests
// through httptest.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start runs the HTTP server until it fails or is stopped.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP serve error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Server stopped")
}

// requestLogger logs one line per request with method, path, status and
// duration.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
