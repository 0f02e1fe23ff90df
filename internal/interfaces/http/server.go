// Package http provides the REST adapter for the workflow engine.
// This is a thin adapter layer that translates HTTP requests to application calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/garyjia/procurement-portal/internal/application/service"
	"github.com/garyjia/procurement-portal/internal/application/workflow"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// JWTSecret verifies HS256 bearer tokens
	JWTSecret    string
	AllowOrigins []string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NotificationSocket upgrades an authenticated request to a push connection
type NotificationSocket interface {
	ServeWS(c *gin.Context, actor entity.Actor)
}

// Services are the application entry points served over HTTP
type Services struct {
	Goods         workflow.GoodsWorkflow
	Payments      workflow.PaymentWorkflow
	Proposals     workflow.ProposalWorkflow
	Notifications service.NotificationService
	Users         service.UserService
	CostCenters   service.CostCenterService
	// Socket and Metrics are optional
	Socket        NotificationSocket
	Metrics       http.Handler
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	corsConfig := cors.DefaultConfig()
	if len(s.config.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.config.AllowOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "If-Match"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"ETag"}
	s.router.Use(cors.New(corsConfig))
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := NewHandlers(s.services, s.logger)
	auth := authMiddleware([]byte(s.config.JWTSecret), s.services.Users, s.logger)

	s.router.GET("/health", h.HealthCheck)
	if s.services.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.services.Metrics))
	}
	if s.services.Socket != nil {
		s.router.GET("/ws/notifications", auth, h.ServeNotifications)
	}

	api := s.router.Group("/api", auth)
	{
		api.GET("/me", h.Me)

		goods := api.Group("/goods-requests")
		{
			goods.GET("", h.ListGoodsRequests)
			goods.POST("", h.CreateGoodsRequest)
			goods.GET("/:id", h.GetGoodsRequest)
			goods.PUT("/:id", h.EditGoodsRequest)
			goods.POST("/:id/submit", h.SubmitGoodsRequest)
			goods.POST("/:id/inquiries", h.AddInquiries)
			goods.POST("/:id/select-inquiry", h.SelectInquiry)
			goods.POST("/:id/receipts", h.AddReceipt)
			goods.POST("/:id/receipts/:rid/confirm", h.ConfirmReceipt)
			goods.POST("/:id/invoice", h.UploadInvoice)
			goods.POST("/:id/approve-financial", h.ApproveFinancial)
			goods.POST("/:id/reject", h.RejectGoodsRequest)
		}

		payments := api.Group("/payment-requests")
		{
			payments.GET("", h.ListPaymentRequests)
			payments.POST("", h.CreatePaymentRequest)
			payments.GET("/:id", h.GetPaymentRequest)
			payments.PUT("/:id", h.EditPaymentRequest)
			payments.POST("/:id/submit", h.SubmitPaymentRequest)
			payments.POST("/:id/payment-types", h.SetPaymentTypes)
			payments.POST("/:id/review", h.ReviewPaymentRequest)
			payments.POST("/:id/approve-dev-manager", h.ApproveDevManager)
			payments.POST("/:id/process-payment", h.ProcessPayment)
			payments.POST("/:id/reject", h.RejectPaymentRequest)
		}

		proposals := api.Group("/project-proposals")
		{
			proposals.GET("", h.ListProposals)
			proposals.POST("", h.CreateProposal)
			proposals.GET("/:id", h.GetProposal)
			proposals.PUT("/:id", h.EditProposal)
			proposals.POST("/:id/submit", h.SubmitProposal)
			proposals.POST("/:id/coo-review", h.COOReview)
			proposals.POST("/:id/assign-manager", h.AssignManager)
			proposals.POST("/:id/register", h.RegisterProposal)
			proposals.POST("/:id/complete", h.CompleteProposal)
		}

		api.GET("/notifications", h.ListNotifications)
		api.GET("/notifications/unread-count", h.UnreadCount)
		api.POST("/notifications/:id/read", h.MarkNotificationRead)

		api.GET("/users", h.ListUsers)
		api.GET("/users/:id", h.GetUser)
		api.PUT("/users/:id", h.SaveUser)
		api.DELETE("/users/:id", h.DeleteUser)

		api.GET("/cost-centers", h.ListCostCenters)
		api.POST("/cost-centers", h.CreateCostCenter)
		api.PUT("/cost-centers/:id", h.UpdateCostCenter)
		api.DELETE("/cost-centers/:id", h.DeleteCostCenter)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
