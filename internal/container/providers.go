package container

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/dispatcher"
	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/application/service"
	"github.com/garyjia/procurement-portal/internal/application/workflow"
	"github.com/garyjia/procurement-portal/internal/domain/event"
	infraLark "github.com/garyjia/procurement-portal/internal/infrastructure/external/lark"
	"github.com/garyjia/procurement-portal/internal/infrastructure/metrics"
	"github.com/garyjia/procurement-portal/internal/infrastructure/persistence/repository"
	"github.com/garyjia/procurement-portal/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-portal/internal/infrastructure/worker"
	httpapi "github.com/garyjia/procurement-portal/internal/interfaces/http"
	"github.com/garyjia/procurement-portal/internal/interfaces/websocket"
	"github.com/garyjia/procurement-portal/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// MetricsBundle holds the registry and the recorder writing to it.
type MetricsBundle struct {
	Registry *prometheus.Registry
	Recorder *metrics.Recorder
}

// ProvideDatabase opens the SQLite file and applies the embedded schema.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(database.Schema()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(bundle *DatabaseBundle, logger *zap.Logger) (*RepositoryBundle, error) {
	if bundle == nil || bundle.DB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sqlDB := bundle.DB.DB
	return &RepositoryBundle{
		Workflow: workflow.Repositories{
			Goods:         repository.NewGoodsRequestRepository(sqlDB, logger),
			Payments:      repository.NewPaymentRequestRepository(sqlDB, logger),
			Proposals:     repository.NewProjectProposalRepository(sqlDB, logger),
			History:       repository.NewHistoryRepository(sqlDB, logger),
			Notifications: repository.NewNotificationRepository(sqlDB, logger),
			Users:         repository.NewUserRepository(sqlDB, logger),
			Sequences:     repository.NewSequenceRepository(sqlDB, logger),
			Tx:            bundle.TransactionMgr,
		},
		CostCenters: repository.NewCostCenterRepository(sqlDB, logger),
	}, nil
}

// ProvideMetrics creates a private registry with the workflow collectors and
// the Go runtime collectors.
func ProvideMetrics() *MetricsBundle {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &MetricsBundle{
		Registry: reg,
		Recorder: metrics.New(reg),
	}
}

// ProvideChannels creates the notification delivery channels.
// The websocket hub is always present; Lark only when enabled.
func ProvideChannels(cfg *Config, hub *websocket.Hub, logger *zap.Logger) ([]port.NotificationChannel, error) {
	if hub == nil {
		return nil, fmt.Errorf("websocket hub is required")
	}
	channels := []port.NotificationChannel{hub}

	if cfg.Lark.Enabled {
		sdkClient := infraLark.NewSDKClient(infraLark.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
		}, logger)
		messenger := infraLark.NewMessenger(sdkClient, logger)
		channels = append(channels, infraLark.NewNotificationChannel(messenger, cfg.Lark.PortalBaseURL, logger))
		logger.Info("Lark notification channel enabled", zap.String("app_id", sdkClient.GetAppID()))
	}

	return channels, nil
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	dispatcherLogger := &dispatcherLoggerAdapter{logger: logger}

	return dispatcher.NewDispatcher(
		dispatcher.WithLogger(dispatcherLogger),
	), nil
}

// WorkflowDeps holds dependencies required for creating the workflow engine.
type WorkflowDeps struct {
	Repos      *RepositoryBundle
	Dispatcher dispatcher.Dispatcher
	Metrics    port.MetricsRecorder
	Year       int
	Logger     *zap.Logger
}

// ProvideWorkflowEngine creates the workflow engine.
func ProvideWorkflowEngine(deps *WorkflowDeps) (*workflow.Engine, error) {
	if deps == nil {
		return nil, fmt.Errorf("workflow dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	return workflow.NewEngine(deps.Repos.Workflow, nil,
		workflow.WithDispatcher(deps.Dispatcher),
		workflow.WithMetrics(deps.Metrics),
		workflow.WithLogger(&zapLoggerAdapter{logger: deps.Logger}),
		workflow.WithNumberingYear(deps.Year),
	), nil
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Repos        *RepositoryBundle
	Channels     []port.NotificationChannel
	Metrics      port.MetricsRecorder
	Notification NotificationConfig
	Dispatcher   dispatcher.Dispatcher
	Logger       *zap.Logger
}

// ProvideServices creates all application services and subscribes
// notification delivery to queued events.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}
	repos := deps.Repos.Workflow

	notifications := service.NewNotificationService(
		repos.Notifications,
		repos.Users,
		deps.Channels,
		deps.Metrics,
		service.NotificationConfig{MaxAttempts: deps.Notification.MaxAttempts, PendingGrace: deps.Notification.PollInterval},
		serviceLogger,
	)
	if deps.Dispatcher != nil {
		deps.Dispatcher.SubscribeNamed(event.TypeNotificationsQueued, "notification_delivery", notifications.HandleQueued)
		deps.Dispatcher.SubscribeNamed(dispatcher.AnyType, "event_log", eventLogHandler(deps.Logger))
	}

	return &ServiceBundle{
		Notification: notifications,
		User:         service.NewUserService(repos.Users, serviceLogger),
		CostCenter:   service.NewCostCenterService(deps.Repos.CostCenters, serviceLogger),
	}, nil
}

// eventLogHandler writes every committed workflow event to the log
func eventLogHandler(logger *zap.Logger) dispatcher.Handler {
	return func(ctx context.Context, evt *event.Event) error {
		logger.Info("Workflow event",
			zap.String("event_type", string(evt.Type)),
			zap.String("entity_kind", evt.EntityKind),
			zap.String("entity_id", evt.EntityID),
			zap.String("correlation_id", evt.CorrelationID))
		return nil
	}
}

// ProvideWorkers creates and registers all background workers.
// Returns *worker.WorkerManager with all workers registered but not started.
func ProvideWorkers(cfg *NotificationConfig, deliverer worker.PendingDeliverer, logger *zap.Logger) (*worker.WorkerManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("notification config is required")
	}
	if deliverer == nil {
		return nil, fmt.Errorf("deliverer is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	manager := worker.NewWorkerManager(logger)

	workerCfg := worker.DefaultNotificationWorkerConfig()
	if cfg.PollInterval > 0 {
		workerCfg.PollInterval = cfg.PollInterval
	}
	if cfg.BatchSize > 0 {
		workerCfg.BatchSize = cfg.BatchSize
	}
	manager.Register(worker.NewNotificationWorker(workerCfg, deliverer, logger))

	return manager, nil
}

// HTTPDeps holds dependencies required for the HTTP server.
type HTTPDeps struct {
	Server   ServerConfig
	Auth     AuthConfig
	Engine   *workflow.Engine
	Services *ServiceBundle
	Hub      *websocket.Hub
	Metrics  *MetricsBundle
	Logger   *zap.Logger
}

// ProvideHTTPServer creates the REST server.
func ProvideHTTPServer(deps *HTTPDeps) (*httpapi.Server, error) {
	if deps == nil || deps.Engine == nil || deps.Services == nil {
		return nil, fmt.Errorf("engine and services are required")
	}

	services := httpapi.Services{
		Goods:         deps.Engine.Goods(),
		Payments:      deps.Engine.Payments(),
		Proposals:     deps.Engine.Proposals(),
		Notifications: deps.Services.Notification,
		Users:         deps.Services.User,
		CostCenters:   deps.Services.CostCenter,
	}
	if deps.Hub != nil {
		services.Socket = deps.Hub
	}
	if deps.Metrics != nil {
		services.Metrics = metrics.Handler(deps.Metrics.Registry)
	}

	cfg := httpapi.DefaultServerConfig()
	if deps.Server.Host != "" {
		cfg.Host = deps.Server.Host
	}
	if deps.Server.Port > 0 {
		cfg.Port = deps.Server.Port
	}
	if deps.Server.ReadTimeout > 0 {
		cfg.ReadTimeout = deps.Server.ReadTimeout
	}
	if deps.Server.WriteTimeout > 0 {
		cfg.WriteTimeout = deps.Server.WriteTimeout
	}
	cfg.JWTSecret = deps.Auth.JWTSecret
	cfg.AllowOrigins = deps.Server.AllowOrigins

	return httpapi.NewServer(cfg, services, &zapLoggerAdapter{logger: deps.Logger}), nil
}
